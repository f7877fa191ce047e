package core

// CategoryTotal represents an amount aggregated by category slug.
type CategoryTotal struct {
	Category string
	Total    Money
	Count    int
}

// MonthPoint is one point of the monthly income/expense trend.
type MonthPoint struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}

// Totals is the dashboard summary for one user.
type Totals struct {
	Income  Money
	Expense Money
}

// Balance is income minus expense, by definition.
func (t Totals) Balance() Money {
	return Money{Cents: t.Income.Cents - t.Expense.Cents}
}
