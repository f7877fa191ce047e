package core

// Category is a fixed label classifying a transaction, drawn from a
// type-specific enumerated set.
type Category struct {
	Slug  string
	Label string
}

var incomeCategories = []Category{
	{"salary", "Salary"},
	{"freelance", "Freelance"},
	{"investment", "Investment"},
	{"business", "Business"},
	{"gift", "Gift"},
	{"other_income", "Other Income"},
}

var expenseCategories = []Category{
	{"food", "Food & Dining"},
	{"transportation", "Transportation"},
	{"shopping", "Shopping"},
	{"entertainment", "Entertainment"},
	{"bills", "Bills & Utilities"},
	{"healthcare", "Healthcare"},
	{"education", "Education"},
	{"travel", "Travel"},
	{"housing", "Housing"},
	{"other_expense", "Other Expense"},
}

// Categories returns the category set for a transaction type. The returned
// slice must not be mutated.
func Categories(t TransactionType) []Category {
	switch t {
	case Income:
		return incomeCategories
	case Expense:
		return expenseCategories
	default:
		return nil
	}
}

// ValidCategory reports whether slug belongs to the category set for t.
func ValidCategory(t TransactionType, slug string) bool {
	for _, c := range Categories(t) {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// CategoryLabel resolves a slug to its display label. Unknown slugs are
// returned unchanged so stale data still renders.
func CategoryLabel(slug string) string {
	for _, c := range incomeCategories {
		if c.Slug == slug {
			return c.Label
		}
	}
	for _, c := range expenseCategories {
		if c.Slug == slug {
			return c.Label
		}
	}
	return slug
}
