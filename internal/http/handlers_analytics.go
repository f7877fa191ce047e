package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"fintrack/internal/core"
)

type analyticsViewModel struct {
	User         *core.User
	ExpenseByCat []core.CategoryTotal
	IncomeByCat  []core.CategoryTotal
	Trend        []core.MonthPoint
	ChartData    template.JS
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	ctx := r.Context()

	expenseByCat, err := s.summaryByCategory(r, user.ID, core.Expense)
	if err != nil {
		s.logger.ErrorContext(ctx, "Expense summary error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	incomeByCat, err := s.summaryByCategory(r, user.ID, core.Income)
	if err != nil {
		s.logger.ErrorContext(ctx, "Income summary error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	trend, err := s.monthlyTrend(r, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Monthly trend error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	chartData, err := chartDataJSON(expenseByCat, trend)
	if err != nil {
		s.logger.ErrorContext(ctx, "Chart encoding error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "analytics.html", analyticsViewModel{
		User:         user,
		ExpenseByCat: expenseByCat,
		IncomeByCat:  incomeByCat,
		Trend:        trend,
		ChartData:    chartData,
	})
}

// summaryByCategory returns the cached per-category breakdown for one type.
func (s *Server) summaryByCategory(r *http.Request, userID int64, typ core.TransactionType) ([]core.CategoryTotal, error) {
	key := summaryCacheKey(userID, typ)
	if data, found := s.summaryCache.Get(key); found {
		s.recordCacheHit()
		return data, nil
	}
	s.recordCacheMiss()

	data, err := s.repo.SumByCategory(r.Context(), userID, typ)
	if err != nil {
		return nil, fmt.Errorf("sum by category (user=%d, type=%s): %w", userID, typ, err)
	}
	s.summaryCache.Set(key, data)
	return data, nil
}

// monthlyTrend returns the cached month-by-month income/expense series.
func (s *Server) monthlyTrend(r *http.Request, userID int64) ([]core.MonthPoint, error) {
	key := trendCacheKey(userID)
	if data, found := s.trendCache.Get(key); found {
		s.recordCacheHit()
		return data, nil
	}
	s.recordCacheMiss()

	data, err := s.repo.MonthlyTrend(r.Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("monthly trend (user=%d): %w", userID, err)
	}
	s.trendCache.Set(key, data)
	return data, nil
}

type categoryChartPayload struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type trendChartPayload struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

// chartDataJSON builds the combined Chart.js payload. It is embedded in a
// non-executable JSON data block and read by static/js/charts.js, so the
// script-src policy needs no inline allowance.
func chartDataJSON(expense []core.CategoryTotal, trend []core.MonthPoint) (template.JS, error) {
	payload := struct {
		Expense categoryChartPayload `json:"expense"`
		Trend   trendChartPayload    `json:"trend"`
	}{
		Expense: categoryChartData(expense),
		Trend:   trendChartData(trend),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chart payload: %w", err)
	}
	return template.JS(b), nil
}

// categoryChartData builds the doughnut chart series.
func categoryChartData(totals []core.CategoryTotal) categoryChartPayload {
	payload := categoryChartPayload{
		Labels: make([]string, 0, len(totals)),
		Values: make([]float64, 0, len(totals)),
	}
	for _, ct := range totals {
		payload.Labels = append(payload.Labels, core.CategoryLabel(ct.Category))
		payload.Values = append(payload.Values, ct.Total.Float())
	}
	return payload
}

// trendChartData builds the line chart series, one point per month.
func trendChartData(trend []core.MonthPoint) trendChartPayload {
	payload := trendChartPayload{
		Labels:  make([]string, 0, len(trend)),
		Income:  make([]float64, 0, len(trend)),
		Expense: make([]float64, 0, len(trend)),
	}
	for _, p := range trend {
		payload.Labels = append(payload.Labels, fmt.Sprintf("%04d-%02d", p.Year, p.Month))
		payload.Income = append(payload.Income, p.Income.Float())
		payload.Expense = append(payload.Expense, p.Expense.Float())
	}
	return payload
}
