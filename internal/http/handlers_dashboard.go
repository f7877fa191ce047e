package http

import (
	"net/http"

	"fintrack/internal/core"
)

const dashboardRecentLimit = 10

type dashboardViewModel struct {
	User    *core.User
	Totals  core.Totals
	Balance core.Money
	Recent  []core.Transaction
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	totals, err := s.repo.Totals(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard totals error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := s.repo.RecentTransactions(r.Context(), user.ID, dashboardRecentLimit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent transactions error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", dashboardViewModel{
		User:    user,
		Totals:  totals,
		Balance: totals.Balance(),
		Recent:  recent,
	})
}
