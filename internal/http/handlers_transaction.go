package http

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const transactionsPerPage = 20

type transactionListViewModel struct {
	User         *core.User
	Transactions []core.Transaction
	Page         int
	TotalPages   int
	HasPrev      bool
	HasNext      bool
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	page := parsePage(r)

	count, err := s.repo.CountTransactions(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Count transactions error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := int((count + transactionsPerPage - 1) / transactionsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	txs, err := s.repo.ListTransactions(r.Context(), user.ID, transactionsPerPage, (page-1)*transactionsPerPage)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions error", "error", err, "user_id", user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "transactions.html", transactionListViewModel{
		User:         user,
		Transactions: txs,
		Page:         page,
		TotalPages:   totalPages,
		HasPrev:      page > 1,
		HasNext:      page < totalPages,
	})
}

type transactionFormViewModel struct {
	User              *core.User
	Error             string
	Form              map[string]string
	IncomeCategories  []core.Category
	ExpenseCategories []core.Category
}

func (s *Server) transactionFormVM(user *core.User) transactionFormViewModel {
	return transactionFormViewModel{
		User:              user,
		IncomeCategories:  core.Categories(core.Income),
		ExpenseCategories: core.Categories(core.Expense),
	}
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "transaction_form.html", s.transactionFormVM(userFromContext(r)))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	if err := r.ParseForm(); err != nil {
		vm := s.transactionFormVM(user)
		vm.Error = "Invalid form submission"
		s.render(w, r, "transaction_form.html", vm)
		return
	}

	form := map[string]string{
		"type":        sanitizeInput(r.FormValue("type")),
		"amount":      sanitizeInput(r.FormValue("amount")),
		"category":    sanitizeInput(r.FormValue("category")),
		"description": sanitizeInput(r.FormValue("description")),
		"date":        sanitizeInput(r.FormValue("date")),
	}

	fail := func(msg string) {
		vm := s.transactionFormVM(user)
		vm.Error = msg
		vm.Form = form
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "transaction_form.html", vm)
	}

	cents, err := core.ParseDecimalToCents(form["amount"])
	if err != nil {
		fail("Invalid amount")
		return
	}

	date, err := core.ParseDate(form["date"])
	if err != nil {
		fail("Invalid date, expected YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		UserID:      user.ID,
		Type:        core.TransactionType(form["type"]),
		Amount:      core.Money{Cents: cents},
		Category:    form["category"],
		Description: form["description"],
		Date:        date,
	}

	if err := tx.Validate(); err != nil {
		fail(err.Error())
		return
	}

	created, err := s.txService.Create(r.Context(), tx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save transaction",
			log.FieldError, err,
			log.FieldOperation, log.OpCreate,
			log.FieldUserID, user.ID,
			log.FieldAmountCents, cents)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalTransactions, 1)
	s.invalidateAnalytics(user.ID)

	s.logger.InfoContext(r.Context(), "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldTxID, created.ID,
		log.FieldUserID, user.ID,
		log.FieldTxType, created.Type,
		log.FieldCategory, created.Category,
		log.FieldAmountCents, created.Amount.Cents)

	http.Redirect(w, r, "/transactions", http.StatusFound)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := s.txService.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Missing and someone else's look the same
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to delete transaction",
			log.FieldError, err,
			log.FieldOperation, log.OpDelete,
			log.FieldTxID, id,
			log.FieldUserID, user.ID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.invalidateAnalytics(user.ID)
	http.Redirect(w, r, "/transactions", http.StatusFound)
}
