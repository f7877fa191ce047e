package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

// CreateTransaction inserts a transaction in audit state "pending" and
// returns it with ID and creation timestamp populated.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, category, description, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID, string(tx.Type), tx.Amount.Cents, tx.Category, tx.Description, tx.Date.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	created, err := r.GetTransaction(ctx, tx.UserID, id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", created.ID,
		"user_id", created.UserID,
		"type", created.Type,
		"category", created.Category,
		"amount_cents", created.Amount.Cents)

	return created, nil
}

// GetTransaction fetches one transaction scoped to its owner. A transaction
// that exists but belongs to another user is reported as not found.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, amount_cents, category, description, tx_date, created_at
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

// getTransactionAnyOwner is used by the audit worker, which processes events
// across all users.
func (r *SQLiteRepository) getTransactionAnyOwner(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, amount_cents, category, description, tx_date, created_at
		 FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func scanTransaction(row *sql.Row) (*core.Transaction, error) {
	var tx core.Transaction
	var typ, date string
	err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category, &tx.Description, &date, &tx.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(typ)
	if tx.Date, err = core.ParseDate(date); err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return &tx, nil
}

// ListTransactions returns a page of the user's transactions ordered by date
// descending, newest insertion first within a day.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount_cents, category, description, tx_date, created_at
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY tx_date DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ, date string
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category, &tx.Description, &date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// RecentTransactions returns the user's most recently created transactions
// for the dashboard.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, amount_cents, category, description, tx_date, created_at
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ, date string
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category, &tx.Description, &date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// CountTransactions returns the user's total transaction count, for
// pagination metadata.
func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// DeleteTransaction removes a transaction owned by userID. Deleting a
// missing transaction, or one owned by someone else, returns core.ErrNotFound.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// Totals returns the user's all-time income and expense sums.
func (r *SQLiteRepository) Totals(ctx context.Context, userID int64) (core.Totals, error) {
	var t core.Totals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions WHERE user_id = ?`, userID).
		Scan(&t.Income.Cents, &t.Expense.Cents)
	if err != nil {
		return core.Totals{}, fmt.Errorf("totals: %w", err)
	}
	return t, nil
}

// SumByCategory groups the user's transactions of one type by category.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, userID int64, typ core.TransactionType) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents), COUNT(*)
		 FROM transactions
		 WHERE user_id = ? AND type = ?
		 GROUP BY category
		 ORDER BY SUM(amount_cents) DESC`,
		userID, string(typ),
	)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// MonthlyTrend returns (month, income, expense) points across the user's
// whole history in chronological order. tx_date is stored as YYYY-MM-DD, so
// the month key is its first seven characters.
func (r *SQLiteRepository) MonthlyTrend(ctx context.Context, userID int64) ([]core.MonthPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(tx_date, 1, 7) AS ym,
		        COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE user_id = ?
		 GROUP BY ym
		 ORDER BY ym`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var out []core.MonthPoint
	for rows.Next() {
		var ym string
		var p core.MonthPoint
		if err := rows.Scan(&ym, &p.Income.Cents, &p.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan month point: %w", err)
		}
		if len(ym) != 7 {
			return nil, fmt.Errorf("malformed month key %q", ym)
		}
		year, err := strconv.Atoi(ym[:4])
		if err != nil {
			return nil, fmt.Errorf("malformed month key %q: %w", ym, err)
		}
		month, err := strconv.Atoi(ym[5:])
		if err != nil {
			return nil, fmt.Errorf("malformed month key %q: %w", ym, err)
		}
		p.Year, p.Month = year, month
		out = append(out, p)
	}
	return out, rows.Err()
}
