package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
)

// AuditEntry is one row of the append-only audit trail maintained by the
// worker.
type AuditEntry struct {
	ID            int64
	TransactionID int64
	UserID        int64
	Action        string // "created" or "deleted"
	AmountCents   int64
	Category      string
	RecordedAt    time.Time
}

// PendingAuditTransaction identifies a transaction whose audit entry has not
// been written yet.
type PendingAuditTransaction struct {
	ID        int64
	CreatedAt time.Time
}

// PendingAuditTransactions returns transactions still in audit state
// "pending", oldest first. This backstops lost event messages.
func (r *SQLiteRepository) PendingAuditTransactions(ctx context.Context, limit int) ([]PendingAuditTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions
		 WHERE audit_state = 'pending'
		 ORDER BY created_at
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending audit transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingAuditTransaction
	for rows.Next() {
		var p PendingAuditTransaction
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkAuditRecorded marks a transaction's audit entry as written.
func (r *SQLiteRepository) MarkAuditRecorded(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET audit_state = 'recorded' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark audit recorded: %w", err)
	}
	return nil
}

// MarkAuditError marks a transaction whose audit entry could not be written.
func (r *SQLiteRepository) MarkAuditError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET audit_state = 'error' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark audit error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with audit error", "id", id)
	return nil
}

// InsertAuditEntry appends one audit trail row.
func (r *SQLiteRepository) InsertAuditEntry(ctx context.Context, e AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (transaction_id, user_id, action, amount_cents, category)
		 VALUES (?, ?, ?, ?, ?)`,
		e.TransactionID, e.UserID, e.Action, e.AmountCents, e.Category,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// AuditEntriesForUser returns a user's audit trail, newest first.
func (r *SQLiteRepository) AuditEntriesForUser(ctx context.Context, userID int64, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, user_id, action, amount_cents, category, recorded_at
		 FROM audit_log
		 WHERE user_id = ?
		 ORDER BY id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.UserID, &e.Action, &e.AmountCents, &e.Category, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetTransactionForAudit fetches a transaction regardless of owner, for the
// audit worker.
func (r *SQLiteRepository) GetTransactionForAudit(ctx context.Context, id int64) (*core.Transaction, error) {
	return r.getTransactionAnyOwner(ctx, id)
}
