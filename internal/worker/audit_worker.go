// Package worker maintains the audit trail from transaction events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AuditWorker consumes transaction events and writes the append-only audit
// log, with a periodic pending scan as backstop for lost messages.
type AuditWorker struct {
	storage   *storage.SQLiteRepository
	batchSize int
}

func NewAuditWorker(storage *storage.SQLiteRepository, batchSize int) *AuditWorker {
	return &AuditWorker{
		storage:   storage,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single transaction event from AMQP.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionCreated:
		return w.recordCreated(ctx, msg.ID)
	case amqp.ActionDeleted:
		// The row is gone, the message carries the details
		return w.storage.InsertAuditEntry(ctx, storage.AuditEntry{
			TransactionID: msg.ID,
			UserID:        msg.UserID,
			Action:        amqp.ActionDeleted,
			AmountCents:   msg.AmountCents,
			Category:      msg.Category,
		})
	default:
		// Unknown actions are acked, requeueing cannot fix them
		slog.WarnContext(ctx, "Ignoring unknown event action", "action", msg.Action, "id", msg.ID)
		return nil
	}
}

func (w *AuditWorker) recordCreated(ctx context.Context, id int64) error {
	tx, err := w.storage.GetTransactionForAudit(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the event was processed; the delete event covers it
		slog.WarnContext(ctx, "Transaction gone before audit, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	entry := storage.AuditEntry{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Action:        amqp.ActionCreated,
		AmountCents:   tx.Amount.Cents,
		Category:      tx.Category,
	}
	if err := w.storage.InsertAuditEntry(ctx, entry); err != nil {
		if markErr := w.storage.MarkAuditError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark audit error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}

	if err := w.storage.MarkAuditRecorded(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark audit recorded", "id", tx.ID, "error", err)
		// Don't return error here - the entry was actually written
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"id", tx.ID,
		"user_id", tx.UserID,
		"amount_cents", tx.Amount.Cents)

	return nil
}

// ProcessPending records audit entries for transactions still pending.
// This is a backup mechanism in case AMQP messages are lost.
func (w *AuditWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingAuditTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.recordCreated(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to record audit entry", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck records any backlog of pending transactions at worker startup.
// This is useful to recover from missed AMQP messages or worker downtime.
func (w *AuditWorker) StartupCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.PendingAuditTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.recordCreated(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to record audit entry during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup audit check completed",
		"total", len(pending),
		"recorded", successCount,
		"errors", errorCount)

	return nil
}
