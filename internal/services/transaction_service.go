// Package services orchestrates transaction operations across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionService saves and deletes transactions, publishing audit events
// for the worker.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create validates and saves a transaction, then publishes a created event.
// A publish failure is logged but does not fail the request: the transaction
// is saved, and the worker's pending scan will pick it up.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewCreatedMessage(created.ID, created.UserID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			log.FieldTxID, created.ID, log.FieldError, err)
		// Don't fail the request - transaction is saved locally
	}

	return created, nil
}

// Delete removes a transaction owned by userID and publishes a deleted event.
// The event carries amount and category because the row is gone by the time
// the worker sees it.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	// Fetch first so the audit event can carry the details
	tx, err := s.storage.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	msg := amqp.NewDeletedMessage(tx.ID, tx.UserID, tx.Amount.Cents, tx.Category)
	if err := s.publish(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish deleted event",
			log.FieldTxID, id, log.FieldError, err)
		// Don't fail the request - transaction is deleted locally
	}

	return nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "action", msg.Action)
		return nil
	}
	return s.amqpClient.PublishTransactionEvent(ctx, msg)
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
