// Package services orchestrates record mutations: the write goes to the
// local store first, then a change event is published for the mirror
// worker. Publishing is best effort; a missing broker never fails a
// request because the pending-mirror scan picks the record up later.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"aptcost/internal/amqp"
	"aptcost/internal/core"
	"aptcost/internal/store"
)

// ChangePublisher is the slice of the AMQP client the service needs.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, id, action string) error
	Close() error
}

type ExpenseService struct {
	store     store.ExpenseStore
	publisher ChangePublisher
}

// NewExpenseService wires a store to an optional publisher; pass nil to run
// without a broker.
func NewExpenseService(st store.ExpenseStore, publisher ChangePublisher) *ExpenseService {
	return &ExpenseService{
		store:     st,
		publisher: publisher,
	}
}

// CreateExpense saves the record locally and announces the change.
func (s *ExpenseService) CreateExpense(ctx context.Context, fields core.RecordFields) (string, error) {
	id, err := s.store.Create(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ActionCreated)
	return id, nil
}

// UpdateExpense replaces the user fields and announces the change.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, fields core.RecordFields) error {
	if err := s.store.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ActionUpdated)
	return nil
}

// DeleteExpense removes the record and announces the change.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) publishChange(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping change message",
			"id", id, "action", action)
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, id, action); err != nil {
		// The mutation already succeeded locally; the worker's periodic
		// scan covers lost messages.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"id", id, "action", action, "error", err)
	}
}

// Close releases the publisher and the store when it owns closeable
// resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
