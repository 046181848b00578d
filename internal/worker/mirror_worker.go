// Package worker mirrors expense mutations into the backup spreadsheet.
// The fast path consumes change events from the message queue; a periodic
// scan over rows still marked pending catches anything the queue lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aptcost/internal/amqp"
	"aptcost/internal/core"
	"aptcost/internal/store"
)

// RowAppender appends one journal row to the mirror destination.
type RowAppender interface {
	AppendRow(ctx context.Context, row []interface{}) error
}

// MirrorStore is the slice of the expense store the worker needs: fetching
// rows by id and driving the pending-mirror queue.
type MirrorStore interface {
	store.ExpenseGetter
	store.MirrorQueue
}

type MirrorWorker struct {
	store     MirrorStore
	appender  RowAppender
	batchSize int
}

func NewMirrorWorker(st MirrorStore, appender RowAppender, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &MirrorWorker{
		store:     st,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleChangeMessage mirrors a single change event. The payload carries only
// the record id and action; current field values are always re-fetched from
// the store so stale messages cannot overwrite newer data.
func (w *MirrorWorker) HandleChangeMessage(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "Processing record change",
		"record_id", msg.ID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		row := tombstoneRow(msg)
		if err := w.appender.AppendRow(ctx, row); err != nil {
			return fmt.Errorf("append deletion row for %s: %w", msg.ID, err)
		}
		return nil
	}

	record, err := w.store.Get(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			// Deleted between publish and consume. The deletion event
			// carries its own row, so there is nothing left to mirror.
			slog.WarnContext(ctx, "Record vanished before mirroring",
				"record_id", msg.ID,
				"action", msg.Action)
			return nil
		}
		return fmt.Errorf("fetch record %s: %w", msg.ID, err)
	}

	return w.mirrorRecord(ctx, record, msg.Action)
}

// ProcessPendingMirror drains up to one batch of rows still marked pending.
// This is the recovery path for events the queue dropped.
func (w *MirrorWorker) ProcessPendingMirror(ctx context.Context) error {
	pending, err := w.store.ListPendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending mirror rows: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Mirroring pending records", "count", len(pending))

	var failed int
	for _, record := range pending {
		if err := w.mirrorRecord(ctx, record, amqp.ActionUpdated); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending record",
				"record_id", record.ID,
				"error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pending records failed to mirror", failed, len(pending))
	}
	return nil
}

// StartupCheck runs one oversized pending scan when the worker boots, so a
// backlog accumulated while the worker was down is cleared promptly.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingMirror(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup pending scan: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records at startup")
		return nil
	}

	slog.InfoContext(ctx, "Mirroring backlog at startup", "count", len(pending))

	for _, record := range pending {
		if err := w.mirrorRecord(ctx, record, amqp.ActionUpdated); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror record at startup",
				"record_id", record.ID,
				"error", err)
		}
	}
	return nil
}

func (w *MirrorWorker) mirrorRecord(ctx context.Context, record core.ExpenseRecord, action string) error {
	row := recordRow(record, action)
	if err := w.appender.AppendRow(ctx, row); err != nil {
		if markErr := w.store.MarkMirrorError(ctx, record.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error",
				"record_id", record.ID,
				"error", markErr)
		}
		return fmt.Errorf("append row for %s: %w", record.ID, err)
	}

	if err := w.store.MarkMirrored(ctx, record.ID); err != nil {
		return fmt.Errorf("mark %s mirrored: %w", record.ID, err)
	}

	slog.InfoContext(ctx, "Record mirrored", "record_id", record.ID, "action", action)
	return nil
}

// recordRow lays out a journal row: when, what happened, and the record's
// current field values.
func recordRow(record core.ExpenseRecord, action string) []interface{} {
	return []interface{}{
		time.Now().UTC().Format(time.RFC3339),
		action,
		record.ID,
		record.Category().Key(),
		record.Amount,
		record.Description,
		record.Date.ISO(),
	}
}

func tombstoneRow(msg *amqp.RecordChangeMessage) []interface{} {
	return []interface{}{
		msg.Timestamp.UTC().Format(time.RFC3339),
		amqp.ActionDeleted,
		msg.ID,
		"", "", "", "",
	}
}
