// Package store defines the ports the HTTP layer and the mirror worker use
// to reach a record backend. Implementations live in storage (SQLite) and
// memory.
package store

import (
	"context"

	"aptcost/internal/core"
)

type (
	// ExpenseLister returns the full record snapshot, newest first.
	ExpenseLister interface {
		List(ctx context.Context) ([]core.ExpenseRecord, error)
	}

	// ExpenseWriter creates and fully replaces records. Create assigns the
	// id and creation timestamp; Update replaces the four user fields and
	// refreshes the updated timestamp.
	ExpenseWriter interface {
		Create(ctx context.Context, fields core.RecordFields) (id string, err error)
		Update(ctx context.Context, id string, fields core.RecordFields) error
	}

	// ExpenseDeleter removes a record immediately. No soft delete.
	ExpenseDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// ExpenseGetter fetches one record by id.
	ExpenseGetter interface {
		Get(ctx context.Context, id string) (core.ExpenseRecord, error)
	}

	// ExpenseStore is the full backend surface the web server needs.
	ExpenseStore interface {
		ExpenseLister
		ExpenseWriter
		ExpenseDeleter
		ExpenseGetter
	}

	// MirrorQueue exposes records awaiting replication to the backup sheet.
	// The worker drains it both on change events and on periodic re-scans.
	MirrorQueue interface {
		ListPendingMirror(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
		MarkMirrored(ctx context.Context, id string) error
		MarkMirrorError(ctx context.Context, id string) error
	}
)
