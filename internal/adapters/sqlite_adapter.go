// Package adapters bridges the SQLite repository and the expense service
// into the single store surface the HTTP handlers consume: reads hit the
// repository directly, writes go through the service so change events get
// published.
package adapters

import (
	"context"

	"aptcost/internal/core"
	"aptcost/internal/services"
	"aptcost/internal/storage"
	"aptcost/internal/store"
)

type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ExpenseService
}

var _ store.ExpenseStore = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ExpenseService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// List implements store.ExpenseLister.
func (a *SQLiteAdapter) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	return a.storage.List(ctx)
}

// Get implements store.ExpenseGetter.
func (a *SQLiteAdapter) Get(ctx context.Context, id string) (core.ExpenseRecord, error) {
	return a.storage.Get(ctx, id)
}

// Create implements store.ExpenseWriter.
func (a *SQLiteAdapter) Create(ctx context.Context, fields core.RecordFields) (string, error) {
	return a.service.CreateExpense(ctx, fields)
}

// Update implements store.ExpenseWriter.
func (a *SQLiteAdapter) Update(ctx context.Context, id string, fields core.RecordFields) error {
	return a.service.UpdateExpense(ctx, id, fields)
}

// Delete implements store.ExpenseDeleter.
func (a *SQLiteAdapter) Delete(ctx context.Context, id string) error {
	return a.service.DeleteExpense(ctx, id)
}
