package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"aptcost/internal/core"
)

func TestCreateListOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.nowFunc = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, desc := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, core.RecordFields{Type: "cash", Amount: "100", Description: desc}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Description != "third" || records[2].Description != "first" {
		t.Errorf("expected newest first, got %q .. %q", records[0].Description, records[2].Description)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Create(ctx, core.RecordFields{Type: "cash", Amount: "1000", Description: "Advance"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Update(ctx, id, core.RecordFields{Type: "emi", Amount: "2000", Description: "Revised"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Type != "emi" || rec.Amount != "2000" || rec.Description != "Revised" {
		t.Errorf("update not applied: %+v", rec)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Get after delete = %v, want ErrRecordNotFound", err)
	}

	t.Run("unknown ids", func(t *testing.T) {
		if err := s.Update(ctx, "missing", core.RecordFields{}); !errors.Is(err, core.ErrRecordNotFound) {
			t.Errorf("Update = %v, want ErrRecordNotFound", err)
		}
		if err := s.Delete(ctx, "missing"); !errors.Is(err, core.ErrRecordNotFound) {
			t.Errorf("Delete = %v, want ErrRecordNotFound", err)
		}
	})
}

func TestMirrorQueue(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Create(ctx, core.RecordFields{Type: "bankLoan", Amount: "500", Description: "Tranche"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending, err := s.ListPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingMirror: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %v", pending)
	}

	if err := s.MarkMirrored(ctx, id); err != nil {
		t.Fatalf("MarkMirrored: %v", err)
	}
	pending, _ = s.ListPendingMirror(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("queue not drained: %v", pending)
	}

	if err := s.Update(ctx, id, core.RecordFields{Type: "bankLoan", Amount: "600", Description: "Revised"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pending, _ = s.ListPendingMirror(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("update should re-queue, got %v", pending)
	}
}
