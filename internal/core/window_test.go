package core

import (
	"testing"
	"time"
)

func TestEffectiveDate(t *testing.T) {
	created := time.Date(2024, 2, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record ExpenseRecord
		want   time.Time
		wantOK bool
	}{
		{
			"user date wins",
			ExpenseRecord{Date: NewDate(2024, 3, 1), CreatedAt: created},
			NewDate(2024, 3, 1).Time, true,
		},
		{
			"falls back to created timestamp",
			ExpenseRecord{CreatedAt: created},
			created, true,
		},
		{
			"no dates at all",
			ExpenseRecord{},
			time.Time{}, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EffectiveDate(tt.record)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("EffectiveDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatsForMonth(t *testing.T) {
	ref := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	records := []ExpenseRecord{
		{Type: "cash", Amount: "100", Date: NewDate(2024, 3, 1)},
		{Type: "emi", Amount: "50", Date: NewDate(2024, 3, 31)},
		{Type: "cash", Amount: "999", Date: NewDate(2024, 2, 28)},
		{Type: "cash", Amount: "25", CreatedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{Type: "cash", Amount: "777"}, // undated, excluded from the window
		{Type: "cash", Amount: "bad", Date: NewDate(2024, 3, 5)},
	}

	s := StatsForMonth(records, ref)
	if s.Count != 4 {
		t.Errorf("Count = %d, want 4", s.Count)
	}
	if s.Sum != FromRupees(175) {
		t.Errorf("Sum = %d paise, want %d", s.Sum.Paise, FromRupees(175).Paise)
	}

	t.Run("empty input", func(t *testing.T) {
		s := StatsForMonth(nil, ref)
		if s.Count != 0 || !s.Sum.IsZero() {
			t.Errorf("expected zero stats, got %+v", s)
		}
	})
}

func TestMostRecent(t *testing.T) {
	t.Run("latest effective date wins", func(t *testing.T) {
		records := []ExpenseRecord{
			{ID: "a", Date: NewDate(2024, 1, 10)},
			{ID: "b", Date: NewDate(2024, 3, 5)},
			{ID: "c", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		}
		got, ok := MostRecent(records)
		if !ok || got.ID != "b" {
			t.Errorf("MostRecent = %q ok=%v, want b", got.ID, ok)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		records := []ExpenseRecord{
			{ID: "first", Date: NewDate(2024, 5, 1)},
			{ID: "second", Date: NewDate(2024, 5, 1)},
		}
		got, ok := MostRecent(records)
		if !ok || got.ID != "first" {
			t.Errorf("MostRecent = %q ok=%v, want first", got.ID, ok)
		}
	})

	t.Run("undated records are skipped", func(t *testing.T) {
		records := []ExpenseRecord{
			{ID: "undated"},
			{ID: "dated", Date: NewDate(2024, 1, 1)},
		}
		got, ok := MostRecent(records)
		if !ok || got.ID != "dated" {
			t.Errorf("MostRecent = %q ok=%v, want dated", got.ID, ok)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, ok := MostRecent([]ExpenseRecord{{ID: "undated"}}); ok {
			t.Error("expected ok=false when no record has an effective date")
		}
	})
}
