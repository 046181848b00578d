// Package memory is an in-process record store. It backs the "memory"
// backend for local development and doubles as the store handler and
// service tests run against.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"aptcost/internal/core"
)

type Store struct {
	mu      sync.Mutex
	items   []core.ExpenseRecord
	mirror  map[string]string
	nowFunc func() time.Time
}

func New() *Store {
	return &Store{
		mirror:  make(map[string]string),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Seed replaces the store contents, for tests that need a fixed snapshot.
func (s *Store) Seed(records []core.ExpenseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.ExpenseRecord(nil), records...)
	s.mirror = make(map[string]string)
	for _, r := range records {
		s.mirror[r.ID] = "pending"
	}
}

// List implements store.ExpenseLister, newest first like the SQLite
// backend.
func (s *Store) List(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.ExpenseRecord(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get implements store.ExpenseGetter.
func (s *Store) Get(_ context.Context, id string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == id {
			return r, nil
		}
	}
	return core.ExpenseRecord{}, fmt.Errorf("expense %s: %w", id, core.ErrRecordNotFound)
}

// Create implements store.ExpenseWriter.
func (s *Store) Create(_ context.Context, fields core.RecordFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	rec := core.ExpenseRecord{
		ID:          uuid.NewString(),
		Type:        fields.Type,
		Amount:      fields.Amount,
		Description: fields.Description,
		Date:        fields.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append(s.items, rec)
	s.mirror[rec.ID] = "pending"
	return rec.ID, nil
}

// Update implements store.ExpenseWriter.
func (s *Store) Update(_ context.Context, id string, fields core.RecordFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID != id {
			continue
		}
		r.Type = fields.Type
		r.Amount = fields.Amount
		r.Description = fields.Description
		r.Date = fields.Date
		r.UpdatedAt = s.nowFunc()
		s.items[i] = r
		s.mirror[id] = "pending"
		return nil
	}
	return fmt.Errorf("expense %s: %w", id, core.ErrRecordNotFound)
}

// Delete implements store.ExpenseDeleter.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			delete(s.mirror, id)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, core.ErrRecordNotFound)
}

// ListPendingMirror implements store.MirrorQueue.
func (s *Store) ListPendingMirror(_ context.Context, limit int) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseRecord
	for _, r := range s.items {
		if s.mirror[r.ID] != "pending" {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkMirrored(_ context.Context, id string) error {
	return s.setMirrorState(id, "done")
}

func (s *Store) MarkMirrorError(_ context.Context, id string) error {
	return s.setMirrorState(id, "error")
}

func (s *Store) setMirrorState(id, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mirror[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, core.ErrRecordNotFound)
	}
	s.mirror[id] = state
	return nil
}
