// Package storage implements the record backend on SQLite. The schema is
// managed by embedded migrations; timestamps and dates are stored as text
// so rows stay readable with any sqlite client.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	"aptcost/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Mirror states for the backup-sheet replication queue.
const (
	mirrorPending = "pending"
	mirrorDone    = "done"
	mirrorError   = "error"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// runMigrations applies the embedded schema on its own connection so the
// main pool never sees a half-migrated database.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const recordColumns = "id, type, amount, description, expense_date, created_at, updated_at"

// List implements store.ExpenseLister. The snapshot is ordered newest
// first; the id tie-break keeps the order stable across identical
// timestamps.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM expenses ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return records, nil
}

// Get implements store.ExpenseGetter.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM expenses WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrRecordNotFound
	}
	return rec, err
}

// Create implements store.ExpenseWriter. The repository owns id and
// timestamp assignment; callers only supply the user fields.
func (r *SQLiteRepository) Create(ctx context.Context, fields core.RecordFields) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, type, amount, description, expense_date, created_at, updated_at, mirror_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fields.Type, fields.Amount, fields.Description, fields.Date.ISO(),
		now.Format(timestampLayout), now.Format(timestampLayout), mirrorPending)
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"type", fields.Type,
		"amount", fields.Amount,
		"description", fields.Description)

	return id, nil
}

// Update implements store.ExpenseWriter. All four user fields are replaced
// and the record re-enters the mirror queue.
func (r *SQLiteRepository) Update(ctx context.Context, id string, fields core.RecordFields) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET type = ?, amount = ?, description = ?, expense_date = ?, updated_at = ?, mirror_state = ?
		 WHERE id = ?`,
		fields.Type, fields.Amount, fields.Description, fields.Date.ISO(),
		now.Format(timestampLayout), mirrorPending, id)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res, id)
}

// Delete implements store.ExpenseDeleter. Deletion is immediate and
// irreversible.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, id)
}

// ListPendingMirror implements store.MirrorQueue, oldest first so the
// backup sheet keeps rough chronological order.
func (r *SQLiteRepository) ListPendingMirror(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM expenses WHERE mirror_state = ? ORDER BY created_at, id LIMIT ?",
		mirrorPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	if err := r.setMirrorState(ctx, id, mirrorDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense marked as mirrored", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id string) error {
	if err := r.setMirrorState(ctx, id, mirrorError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Expense marked with mirror error", "id", id)
	return nil
}

func (r *SQLiteRepository) setMirrorState(ctx context.Context, id, state string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET mirror_state = ? WHERE id = ?", state, id)
	if err != nil {
		return fmt.Errorf("set mirror state: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrRecordNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.ExpenseRecord, error) {
	var (
		rec                             core.ExpenseRecord
		dateRaw, createdRaw, updatedRaw string
	)
	if err := row.Scan(&rec.ID, &rec.Type, &rec.Amount, &rec.Description,
		&dateRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ExpenseRecord{}, err
		}
		return core.ExpenseRecord{}, fmt.Errorf("scan expense: %w", err)
	}

	// Malformed stored dates degrade to the zero value instead of failing
	// the whole snapshot; aggregation treats such records as undated.
	if d, err := core.ParseDate(dateRaw); err == nil {
		rec.Date = d
	}
	rec.CreatedAt = parseTimestamp(createdRaw)
	rec.UpdatedAt = parseTimestamp(updatedRaw)
	return rec, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
