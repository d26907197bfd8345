package machine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for machine persistence.
type Repository interface {
	Create(ctx context.Context, m *Machine) error
	GetByID(ctx context.Context, id string) (*Machine, error)
	ListVisible(ctx context.Context, userID string) ([]Machine, error)
	ListShared(ctx context.Context) ([]Machine, error)
	Update(ctx context.Context, m *Machine) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

const machineColumns = "id, name, url, description, owner_id, is_shared, created_at, updated_at"

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed machine repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new machine. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, m *Machine) error {
	if m.ID == "" {
		m.ID = "mac-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	m.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	m.UpdatedAt = m.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO machines (`+machineColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.URL, m.Description, m.OwnerID, boolToInt(m.IsShared), now, now,
	)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}
	return nil
}

// GetByID retrieves a machine by its unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Machine, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+machineColumns+" FROM machines WHERE id = ?", id)
	return scanMachineFrom(row)
}

// ListVisible returns the machines a user can see: shared machines plus
// their own. Ordered by creation date.
func (r *SQLiteRepository) ListVisible(ctx context.Context, userID string) ([]Machine, error) {
	return r.list(ctx,
		"SELECT "+machineColumns+" FROM machines WHERE is_shared = 1 OR owner_id = ? ORDER BY created_at ASC, id ASC",
		userID,
	)
}

// ListShared returns only the machines marked shared.
func (r *SQLiteRepository) ListShared(ctx context.Context) ([]Machine, error) {
	return r.list(ctx,
		"SELECT "+machineColumns+" FROM machines WHERE is_shared = 1 ORDER BY created_at ASC, id ASC")
}

// Update modifies a machine's mutable fields.
func (r *SQLiteRepository) Update(ctx context.Context, m *Machine) error {
	now := time.Now().UTC().Format(time.RFC3339)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE machines SET name = ?, url = ?, description = ?, is_shared = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.URL, m.Description, boolToInt(m.IsShared), now, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating machine: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrMachineNotFound
	}
	return nil
}

// Delete removes a machine by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM machines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting machine: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrMachineNotFound
	}
	return nil
}

// DeleteByOwner removes every machine owned by a user. The FK cascade
// covers user deletion too; this keeps the cleanup explicit for callers
// that delete accounts through the repository.
func (r *SQLiteRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM machines WHERE owner_id = ?", ownerID); err != nil {
		return fmt.Errorf("deleting machines for owner: %w", err)
	}
	return nil
}

// list executes a query and scans all machine results.
func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Machine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}
	defer rows.Close()

	var machines []Machine
	for rows.Next() {
		m, err := scanMachineFrom(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating machines: %w", err)
	}

	if machines == nil {
		machines = []Machine{}
	}
	return machines, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanMachineFrom scans a machine from any scanner (Row or Rows).
func scanMachineFrom(s scanner) (*Machine, error) {
	var m Machine
	var isShared int
	var createdAt, updatedAt string

	err := s.Scan(&m.ID, &m.Name, &m.URL, &m.Description,
		&m.OwnerID, &isShared, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("scanning machine: %w", err)
	}

	m.IsShared = isShared != 0
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
