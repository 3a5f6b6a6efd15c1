package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresDirectory resolves appointment references against the back-office
// tables.
type PostgresDirectory struct {
	db DB
}

func NewPostgresDirectory(db DB) *PostgresDirectory {
	if db == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Property(ctx context.Context, id uuid.UUID) (*PropertyRef, error) {
	var ref PropertyRef
	err := d.db.QueryRow(ctx,
		`SELECT id, title, address FROM properties WHERE id = $1`, id,
	).Scan(&ref.ID, &ref.Title, &ref.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduling: property lookup: %w", err)
	}
	return &ref, nil
}

func (d *PostgresDirectory) Client(ctx context.Context, id uuid.UUID) (*ClientRef, error) {
	var ref ClientRef
	err := d.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(email, '') FROM clients WHERE id = $1`, id,
	).Scan(&ref.ID, &ref.Name, &ref.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduling: client lookup: %w", err)
	}
	return &ref, nil
}

func (d *PostgresDirectory) Agent(ctx context.Context, id uuid.UUID) (*AgentRef, error) {
	var ref AgentRef
	err := d.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(email, '') FROM agents WHERE id = $1`, id,
	).Scan(&ref.ID, &ref.Name, &ref.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduling: agent lookup: %w", err)
	}
	return &ref, nil
}

var _ Directory = (*PostgresDirectory)(nil)
