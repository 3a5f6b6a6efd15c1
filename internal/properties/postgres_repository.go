package properties

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores properties in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("properties: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const propColumns = `id, title, address, neighborhood_id, owner_id, agent_id, operation,
	price_amount, price_currency, rooms, area_m2, description, status, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	query := `
		INSERT INTO properties (id, title, address, neighborhood_id, owner_id, agent_id,
			operation, price_amount, price_currency, rooms, area_m2, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'draft')
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id, req.Title, req.Address, req.NeighborhoodID, req.OwnerID, req.AgentID,
		req.Operation, req.PriceAmount, req.PriceCurrency, req.Rooms, req.AreaM2,
		req.Description,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("properties: insert failed: %w", err)
	}
	return &Property{
		ID:             id,
		Title:          req.Title,
		Address:        req.Address,
		NeighborhoodID: req.NeighborhoodID,
		OwnerID:        req.OwnerID,
		AgentID:        req.AgentID,
		Operation:      req.Operation,
		PriceAmount:    req.PriceAmount,
		PriceCurrency:  req.PriceCurrency,
		Rooms:          req.Rooms,
		AreaM2:         req.AreaM2,
		Description:    req.Description,
		Status:         StatusDraft,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propColumns+` FROM properties WHERE id = $1`, id)
	prop, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("properties: select failed: %w", err)
	}
	return prop, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Property, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	var status, operation *string
	if filter.Status != "" {
		s := string(filter.Status)
		status = &s
	}
	if filter.Operation != "" {
		o := string(filter.Operation)
		operation = &o
	}
	query := `
		SELECT ` + propColumns + `
		FROM properties
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR operation = $2)
		  AND ($3::uuid IS NULL OR neighborhood_id = $3)
		  AND ($4::uuid IS NULL OR agent_id = $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		status, operation, filter.NeighborhoodID, filter.AgentID,
		filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("properties: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("properties: scan failed: %w", err)
		}
		out = append(out, prop)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Property, error) {
	prop, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(prop, req); err != nil {
		return nil, err
	}
	query := `
		UPDATE properties
		SET title = $2, address = $3, neighborhood_id = $4, agent_id = $5,
		    operation = $6, price_amount = $7, price_currency = $8, rooms = $9,
		    area_m2 = $10, description = $11, status = $12, updated_at = $13
		WHERE id = $1
	`
	ct, err := r.pool.Exec(ctx, query,
		prop.ID, prop.Title, prop.Address, prop.NeighborhoodID, prop.AgentID,
		prop.Operation, prop.PriceAmount, prop.PriceCurrency, prop.Rooms,
		prop.AreaM2, prop.Description, prop.Status, prop.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("properties: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return prop, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("properties: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (*Property, error) {
	var p Property
	if err := row.Scan(
		&p.ID, &p.Title, &p.Address, &p.NeighborhoodID, &p.OwnerID, &p.AgentID,
		&p.Operation, &p.PriceAmount, &p.PriceCurrency, &p.Rooms, &p.AreaM2,
		&p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ Repository = (*PostgresRepository)(nil)
