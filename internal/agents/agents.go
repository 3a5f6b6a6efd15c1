package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when an agent does not exist
	ErrNotFound = errors.New("agent not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")
)

// Agent is a salesperson who shows properties and takes visits.
type Agent struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	LicenseNumber string    `json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRequest carries the fields for a new agent.
type CreateRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}

func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// Repository defines the interface for agent storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	List(ctx context.Context) ([]*Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository keeps agents in memory for tests and local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]*Agent
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{agents: make(map[uuid.UUID]*Agent)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	agent := &Agent{
		ID:            uuid.New(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		CreatedAt:     time.Now().UTC(),
	}
	r.mu.Lock()
	r.agents[agent.ID] = agent
	r.mu.Unlock()
	return agent, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return agent, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		out = append(out, agent)
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return ErrNotFound
	}
	delete(r.agents, id)
	return nil
}

// PostgresRepository stores agents in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("agents: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	var createdAt time.Time
	query := `
		INSERT INTO agents (id, name, email, phone, license_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, id, req.Name, req.Email, req.Phone, req.LicenseNumber).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("agents: insert failed: %w", err)
	}
	return &Agent{
		ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone,
		LicenseNumber: req.LicenseNumber, CreatedAt: createdAt,
	}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Agent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, license_number, created_at FROM agents WHERE id = $1`, id)
	var a Agent
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.LicenseNumber, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("agents: select failed: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, license_number, created_at FROM agents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("agents: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.LicenseNumber, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("agents: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("agents: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
