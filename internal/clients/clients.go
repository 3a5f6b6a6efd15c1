package clients

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
	// ErrNotFound is returned when a client does not exist
	ErrNotFound = errors.New("client not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")
)

// Client is a prospective buyer or tenant.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest carries the fields for a new client.
type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// Repository defines the interface for client storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository keeps clients in memory for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{clients: make(map[uuid.UUID]*Client)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	client := &Client{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.clients[client.ID] = client
	r.mu.Unlock()
	return client, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return client, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		out = append(out, client)
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

// PostgresRepository stores clients in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	var createdAt time.Time
	query := `
		INSERT INTO clients (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, id, req.Name, req.Email, req.Phone).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("clients: insert failed: %w", err)
	}
	return &Client{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone, CreatedAt: createdAt}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, email, phone, created_at FROM clients WHERE id = $1`, id)
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clients: select failed: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, created_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("clients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
