package owners

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
	// ErrNotFound is returned when an owner does not exist
	ErrNotFound = errors.New("owner not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")
)

// Owner is the titleholder of one or more listed properties.
type Owner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest carries the fields for a new owner.
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

// Repository defines the interface for owner storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Owner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	List(ctx context.Context) ([]*Owner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository keeps owners in memory for tests and local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	owners map[uuid.UUID]*Owner
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{owners: make(map[uuid.UUID]*Owner)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Owner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	owner := &Owner{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.owners[owner.ID] = owner
	r.mu.Unlock()
	return owner, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return owner, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Owner, 0, len(r.owners))
	for _, owner := range r.owners {
		out = append(out, owner)
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; !ok {
		return ErrNotFound
	}
	delete(r.owners, id)
	return nil
}

// PostgresRepository stores owners in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("owners: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Owner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	var createdAt time.Time
	query := `
		INSERT INTO owners (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, id, req.Name, req.Email, req.Phone).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("owners: insert failed: %w", err)
	}
	return &Owner{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone, CreatedAt: createdAt}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Owner, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, email, phone, created_at FROM owners WHERE id = $1`, id)
	var o Owner
	if err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("owners: select failed: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Owner, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, created_at FROM owners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("owners: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Owner
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("owners: scan failed: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM owners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("owners: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
