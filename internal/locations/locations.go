package locations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a location does not exist
	ErrNotFound = errors.New("location not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidLevel is returned for an unknown hierarchy level
	ErrInvalidLevel = errors.New("level must be country, province, city or neighborhood")

	// ErrInvalidParent is returned when the parent level does not match
	ErrInvalidParent = errors.New("parent must be exactly one level above")
)

// Level is a rung of the location hierarchy.
type Level string

const (
	LevelCountry      Level = "country"
	LevelProvince     Level = "province"
	LevelCity         Level = "city"
	LevelNeighborhood Level = "neighborhood"
)

func (l Level) Valid() bool {
	switch l {
	case LevelCountry, LevelProvince, LevelCity, LevelNeighborhood:
		return true
	}
	return false
}

// parent returns the level a node's parent must have; countries have none.
func (l Level) parent() (Level, bool) {
	switch l {
	case LevelProvince:
		return LevelCountry, true
	case LevelCity:
		return LevelProvince, true
	case LevelNeighborhood:
		return LevelCity, true
	}
	return "", false
}

// Location is one node of the country→province→city→neighborhood tree.
type Location struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Level    Level      `json:"level"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// CreateRequest carries the fields for a new location.
type CreateRequest struct {
	Name     string     `json:"name"`
	Level    Level      `json:"level"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if !r.Level.Valid() {
		return ErrInvalidLevel
	}
	if _, needsParent := r.Level.parent(); needsParent && r.ParentID == nil {
		return ErrInvalidParent
	}
	if r.Level == LevelCountry && r.ParentID != nil {
		return ErrInvalidParent
	}
	return nil
}

// Repository defines the interface for location storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Location, error)
	ListByLevel(ctx context.Context, level Level) ([]*Location, error)
}

// InMemoryRepository keeps the tree in memory for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*Location
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nodes: make(map[uuid.UUID]*Location)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Location, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ParentID != nil {
		parent, ok := r.nodes[*req.ParentID]
		if !ok {
			return nil, ErrNotFound
		}
		if want, _ := req.Level.parent(); parent.Level != want {
			return nil, ErrInvalidParent
		}
	}
	loc := &Location{
		ID:       uuid.New(),
		Name:     req.Name,
		Level:    req.Level,
		ParentID: req.ParentID,
	}
	r.nodes[loc.ID] = loc
	return loc, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return loc, nil
}

func (r *InMemoryRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Location
	for _, loc := range r.nodes {
		if loc.ParentID != nil && *loc.ParentID == parentID {
			out = append(out, loc)
		}
	}
	sortByName(out)
	return out, nil
}

func (r *InMemoryRepository) ListByLevel(ctx context.Context, level Level) ([]*Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Location
	for _, loc := range r.nodes {
		if loc.Level == level {
			out = append(out, loc)
		}
	}
	sortByName(out)
	return out, nil
}

func sortByName(locs []*Location) {
	sort.Slice(locs, func(i, j int) bool { return locs[i].Name < locs[j].Name })
}

// PostgresRepository stores locations in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("locations: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Location, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		parent, err := r.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if want, _ := req.Level.parent(); parent.Level != want {
			return nil, ErrInvalidParent
		}
	}
	id := uuid.New()
	query := `
		INSERT INTO locations (id, name, level, parent_id)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, id, req.Name, req.Level, req.ParentID); err != nil {
		return nil, fmt.Errorf("locations: insert failed: %w", err)
	}
	return &Location{ID: id, Name: req.Name, Level: req.Level, ParentID: req.ParentID}, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, level, parent_id FROM locations WHERE id = $1`, id)
	var loc Location
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Level, &loc.ParentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("locations: select failed: %w", err)
	}
	return &loc, nil
}

func (r *PostgresRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Location, error) {
	return r.list(ctx, `SELECT id, name, level, parent_id FROM locations WHERE parent_id = $1 ORDER BY name`, parentID)
}

func (r *PostgresRepository) ListByLevel(ctx context.Context, level Level) ([]*Location, error) {
	return r.list(ctx, `SELECT id, name, level, parent_id FROM locations WHERE level = $1 ORDER BY name`, level)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Location, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("locations: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Level, &loc.ParentID); err != nil {
			return nil, fmt.Errorf("locations: scan failed: %w", err)
		}
		out = append(out, &loc)
	}
	return out, rows.Err()
}

// ttl shared by the cached repository.
const cacheTTL = 5 * time.Minute

var _ Repository = (*InMemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
