package properties

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CreateRequest carries the fields for a new listing.
type CreateRequest struct {
	Title          string     `json:"title"`
	Address        string     `json:"address"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	AgentID        *uuid.UUID `json:"agent_id,omitempty"`
	Operation      Operation  `json:"operation"`
	PriceAmount    int64      `json:"price_amount"`
	PriceCurrency  string     `json:"price_currency"`
	Rooms          int        `json:"rooms"`
	AreaM2         float64    `json:"area_m2"`
	Description    string     `json:"description"`
}

// Validate checks the request and fills defaults.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrInvalidTitle
	}
	if !r.Operation.Valid() {
		return ErrInvalidOperation
	}
	if r.PriceCurrency == "" {
		r.PriceCurrency = "ARS"
	}
	return nil
}

// UpdateRequest carries a partial listing update; nil fields are untouched.
type UpdateRequest struct {
	Title          *string    `json:"title,omitempty"`
	Address        *string    `json:"address,omitempty"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`
	AgentID        *uuid.UUID `json:"agent_id,omitempty"`
	Operation      *Operation `json:"operation,omitempty"`
	PriceAmount    *int64     `json:"price_amount,omitempty"`
	PriceCurrency  *string    `json:"price_currency,omitempty"`
	Rooms          *int       `json:"rooms,omitempty"`
	AreaM2         *float64   `json:"area_m2,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Status         *Status    `json:"status,omitempty"`
}

// Repository defines the interface for property storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	List(ctx context.Context, filter ListFilter) ([]*Property, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InMemoryRepository keeps properties in memory for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	props map[uuid.UUID]*Property
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{props: make(map[uuid.UUID]*Property)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	prop := &Property{
		ID:             uuid.New(),
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
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.mu.Lock()
	r.props[prop.ID] = prop
	r.mu.Unlock()
	return prop, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.props[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *prop
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Property
	for _, prop := range r.props {
		if filter.Status != "" && prop.Status != filter.Status {
			continue
		}
		if filter.Operation != "" && prop.Operation != filter.Operation {
			continue
		}
		if filter.NeighborhoodID != nil {
			if prop.NeighborhoodID == nil || *prop.NeighborhoodID != *filter.NeighborhoodID {
				continue
			}
		}
		if filter.AgentID != nil {
			if prop.AgentID == nil || *prop.AgentID != *filter.AgentID {
				continue
			}
		}
		cp := *prop
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prop, ok := r.props[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := applyUpdate(prop, req); err != nil {
		return nil, err
	}
	cp := *prop
	return &cp, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.props[id]; !ok {
		return ErrNotFound
	}
	delete(r.props, id)
	return nil
}

func applyUpdate(prop *Property, req *UpdateRequest) error {
	if req.Operation != nil && !req.Operation.Valid() {
		return ErrInvalidOperation
	}
	if req.Status != nil && !req.Status.Valid() {
		return ErrInvalidStatus
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return ErrInvalidTitle
		}
		prop.Title = *req.Title
	}
	if req.Address != nil {
		prop.Address = *req.Address
	}
	if req.NeighborhoodID != nil {
		prop.NeighborhoodID = req.NeighborhoodID
	}
	if req.AgentID != nil {
		prop.AgentID = req.AgentID
	}
	if req.Operation != nil {
		prop.Operation = *req.Operation
	}
	if req.PriceAmount != nil {
		prop.PriceAmount = *req.PriceAmount
	}
	if req.PriceCurrency != nil {
		prop.PriceCurrency = *req.PriceCurrency
	}
	if req.Rooms != nil {
		prop.Rooms = *req.Rooms
	}
	if req.AreaM2 != nil {
		prop.AreaM2 = *req.AreaM2
	}
	if req.Description != nil {
		prop.Description = *req.Description
	}
	if req.Status != nil {
		prop.Status = *req.Status
	}
	prop.UpdatedAt = time.Now().UTC()
	return nil
}
