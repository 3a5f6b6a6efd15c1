package properties

import (
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of a listing.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Operation is the commercial operation offered for a property.
type Operation string

const (
	OperationSale Operation = "sale"
	OperationRent Operation = "rent"
)

func (o Operation) Valid() bool {
	return o == OperationSale || o == OperationRent
}

// Property represents a listing managed by the agency.
type Property struct {
	ID             uuid.UUID  `json:"id"`
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
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListFilter narrows property listings.
type ListFilter struct {
	Status         Status
	NeighborhoodID *uuid.UUID
	AgentID        *uuid.UUID
	Operation      Operation
	Limit          int
	Offset         int
}
