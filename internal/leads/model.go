package leads

import (
	"time"

	"github.com/google/uuid"
)

// Lead represents an inquiry submitted through the public contact form,
// optionally tied to a published listing.
type Lead struct {
	ID         string     `json:"id"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	Source     string     `json:"source"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	if r.Source == "" {
		r.Source = "web"
	}
	return nil
}

// ListLeadsFilter narrows lead listings.
type ListLeadsFilter struct {
	PropertyID *uuid.UUID
	Limit      int
	Offset     int
}
