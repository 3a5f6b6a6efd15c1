package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the appointment persistence contract. Implementations may return
// ErrSlotTaken from Create/Update when a store-level exclusivity guard
// detects a concurrent overlapping booking for the same agent.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByAgentBetween(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]AgentVisit, error)
	Create(ctx context.Context, appt *Appointment) error
	Update(ctx context.Context, appt *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore keeps appointments in memory. Used in tests and when no
// database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	appts map[uuid.UUID]*Appointment
	dir   *StaticDirectory
}

// NewMemoryStore creates an in-memory store. The directory, when non-nil, is
// used to resolve the display names ListByAgentBetween reports.
func NewMemoryStore(dir *StaticDirectory) *MemoryStore {
	return &MemoryStore{
		appts: make(map[uuid.UUID]*Appointment),
		dir:   dir,
	}
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *appt
	return &copied, nil
}

func (s *MemoryStore) ListByAgentBetween(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]AgentVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visits []AgentVisit
	for _, appt := range s.appts {
		if appt.AgentID != agentID {
			continue
		}
		if appt.ScheduledAt.Before(from) || !appt.ScheduledAt.Before(to) {
			continue
		}
		visit := AgentVisit{Appointment: *appt}
		if s.dir != nil {
			if c, _ := s.dir.Client(ctx, appt.ClientID); c != nil {
				visit.ClientName = c.Name
			}
			if p, _ := s.dir.Property(ctx, appt.PropertyID); p != nil {
				visit.PropertyTitle = p.Title
			}
		}
		visits = append(visits, visit)
	}
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].ScheduledAt.Before(visits[j].ScheduledAt)
	})
	return visits, nil
}

func (s *MemoryStore) Create(ctx context.Context, appt *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *appt
	s.appts[appt.ID] = &copied
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, appt *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appts[appt.ID]; !ok {
		return ErrNotFound
	}
	copied := *appt
	s.appts[appt.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appts[id]; !ok {
		return ErrNotFound
	}
	delete(s.appts, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
