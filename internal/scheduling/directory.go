package scheduling

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// PropertyRef is the slice of a property the scheduler needs.
type PropertyRef struct {
	ID      uuid.UUID
	Title   string
	Address string
}

// ClientRef is the slice of a client the scheduler needs.
type ClientRef struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AgentRef is the slice of an agent the scheduler needs.
type AgentRef struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Directory resolves the entities an appointment references. Lookups return
// (nil, nil) when the id does not exist; errors are infrastructure faults.
type Directory interface {
	Property(ctx context.Context, id uuid.UUID) (*PropertyRef, error)
	Client(ctx context.Context, id uuid.UUID) (*ClientRef, error)
	Agent(ctx context.Context, id uuid.UUID) (*AgentRef, error)
}

// StaticDirectory is an in-memory Directory for tests and development.
type StaticDirectory struct {
	mu         sync.RWMutex
	properties map[uuid.UUID]PropertyRef
	clients    map[uuid.UUID]ClientRef
	agents     map[uuid.UUID]AgentRef
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		properties: make(map[uuid.UUID]PropertyRef),
		clients:    make(map[uuid.UUID]ClientRef),
		agents:     make(map[uuid.UUID]AgentRef),
	}
}

func (d *StaticDirectory) AddProperty(ref PropertyRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.properties[ref.ID] = ref
}

func (d *StaticDirectory) AddClient(ref ClientRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[ref.ID] = ref
}

func (d *StaticDirectory) AddAgent(ref AgentRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[ref.ID] = ref
}

func (d *StaticDirectory) Property(ctx context.Context, id uuid.UUID) (*PropertyRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ref, ok := d.properties[id]; ok {
		return &ref, nil
	}
	return nil, nil
}

func (d *StaticDirectory) Client(ctx context.Context, id uuid.UUID) (*ClientRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ref, ok := d.clients[id]; ok {
		return &ref, nil
	}
	return nil, nil
}

func (d *StaticDirectory) Agent(ctx context.Context, id uuid.UUID) (*AgentRef, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ref, ok := d.agents[id]; ok {
		return &ref, nil
	}
	return nil, nil
}

var _ Directory = (*StaticDirectory)(nil)
