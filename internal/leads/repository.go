package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
}

// InMemoryRepository keeps leads in memory. Used by tests and by dev runs
// without a database. It enforces the same email/phone uniqueness the
// Postgres schema does.
type InMemoryRepository struct {
	mu      sync.RWMutex
	leads   map[string]*Lead
	byEmail map[string]string
	byPhone map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:   make(map[string]*Lead),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

// Create stores a new lead, rejecting duplicate email or phone.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[lead.Email]; ok {
		return nil, &DuplicateError{Field: "email"}
	}
	if _, ok := r.byPhone[lead.Phone]; ok {
		return nil, &DuplicateError{Field: "phone"}
	}

	stored := *lead
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	r.leads[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	r.byPhone[stored.Phone] = stored.ID

	return &stored, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}
