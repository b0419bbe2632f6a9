package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// NewMemoryStore returns a process-local store. Records are lost on restart.
func NewMemoryStore() Store {
	return Store{
		Users:   NewMemoryUserRepository(),
		Tickets: NewMemoryTicketRepository(),
	}
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

// NewMemoryUserRepository builds an in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byEmail: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	user.ID = NewID()
	r.byEmail[user.Email] = *user
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type memoryTicketRepository struct {
	mu      sync.RWMutex
	order   []string
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository builds an in-memory TicketRepository that lists in insertion order.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepository) Find(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.tickets[id])
	}
	return result, nil
}

func (r *memoryTicketRepository) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) Insert(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = NewID()
	r.tickets[ticket.ID] = *ticket
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *memoryTicketRepository) UpdateByID(_ context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	ticket.Apply(changes)
	r.tickets[id] = ticket
	return &ticket, nil
}

func (r *memoryTicketRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
