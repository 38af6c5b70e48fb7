package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/identity"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken by another record.
	ErrDuplicate = errors.New("duplicate record")
)

// TicketRepository is the exclusive owner of ticket records. Every read
// returns a copy; callers mutate their copy and hand it back via Update.
type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	FindByID(ctx context.Context, id int64) (*domain.Ticket, bool)
	FindByTicketNumber(ctx context.Context, number string) (*domain.Ticket, bool)
	FindAll(ctx context.Context) []domain.Ticket
	Delete(ctx context.Context, id int64) bool
	FindByStatus(ctx context.Context, status domain.TicketStatus) []domain.Ticket
	FindByPriority(ctx context.Context, priority domain.TicketPriority) []domain.Ticket
	FindByAssignedAgent(ctx context.Context, agentID int64) []domain.Ticket
	FindByCustomer(ctx context.Context, customerID int64) []domain.Ticket
	FindByCategory(ctx context.Context, categoryID int64) []domain.Ticket
	FindByCreatedBetween(ctx context.Context, start, end time.Time) []domain.Ticket
	NextCommentID() int64
}

type memoryTicketRepository struct {
	mu       sync.RWMutex
	tickets  map[int64]*domain.Ticket
	order    []int64
	byNumber map[string]int64
	ids      *identity.Sequence
	comments *identity.Sequence
}

// NewTicketRepository builds an empty in-memory ticket store with its own
// identifier sequences.
func NewTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets:  make(map[int64]*domain.Ticket),
		byNumber: make(map[string]int64),
		ids:      identity.NewSequence(),
		comments: identity.NewSequence(),
	}
}

func (r *memoryTicketRepository) Save(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNumber(ticket); err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		ticket.ID = r.ids.Next()
	} else {
		r.ids.Observe(ticket.ID)
	}
	r.put(ticket)
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket.ID == 0 {
		return nil, ErrNotFound
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return nil, ErrNotFound
	}
	if err := r.checkNumber(ticket); err != nil {
		return nil, err
	}
	r.put(ticket)
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) checkNumber(ticket *domain.Ticket) error {
	if ticket.TicketNumber == "" {
		return nil
	}
	if owner, ok := r.byNumber[ticket.TicketNumber]; ok && owner != ticket.ID {
		return ErrDuplicate
	}
	return nil
}

func (r *memoryTicketRepository) put(ticket *domain.Ticket) {
	if prev, ok := r.tickets[ticket.ID]; ok {
		if prev.TicketNumber != ticket.TicketNumber {
			delete(r.byNumber, prev.TicketNumber)
		}
	} else {
		r.order = append(r.order, ticket.ID)
	}
	if ticket.TicketNumber != "" {
		r.byNumber[ticket.TicketNumber] = ticket.ID
	}
	r.tickets[ticket.ID] = ticket.Clone()
}

func (r *memoryTicketRepository) FindByID(_ context.Context, id int64) (*domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, false
	}
	return ticket.Clone(), true
}

func (r *memoryTicketRepository) FindByTicketNumber(_ context.Context, number string) (*domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, false
	}
	return r.tickets[id].Clone(), true
}

func (r *memoryTicketRepository) FindAll(_ context.Context) []domain.Ticket {
	return r.filter(func(*domain.Ticket) bool { return true })
}

func (r *memoryTicketRepository) Delete(_ context.Context, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return false
	}
	delete(r.tickets, id)
	delete(r.byNumber, ticket.TicketNumber)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *memoryTicketRepository) FindByStatus(_ context.Context, status domain.TicketStatus) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool { return t.Status == status })
}

func (r *memoryTicketRepository) FindByPriority(_ context.Context, priority domain.TicketPriority) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool { return t.Priority == priority })
}

func (r *memoryTicketRepository) FindByAssignedAgent(_ context.Context, agentID int64) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool { return t.AssignedTo(agentID) })
}

func (r *memoryTicketRepository) FindByCustomer(_ context.Context, customerID int64) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool { return t.CustomerID == customerID })
}

func (r *memoryTicketRepository) FindByCategory(_ context.Context, categoryID int64) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool { return t.CategoryID == categoryID })
}

// FindByCreatedBetween matches tickets created within [start, end].
func (r *memoryTicketRepository) FindByCreatedBetween(_ context.Context, start, end time.Time) []domain.Ticket {
	return r.filter(func(t *domain.Ticket) bool {
		return !t.CreatedAt.Before(start) && !t.CreatedAt.After(end)
	})
}

func (r *memoryTicketRepository) NextCommentID() int64 {
	return r.comments.Next()
}

// filter scans the whole collection in insertion order.
func (r *memoryTicketRepository) filter(keep func(*domain.Ticket) bool) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		ticket := r.tickets[id]
		if keep(ticket) {
			result = append(result, *ticket.Clone())
		}
	}
	return result
}
