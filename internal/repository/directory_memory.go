package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/deskline/ticket-desk/internal/domain"
	"github.com/deskline/ticket-desk/internal/identity"
)

// memoryTable keeps records keyed by id in insertion order.
type memoryTable[T any] struct {
	mu    sync.RWMutex
	rows  map[int64]T
	order []int64
	ids   *identity.Sequence
}

func newMemoryTable[T any]() *memoryTable[T] {
	return &memoryTable[T]{rows: make(map[int64]T), ids: identity.NewSequence()}
}

func (t *memoryTable[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

func (t *memoryTable[T]) all(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if row := t.rows[id]; keep == nil || keep(row) {
			result = append(result, row)
		}
	}
	return result
}

func (t *memoryTable[T]) first(keep func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if row := t.rows[id]; keep(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *memoryTable[T]) insert(id int64, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *memoryTable[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, candidate := range t.order {
		if candidate == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

type memoryCustomerRepository struct {
	table *memoryTable[domain.Customer]
	now   func() time.Time
}

// NewMemoryCustomerRepository returns a process-local customer directory.
// Email addresses are unique ignoring case.
func NewMemoryCustomerRepository() CustomerRepository {
	return &memoryCustomerRepository{
		table: newMemoryTable[domain.Customer](),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryCustomerRepository) Create(_ context.Context, customer *domain.Customer) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	if r.emailTaken(customer.Email, 0) {
		return ErrDuplicate
	}
	customer.ID = r.table.ids.Next()
	now := r.now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.table.insert(customer.ID, *customer)
	return nil
}

func (r *memoryCustomerRepository) Update(_ context.Context, customer *domain.Customer) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	existing, ok := r.table.rows[customer.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(customer.Email, customer.ID) {
		return ErrDuplicate
	}
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = r.now()
	r.table.insert(customer.ID, *customer)
	return nil
}

// emailTaken must be called with the table lock held. Blank emails never
// collide.
func (r *memoryCustomerRepository) emailTaken(email string, self int64) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	for id, row := range r.table.rows {
		if id != self && strings.EqualFold(row.Email, email) {
			return true
		}
	}
	return false
}

func (r *memoryCustomerRepository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	row, ok := r.table.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *memoryCustomerRepository) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	row, ok := r.table.first(func(c domain.Customer) bool { return c.Email != "" && strings.EqualFold(c.Email, email) })
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *memoryCustomerRepository) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	row, ok := r.table.first(func(c domain.Customer) bool { return c.Phone != "" && c.Phone == phone })
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *memoryCustomerRepository) SearchByName(_ context.Context, name string) ([]domain.Customer, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	return r.table.all(func(c domain.Customer) bool {
		return strings.Contains(strings.ToLower(c.Name), needle)
	}), nil
}

func (r *memoryCustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	return r.table.all(nil), nil
}

func (r *memoryCustomerRepository) Delete(_ context.Context, id int64) (bool, error) {
	return r.table.remove(id), nil
}

type memoryAgentRepository struct {
	table *memoryTable[domain.Agent]
}

// NewMemoryAgentRepository returns a process-local agent directory.
func NewMemoryAgentRepository() AgentRepository {
	return &memoryAgentRepository{table: newMemoryTable[domain.Agent]()}
}

func (r *memoryAgentRepository) Create(_ context.Context, agent *domain.Agent) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	agent.ID = r.table.ids.Next()
	r.table.insert(agent.ID, *agent)
	return nil
}

func (r *memoryAgentRepository) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	row, ok := r.table.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *memoryAgentRepository) List(_ context.Context) ([]domain.Agent, error) {
	return r.table.all(nil), nil
}

type memoryCategoryRepository struct {
	table *memoryTable[domain.Category]
}

// NewMemoryCategoryRepository returns a process-local category list.
func NewMemoryCategoryRepository() CategoryRepository {
	return &memoryCategoryRepository{table: newMemoryTable[domain.Category]()}
}

func (r *memoryCategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	category.ID = r.table.ids.Next()
	r.table.insert(category.ID, *category)
	return nil
}

func (r *memoryCategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	row, ok := r.table.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (r *memoryCategoryRepository) List(_ context.Context) ([]domain.Category, error) {
	return r.table.all(nil), nil
}
