package customer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps loyalty members in memory with the same upsert
// semantics as the Postgres repository.
type MemoryRepository struct {
	mu        sync.Mutex
	customers map[string]*Customer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{customers: make(map[string]*Customer)}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) AccruePoints(_ context.Context, email string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[email]
	if !ok {
		c = &Customer{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
		m.customers[email] = c
	}
	c.Points += points
	return nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[email]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryRepository) List(_ context.Context) ([]*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Customer, 0, len(m.customers))
	for _, c := range m.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}
