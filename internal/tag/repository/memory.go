package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/helperkit/tagstore/internal/tag"
)

var (
	ErrNotFound      = errors.New("tag not found")
	ErrAlreadyExists = errors.New("tag already exists")
)

// Repository defines persistence operations for tags.
type Repository interface {
	Create(ctx context.Context, t *tag.Tag) (string, error)
	GetByName(ctx context.Context, name string) (*tag.Tag, error)
	GetByID(ctx context.Context, id string) (*tag.Tag, error)
	Search(ctx context.Context, query string, limit int) ([]*tag.Tag, error)
	List(ctx context.Context) ([]*tag.Tag, error)
	Exists(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, id string, name, description *string) (*tag.Tag, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// MemoryRepo is a simple in-memory repository used for local development
// and unit tests. Insertion order is preserved for listing and search.
type MemoryRepo struct {
	mu    sync.RWMutex
	seq   int
	order []string
	store map[string]*tag.Tag
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*tag.Tag)}
}

func (m *MemoryRepo) Create(ctx context.Context, t *tag.Tag) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Name == t.Name {
			return "", ErrAlreadyExists
		}
	}
	if t.ID == "" {
		m.seq++
		t.ID = fmt.Sprintf("tag_%d", m.seq)
	}
	t.CreatedAt = time.Now().UTC()
	m.store[t.ID] = t
	m.order = append(m.order, t.ID)
	return t.ID, nil
}

func (m *MemoryRepo) GetByName(ctx context.Context, name string) (*tag.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (*tag.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.store[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Search(ctx context.Context, query string, limit int) ([]*tag.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	out := []*tag.Tag{}
	for _, id := range m.order {
		t, ok := m.store[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*tag.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*tag.Tag, 0, len(m.store))
	for _, id := range m.order {
		if t, ok := m.store[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemoryRepo) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, name, description *string) (*tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if name != nil && *name != t.Name {
		for _, other := range m.store {
			if other.ID != id && other.Name == *name {
				return nil, ErrAlreadyExists
			}
		}
		t.Name = *name
	}
	if description != nil {
		t.Description = *description
	}
	now := time.Now().UTC()
	t.LastEditedAt = &now
	return t, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.store {
		if t.Name == name {
			delete(m.store, id)
			for i, oid := range m.order {
				if oid == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
			return true, nil
		}
	}
	return false, nil
}
