package customer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byPhone map[string]row
	byToken map[string]string
}

// NewMemoryRepository builds an in-memory customer store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{byPhone: make(map[string]row), byToken: make(map[string]string)}
}

func (r *memoryRepository) GetOrCreate(_ context.Context, phone, username string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.byPhone[phone]; ok {
		return rec.toEntity(), nil
	}
	now := time.Now().UTC()
	rec := row{ID: uuid.New(), Phone: phone, Username: username, CreatedAt: now, UpdatedAt: now}
	r.byPhone[phone] = rec
	return rec.toEntity(), nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byPhone[phone]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return rec.toEntity(), nil
}

func (r *memoryRepository) FindByToken(_ context.Context, token string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	phone, ok := r.byToken[token]
	if !ok || token == "" {
		return Customer{}, ErrNotFound
	}
	return r.byPhone[phone].toEntity(), nil
}

func (r *memoryRepository) SetToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	phone, rec, ok := r.findByID(id)
	if !ok {
		return ErrNotFound
	}
	if rec.Token != nil {
		delete(r.byToken, *rec.Token)
	}
	rec.Token = &token
	rec.UpdatedAt = time.Now().UTC()
	r.byPhone[phone] = rec
	r.byToken[token] = phone
	return nil
}

func (r *memoryRepository) UpdateUsername(_ context.Context, id, username string) (Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	phone, rec, ok := r.findByID(id)
	if !ok {
		return Customer{}, ErrNotFound
	}
	rec.Username = username
	rec.UpdatedAt = time.Now().UTC()
	r.byPhone[phone] = rec
	return rec.toEntity(), nil
}

func (r *memoryRepository) findByID(id string) (string, row, bool) {
	for phone, rec := range r.byPhone {
		if rec.ID.String() == id {
			return phone, rec, true
		}
	}
	return "", row{}, false
}
