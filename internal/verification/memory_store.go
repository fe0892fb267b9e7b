package verification

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type pendingCode struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is a process-local Store for development without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]pendingCode
}

// NewMemoryStore builds an in-memory code store whose codes expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, pending: make(map[string]pendingCode)}
}

func (s *MemoryStore) Generate(_ context.Context, phone string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[phone] = pendingCode{code: code, expiresAt: s.now().Add(s.ttl)}
	return code, nil
}

func (s *MemoryStore) Validate(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[phone]
	if !ok || !s.now().Before(p.expiresAt) {
		delete(s.pending, phone)
		return ErrCodeNotFound
	}
	if subtle.ConstantTimeCompare([]byte(p.code), []byte(code)) != 1 {
		return ErrCodesNotEqual
	}
	delete(s.pending, phone)
	return nil
}
