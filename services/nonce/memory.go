package noncesvc

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/hrms/core/attendance"
)

// MemoryStore remembers claimed nonces in process. It only protects a single API instance.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

var _ attendance.NonceStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expires: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Claim(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evict(now)
	if exp, ok := s.expires[nonce]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[nonce] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) evict(now time.Time) {
	for nonce, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, nonce)
		}
	}
}
