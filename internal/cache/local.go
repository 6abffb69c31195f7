package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// LocalStore is an in-process Store. Expired entries are swept periodically
// and never returned.
type LocalStore struct {
	mu     sync.RWMutex
	data   map[string]entry
	log    *zap.Logger
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

// NewLocalStore starts a store whose sweeper runs every cleanupInterval
// (one minute when zero or negative). Close stops the sweeper.
func NewLocalStore(cleanupInterval time.Duration, log *zap.Logger) *LocalStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &LocalStore{
		data:   make(map[string]entry),
		log:    log,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *LocalStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || e.expired(s.now()) {
		return "", ErrMiss
	}
	return e.value, nil
}

func (s *LocalStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = e
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *LocalStore) Close() error {
	s.once.Do(func() { close(s.stopCh) })
	return nil
}

func (s *LocalStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *LocalStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for key, e := range s.data {
		if e.expired(now) {
			delete(s.data, key)
			expired++
		}
	}
	if expired > 0 {
		s.log.Debug("cache sweep", zap.Int("expired_entries", expired))
	}
	return expired
}
