package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"go.uber.org/zap"
)

const keyPrefix = "discipulado:confra:active:"

// DefaultTTL bounds how long a cached lookup may outlive a write made by
// another process that did not invalidate.
const DefaultTTL = 10 * time.Minute

// Source is the uncached lookup, normally the event repository.
type Source interface {
	Active(ctx context.Context, congregationID string, today time.Time) (*domain.Confraternizacao, error)
}

// EventSource caches Source.Active per congregation. A cached answer is only
// valid for the calendar day it was computed on, because the
// next-upcoming fallback depends on today. "No event" is cached too.
type EventSource struct {
	next  Source
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewEventSource(next Source, store Store, ttl time.Duration, log *zap.Logger) *EventSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventSource{next: next, store: store, ttl: ttl, log: log}
}

type cachedActive struct {
	Day   string                   `json:"day"`
	Event *domain.Confraternizacao `json:"event,omitempty"`
}

func activeKey(congregationID string) string {
	return keyPrefix + congregationID
}

func (s *EventSource) Active(ctx context.Context, congregationID string, today time.Time) (*domain.Confraternizacao, error) {
	key := activeKey(congregationID)
	day := today.Format("2006-01-02")

	if hit, ok := s.lookup(ctx, key, day); ok {
		if hit.Event == nil {
			return nil, fmt.Errorf("active confraternizacao: %w", domain.ErrNotFound)
		}
		return hit.Event, nil
	}

	e, err := s.next.Active(ctx, congregationID, today)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	raw, mErr := json.Marshal(cachedActive{Day: day, Event: e})
	if mErr == nil {
		mErr = s.store.Set(ctx, key, string(raw), s.ttl)
	}
	if mErr != nil {
		s.log.Warn("caching active confraternizacao", zap.String("congregation", congregationID), zap.Error(mErr))
	}
	return e, err
}

// Invalidate drops the cached answer for a congregation. Every event write
// calls it.
func (s *EventSource) Invalidate(ctx context.Context, congregationID string) error {
	return s.store.Delete(ctx, activeKey(congregationID))
}

// lookup returns the cached answer for day. Store failures and undecodable
// entries count as misses.
func (s *EventSource) lookup(ctx context.Context, key, day string) (cachedActive, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.log.Warn("reading active confraternizacao cache", zap.String("key", key), zap.Error(err))
		}
		return cachedActive{}, false
	}
	var hit cachedActive
	if err := json.Unmarshal([]byte(raw), &hit); err != nil {
		s.log.Warn("decoding cached confraternizacao", zap.String("key", key), zap.Error(err))
		return cachedActive{}, false
	}
	return hit, hit.Day == day
}
