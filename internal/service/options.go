package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Option configures a service.
type Option func(*settings)

type settings struct {
	now       func() time.Time
	loc       *time.Location
	observers []UseCaseObserver
	observer  UseCaseObserver
	log       *zap.Logger
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithLocation sets the congregation's time zone. Calendar-day arithmetic
// (days to the confraternização) happens in this zone.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithObserver adds a use-case observer. May be repeated.
func WithObserver(obs UseCaseObserver) Option {
	return func(s *settings) {
		s.observers = append(s.observers, obs)
	}
}

// WithLogger sets the logger for side effects that do not fail a use case,
// such as a cache that could not be invalidated.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		now: time.Now,
		loc: time.UTC,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.observer = useCaseObserverOrNoop(s.observers)
	return s
}

func (s settings) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// today is the current calendar date in the congregation's zone.
func (s settings) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// observe reports one use case. Call it deferred with a pointer to the named
// error result.
func (s settings) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   e == nil,
		Err:       e,
		Fields:    fields,
	})
}
