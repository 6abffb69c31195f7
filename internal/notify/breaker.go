package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes BreakerNotifier. Zero values take the defaults.
type BreakerSettings struct {
	// Failures in a row that open the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// BreakerNotifier guards a remote notifier with a circuit breaker. While the
// breaker is open, or when a delivery fails, the escalation goes to fallback
// instead, so recording an attempt never waits on a dead broker.
type BreakerNotifier struct {
	next     Notifier
	fallback Notifier
	cb       *gobreaker.CircuitBreaker
	log      *zap.Logger
}

func NewBreakerNotifier(next, fallback Notifier, settings BreakerSettings, log *zap.Logger) *BreakerNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 3
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	maxFailures := settings.MaxFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "escalation-notifier",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("notifier circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerNotifier{next: next, fallback: fallback, cb: cb, log: log}
}

func (b *BreakerNotifier) NotifyEscalation(ctx context.Context, e Escalation) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.NotifyEscalation(ctx, e)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.log.Debug("notifier breaker open, using fallback", zap.String("case_id", e.CaseID))
	} else {
		b.log.Warn("escalation delivery failed, using fallback", zap.String("case_id", e.CaseID), zap.Error(err))
	}
	if b.fallback == nil {
		return fmt.Errorf("notify escalation: %w", err)
	}
	return b.fallback.NotifyEscalation(ctx, e)
}

// State exposes the breaker state for status output.
func (b *BreakerNotifier) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerNotifier) Close() error {
	var errs []error
	if b.next != nil {
		errs = append(errs, b.next.Close())
	}
	if b.fallback != nil {
		errs = append(errs, b.fallback.Close())
	}
	return errors.Join(errs...)
}
