package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"go.uber.org/zap"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// MultiUseCaseObserver fans an event out to every observer in order.
type MultiUseCaseObserver []UseCaseObserver

func (m MultiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range m {
		obs.ObserveUseCase(ctx, event)
	}
}

type logUseCaseObserver struct {
	logger *zap.Logger
}

// NewLogUseCaseObserver writes one "service_use_case" entry per event.
// Expected business rejections log at warn, store failures at error.
func NewLogUseCaseObserver(logger *zap.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	fields := make([]zap.Field, 0, 4+len(event.Fields))
	fields = append(fields,
		zap.String("use_case", event.Name),
		zap.Int64("duration_ms", event.Duration.Milliseconds()),
		zap.Bool("success", event.Success),
	)

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, event.Fields[k]))
	}

	switch {
	case event.Err == nil:
		o.logger.Info("service_use_case", fields...)
	case IsBusinessError(event.Err):
		o.logger.Warn("service_use_case", append(fields, zap.Error(event.Err))...)
	default:
		o.logger.Error("service_use_case", append(fields, zap.Error(event.Err))...)
	}
}

// IsBusinessError reports whether err is an expected rejection (bad input,
// missing row, forbidden transition) rather than a store failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrIncompleteModules) ||
		errors.Is(err, domain.ErrDuplicateEnrollment) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidValue)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live MultiUseCaseObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	default:
		return live
	}
}
