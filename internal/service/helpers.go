package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/triage"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.New().String()
}

// linkedEvent loads the confraternização a case points at, or nil when the
// case has no link or the event is gone.
func linkedEvent(ctx context.Context, events repository.EventRepo, c *domain.Case) (*domain.Confraternizacao, error) {
	if c.ConfraternizacaoID == "" {
		return nil, nil
	}
	e, err := events.GetByID(ctx, c.CongregationID, c.ConfraternizacaoID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// refreshDerived recomputes days_to_confra and criticality from the case's
// current counters and linked event. Every writer calls it before Update.
func (s settings) refreshDerived(ctx context.Context, events repository.EventRepo, c *domain.Case) error {
	event, err := linkedEvent(ctx, events, c)
	if err != nil {
		return err
	}
	c.ApplyDerived(triage.Recompute(c, event, s.now(), s.loc))
	return nil
}

// activeEvent asks the event source, mapping "none scheduled" to nil.
func (s settings) activeEvent(ctx context.Context, source EventSource, congregationID string) (*domain.Confraternizacao, error) {
	if source == nil {
		return nil, nil
	}
	e, err := source.Active(ctx, congregationID, s.today())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return e, err
}
