package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"go.uber.org/zap"
)

type confraService struct {
	events repository.EventRepo
	source EventSource
	uow    db.UnitOfWork
	settings
}

// NewConfraService wires the event repository and the (possibly cached)
// source used for Active lookups. A nil source reads the repository directly.
func NewConfraService(events repository.EventRepo, source EventSource, uow db.UnitOfWork, opts ...Option) ConfraService {
	if source == nil {
		source = events
	}
	return &confraService{events: events, source: source, uow: uow, settings: newSettings(opts)}
}

func (s *confraService) Create(ctx context.Context, req CreateConfraRequest) (e *domain.Confraternizacao, err error) {
	startedAt := time.Now()
	fields := map[string]any{"congregation": req.CongregationID, "active": req.Active}
	defer s.observe(ctx, "confra-create", startedAt, fields, &err)

	req.Title = strings.TrimSpace(req.Title)
	if err = validateRequest("create confraternizacao", req); err != nil {
		return nil, err
	}
	if req.EventDate.IsZero() {
		return nil, fmt.Errorf("create confraternizacao: EventDate is required: %w", domain.ErrInvalidValue)
	}

	now := s.clock()
	y, m, d := req.EventDate.Date()
	e = &domain.Confraternizacao{
		ID:             newID(),
		CongregationID: req.CongregationID,
		Title:          req.Title,
		EventDate:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	relinked := 0
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLEventRepo(tx).Create(ctx, e); err != nil {
			return err
		}
		if !req.Active {
			return nil
		}
		n, err := s.activate(ctx, tx, e, now)
		relinked = n
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["confra_id"] = e.ID
	fields["relinked"] = relinked
	fields["cache_invalidated"] = s.invalidate(ctx, req.CongregationID)
	return e, nil
}

func (s *confraService) List(ctx context.Context, congregationID string) ([]*domain.Confraternizacao, error) {
	return s.events.List(ctx, congregationID)
}

func (s *confraService) Active(ctx context.Context, congregationID string) (*domain.Confraternizacao, error) {
	return s.activeEvent(ctx, s.source, congregationID)
}

// SetActive makes id the congregation's only active event and relinks the
// open acolhimento cases to it.
func (s *confraService) SetActive(ctx context.Context, congregationID, id string) (e *domain.Confraternizacao, err error) {
	startedAt := time.Now()
	fields := map[string]any{"confra_id": id}
	defer s.observe(ctx, "confra-set-active", startedAt, fields, &err)

	now := s.clock()
	relinked := 0
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		loaded, err := repository.NewSQLEventRepo(tx).GetByID(ctx, congregationID, id)
		if err != nil {
			return err
		}
		n, err := s.activate(ctx, tx, loaded, now)
		if err != nil {
			return err
		}
		e, relinked = loaded, n
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["relinked"] = relinked
	fields["cache_invalidated"] = s.invalidate(ctx, congregationID)
	return e, nil
}

// activate deactivates every other event of the congregation, marks e active
// and points unconfirmed acolhimento cases at it. Relinking recomputes the
// derived fields but leaves UpdatedAt alone, since no contact happened.
func (s *confraService) activate(ctx context.Context, tx db.DBTX, e *domain.Confraternizacao, now time.Time) (int, error) {
	events := repository.NewSQLEventRepo(tx)
	cases := repository.NewSQLCaseRepo(tx)

	if err := events.DeactivateAll(ctx, e.CongregationID, now); err != nil {
		return 0, err
	}
	e.Active = true
	e.UpdatedAt = now
	if err := events.Update(ctx, e); err != nil {
		return 0, err
	}

	open, err := cases.List(ctx, e.CongregationID, repository.CaseFilter{Phase: domain.PhaseAcolhimento})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range open {
		if !c.InAcolhimentoQueue() {
			continue
		}
		c.ConfraternizacaoID = e.ID
		if err := s.refreshDerived(ctx, events, c); err != nil {
			return n, err
		}
		if err := cases.Update(ctx, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// invalidate drops the cached active event. It runs after commit, so a
// failure is logged and the stale entry lives until the cache TTL.
func (s *confraService) invalidate(ctx context.Context, congregationID string) bool {
	inv, ok := s.source.(EventInvalidator)
	if !ok {
		return false
	}
	if err := inv.Invalidate(ctx, congregationID); err != nil {
		s.log.Warn("active event cache not invalidated",
			zap.String("congregation", congregationID),
			zap.Error(err),
		)
		return false
	}
	return true
}
