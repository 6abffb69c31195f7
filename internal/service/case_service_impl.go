package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
)

type caseService struct {
	cases  repository.CaseRepo
	source EventSource
	uow    db.UnitOfWork
	settings
}

func NewCaseService(cases repository.CaseRepo, source EventSource, uow db.UnitOfWork, opts ...Option) CaseService {
	return &caseService{
		cases:    cases,
		source:   source,
		uow:      uow,
		settings: newSettings(opts),
	}
}

func (s *caseService) Create(ctx context.Context, req CreateCaseRequest) (c *domain.Case, err error) {
	startedAt := time.Now()
	fields := map[string]any{"congregation": req.CongregationID}
	defer s.observe(ctx, "case-create", startedAt, fields, &err)

	if err = validateRequest("create case", req); err != nil {
		return nil, err
	}

	explicitEvent := req.ConfraternizacaoID != ""
	eventID := req.ConfraternizacaoID
	if !explicitEvent {
		var active *domain.Confraternizacao
		active, err = s.activeEvent(ctx, s.source, req.CongregationID)
		if err != nil {
			return nil, fmt.Errorf("create case: %w", err)
		}
		if active != nil {
			eventID = active.ID
		}
	}

	c = domain.NewCase(newID(), req.CongregationID, req.MemberID, s.clock())
	c.TurnoOrigem = req.TurnoOrigem
	c.AssignedTo = req.AssignedTo
	c.ConfraternizacaoID = eventID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLMemberRepo(tx).GetByID(ctx, c.CongregationID, c.MemberID); err != nil {
			return err
		}
		events := repository.NewSQLEventRepo(tx)
		if explicitEvent {
			if _, err := events.GetByID(ctx, c.CongregationID, eventID); err != nil {
				return err
			}
		}
		if err := s.refreshDerived(ctx, events, c); err != nil {
			return err
		}
		return repository.NewSQLCaseRepo(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	fields["case_id"] = c.ID
	fields["criticality"] = string(c.Criticality)
	return c, nil
}

func (s *caseService) Get(ctx context.Context, congregationID, id string) (*domain.Case, error) {
	return s.cases.GetByID(ctx, congregationID, id)
}

func (s *caseService) List(ctx context.Context, congregationID string, f repository.CaseFilter) ([]*domain.Case, error) {
	return s.cases.List(ctx, congregationID, f)
}

func (s *caseService) Delete(ctx context.Context, congregationID, id string) (err error) {
	startedAt := time.Now()
	defer s.observe(ctx, "case-delete", startedAt, map[string]any{"case_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLCaseRepo(tx).Delete(ctx, congregationID, id)
	})
}

func (s *caseService) StartDiscipulado(ctx context.Context, congregationID, caseID, firstModuleID, actor string) (*domain.Case, error) {
	return s.mutate(ctx, "case-start-discipulado", congregationID, caseID,
		func(ctx context.Context, tx db.DBTX, c *domain.Case, now time.Time) error {
			if firstModuleID != "" {
				if _, err := repository.NewSQLModuleRepo(tx).GetByID(ctx, congregationID, firstModuleID); err != nil {
					return err
				}
			}
			if err := c.StartDiscipulado(firstModuleID, now); err != nil {
				return err
			}

			progress := repository.NewSQLProgressRepo(tx)
			_, err := progress.GetByCaseModule(ctx, congregationID, c.ID, firstModuleID)
			if err == nil {
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			row, err := domain.NewModuleProgress(newID(), c.ID, firstModuleID, domain.ProgressEmAndamento, c.TurnoOrigem, actor, now)
			if err != nil {
				return err
			}
			return progress.Create(ctx, row)
		})
}

func (s *caseService) Pause(ctx context.Context, congregationID, caseID string) (*domain.Case, error) {
	return s.mutate(ctx, "case-pause", congregationID, caseID,
		func(_ context.Context, _ db.DBTX, c *domain.Case, now time.Time) error {
			return c.Pause(now)
		})
}

func (s *caseService) Reactivate(ctx context.Context, congregationID, caseID string) (*domain.Case, error) {
	return s.mutate(ctx, "case-reactivate", congregationID, caseID,
		func(_ context.Context, _ db.DBTX, c *domain.Case, now time.Time) error {
			return c.Reactivate(now)
		})
}

func (s *caseService) Conclude(ctx context.Context, congregationID, caseID string) (*domain.Case, error) {
	return s.mutate(ctx, "case-conclude", congregationID, caseID,
		func(ctx context.Context, tx db.DBTX, c *domain.Case, now time.Time) error {
			rows, err := repository.NewSQLProgressRepo(tx).ListByCase(ctx, congregationID, c.ID)
			if err != nil {
				return err
			}
			return c.Conclude(domain.Summarize(rows), now)
		})
}

func (s *caseService) ConfirmConfraternizacao(ctx context.Context, congregationID, caseID, eventID string) (*domain.Case, error) {
	if eventID == "" {
		active, err := s.activeEvent(ctx, s.source, congregationID)
		if err != nil {
			return nil, fmt.Errorf("confirm confraternizacao: %w", err)
		}
		if active == nil {
			return nil, fmt.Errorf("confirm confraternizacao: no event scheduled: %w", domain.ErrNotFound)
		}
		eventID = active.ID
	}

	return s.mutate(ctx, "case-confirm-confra", congregationID, caseID,
		func(ctx context.Context, tx db.DBTX, c *domain.Case, now time.Time) error {
			if _, err := repository.NewSQLEventRepo(tx).GetByID(ctx, congregationID, eventID); err != nil {
				return err
			}
			return c.ConfirmConfraternizacao(eventID, now)
		})
}

func (s *caseService) RevokeConfraternizacao(ctx context.Context, congregationID, caseID string) (*domain.Case, error) {
	return s.mutate(ctx, "case-revoke-confra", congregationID, caseID,
		func(_ context.Context, _ db.DBTX, c *domain.Case, now time.Time) error {
			return c.RevokeConfraternizacao(now)
		})
}

func (s *caseService) Assign(ctx context.Context, congregationID, caseID, assignee string) (*domain.Case, error) {
	return s.mutate(ctx, "case-assign", congregationID, caseID,
		func(_ context.Context, _ db.DBTX, c *domain.Case, now time.Time) error {
			c.Assign(assignee, now)
			return nil
		})
}

func (s *caseService) ResetContacts(ctx context.Context, congregationID, caseID string) (*domain.Case, error) {
	return s.mutate(ctx, "case-reset-contacts", congregationID, caseID,
		func(_ context.Context, _ db.DBTX, c *domain.Case, now time.Time) error {
			c.ResetContacts(now)
			return nil
		})
}

type caseMutation func(ctx context.Context, tx db.DBTX, c *domain.Case, now time.Time) error

// mutate loads the case inside a transaction, applies fn, recomputes the
// derived fields and writes the case back. Nothing is written if fn fails.
func (s *caseService) mutate(ctx context.Context, name, congregationID, caseID string, fn caseMutation) (c *domain.Case, err error) {
	startedAt := time.Now()
	fields := map[string]any{"case_id": caseID}
	defer s.observe(ctx, name, startedAt, fields, &err)

	now := s.clock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		cases := repository.NewSQLCaseRepo(tx)
		loaded, err := cases.GetByID(ctx, congregationID, caseID)
		if err != nil {
			return err
		}
		fields["from_status"] = string(loaded.Status)
		fields["from_phase"] = string(loaded.Phase)

		if err := fn(ctx, tx, loaded, now); err != nil {
			return err
		}
		if err := s.refreshDerived(ctx, repository.NewSQLEventRepo(tx), loaded); err != nil {
			return err
		}
		if err := cases.Update(ctx, loaded); err != nil {
			return err
		}
		c = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["status"] = string(c.Status)
	fields["phase"] = string(c.Phase)
	fields["criticality"] = string(c.Criticality)
	return c, nil
}
