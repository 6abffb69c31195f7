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

type enrollmentService struct {
	progress repository.ProgressRepo
	uow      db.UnitOfWork
	settings
}

func NewEnrollmentService(progress repository.ProgressRepo, uow db.UnitOfWork, opts ...Option) EnrollmentService {
	return &enrollmentService{progress: progress, uow: uow, settings: newSettings(opts)}
}

func (s *enrollmentService) Enroll(ctx context.Context, req EnrollRequest) (res *EnrollmentResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"case_id": req.CaseID, "module_id": req.ModuleID}
	defer s.observe(ctx, "enrollment-enroll", startedAt, fields, &err)

	if err = validateRequest("enroll", req); err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		cases := repository.NewSQLCaseRepo(tx)
		progress := repository.NewSQLProgressRepo(tx)

		c, err := cases.GetByID(ctx, req.CongregationID, req.CaseID)
		if err != nil {
			return err
		}
		if _, err := repository.NewSQLModuleRepo(tx).GetByID(ctx, req.CongregationID, req.ModuleID); err != nil {
			return err
		}

		_, err = progress.GetByCaseModule(ctx, req.CongregationID, req.CaseID, req.ModuleID)
		switch {
		case err == nil:
			return fmt.Errorf("enroll case %s in module %s: %w", req.CaseID, req.ModuleID, domain.ErrDuplicateEnrollment)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		row, err := domain.NewModuleProgress(newID(), c.ID, req.ModuleID, req.Status, req.Turno, req.Actor, now)
		if err != nil {
			return err
		}
		if err := progress.Create(ctx, row); err != nil {
			return err
		}

		res = &EnrollmentResult{Progress: row, Case: c}
		if row.Status != domain.ProgressConcluido && c.ReopenIfConcluded(now) {
			res.Reopened = true
			if err := s.refreshDerived(ctx, repository.NewSQLEventRepo(tx), c); err != nil {
				return err
			}
			return cases.Update(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["progress_id"] = res.Progress.ID
	fields["reopened"] = res.Reopened
	return res, nil
}

// SetModuleStatus edits one progress row. When the edit leaves a module
// unfinished on a concluded case, the case goes back to em_discipulado.
func (s *enrollmentService) SetModuleStatus(ctx context.Context, req SetModuleStatusRequest) (res *EnrollmentResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"progress_id": req.ProgressID, "status": string(req.Status)}
	defer s.observe(ctx, "enrollment-set-status", startedAt, fields, &err)

	if err = validateRequest("set module status", req); err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		progress := repository.NewSQLProgressRepo(tx)
		cases := repository.NewSQLCaseRepo(tx)

		row, err := progress.GetByID(ctx, req.CongregationID, req.ProgressID)
		if err != nil {
			return err
		}
		c, err := cases.GetByID(ctx, req.CongregationID, row.CaseID)
		if err != nil {
			return err
		}
		if err := row.SetStatus(req.Status, req.Actor, now); err != nil {
			return err
		}
		if err := progress.Update(ctx, row); err != nil {
			return err
		}

		res = &EnrollmentResult{Progress: row, Case: c}
		if row.Status != domain.ProgressConcluido && c.ReopenIfConcluded(now) {
			res.Reopened = true
			if err := s.refreshDerived(ctx, repository.NewSQLEventRepo(tx), c); err != nil {
				return err
			}
			return cases.Update(ctx, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["case_id"] = res.Case.ID
	fields["reopened"] = res.Reopened
	return res, nil
}

func (s *enrollmentService) ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ModuleProgress, error) {
	return s.progress.ListByCase(ctx, congregationID, caseID)
}

func (s *enrollmentService) Summary(ctx context.Context, congregationID, caseID string) (domain.ProgressSummary, error) {
	rows, err := s.progress.ListByCase(ctx, congregationID, caseID)
	if err != nil {
		return domain.ProgressSummary{}, err
	}
	return domain.Summarize(rows), nil
}
