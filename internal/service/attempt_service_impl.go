package service

import (
	"context"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/triage"
)

type attemptService struct {
	attempts repository.AttemptRepo
	uow      db.UnitOfWork
	settings
}

func NewAttemptService(attempts repository.AttemptRepo, uow db.UnitOfWork, opts ...Option) AttemptService {
	return &attemptService{attempts: attempts, uow: uow, settings: newSettings(opts)}
}

// RecordAttempt appends the attempt and folds its outcome into the case in a
// single transaction.
func (s *attemptService) RecordAttempt(ctx context.Context, req RecordAttemptRequest) (res *AttemptResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"case_id": req.CaseID, "outcome": string(req.Outcome)}
	defer s.observe(ctx, "attempt-record", startedAt, fields, &err)

	if err = validateRequest("record attempt", req); err != nil {
		return nil, err
	}
	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelOutro
	}

	now := s.clock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		cases := repository.NewSQLCaseRepo(tx)
		c, err := cases.GetByID(ctx, req.CongregationID, req.CaseID)
		if err != nil {
			return err
		}
		prev := c.Criticality

		if err := c.ApplyAttempt(req.Outcome, now); err != nil {
			return err
		}
		if err := s.refreshDerived(ctx, repository.NewSQLEventRepo(tx), c); err != nil {
			return err
		}

		a := &domain.ContactAttempt{
			ID:          newID(),
			CaseID:      c.ID,
			MemberID:    c.MemberID,
			Outcome:     req.Outcome,
			Channel:     channel,
			Notes:       req.Notes,
			AttemptedBy: req.AttemptedBy,
			CreatedAt:   now,
		}
		if err := repository.NewSQLAttemptRepo(tx).Create(ctx, a); err != nil {
			return err
		}
		if err := cases.Update(ctx, c); err != nil {
			return err
		}

		res = &AttemptResult{
			Case:      c,
			Attempt:   a,
			Previous:  prev,
			Escalated: triage.Escalated(prev, c.Criticality),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["negative_count"] = res.Case.NegativeContactCount
	fields["criticality"] = string(res.Case.Criticality)
	fields["escalated"] = res.Escalated
	return res, nil
}

func (s *attemptService) ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ContactAttempt, error) {
	return s.attempts.ListByCase(ctx, congregationID, caseID)
}
