package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
)

type memberService struct {
	members repository.MemberRepo
	uow     db.UnitOfWork
	settings
}

func NewMemberService(members repository.MemberRepo, uow db.UnitOfWork, opts ...Option) MemberService {
	return &memberService{members: members, uow: uow, settings: newSettings(opts)}
}

func (s *memberService) Create(ctx context.Context, req CreateMemberRequest) (m *domain.Member, err error) {
	startedAt := time.Now()
	fields := map[string]any{"congregation": req.CongregationID}
	defer s.observe(ctx, "member-create", startedAt, fields, &err)

	req.Name = strings.TrimSpace(req.Name)
	if err = validateRequest("create member", req); err != nil {
		return nil, err
	}

	now := s.clock()
	m = &domain.Member{
		ID:             newID(),
		CongregationID: req.CongregationID,
		Name:           req.Name,
		Phone:          strings.TrimSpace(req.Phone),
		Origem:         strings.TrimSpace(req.Origem),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLMemberRepo(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	fields["member_id"] = m.ID
	fields["origin"] = string(domain.ClassifyOrigin(m.Origem))
	return m, nil
}

func (s *memberService) Get(ctx context.Context, congregationID, id string) (*domain.Member, error) {
	return s.members.GetByID(ctx, congregationID, id)
}

func (s *memberService) List(ctx context.Context, congregationID string) ([]*domain.Member, error) {
	return s.members.List(ctx, congregationID)
}
