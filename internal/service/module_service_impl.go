package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
)

type moduleService struct {
	modules repository.ModuleRepo
	uow     db.UnitOfWork
	settings
}

func NewModuleService(modules repository.ModuleRepo, uow db.UnitOfWork, opts ...Option) ModuleService {
	return &moduleService{modules: modules, uow: uow, settings: newSettings(opts)}
}

func (s *moduleService) Create(ctx context.Context, req CreateModuleRequest) (m *domain.Module, err error) {
	startedAt := time.Now()
	fields := map[string]any{"congregation": req.CongregationID}
	defer s.observe(ctx, "module-create", startedAt, fields, &err)

	req.Title = strings.TrimSpace(req.Title)
	if err = validateRequest("create module", req); err != nil {
		return nil, err
	}

	now := s.clock()
	m = &domain.Module{
		ID:             newID(),
		CongregationID: req.CongregationID,
		Title:          req.Title,
		SortOrder:      req.SortOrder,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLModuleRepo(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	fields["module_id"] = m.ID
	return m, nil
}

func (s *moduleService) List(ctx context.Context, congregationID string, activeOnly bool) ([]*domain.Module, error) {
	return s.modules.List(ctx, congregationID, activeOnly)
}

// SetActive toggles whether a module is offered for new enrollments.
// Existing progress rows are unaffected.
func (s *moduleService) SetActive(ctx context.Context, congregationID, id string, active bool) (m *domain.Module, err error) {
	startedAt := time.Now()
	defer s.observe(ctx, "module-set-active", startedAt, map[string]any{"module_id": id, "active": active}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		modules := repository.NewSQLModuleRepo(tx)
		loaded, err := modules.GetByID(ctx, congregationID, id)
		if err != nil {
			return err
		}
		if loaded.Active != active {
			loaded.Active = active
			loaded.UpdatedAt = s.clock()
			if err := modules.Update(ctx, loaded); err != nil {
				return err
			}
		}
		m = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
