package service

import (
	"context"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/triage"
)

// EventSource supplies the active-or-next-upcoming confraternização of a
// congregation. It returns an error wrapping domain.ErrNotFound when there
// is none.
type EventSource interface {
	Active(ctx context.Context, congregationID string, today time.Time) (*domain.Confraternizacao, error)
}

// EventInvalidator is implemented by caching event sources.
type EventInvalidator interface {
	Invalidate(ctx context.Context, congregationID string) error
}

type CreateMemberRequest struct {
	CongregationID string `validate:"required"`
	Name           string `validate:"required,max=200"`
	Phone          string `validate:"max=40"`
	Origem         string `validate:"max=120"`
}

type MemberService interface {
	Create(ctx context.Context, req CreateMemberRequest) (*domain.Member, error)
	Get(ctx context.Context, congregationID, id string) (*domain.Member, error)
	List(ctx context.Context, congregationID string) ([]*domain.Member, error)
}

type CreateCaseRequest struct {
	CongregationID string `validate:"required"`
	MemberID       string `validate:"required"`
	TurnoOrigem    string
	AssignedTo     string
	// ConfraternizacaoID links the case to an event. Empty links it to the
	// congregation's active event, if any.
	ConfraternizacaoID string
}

// CaseService is the case lifecycle state machine. Every transition is
// validated before anything is written and persists in one transaction.
type CaseService interface {
	Create(ctx context.Context, req CreateCaseRequest) (*domain.Case, error)
	Get(ctx context.Context, congregationID, id string) (*domain.Case, error)
	List(ctx context.Context, congregationID string, f repository.CaseFilter) ([]*domain.Case, error)
	Delete(ctx context.Context, congregationID, id string) error

	StartDiscipulado(ctx context.Context, congregationID, caseID, firstModuleID, actor string) (*domain.Case, error)
	Pause(ctx context.Context, congregationID, caseID string) (*domain.Case, error)
	Reactivate(ctx context.Context, congregationID, caseID string) (*domain.Case, error)
	Conclude(ctx context.Context, congregationID, caseID string) (*domain.Case, error)

	// ConfirmConfraternizacao confirms the case for eventID, or for the
	// active event when eventID is empty.
	ConfirmConfraternizacao(ctx context.Context, congregationID, caseID, eventID string) (*domain.Case, error)
	RevokeConfraternizacao(ctx context.Context, congregationID, caseID string) (*domain.Case, error)

	Assign(ctx context.Context, congregationID, caseID, assignee string) (*domain.Case, error)
	ResetContacts(ctx context.Context, congregationID, caseID string) (*domain.Case, error)
}

type RecordAttemptRequest struct {
	CongregationID string         `validate:"required"`
	CaseID         string         `validate:"required"`
	Outcome        domain.Outcome `validate:"required,enum"`
	Channel        domain.Channel `validate:"omitempty,enum"`
	Notes          string         `validate:"max=2000"`
	AttemptedBy    string
}

// AttemptResult is the outcome of recording one contact attempt.
type AttemptResult struct {
	Case     *domain.Case
	Attempt  *domain.ContactAttempt
	Previous domain.Criticality
	// Escalated is true when the attempt raised the criticality tier.
	Escalated bool
}

type AttemptService interface {
	RecordAttempt(ctx context.Context, req RecordAttemptRequest) (*AttemptResult, error)
	ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ContactAttempt, error)
}

type EnrollRequest struct {
	CongregationID string                `validate:"required"`
	CaseID         string                `validate:"required"`
	ModuleID       string                `validate:"required"`
	Status         domain.ProgressStatus `validate:"omitempty,enum"`
	Turno          string
	Actor          string
}

type SetModuleStatusRequest struct {
	CongregationID string                `validate:"required"`
	ProgressID     string                `validate:"required"`
	Status         domain.ProgressStatus `validate:"required,enum"`
	Actor          string
}

// EnrollmentResult carries the progress row and the case as persisted.
// Reopened reports that a concluded case went back into discipleship.
type EnrollmentResult struct {
	Progress *domain.ModuleProgress
	Case     *domain.Case
	Reopened bool
}

type EnrollmentService interface {
	Enroll(ctx context.Context, req EnrollRequest) (*EnrollmentResult, error)
	SetModuleStatus(ctx context.Context, req SetModuleStatusRequest) (*EnrollmentResult, error)
	ListByCase(ctx context.Context, congregationID, caseID string) ([]*domain.ModuleProgress, error)
	Summary(ctx context.Context, congregationID, caseID string) (domain.ProgressSummary, error)
}

type CreateModuleRequest struct {
	CongregationID string `validate:"required"`
	Title          string `validate:"required,max=200"`
	SortOrder      int
}

type ModuleService interface {
	Create(ctx context.Context, req CreateModuleRequest) (*domain.Module, error)
	List(ctx context.Context, congregationID string, activeOnly bool) ([]*domain.Module, error)
	SetActive(ctx context.Context, congregationID, id string, active bool) (*domain.Module, error)
}

type CreateConfraRequest struct {
	CongregationID string `validate:"required"`
	Title          string `validate:"required,max=200"`
	EventDate      time.Time
	Active         bool
}

// ConfraService manages confraternizações. At most one is active per
// congregation; activating one relinks the open acolhimento cases to it.
type ConfraService interface {
	Create(ctx context.Context, req CreateConfraRequest) (*domain.Confraternizacao, error)
	List(ctx context.Context, congregationID string) ([]*domain.Confraternizacao, error)
	// Active returns nil without error when no event is scheduled.
	Active(ctx context.Context, congregationID string) (*domain.Confraternizacao, error)
	SetActive(ctx context.Context, congregationID, id string) (*domain.Confraternizacao, error)
}

// QueueQuery selects the case snapshot a queue view is built from.
type QueueQuery struct {
	CongregationID string
	// AcolhimentoOnly keeps only cases still in outreach (not confirmed).
	AcolhimentoOnly bool
	AssignedTo      string
	// Criticality keeps only cases at this tier, as recomputed for the view.
	Criticality domain.Criticality
}

// QueueStats counts the snapshot per tier and status.
type QueueStats struct {
	Total         int
	ByCriticality map[domain.Criticality]int
	ByStatus      map[domain.CaseStatus]int
	NearConfra    int
}

type QueueService interface {
	Priority(ctx context.Context, q QueueQuery) ([]triage.QueueItem, error)
	Acolhimento(ctx context.Context, congregationID string) ([]triage.QueueItem, error)
	ByStatus(ctx context.Context, q QueueQuery) ([]triage.StatusGroup, error)
	ByOrigin(ctx context.Context, q QueueQuery) ([]triage.OriginGroup, error)
	ByTurno(ctx context.Context, q QueueQuery) ([]triage.CohortGroup, error)
	Stats(ctx context.Context, q QueueQuery) (*QueueStats, error)
}
