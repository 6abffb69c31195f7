package domain

import (
	"fmt"
	"strings"
)

// Phase is the coarse lifecycle stage of a case.
type Phase string

const (
	PhaseAcolhimento    Phase = "ACOLHIMENTO"
	PhaseDiscipulado    Phase = "DISCIPULADO"
	PhasePosDiscipulado Phase = "POS_DISCIPULADO"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseAcolhimento, PhaseDiscipulado, PhasePosDiscipulado:
		return true
	}
	return false
}

// CaseStatus is shared across phases; its meaning depends on the phase.
type CaseStatus string

const (
	StatusPendenteMatricula CaseStatus = "pendente_matricula"
	StatusEmDiscipulado     CaseStatus = "em_discipulado"
	StatusPausado           CaseStatus = "pausado"
	StatusConcluido         CaseStatus = "concluido"
)

// CaseStatuses is the fixed kanban display order.
var CaseStatuses = []CaseStatus{
	StatusPendenteMatricula,
	StatusEmDiscipulado,
	StatusPausado,
	StatusConcluido,
}

func (s CaseStatus) Valid() bool {
	switch s {
	case StatusPendenteMatricula, StatusEmDiscipulado, StatusPausado, StatusConcluido:
		return true
	}
	return false
}

// Criticality is derived from contact history and deadline proximity.
// It is never set directly by a user.
type Criticality string

const (
	CriticalityBaixa   Criticality = "BAIXA"
	CriticalityMedia   Criticality = "MEDIA"
	CriticalityAlta    Criticality = "ALTA"
	CriticalityCritica Criticality = "CRITICA"
)

// Criticalities lists tiers from least to most urgent.
var Criticalities = []Criticality{
	CriticalityBaixa,
	CriticalityMedia,
	CriticalityAlta,
	CriticalityCritica,
}

func (c Criticality) Valid() bool {
	switch c {
	case CriticalityBaixa, CriticalityMedia, CriticalityAlta, CriticalityCritica:
		return true
	}
	return false
}

// Outcome is the result of a single contact attempt.
type Outcome string

const (
	OutcomeNoAnswer       Outcome = "no_answer"
	OutcomeWrongNumber    Outcome = "wrong_number"
	OutcomeRefused        Outcome = "refused"
	OutcomeSemResposta    Outcome = "sem_resposta"
	OutcomeContacted      Outcome = "contacted"
	OutcomeScheduledVisit Outcome = "scheduled_visit"
)

// Outcomes lists every accepted outcome.
var Outcomes = []Outcome{
	OutcomeNoAnswer,
	OutcomeWrongNumber,
	OutcomeRefused,
	OutcomeSemResposta,
	OutcomeContacted,
	OutcomeScheduledVisit,
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeNoAnswer, OutcomeWrongNumber, OutcomeRefused, OutcomeSemResposta,
		OutcomeContacted, OutcomeScheduledVisit:
		return true
	}
	return false
}

// IsNegative reports whether the outcome counts against the case.
func (o Outcome) IsNegative() bool {
	switch o {
	case OutcomeNoAnswer, OutcomeWrongNumber, OutcomeRefused, OutcomeSemResposta:
		return true
	}
	return false
}

// Channel is how a contact attempt was made.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelLigacao  Channel = "ligacao"
	ChannelVisita   Channel = "visita"
	ChannelOutro    Channel = "outro"
)

var Channels = []Channel{ChannelWhatsApp, ChannelLigacao, ChannelVisita, ChannelOutro}

func (c Channel) Valid() bool {
	switch c {
	case ChannelWhatsApp, ChannelLigacao, ChannelVisita, ChannelOutro:
		return true
	}
	return false
}

// ProgressStatus is the state of one module enrollment.
type ProgressStatus string

const (
	ProgressNaoIniciado ProgressStatus = "nao_iniciado"
	ProgressEmAndamento ProgressStatus = "em_andamento"
	ProgressConcluido   ProgressStatus = "concluido"
)

var ProgressStatuses = []ProgressStatus{ProgressNaoIniciado, ProgressEmAndamento, ProgressConcluido}

func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNaoIniciado, ProgressEmAndamento, ProgressConcluido:
		return true
	}
	return false
}

// Origin is the normalized outreach origin derived from a member's free-text origem.
type Origin string

const (
	OriginManha     Origin = "MANHA"
	OriginNoite     Origin = "NOITE"
	OriginEvento    Origin = "EVENTO"
	OriginSemOrigem Origin = "SEM_ORIGEM"
)

// Origins is the fixed display order for origin sections.
var Origins = []Origin{OriginManha, OriginNoite, OriginEvento, OriginSemOrigem}

// Enum is implemented by every closed string type in this package.
type Enum interface {
	Valid() bool
}

func ParsePhase(s string) (Phase, error) {
	return parseEnum[Phase]("phase", strings.ToUpper(strings.TrimSpace(s)))
}

func ParseCaseStatus(s string) (CaseStatus, error) {
	return parseEnum[CaseStatus]("status", strings.ToLower(strings.TrimSpace(s)))
}

func ParseOutcome(s string) (Outcome, error) {
	return parseEnum[Outcome]("outcome", strings.ToLower(strings.TrimSpace(s)))
}

func ParseChannel(s string) (Channel, error) {
	return parseEnum[Channel]("channel", strings.ToLower(strings.TrimSpace(s)))
}

func ParseProgressStatus(s string) (ProgressStatus, error) {
	return parseEnum[ProgressStatus]("progress status", strings.ToLower(strings.TrimSpace(s)))
}

func ParseCriticality(s string) (Criticality, error) {
	return parseEnum[Criticality]("criticality", strings.ToUpper(strings.TrimSpace(s)))
}

func parseEnum[T interface {
	~string
	Enum
}](kind, s string) (T, error) {
	v := T(s)
	if !v.Valid() {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", kind, s, ErrInvalidValue)
	}
	return v, nil
}
