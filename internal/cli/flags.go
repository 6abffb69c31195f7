package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/spf13/pflag"
)

// enumValue is a pflag.Value restricted to one of the domain's closed sets.
type enumValue[T ~string] struct {
	target  *T
	parse   func(string) (T, error)
	allowed []T
	name    string
}

func newEnumValue[T ~string](target *T, name string, parse func(string) (T, error), allowed []T) *enumValue[T] {
	return &enumValue[T]{target: target, parse: parse, allowed: allowed, name: name}
}

func (v *enumValue[T]) String() string { return string(*v.target) }

func (v *enumValue[T]) Set(s string) error {
	parsed, err := v.parse(s)
	if err != nil {
		return fmt.Errorf("must be one of %s", v.choices())
	}
	*v.target = parsed
	return nil
}

func (v *enumValue[T]) Type() string { return v.name }

func (v *enumValue[T]) choices() string {
	names := make([]string, len(v.allowed))
	for i, a := range v.allowed {
		names[i] = string(a)
	}
	return strings.Join(names, "|")
}

func (v *enumValue[T]) usage(what string) string {
	return fmt.Sprintf("%s (%s)", what, v.choices())
}

var _ pflag.Value = (*enumValue[domain.Outcome])(nil)

func outcomeFlag(fs *pflag.FlagSet, target *domain.Outcome) {
	v := newEnumValue(target, "outcome", domain.ParseOutcome, domain.Outcomes)
	fs.Var(v, "outcome", v.usage("Contact result"))
}

func channelFlag(fs *pflag.FlagSet, target *domain.Channel) {
	v := newEnumValue(target, "channel", domain.ParseChannel, domain.Channels)
	fs.Var(v, "channel", v.usage("Contact channel"))
}

func progressStatusFlag(fs *pflag.FlagSet, target *domain.ProgressStatus) {
	v := newEnumValue(target, "status", domain.ParseProgressStatus, domain.ProgressStatuses)
	fs.Var(v, "status", v.usage("Module status"))
}

func phaseFlag(fs *pflag.FlagSet, target *domain.Phase) {
	v := newEnumValue(target, "phase", domain.ParsePhase,
		[]domain.Phase{domain.PhaseAcolhimento, domain.PhaseDiscipulado, domain.PhasePosDiscipulado})
	fs.Var(v, "phase", v.usage("Filter by phase"))
}

func caseStatusFlag(fs *pflag.FlagSet, target *domain.CaseStatus) {
	v := newEnumValue(target, "status", domain.ParseCaseStatus, domain.CaseStatuses)
	fs.Var(v, "status", v.usage("Filter by status"))
}

func criticalityFlag(fs *pflag.FlagSet, target *domain.Criticality) {
	v := newEnumValue(target, "criticality", domain.ParseCriticality, domain.Criticalities)
	fs.Var(v, "criticality", v.usage("Only cases at this tier"))
}

// queueView selects the layout of "queue".
type queueView string

const (
	viewPriority    queueView = "priority"
	viewAcolhimento queueView = "acolhimento"
	viewStatus      queueView = "status"
	viewOrigin      queueView = "origin"
	viewTurno       queueView = "turno"
	viewStats       queueView = "stats"
)

var queueViews = []queueView{viewPriority, viewAcolhimento, viewStatus, viewOrigin, viewTurno, viewStats}

func parseQueueView(s string) (queueView, error) {
	v := queueView(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range queueViews {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("view %q: %w", s, domain.ErrInvalidValue)
}
