package service

import (
	"context"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/triage"
)

type queueService struct {
	cases    repository.CaseRepo
	events   repository.EventRepo
	progress repository.ProgressRepo
	settings
}

// NewQueueService builds the read side. Views are computed from a fresh
// snapshot on every call and never written back.
func NewQueueService(cases repository.CaseRepo, events repository.EventRepo, progress repository.ProgressRepo, opts ...Option) QueueService {
	return &queueService{cases: cases, events: events, progress: progress, settings: newSettings(opts)}
}

func (s *queueService) Priority(ctx context.Context, q QueueQuery) (items []triage.QueueItem, err error) {
	startedAt := time.Now()
	fields := map[string]any{"view": "priority"}
	defer s.observe(ctx, "queue-view", startedAt, fields, &err)

	items, now, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	triage.CanonicalSort(items, now)
	fields["items"] = len(items)
	return items, nil
}

func (s *queueService) Acolhimento(ctx context.Context, congregationID string) ([]triage.QueueItem, error) {
	return s.Priority(ctx, QueueQuery{CongregationID: congregationID, AcolhimentoOnly: true})
}

func (s *queueService) ByStatus(ctx context.Context, q QueueQuery) (groups []triage.StatusGroup, err error) {
	startedAt := time.Now()
	defer s.observe(ctx, "queue-view", startedAt, map[string]any{"view": "status"}, &err)

	items, now, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return triage.GroupByStatus(items, now), nil
}

func (s *queueService) ByOrigin(ctx context.Context, q QueueQuery) (groups []triage.OriginGroup, err error) {
	startedAt := time.Now()
	defer s.observe(ctx, "queue-view", startedAt, map[string]any{"view": "origin"}, &err)

	items, now, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return triage.GroupByOrigin(items, now), nil
}

func (s *queueService) ByTurno(ctx context.Context, q QueueQuery) (groups []triage.CohortGroup, err error) {
	startedAt := time.Now()
	defer s.observe(ctx, "queue-view", startedAt, map[string]any{"view": "turno"}, &err)

	items, now, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return triage.GroupByTurno(items, now), nil
}

func (s *queueService) Stats(ctx context.Context, q QueueQuery) (stats *QueueStats, err error) {
	startedAt := time.Now()
	fields := map[string]any{"view": "stats"}
	defer s.observe(ctx, "queue-view", startedAt, fields, &err)

	items, _, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	stats = &QueueStats{
		Total:         len(items),
		ByCriticality: make(map[domain.Criticality]int, len(domain.Criticalities)),
		ByStatus:      make(map[domain.CaseStatus]int, len(domain.CaseStatuses)),
	}
	for _, it := range items {
		stats.ByCriticality[it.Case.Criticality]++
		stats.ByStatus[it.Case.Status]++
		if triage.NearConfra(it.Case.DaysToConfra) {
			stats.NearConfra++
		}
	}
	fields["items"] = stats.Total
	return stats, nil
}

// snapshot loads the cases with their members, events and progress rows and
// recomputes the derived fields against the current clock, so stored values
// from a previous day never leak into the ordering.
func (s *queueService) snapshot(ctx context.Context, q QueueQuery) ([]triage.QueueItem, time.Time, error) {
	now := s.clock()

	filter := repository.CaseFilter{AssignedTo: q.AssignedTo}
	if q.AcolhimentoOnly {
		filter.Phase = domain.PhaseAcolhimento
	}
	rows, err := s.cases.ListWithMembers(ctx, q.CongregationID, filter)
	if err != nil {
		return nil, now, err
	}

	events, err := s.events.List(ctx, q.CongregationID)
	if err != nil {
		return nil, now, err
	}
	eventByID := make(map[string]*domain.Confraternizacao, len(events))
	for _, e := range events {
		eventByID[e.ID] = e
	}

	progress, err := s.progress.ListByCongregation(ctx, q.CongregationID)
	if err != nil {
		return nil, now, err
	}
	progressByCase := make(map[string][]*domain.ModuleProgress)
	for _, p := range progress {
		progressByCase[p.CaseID] = append(progressByCase[p.CaseID], p)
	}

	items := make([]triage.QueueItem, 0, len(rows))
	for i := range rows {
		c := rows[i].Case
		c.ApplyDerived(triage.Recompute(&c, eventByID[c.ConfraternizacaoID], now, s.loc))

		enrolled := progressByCase[c.ID]
		var turnos []string
		for _, p := range enrolled {
			if p.Turno != "" {
				turnos = append(turnos, p.Turno)
			}
		}
		items = append(items, triage.QueueItem{
			Case:       &c,
			MemberName: rows[i].MemberName,
			Origem:     rows[i].MemberOrigem,
			Turnos:     turnos,
			Summary:    domain.Summarize(enrolled),
		})
	}
	if q.AcolhimentoOnly {
		items = triage.FilterAcolhimento(items)
	}
	if q.Criticality != "" {
		items = filterCriticality(items, q.Criticality)
	}
	return items, now, nil
}

// filterCriticality keeps the items whose recomputed tier is c.
func filterCriticality(items []triage.QueueItem, c domain.Criticality) []triage.QueueItem {
	out := items[:0]
	for _, it := range items {
		if it.Case.Criticality == c {
			out = append(out, it)
		}
	}
	return out
}
