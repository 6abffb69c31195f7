package triage

import (
	"sort"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// NoTurno labels cases without any cohort tag.
const NoTurno = "sem_turno"

type StatusGroup struct {
	Status domain.CaseStatus
	Items  []QueueItem
}

type OriginGroup struct {
	Origin   domain.Origin
	Total    int
	Statuses []StatusGroup
}

type CohortGroup struct {
	Turno string
	Items []QueueItem
}

// FilterAcolhimento keeps the cases that still need outreach. Confirmed
// cases are dropped whatever their status or criticality.
func FilterAcolhimento(items []QueueItem) []QueueItem {
	out := make([]QueueItem, 0, len(items))
	for _, it := range items {
		if it.Case.InAcolhimentoQueue() {
			out = append(out, it)
		}
	}
	return out
}

// GroupByStatus partitions items into every status bucket, in display
// order. Empty buckets are kept so kanban columns stay fixed.
func GroupByStatus(items []QueueItem, now time.Time) []StatusGroup {
	groups := statusBuckets(items, now)
	out := make([]StatusGroup, 0, len(domain.CaseStatuses))
	for _, st := range domain.CaseStatuses {
		out = append(out, StatusGroup{Status: st, Items: groups[st]})
	}
	return out
}

// GroupByOrigin sections items by the member's classified origem, then by
// status within each origin. Origins and status subgroups with no cases
// are omitted.
func GroupByOrigin(items []QueueItem, now time.Time) []OriginGroup {
	byOrigin := make(map[domain.Origin][]QueueItem)
	for _, it := range items {
		o := domain.ClassifyOrigin(it.Origem)
		byOrigin[o] = append(byOrigin[o], it)
	}

	var out []OriginGroup
	for _, o := range domain.Origins {
		section := byOrigin[o]
		if len(section) == 0 {
			continue
		}
		buckets := statusBuckets(section, now)
		g := OriginGroup{Origin: o, Total: len(section)}
		for _, st := range domain.CaseStatuses {
			if len(buckets[st]) == 0 {
				continue
			}
			g.Statuses = append(g.Statuses, StatusGroup{Status: st, Items: buckets[st]})
		}
		out = append(out, g)
	}
	return out
}

// GroupByTurno sections items by cohort. A case enrolled in several cohorts
// is listed once in each of them.
func GroupByTurno(items []QueueItem, now time.Time) []CohortGroup {
	byTurno := make(map[string][]QueueItem)
	for _, it := range items {
		for _, turno := range cohortsOf(it) {
			byTurno[turno] = append(byTurno[turno], it)
		}
	}

	keys := make([]string, 0, len(byTurno))
	for k := range byTurno {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == NoTurno) != (keys[j] == NoTurno) {
			return keys[j] == NoTurno
		}
		return keys[i] < keys[j]
	})

	out := make([]CohortGroup, 0, len(keys))
	for _, k := range keys {
		section := byTurno[k]
		CanonicalSort(section, now)
		out = append(out, CohortGroup{Turno: k, Items: section})
	}
	return out
}

func cohortsOf(it QueueItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range it.Turnos {
		t = domain.FoldText(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		if t := domain.FoldText(it.Case.TurnoOrigem); t != "" {
			return []string{t}
		}
		return []string{NoTurno}
	}
	return out
}

func statusBuckets(items []QueueItem, now time.Time) map[domain.CaseStatus][]QueueItem {
	buckets := make(map[domain.CaseStatus][]QueueItem)
	for _, it := range items {
		buckets[it.Case.Status] = append(buckets[it.Case.Status], it)
	}
	for _, b := range buckets {
		CanonicalSort(b, now)
	}
	return buckets
}
