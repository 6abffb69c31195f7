package triage

import (
	"sort"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
)

// QueueItem is a case plus the read-side context the outreach views need.
type QueueItem struct {
	Case       *domain.Case
	MemberName string
	Origem     string
	// Turnos are the cohort tags of the case's enrollment rows.
	Turnos  []string
	Summary domain.ProgressSummary
}

// Less is the canonical outreach ordering, highest priority first:
// 1. Criticality: CRITICA > ALTA > MEDIA > BAIXA
// 2. Days to confra: soonest first (no deadline last)
// 3. Negative contacts: more first
// 4. Days without contact: more first
// 5. UpdatedAt: most recent first
// 6. Case ID: lexical ascending
func Less(a, b *domain.Case, now time.Time) bool {
	// 1. Criticality rank
	rankA, rankB := Rank(a.Criticality), Rank(b.Criticality)
	if rankA != rankB {
		return rankA > rankB
	}

	// 2. Days to confra (nil last)
	daysA, daysB := a.DaysToConfra, b.DaysToConfra
	if (daysA == nil) != (daysB == nil) {
		return daysA != nil
	}
	if daysA != nil && *daysA != *daysB {
		return *daysA < *daysB
	}

	// 3. Negative contacts
	if a.NegativeContactCount != b.NegativeContactCount {
		return a.NegativeContactCount > b.NegativeContactCount
	}

	// 4. Days without contact
	idleA, idleB := a.DaysWithoutContact(now), b.DaysWithoutContact(now)
	if idleA != idleB {
		return idleA > idleB
	}

	// 5. Most recently touched
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}

	// 6. ID
	return a.ID < b.ID
}

// CanonicalSort orders items in place by Less.
func CanonicalSort(items []QueueItem, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i].Case, items[j].Case, now)
	})
}
