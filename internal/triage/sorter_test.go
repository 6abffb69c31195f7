package triage

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sortNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func makeItem(id string, crit domain.Criticality, days *int, negatives int, updatedAt time.Time) QueueItem {
	c := domain.NewCase(id, "cong-1", "member-"+id, updatedAt)
	c.Criticality = crit
	c.DaysToConfra = days
	c.NegativeContactCount = negatives
	return QueueItem{Case: c, MemberName: "Member " + id}
}

func ids(items []QueueItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Case.ID
	}
	return out
}

func TestCanonicalSort_CriticalityFirst(t *testing.T) {
	items := []QueueItem{
		makeItem("a", domain.CriticalityBaixa, nil, 0, sortNow),
		makeItem("b", domain.CriticalityCritica, nil, 3, sortNow),
		makeItem("c", domain.CriticalityMedia, nil, 1, sortNow),
		makeItem("d", domain.CriticalityAlta, nil, 2, sortNow),
	}
	CanonicalSort(items, sortNow)
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(items))
}

func TestCanonicalSort_CriticaBeforeAltaSameDeadline(t *testing.T) {
	items := []QueueItem{
		makeItem("alta", domain.CriticalityAlta, intPtr(1), 5, sortNow.Add(-10*24*time.Hour)),
		makeItem("critica", domain.CriticalityCritica, intPtr(1), 0, sortNow),
	}
	CanonicalSort(items, sortNow)
	assert.Equal(t, "critica", items[0].Case.ID)
}

func TestCanonicalSort_DeadlineAscNilLast(t *testing.T) {
	items := []QueueItem{
		makeItem("none", domain.CriticalityMedia, nil, 0, sortNow),
		makeItem("late", domain.CriticalityMedia, intPtr(6), 0, sortNow),
		makeItem("soon", domain.CriticalityMedia, intPtr(5), 0, sortNow),
	}
	CanonicalSort(items, sortNow)
	assert.Equal(t, []string{"soon", "late", "none"}, ids(items))
}

func TestCanonicalSort_NegativesThenIdleDays(t *testing.T) {
	items := []QueueItem{
		makeItem("fresh", domain.CriticalityMedia, nil, 1, sortNow.Add(-1*time.Hour)),
		makeItem("idle", domain.CriticalityMedia, nil, 1, sortNow.Add(-72*time.Hour)),
		makeItem("more-negatives", domain.CriticalityMedia, nil, 2, sortNow),
	}
	CanonicalSort(items, sortNow)
	assert.Equal(t, []string{"more-negatives", "idle", "fresh"}, ids(items))
}

func TestCanonicalSort_UpdatedAtThenID(t *testing.T) {
	// Same idle-day bucket, so the raw timestamp decides.
	items := []QueueItem{
		makeItem("b", domain.CriticalityBaixa, nil, 0, sortNow.Add(-3*time.Hour)),
		makeItem("older", domain.CriticalityBaixa, nil, 0, sortNow.Add(-5*time.Hour)),
		makeItem("a", domain.CriticalityBaixa, nil, 0, sortNow.Add(-3*time.Hour)),
	}
	CanonicalSort(items, sortNow)
	assert.Equal(t, []string{"a", "b", "older"}, ids(items))
}

func TestCanonicalSort_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := make([]QueueItem, 60)
	for i := range base {
		var days *int
		if rng.Intn(3) > 0 {
			days = intPtr(rng.Intn(20) - 5)
		}
		negatives := rng.Intn(4)
		crit := Score(negatives, days)
		updated := sortNow.Add(-time.Duration(rng.Intn(200)) * time.Hour)
		base[i] = makeItem(string(rune('A'+i%26))+string(rune('a'+i/26)), crit, days, negatives, updated)
	}

	first := append([]QueueItem(nil), base...)
	CanonicalSort(first, sortNow)

	for trial := 0; trial < 20; trial++ {
		shuffled := append([]QueueItem(nil), base...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		CanonicalSort(shuffled, sortNow)
		require.Equal(t, ids(first), ids(shuffled), "trial %d", trial)
	}

	for i := 1; i < len(first); i++ {
		assert.False(t, Less(first[i].Case, first[i-1].Case, sortNow), "position %d out of order", i)
	}
}
