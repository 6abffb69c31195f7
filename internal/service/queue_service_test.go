package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/testutil"
	"github.com/alexanderramin/discipulado/internal/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueIDs(items []triage.QueueItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Case.ID
	}
	return ids
}

func TestAcolhimento_ExcludesConfirmedAndDiscipling(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	ev := env.seedEvent(t, 10, testutil.WithActive())

	open := env.seedCase(t, testutil.WithConfra(ev.ID))
	confirmed := env.seedCase(t, testutil.WithConfirmed(ev.ID))
	env.seedCase(t, testutil.WithPhase(domain.PhaseDiscipulado), testutil.WithCaseStatus(domain.StatusEmDiscipulado))

	items, err := env.queueService().Acolhimento(ctx, cong)
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, queueIDs(items))

	_, err = env.caseService().RevokeConfraternizacao(ctx, cong, confirmed.ID)
	require.NoError(t, err)
	items, err = env.queueService().Acolhimento(ctx, cong)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{open.ID, confirmed.ID}, queueIDs(items))
}

func TestPriority_OrdersByTierThenDeadline(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	near := env.seedEvent(t, 2, testutil.WithActive())
	far := env.seedEvent(t, 40)

	critical := env.seedCase(t, testutil.WithNegativeContacts(3), testutil.WithConfra(far.ID))
	altaNear := env.seedCase(t, testutil.WithConfra(near.ID))
	altaCount := env.seedCase(t, testutil.WithNegativeContacts(2), testutil.WithConfra(far.ID))
	quiet := env.seedCase(t)

	items, err := env.queueService().Priority(ctx, QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	assert.Equal(t, []string{critical.ID, altaNear.ID, altaCount.ID, quiet.ID}, queueIDs(items))
}

func TestPriority_RecomputesStaleTierWithoutWriting(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	ev := env.seedEvent(t, 1, testutil.WithActive())
	// stored as computed weeks ago
	stale := env.seedCase(t, testutil.WithConfra(ev.ID), testutil.WithDaysToConfra(20), testutil.WithCriticality(domain.CriticalityBaixa))

	items, err := env.queueService().Priority(ctx, QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.CriticalityAlta, items[0].Case.Criticality)
	require.NotNil(t, items[0].Case.DaysToConfra)
	assert.Equal(t, 1, *items[0].Case.DaysToConfra)

	stored := env.reload(t, stale.ID)
	assert.Equal(t, domain.CriticalityBaixa, stored.Criticality)
	require.NotNil(t, stored.DaysToConfra)
	assert.Equal(t, 20, *stored.DaysToConfra)
}

func TestPriority_FiltersByAssignee(t *testing.T) {
	env := setupEnv(t)
	mine := env.seedCase(t, testutil.WithAssignee("ana"))
	env.seedCase(t, testutil.WithAssignee("bia"))

	items, err := env.queueService().Priority(context.Background(), QueueQuery{CongregationID: cong, AssignedTo: "ana"})
	require.NoError(t, err)
	assert.Equal(t, []string{mine.ID}, queueIDs(items))
}

func TestByStatus_AllBucketsPresent(t *testing.T) {
	env := setupEnv(t)
	env.seedCase(t)
	env.seedCase(t, testutil.WithPhase(domain.PhaseDiscipulado), testutil.WithCaseStatus(domain.StatusPausado))

	groups, err := env.queueService().ByStatus(context.Background(), QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, domain.StatusPendenteMatricula, groups[0].Status)
	assert.Len(t, groups[0].Items, 1)
	assert.Empty(t, groups[1].Items)
	assert.Len(t, groups[2].Items, 1)
	assert.Empty(t, groups[3].Items)
}

func TestByOrigin_UsesMemberOrigem(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	manha := env.seedMember(t, "A", testutil.WithOrigem("Culto da MANHÃ"))
	evento := env.seedMember(t, "B", testutil.WithOrigem("Evento MJ"))
	for _, m := range []*domain.Member{manha, evento} {
		require.NoError(t, env.cases.Create(ctx, testutil.NewTestCase(cong, m.ID)))
	}

	groups, err := env.queueService().ByOrigin(ctx, QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, domain.OriginManha, groups[0].Origin)
	assert.Equal(t, domain.OriginEvento, groups[1].Origin)
	assert.Equal(t, 1, groups[0].Total)
	assert.Equal(t, "A", groups[0].Statuses[0].Items[0].MemberName)
}

func TestByTurno_FansOutAcrossCohorts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c := env.seedCase(t, testutil.WithPhase(domain.PhaseDiscipulado), testutil.WithCaseStatus(domain.StatusEmDiscipulado))
	m1 := env.seedModule(t, "M1", 1)
	m2 := env.seedModule(t, "M2", 2)
	require.NoError(t, env.progress.Create(ctx, testutil.NewTestProgress(c.ID, m1.ID, testutil.WithTurno("Manhã"))))
	require.NoError(t, env.progress.Create(ctx, testutil.NewTestProgress(c.ID, m2.ID, testutil.WithTurno("Noite"))))
	lone := env.seedCase(t)

	groups, err := env.queueService().ByTurno(ctx, QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "manha", groups[0].Turno)
	assert.Equal(t, "noite", groups[1].Turno)
	assert.Equal(t, triage.NoTurno, groups[2].Turno)
	assert.Equal(t, []string{c.ID}, queueIDs(groups[0].Items))
	assert.Equal(t, []string{c.ID}, queueIDs(groups[1].Items))
	assert.Equal(t, []string{lone.ID}, queueIDs(groups[2].Items))
	assert.Equal(t, 2, groups[0].Items[0].Summary.Total)
}

func TestStats(t *testing.T) {
	env := setupEnv(t)
	ev := env.seedEvent(t, 5, testutil.WithActive())
	env.seedCase(t, testutil.WithConfra(ev.ID))
	env.seedCase(t, testutil.WithNegativeContacts(3))
	env.seedCase(t)

	stats, err := env.queueService().Stats(context.Background(), QueueQuery{CongregationID: cong})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByCriticality[domain.CriticalityMedia])
	assert.Equal(t, 1, stats.ByCriticality[domain.CriticalityCritica])
	assert.Equal(t, 1, stats.ByCriticality[domain.CriticalityBaixa])
	assert.Equal(t, 3, stats.ByStatus[domain.StatusPendenteMatricula])
	assert.Equal(t, 1, stats.NearConfra)

	last := env.observer.last()
	assert.Equal(t, "queue-view", last.Name)
	assert.True(t, last.Success)
	assert.Equal(t, "stats", last.Fields["view"])
	assert.Equal(t, 3, last.Fields["items"])
}

func TestQueue_CriticalityFilterUsesRecomputedTier(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	ev := env.seedEvent(t, 2, testutil.WithActive())
	// Stored as BAIXA but two days from the event, so the view sees ALTA.
	stale := env.seedCase(t, testutil.WithConfra(ev.ID))
	env.seedCase(t, testutil.WithNegativeContacts(3))
	env.seedCase(t)

	items, err := env.queueService().Priority(ctx, QueueQuery{CongregationID: cong, Criticality: domain.CriticalityAlta})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, stale.ID, items[0].Case.ID)

	stats, err := env.queueService().Stats(ctx, QueueQuery{CongregationID: cong, Criticality: domain.CriticalityCritica})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByCriticality[domain.CriticalityCritica])
}

func TestQueue_IsolatedPerCongregation(t *testing.T) {
	env := setupEnv(t)
	env.seedCase(t)

	items, err := env.queueService().Priority(context.Background(), QueueQuery{CongregationID: "cong-2"})
	require.NoError(t, err)
	assert.Empty(t, items)
}
