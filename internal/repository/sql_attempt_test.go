package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptRepo_ListByCaseNewestFirst(t *testing.T) {
	database, caseRepo, member := caseTestSetup(t)
	ctx := context.Background()
	repo := NewSQLAttemptRepo(database)

	c := testutil.NewTestCase(cong, member.ID)
	require.NoError(t, caseRepo.Create(ctx, c))

	base := c.CreatedAt
	outcomes := []domain.Outcome{domain.OutcomeNoAnswer, domain.OutcomeWrongNumber, domain.OutcomeContacted}
	for i, o := range outcomes {
		require.NoError(t, repo.Create(ctx, &domain.ContactAttempt{
			ID:          "att-" + string(rune('a'+i)),
			CaseID:      c.ID,
			MemberID:    member.ID,
			Outcome:     o,
			Channel:     domain.ChannelLigacao,
			Notes:       "tentativa",
			AttemptedBy: "lider",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := repo.ListByCase(ctx, cong, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.OutcomeContacted, got[0].Outcome)
	assert.Equal(t, domain.OutcomeNoAnswer, got[2].Outcome)
	assert.Equal(t, "lider", got[0].AttemptedBy)

	other, err := repo.ListByCase(ctx, "other-cong", c.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemberRepo_CreateGetList(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLMemberRepo(database)
	ctx := context.Background()

	bia := testutil.NewTestMember(cong, "Bia", testutil.WithPhone("+55 11 90000-0000"))
	ana := testutil.NewTestMember(cong, "Ana", testutil.WithOrigem("MJ"))
	outsider := testutil.NewTestMember("other-cong", "Caio")
	for _, m := range []*domain.Member{bia, ana, outsider} {
		require.NoError(t, repo.Create(ctx, m))
	}

	got, err := repo.GetByID(ctx, cong, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, bia, got)

	_, err = repo.GetByID(ctx, cong, outsider.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx, cong)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)
}
