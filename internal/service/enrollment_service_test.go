package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_DuplicateLeavesOriginalUntouched(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c := env.seedCase(t)
	mod := env.seedModule(t, "Fundamentos", 1)
	svc := env.enrollmentService()

	first, err := svc.Enroll(ctx, EnrollRequest{
		CongregationID: cong, CaseID: c.ID, ModuleID: mod.ID,
		Status: domain.ProgressConcluido, Turno: "Noite", Actor: "ana",
	})
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, EnrollRequest{
		CongregationID: cong, CaseID: c.ID, ModuleID: mod.ID,
		Status: domain.ProgressNaoIniciado, Turno: "Manhã", Actor: "bia",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEnrollment)

	rows, err := svc.ListByCase(ctx, cong, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.Progress.ID, rows[0].ID)
	assert.Equal(t, domain.ProgressConcluido, rows[0].Status)
	assert.Equal(t, "Noite", rows[0].Turno)
	assert.Equal(t, "ana", rows[0].CompletedBy)
	require.NotNil(t, rows[0].CompletedAt)
	assert.True(t, rows[0].CompletedAt.Equal(testNow))
}

func TestEnroll_DefaultsToNaoIniciado(t *testing.T) {
	env := setupEnv(t)
	c := env.seedCase(t)
	mod := env.seedModule(t, "Fundamentos", 1)

	res, err := env.enrollmentService().Enroll(context.Background(), EnrollRequest{CongregationID: cong, CaseID: c.ID, ModuleID: mod.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressNaoIniciado, res.Progress.Status)
	assert.Nil(t, res.Progress.CompletedAt)
	assert.False(t, res.Reopened)
}

func TestEnroll_UnknownModuleOrCase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c := env.seedCase(t)
	mod := env.seedModule(t, "Fundamentos", 1)
	svc := env.enrollmentService()

	_, err := svc.Enroll(ctx, EnrollRequest{CongregationID: cong, CaseID: c.ID, ModuleID: "ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Enroll(ctx, EnrollRequest{CongregationID: cong, CaseID: "ghost", ModuleID: mod.ID})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Enroll(ctx, EnrollRequest{CongregationID: cong, CaseID: c.ID, ModuleID: mod.ID, Status: "feito"})
	require.ErrorIs(t, err, domain.ErrInvalidValue)
}

// concludedCase seeds a case concluded with one finished module.
func concludedCase(t *testing.T, env *testEnv) (*domain.Case, *domain.ModuleProgress) {
	t.Helper()
	ctx := context.Background()
	c := env.seedCase(t,
		testutil.WithPhase(domain.PhasePosDiscipulado),
		testutil.WithCaseStatus(domain.StatusConcluido),
	)
	mod := env.seedModule(t, "Fundamentos", 1)
	row := testutil.NewTestProgress(c.ID, mod.ID, testutil.WithProgressStatus(domain.ProgressConcluido))
	require.NoError(t, env.progress.Create(ctx, row))
	return c, row
}

func TestSetModuleStatus_AutoRevertsConcludedCase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c, row := concludedCase(t, env)

	res, err := env.enrollmentService().SetModuleStatus(ctx, SetModuleStatusRequest{
		CongregationID: cong, ProgressID: row.ID, Status: domain.ProgressEmAndamento, Actor: "ana",
	})
	require.NoError(t, err)
	assert.True(t, res.Reopened)
	assert.Nil(t, res.Progress.CompletedAt)
	assert.Empty(t, res.Progress.CompletedBy)

	stored := env.reload(t, c.ID)
	assert.Equal(t, domain.StatusEmDiscipulado, stored.Status)
	assert.Equal(t, domain.PhaseDiscipulado, stored.Phase)
}

func TestSetModuleStatus_ConcluidoStampsCompletion(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c := env.seedCase(t, testutil.WithPhase(domain.PhaseDiscipulado), testutil.WithCaseStatus(domain.StatusEmDiscipulado))
	mod := env.seedModule(t, "Fundamentos", 1)
	svc := env.enrollmentService()

	enrolled, err := svc.Enroll(ctx, EnrollRequest{CongregationID: cong, CaseID: c.ID, ModuleID: mod.ID, Status: domain.ProgressEmAndamento})
	require.NoError(t, err)

	res, err := svc.SetModuleStatus(ctx, SetModuleStatusRequest{
		CongregationID: cong, ProgressID: enrolled.Progress.ID, Status: domain.ProgressConcluido, Actor: "bia",
	})
	require.NoError(t, err)
	assert.False(t, res.Reopened)
	require.NotNil(t, res.Progress.CompletedAt)
	assert.True(t, res.Progress.CompletedAt.Equal(testNow))
	assert.Equal(t, "bia", res.Progress.CompletedBy)

	summary, err := svc.Summary(ctx, cong, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressSummary{Total: 1, Done: 1, Percent: 100}, summary)
}

func TestEnroll_NewModuleReopensConcludedCase(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c, _ := concludedCase(t, env)
	extra := env.seedModule(t, "Serviço", 2)

	res, err := env.enrollmentService().Enroll(ctx, EnrollRequest{CongregationID: cong, CaseID: c.ID, ModuleID: extra.ID})
	require.NoError(t, err)
	assert.True(t, res.Reopened)
	assert.Equal(t, domain.StatusEmDiscipulado, env.reload(t, c.ID).Status)
}

func TestEnroll_ConcludedModuleKeepsCaseConcluded(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	c, _ := concludedCase(t, env)
	extra := env.seedModule(t, "Serviço", 2)

	res, err := env.enrollmentService().Enroll(ctx, EnrollRequest{
		CongregationID: cong, CaseID: c.ID, ModuleID: extra.ID, Status: domain.ProgressConcluido,
	})
	require.NoError(t, err)
	assert.False(t, res.Reopened)
	assert.Equal(t, domain.StatusConcluido, env.reload(t, c.ID).Status)
}

func TestSetModuleStatus_OtherCongregation(t *testing.T) {
	env := setupEnv(t)
	_, row := concludedCase(t, env)

	_, err := env.enrollmentService().SetModuleStatus(context.Background(), SetModuleStatusRequest{
		CongregationID: "cong-2", ProgressID: row.ID, Status: domain.ProgressEmAndamento,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary_Empty(t *testing.T) {
	env := setupEnv(t)
	c := env.seedCase(t)
	summary, err := env.enrollmentService().Summary(context.Background(), cong, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Percent)
	assert.False(t, summary.Complete())
}
