package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/cli/formatter"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/notify"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/alexanderramin/discipulado/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCong = "sede"

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func init() {
	formatter.UseColor(false)
}

type recordingNotifier struct {
	sent []notify.Escalation
	err  error
}

func (n *recordingNotifier) NotifyEscalation(_ context.Context, e notify.Escalation) error {
	n.sent = append(n.sent, e)
	return n.err
}

func (n *recordingNotifier) Close() error { return nil }

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) (*App, *recordingNotifier) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	opts := []service.Option{service.WithClock(func() time.Time { return testNow })}

	events := repository.NewSQLEventRepo(database)
	cases := repository.NewSQLCaseRepo(database)
	progress := repository.NewSQLProgressRepo(database)
	notifier := &recordingNotifier{}

	return &App{
		Members:      service.NewMemberService(repository.NewSQLMemberRepo(database), uow, opts...),
		Cases:        service.NewCaseService(cases, events, uow, opts...),
		Attempts:     service.NewAttemptService(repository.NewSQLAttemptRepo(database), uow, opts...),
		Modules:      service.NewModuleService(repository.NewSQLModuleRepo(database), uow, opts...),
		Enrollments:  service.NewEnrollmentService(progress, uow, opts...),
		Confras:      service.NewConfraService(events, nil, uow, opts...),
		Queue:        service.NewQueueService(cases, events, progress, opts...),
		Notifier:     notifier,
		Congregation: testCong,
		Now:          func() time.Time { return testNow },
	}, notifier
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seedCase(t *testing.T, app *App, name, origem string) *domain.Case {
	t.Helper()
	ctx := context.Background()
	m, err := app.Members.Create(ctx, service.CreateMemberRequest{CongregationID: testCong, Name: name, Origem: origem})
	require.NoError(t, err)
	c, err := app.Cases.Create(ctx, service.CreateCaseRequest{CongregationID: testCong, MemberID: m.ID})
	require.NoError(t, err)
	return c
}

func seedModule(t *testing.T, app *App, title string, order int) *domain.Module {
	t.Helper()
	m, err := app.Modules.Create(context.Background(), service.CreateModuleRequest{CongregationID: testCong, Title: title, SortOrder: order})
	require.NoError(t, err)
	return m
}

// --- root ---

func TestRootCmd_RequiresCongregation(t *testing.T) {
	app, _ := testApp(t)
	app.Congregation = ""

	_, err := executeCmd(t, app, "member", "list")
	require.ErrorContains(t, err, "no congregation selected")

	_, err = executeCmd(t, app, "--congregation", "outra", "member", "list")
	require.NoError(t, err)
	assert.Equal(t, "outra", app.Congregation)
}

// --- member ---

func TestMemberCmd_CreateAndList(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "member", "create", "--name", "Ana Lima", "--origem", "Culto da Manhã")
	require.NoError(t, err)
	assert.Contains(t, out, "Created member Ana Lima")

	out, err = executeCmd(t, app, "member", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Lima")
	assert.Contains(t, out, "MANHA")
}

func TestMemberCmd_ListEmpty(t *testing.T) {
	app, _ := testApp(t)
	out, err := executeCmd(t, app, "member", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No members found.")
}

// --- case ---

func TestCaseCmd_CreateByMemberPrefix(t *testing.T) {
	app, _ := testApp(t)
	m, err := app.Members.Create(context.Background(), service.CreateMemberRequest{CongregationID: testCong, Name: "Bia"})
	require.NoError(t, err)

	out, err := executeCmd(t, app, "case", "create", "--member", m.ID[:8], "--assign", "diacono", "--turno", "noite")
	require.NoError(t, err)
	assert.Contains(t, out, "Created case")
	assert.Contains(t, out, "● BAIXA")

	cases, err := app.Cases.List(context.Background(), testCong, repository.CaseFilter{AssignedTo: "diacono"})
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "noite", cases[0].TurnoOrigem)
}

func TestCaseCmd_UnknownID(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "case", "pause", "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCaseCmd_LifecycleThroughConclusion(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Carlos", "")
	mod := seedModule(t, app, "Fundamentos", 1)

	out, err := executeCmd(t, app, "case", "start", c.ID, "--module", mod.ID, "--by", "pr. joao")
	require.NoError(t, err)
	assert.Contains(t, out, "Discipulado / em discipulado")

	_, err = executeCmd(t, app, "case", "conclude", c.ID)
	require.ErrorIs(t, err, domain.ErrIncompleteModules)

	out, err = executeCmd(t, app, "enroll", "set-status", c.ID, "--module", mod.ID, "--status", "concluido")
	require.NoError(t, err)
	assert.Contains(t, out, "is now concluido")

	out, err = executeCmd(t, app, "case", "conclude", c.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Pós-discipulado / concluído")

	// A new unfinished module sends the case back into discipleship.
	second := seedModule(t, app, "Oração", 2)
	out, err = executeCmd(t, app, "enroll", "add", c.ID, "--module", second.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "reopened")

	out, err = executeCmd(t, app, "enroll", "list", c.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Fundamentos")
	assert.Contains(t, out, "Oração")
	assert.Contains(t, out, "1/2")
}

func TestCaseCmd_PauseRejectedInAcolhimento(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Dani", "")

	_, err := executeCmd(t, app, "case", "pause", c.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCaseCmd_ShowIncludesHistory(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Eva", "quarta à noite")
	_, err := executeCmd(t, app, "attempt", "record", c.ID, "--outcome", "no_answer", "--channel", "ligacao", "--notes", "caixa postal")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "case", "show", c.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Eva")
	assert.Contains(t, out, "(NOITE)")
	assert.Contains(t, out, "no_answer")
	assert.Contains(t, out, "caixa postal")
	assert.Contains(t, out, "● MEDIA")
}

func TestCaseCmd_ListFilters(t *testing.T) {
	app, _ := testApp(t)
	seedCase(t, app, "Fabio", "")

	out, err := executeCmd(t, app, "case", "list", "--phase", "discipulado")
	require.NoError(t, err)
	assert.Contains(t, out, "No cases found.")

	out, err = executeCmd(t, app, "case", "list", "--phase", "acolhimento", "--status", "pendente_matricula")
	require.NoError(t, err)
	assert.Contains(t, out, "Acolhimento")

	_, err = executeCmd(t, app, "case", "list", "--status", "arquivado")
	require.ErrorContains(t, err, "pendente_matricula|em_discipulado|pausado|concluido")
}

func TestCaseCmd_ConfirmWithoutEvent(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Gil", "")

	_, err := executeCmd(t, app, "case", "confirm-confra", c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCaseCmd_Delete(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Hugo", "")

	out, err := executeCmd(t, app, "case", "delete", c.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted case")

	_, err = app.Cases.Get(context.Background(), testCong, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// --- attempt ---

func TestAttemptCmd_EscalationIsNotified(t *testing.T) {
	app, notifier := testApp(t)
	c := seedCase(t, app, "Iris", "")

	out, err := executeCmd(t, app, "attempt", "record", c.ID, "--outcome", "no_answer")
	require.NoError(t, err)
	assert.Contains(t, out, "negative contacts: 1")
	assert.Contains(t, out, "● BAIXA → ● MEDIA ▲")

	require.Len(t, notifier.sent, 1)
	e := notifier.sent[0]
	assert.Equal(t, "Iris", e.MemberName)
	assert.Equal(t, domain.CriticalityBaixa, e.From)
	assert.Equal(t, domain.CriticalityMedia, e.To)
	assert.Equal(t, testCong, e.CongregationID)

	// Positive outcomes keep the counter, so the tier stays and nothing is sent.
	out, err = executeCmd(t, app, "attempt", "record", c.ID, "--outcome", "contacted")
	require.NoError(t, err)
	assert.NotContains(t, out, "Criticality")
	assert.Len(t, notifier.sent, 1)
}

func TestAttemptCmd_NotifierFailureDoesNotFailCommand(t *testing.T) {
	app, notifier := testApp(t)
	notifier.err = assert.AnError
	c := seedCase(t, app, "Joana", "")

	out, err := executeCmd(t, app, "attempt", "record", c.ID, "--outcome", "refused")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: escalation not delivered")

	attempts, err := app.Attempts.ListByCase(context.Background(), testCong, c.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestAttemptCmd_OutcomeRequiredWhenNotInteractive(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Kleber", "")

	_, err := executeCmd(t, app, "attempt", "record", c.ID)
	require.ErrorContains(t, err, "outcome")

	_, err = executeCmd(t, app, "attempt", "record", c.ID, "--outcome", "ghosted")
	require.ErrorContains(t, err, "no_answer|wrong_number")
}

func TestAttemptCmd_ListEmpty(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Lia", "")
	out, err := executeCmd(t, app, "attempt", "list", c.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "No contact attempts recorded.")
}

// --- module / confra ---

func TestModuleCmd_DeactivateHidesFromDefaultList(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "module", "create", "--title", "Batismo", "--order", "3")
	require.NoError(t, err)
	mods, err := app.Modules.List(context.Background(), testCong, true)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	_, err = executeCmd(t, app, "module", "deactivate", mods[0].ID)
	require.NoError(t, err)

	out, err := executeCmd(t, app, "module", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No modules found.")

	out, err = executeCmd(t, app, "module", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Batismo")
}

func TestConfraCmd_ActivateRelinksOpenCases(t *testing.T) {
	app, _ := testApp(t)
	c := seedCase(t, app, "Marta", "")

	out, err := executeCmd(t, app, "confra", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "No confraternização scheduled.")

	_, err = executeCmd(t, app, "confra", "create", "--title", "Confra de março", "--date", "2026-03-12")
	require.NoError(t, err)
	events, err := app.Confras.List(context.Background(), testCong)
	require.NoError(t, err)
	require.Len(t, events, 1)

	out, err = executeCmd(t, app, "confra", "activate", events[0].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Confra de março on 12/03/2026")

	got, err := app.Cases.Get(context.Background(), testCong, c.ID)
	require.NoError(t, err)
	assert.Equal(t, events[0].ID, got.ConfraternizacaoID)
	require.NotNil(t, got.DaysToConfra)
	assert.Equal(t, 2, *got.DaysToConfra)
	assert.Equal(t, domain.CriticalityAlta, got.Criticality)

	_, err = executeCmd(t, app, "confra", "create", "--title", "x", "--date", "12/03/2026")
	require.ErrorContains(t, err, "invalid date")
}

// --- queue ---

func TestQueueCmd_Views(t *testing.T) {
	app, _ := testApp(t)
	seedCase(t, app, "Nina", "culto da manhã")
	urgent := seedCase(t, app, "Otavio", "evento MJ")
	for range 3 {
		_, err := app.Attempts.RecordAttempt(context.Background(), service.RecordAttemptRequest{
			CongregationID: testCong, CaseID: urgent.ID, Outcome: domain.OutcomeNoAnswer,
		})
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "queue")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Otavio")), bytes.Index([]byte(out), []byte("Nina")))
	assert.Contains(t, out, "● CRITICA")

	out, err = executeCmd(t, app, "queue", "--view", "origin")
	require.NoError(t, err)
	assert.Contains(t, out, "MANHA (1)")
	assert.Contains(t, out, "EVENTO (1)")
	assert.NotContains(t, out, "NOITE")

	out, err = executeCmd(t, app, "queue", "--view", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pendente matrícula (2)")
	assert.Contains(t, out, "pausado (0)")

	out, err = executeCmd(t, app, "queue", "--view", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Casos: 2")

	out, err = executeCmd(t, app, "queue", "--view", "turno")
	require.NoError(t, err)
	assert.Contains(t, out, "TURNO SEM_TURNO (2)")

	_, err = executeCmd(t, app, "queue", "--view", "kanban")
	require.Error(t, err)
}

func TestQueueCmd_CriticalityFilter(t *testing.T) {
	app, _ := testApp(t)
	seedCase(t, app, "Nina", "")
	urgent := seedCase(t, app, "Otavio", "")
	for range 3 {
		_, err := app.Attempts.RecordAttempt(context.Background(), service.RecordAttemptRequest{
			CongregationID: testCong, CaseID: urgent.ID, Outcome: domain.OutcomeRefused,
		})
		require.NoError(t, err)
	}

	out, err := executeCmd(t, app, "queue", "--criticality", "critica")
	require.NoError(t, err)
	assert.Contains(t, out, "Otavio")
	assert.NotContains(t, out, "Nina")

	out, err = executeCmd(t, app, "queue", "--criticality", "alta")
	require.NoError(t, err)
	assert.Contains(t, out, "Queue is empty.")

	out, err = executeCmd(t, app, "queue", "--view", "stats", "--criticality", "baixa")
	require.NoError(t, err)
	assert.Contains(t, out, "Casos: 1")

	_, err = executeCmd(t, app, "queue", "--criticality", "urgente")
	require.ErrorContains(t, err, "must be one of BAIXA|MEDIA|ALTA|CRITICA")
}

func TestQueueCmd_Empty(t *testing.T) {
	app, _ := testApp(t)
	out, err := executeCmd(t, app, "queue", "--view", "acolhimento")
	require.NoError(t, err)
	assert.Contains(t, out, "Queue is empty.")
}

// --- resolve ---

func TestResolveID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz789"}
	self := func(s string) string { return s }

	got, err := resolveID("case", "xyz789", ids, self)
	require.NoError(t, err)
	assert.Equal(t, "xyz789", got)

	got, err = resolveID("case", "abc", ids, self)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	_, err = resolveID("case", "ab", ids, self)
	require.ErrorContains(t, err, "ambiguous (2 matches)")

	_, err = resolveID("case", "q", ids, self)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = resolveID("case", " ", ids, self)
	require.ErrorContains(t, err, "case ID is required")
}
