package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/db"
	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
	"github.com/alexanderramin/discipulado/internal/testutil"
	"github.com/stretchr/testify/require"
)

const cong = "cong-1"

// testNow is mid-afternoon UTC so calendar-day arithmetic is unambiguous.
var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func (r *recordingObserver) last() UseCaseEvent {
	if len(r.events) == 0 {
		return UseCaseEvent{}
	}
	return r.events[len(r.events)-1]
}

type testEnv struct {
	db  *sql.DB
	uow db.UnitOfWork

	members  *repository.SQLMemberRepo
	cases    *repository.SQLCaseRepo
	attempts *repository.SQLAttemptRepo
	modules  *repository.SQLModuleRepo
	progress *repository.SQLProgressRepo
	events   *repository.SQLEventRepo

	observer *recordingObserver
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:       database,
		uow:      testutil.NewTestUoW(database),
		members:  repository.NewSQLMemberRepo(database),
		cases:    repository.NewSQLCaseRepo(database),
		attempts: repository.NewSQLAttemptRepo(database),
		modules:  repository.NewSQLModuleRepo(database),
		progress: repository.NewSQLProgressRepo(database),
		events:   repository.NewSQLEventRepo(database),
		observer: &recordingObserver{},
	}
}

func (e *testEnv) opts() []Option {
	return []Option{
		WithClock(func() time.Time { return testNow }),
		WithObserver(e.observer),
	}
}

func (e *testEnv) caseService() CaseService {
	return NewCaseService(e.cases, e.events, e.uow, e.opts()...)
}

func (e *testEnv) attemptService() AttemptService {
	return NewAttemptService(e.attempts, e.uow, e.opts()...)
}

func (e *testEnv) enrollmentService() EnrollmentService {
	return NewEnrollmentService(e.progress, e.uow, e.opts()...)
}

func (e *testEnv) confraService() ConfraService {
	return NewConfraService(e.events, nil, e.uow, e.opts()...)
}

func (e *testEnv) queueService() QueueService {
	return NewQueueService(e.cases, e.events, e.progress, e.opts()...)
}

func (e *testEnv) seedMember(t *testing.T, name string, opts ...testutil.MemberOption) *domain.Member {
	t.Helper()
	m := testutil.NewTestMember(cong, name, opts...)
	require.NoError(t, e.members.Create(context.Background(), m))
	return m
}

func (e *testEnv) seedCase(t *testing.T, opts ...testutil.CaseOption) *domain.Case {
	t.Helper()
	m := e.seedMember(t, "Membro")
	c := testutil.NewTestCase(cong, m.ID, opts...)
	require.NoError(t, e.cases.Create(context.Background(), c))
	return c
}

func (e *testEnv) seedModule(t *testing.T, title string, order int) *domain.Module {
	t.Helper()
	m := testutil.NewTestModule(cong, title, testutil.WithSortOrder(order))
	require.NoError(t, e.modules.Create(context.Background(), m))
	return m
}

func (e *testEnv) seedEvent(t *testing.T, daysAhead int, opts ...testutil.EventOption) *domain.Confraternizacao {
	t.Helper()
	ev := testutil.NewTestEvent(cong, "Confraternização", testNow.AddDate(0, 0, daysAhead), opts...)
	require.NoError(t, e.events.Create(context.Background(), ev))
	return ev
}

func (e *testEnv) reload(t *testing.T, id string) *domain.Case {
	t.Helper()
	c, err := e.cases.GetByID(context.Background(), cong, id)
	require.NoError(t, err)
	return c
}
