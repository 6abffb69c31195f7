package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_CountsResults(t *testing.T) {
	o := New()
	ctx := context.Background()

	o.ObserveUseCase(ctx, service.UseCaseEvent{Name: "case-pause", Success: true, Duration: time.Millisecond,
		Fields: map[string]any{"from_status": "em_discipulado", "status": "pausado"}})
	o.ObserveUseCase(ctx, service.UseCaseEvent{Name: "case-pause",
		Err: fmt.Errorf("pause: %w", domain.ErrInvalidTransition)})
	o.ObserveUseCase(ctx, service.UseCaseEvent{Name: "case-pause",
		Err: fmt.Errorf("updating case: %w: %w", domain.ErrPersistence, errors.New("locked"))})

	assert.Equal(t, 1.0, testutil.ToFloat64(o.useCases.WithLabelValues("case-pause", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.useCases.WithLabelValues("case-pause", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.useCases.WithLabelValues("case-pause", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.transitions.WithLabelValues("em_discipulado", "pausado")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.duration))
}

func TestObserver_AttemptsAndEscalations(t *testing.T) {
	o := New()
	ctx := context.Background()

	o.ObserveUseCase(ctx, service.UseCaseEvent{Name: "attempt-record", Success: true,
		Fields: map[string]any{"outcome": "no_answer", "escalated": true, "criticality": "MEDIA"}})
	o.ObserveUseCase(ctx, service.UseCaseEvent{Name: "attempt-record", Success: true,
		Fields: map[string]any{"outcome": "contacted", "escalated": false, "criticality": "MEDIA"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(o.attempts.WithLabelValues("no_answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.attempts.WithLabelValues("contacted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.escalations.WithLabelValues("MEDIA")))
	assert.Equal(t, 0, testutil.CollectAndCount(o.transitions))
}

func TestObserver_WriteTextfile(t *testing.T) {
	o := New()
	o.ObserveUseCase(context.Background(), service.UseCaseEvent{Name: "member-create", Success: true})

	path := filepath.Join(t.TempDir(), "discipulado.prom")
	require.NoError(t, o.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `discipulado_use_cases_total{result="ok",use_case="member-create"} 1`)
}
