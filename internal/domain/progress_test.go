package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModuleProgress_StampsCompletion(t *testing.T) {
	p, err := NewModuleProgress("p1", "case-1", "mod-1", ProgressConcluido, "manha", "ana", testNow)
	require.NoError(t, err)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, testNow, *p.CompletedAt)
	assert.Equal(t, "ana", p.CompletedBy)
	assert.Equal(t, "manha", p.Turno)
}

func TestNewModuleProgress_DefaultsToNaoIniciado(t *testing.T) {
	p, err := NewModuleProgress("p1", "case-1", "mod-1", "", "", "ana", testNow)
	require.NoError(t, err)
	assert.Equal(t, ProgressNaoIniciado, p.Status)
	assert.Nil(t, p.CompletedAt)
	assert.Empty(t, p.CompletedBy)
}

func TestNewModuleProgress_RejectsUnknownStatus(t *testing.T) {
	_, err := NewModuleProgress("p1", "case-1", "mod-1", ProgressStatus("feito"), "", "", testNow)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSetStatus_CompletionMetadata(t *testing.T) {
	p, err := NewModuleProgress("p1", "case-1", "mod-1", ProgressEmAndamento, "", "", testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, p.SetStatus(ProgressConcluido, "bia", later))
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, later, *p.CompletedAt)
	assert.Equal(t, "bia", p.CompletedBy)

	require.NoError(t, p.SetStatus(ProgressEmAndamento, "caio", later))
	assert.Nil(t, p.CompletedAt, "leaving concluido clears the stamp")
	assert.Empty(t, p.CompletedBy)
}

func TestSetStatus_SameStatusKeepsStamp(t *testing.T) {
	p, err := NewModuleProgress("p1", "case-1", "mod-1", ProgressConcluido, "", "ana", testNow)
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(ProgressConcluido, "bia", testNow.Add(time.Hour)))
	assert.Equal(t, "ana", p.CompletedBy)
	assert.Equal(t, testNow, *p.CompletedAt)
}

func TestSummarize(t *testing.T) {
	mk := func(s ProgressStatus) *ModuleProgress { return &ModuleProgress{Status: s} }
	cases := []struct {
		name    string
		rows    []*ModuleProgress
		want    ProgressSummary
		canDone bool
	}{
		{"empty", nil, ProgressSummary{}, false},
		{"half", []*ModuleProgress{mk(ProgressConcluido), mk(ProgressEmAndamento)}, ProgressSummary{Total: 2, Done: 1, Percent: 50}, false},
		{"thirds round", []*ModuleProgress{mk(ProgressConcluido), mk(ProgressConcluido), mk(ProgressNaoIniciado)}, ProgressSummary{Total: 3, Done: 2, Percent: 67}, false},
		{"all", []*ModuleProgress{mk(ProgressConcluido)}, ProgressSummary{Total: 1, Done: 1, Percent: 100}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.rows)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.canDone, got.Complete())
		})
	}
}
