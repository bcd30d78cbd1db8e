package operations

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/infrastructure"
	logtest "prfcli/internal/shared/testutil"
)

func newTestManager(t *testing.T, metrics *infrastructure.Metrics, steps ...Step) *Manager {
	t.Helper()
	m := NewManager(NewRegistry(), metrics, nil)
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m
}

func statuses(resp *OperationResponse) map[string]StepStatus {
	out := make(map[string]StepStatus, len(resp.Steps))
	for _, s := range resp.Steps {
		out[s.ID] = s.Status
	}
	return out
}

func TestManager_Execute_AllSucceed(t *testing.T) {
	calls := &callLog{}
	metrics := infrastructure.NewMetrics()
	m := newTestManager(t, metrics,
		newFakeStep("a", nil, true, nil, calls),
		newFakeStep("b", []string{"a"}, true, nil, calls),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{"a", "b"}, calls.list())
	assert.Equal(t, map[string]StepStatus{"a": StepStatusCompleted, "b": StepStatusCompleted}, statuses(resp))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LastRunSuccess))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.StepDuration))
}

func TestManager_Execute_CriticalFailureStopsRun(t *testing.T) {
	calls := &callLog{}
	metrics := infrastructure.NewMetrics()
	m := newTestManager(t, metrics,
		newFakeStep("a", nil, true, errors.New("boom"), calls),
		newFakeStep("b", []string{"a"}, true, nil, calls),
		newFakeStep("c", nil, true, nil, calls),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, []string{"a"}, calls.list())
	assert.Equal(t, map[string]StepStatus{
		"a": StepStatusFailed,
		"b": StepStatusSkipped,
		"c": StepStatusSkipped,
	}, statuses(resp))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.LastRunSuccess))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StepFailures.WithLabelValues("a")))
}

func TestManager_Execute_NonCriticalFailureSkipsDependents(t *testing.T) {
	calls := &callLog{}
	m := newTestManager(t, nil,
		newFakeStep("clean", nil, true, nil, calls),
		newFakeStep("model", []string{"clean"}, false, errors.New("single class"), calls),
		newFakeStep("score", []string{"model"}, true, nil, calls),
		newFakeStep("report", []string{"clean"}, true, nil, calls),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, []string{"clean", "model", "report"}, calls.list())
	assert.Equal(t, map[string]StepStatus{
		"clean":  StepStatusCompleted,
		"model":  StepStatusFailed,
		"score":  StepStatusSkipped,
		"report": StepStatusCompleted,
	}, statuses(resp))
}

func TestManager_Execute_DependencyOutsideSelection(t *testing.T) {
	calls := &callLog{}
	m := newTestManager(t, nil,
		newFakeStep("ingest", nil, true, nil, calls),
		newFakeStep("model", []string{"ingest"}, true, nil, calls),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{Steps: []string{"model"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"model"}, calls.list())
	assert.Len(t, resp.Steps, 1)
}

func TestManager_Execute_Cancelled(t *testing.T) {
	calls := &callLog{}
	m := newTestManager(t, nil,
		newFakeStep("a", nil, true, nil, calls),
		newFakeStep("b", nil, true, nil, calls),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := m.Execute(ctx, OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Empty(t, calls.list())
	assert.Equal(t, map[string]StepStatus{"a": StepStatusSkipped, "b": StepStatusSkipped}, statuses(resp))
}

func TestManager_Execute_UnknownStep(t *testing.T) {
	m := newTestManager(t, nil, newFakeStep("a", nil, true, nil, nil))

	resp, err := m.Execute(context.Background(), OperationRequest{Steps: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeFatal, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

type validatingStep struct {
	*fakeStep
}

func (s validatingStep) Validate(state *OperationState) error {
	return errors.New("missing input")
}

func TestManager_Execute_ValidationFailure(t *testing.T) {
	calls := &callLog{}
	m := newTestManager(t, nil, validatingStep{newFakeStep("a", nil, true, nil, calls)})

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Empty(t, calls.list())
	assert.Equal(t, StepStatusFailed, resp.Steps[0].Status)
	assert.Contains(t, resp.Steps[0].Message, "missing input")
}

func TestManager_Execute_PreloadedData(t *testing.T) {
	m := newTestManager(t, nil, newFakeStep("a", nil, true, nil, nil))

	data := &RunData{CleanedRows: 7}
	resp, err := m.Execute(context.Background(), OperationRequest{Data: data})
	require.NoError(t, err)
	assert.Same(t, data, resp.Data)
	assert.NotNil(t, data.Warnings)
}

func TestManager_Execute_LogsNonCriticalFailures(t *testing.T) {
	logger, logs := logtest.NewTestLogger(t)
	m := NewManager(NewRegistry(), nil, logger)
	require.NoError(t, m.RegisterStage(newFakeStep("clean", nil, true, nil, nil)))
	require.NoError(t, m.RegisterStage(newFakeStep("model", []string{"clean"}, false, errors.New("single class"), nil)))

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	rec, ok := logs.Find("operation_completed_with_failures")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, rec.Level)
	assert.Equal(t, []string{"model"}, rec.Attrs["failed_steps"])
}

func TestManager_Execute_RunIDFromContext(t *testing.T) {
	m := newTestManager(t, nil, newFakeStep("clean", nil, true, nil, nil))

	ctx := infrastructure.WithTraceID(context.Background(), "req-42")
	resp, err := m.Execute(ctx, OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.ID)

	resp, err = m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.ID, 36)

	resp, err = m.Execute(ctx, OperationRequest{ID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.ID)
}
