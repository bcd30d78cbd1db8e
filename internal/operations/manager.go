package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "prfcli/internal/errors"
	"prfcli/internal/infrastructure"
)

// OperationRequest selects the steps of one run
type OperationRequest struct {
	// ID identifies the run; a UUID is generated when empty
	ID string

	// Steps lists the step IDs to run; empty runs every registered step
	Steps []string

	// Data preloads run data, e.g. a cleaned table read from disk
	Data *RunData
}

// StepSummary is the outcome of one step
type StepSummary struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   StepStatus             `json:"status"`
	Duration time.Duration          `json:"duration"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// OperationResponse reports the outcome of a run
type OperationResponse struct {
	ID       string               `json:"id"`
	Status   OperationStatusValue `json:"status"`
	Duration time.Duration        `json:"duration"`
	Steps    []StepSummary        `json:"steps"`
	Data     *RunData             `json:"-"`
	Error    string               `json:"error,omitempty"`
}

// Manager orchestrates step execution
type Manager struct {
	registry *Registry
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewManager creates a new manager. metrics may be nil.
func NewManager(registry *Registry, metrics *infrastructure.Metrics, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{registry: registry, metrics: metrics, logger: logger}
}

// RegisterStage registers a step
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the requested steps sequentially. It returns an error when a
// critical step fails or the context is cancelled; failures of non-critical
// steps are reported in the response only.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	// A run without its own ID joins the caller's trace, if any.
	if req.ID == "" {
		ctx = infrastructure.EnsureTraceID(ctx)
		req.ID = infrastructure.GetTraceID(ctx)
	} else {
		ctx = infrastructure.WithTraceID(ctx, req.ID)
	}

	state := NewOperationState(req.ID)
	if req.Data != nil {
		state.Data = req.Data
		if state.Data.Warnings == nil {
			state.Data.Warnings = apperrors.NewWarnings()
		}
	}

	steps, err := m.registry.Select(req.Steps)
	if err != nil {
		err = NewFatalError("cannot schedule steps", err)
		state.Fail(err)
		return m.finish(state), err
	}
	for _, s := range steps {
		state.SetStage(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	ctx, span := infrastructure.StartSpan(ctx, "pipeline.run",
		attribute.String("run.id", req.ID),
		attribute.Int("run.steps", len(steps)))
	defer span.End()

	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.Int("step_count", len(steps)))
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		if state.HasFailures() {
			var failed []string
			for _, st := range state.GetFailedStages() {
				failed = append(failed, st.ID)
			}
			m.logger.WarnContext(ctx, "operation_completed_with_failures",
				slog.String("operation_id", req.ID),
				slog.Any("failed_steps", failed))
		}
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel()
		state.Error = err
	default:
		state.Fail(err)
	}
	infrastructure.RecordError(span, err)
	m.metrics.MarkRunFinished(err == nil, time.Now())

	resp := m.finish(state)
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", req.ID),
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration))
	return resp, err
}

func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		stepState := state.GetStage(step.ID())

		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		if dep := m.unmetDependency(state, step); dep != "" {
			stepState.Skip(fmt.Sprintf("dependency %s did not complete", dep))
			m.logger.InfoContext(ctx, "stage_skipped",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("dependency", dep))
			continue
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		err := m.executeStage(ctx, state, step)
		if err == nil {
			continue
		}
		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipRemaining(state, steps[i+1:], "operation cancelled")
			return err
		}
		if step.Critical() {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("critical step %s failed", step.ID()))
			return err
		}
		m.logger.WarnContext(ctx, "stage_failed_continuing",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
	}
	return nil
}

// executeStage runs one step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(verr)
		m.metrics.ObserveStep(step.ID(), 0, verr)
		return verr
	}

	ctx, span := infrastructure.StartSpan(ctx, "pipeline.step."+step.ID(),
		attribute.String("step.id", step.ID()),
		attribute.String("step.name", step.Name()))
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)
	m.metrics.ObserveStep(step.ID(), duration, err)

	if err != nil {
		opErr := WrapError(err, step.ID())
		infrastructure.RecordError(span, opErr)
		stepState.Fail(opErr)
		m.logger.ErrorContext(ctx, "stage_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return opErr
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "stage_completed_successfully",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// unmetDependency returns the first scheduled dependency that did not
// complete. Dependencies outside the run are assumed satisfied by preloaded data.
func (m *Manager) unmetDependency(state *OperationState, step Step) string {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState != nil && depState.GetStatus() != StepStatusCompleted {
			return dep
		}
	}
	return ""
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, s := range steps {
		if st := state.GetStage(s.ID()); st != nil && st.GetStatus() == StepStatusPending {
			st.Skip(reason)
		}
	}
}

func (m *Manager) finish(state *OperationState) *OperationResponse {
	state.mu.RLock()
	resp := &OperationResponse{
		ID:     state.ID,
		Status: state.Status,
		Data:   state.Data,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	order := append([]string(nil), state.Order...)
	state.mu.RUnlock()

	resp.Duration = state.Duration()
	for _, id := range order {
		s := state.GetStage(id)
		s.mu.RLock()
		summary := StepSummary{ID: s.ID, Name: s.Name, Status: s.Status, Message: s.Message}
		if len(s.Metadata) > 0 {
			summary.Metadata = make(map[string]interface{}, len(s.Metadata))
			for k, v := range s.Metadata {
				summary.Metadata[k] = v
			}
		}
		s.mu.RUnlock()
		summary.Duration = s.Duration()
		resp.Steps = append(resp.Steps, summary)
	}
	return resp
}
