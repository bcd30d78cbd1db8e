package operations

import (
	"sync"
	"time"

	"prfcli/internal/dataprocessing"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/modeling"
	"prfcli/internal/statistics"
	"prfcli/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// RunData carries the materialized output of every step. A step only reads
// fields written by the steps it depends on, or preloaded by the caller.
type RunData struct {
	Raw         *domain.RawTable
	Cleaned     *domain.CleanedTable
	Normalize   *dataprocessing.NormalizeReport
	Warnings    *apperrors.Warnings
	CleanedRows int

	Normality   []statistics.NormalityResult
	Correlation *statistics.CorrelationMatrix
	TTest       *statistics.TTestResult
	Exploratory *statistics.Exploratory

	Imputation  *dataprocessing.ImputationReport
	Dataset     *domain.Dataset
	RowsDropped int

	Model    *modeling.Result
	ModelErr error
	Artifact *modeling.Artifact

	Outputs []string
}

// AddOutput records a file written by the run
func (d *RunData) AddOutput(path string) {
	d.Outputs = append(d.Outputs, path)
}

// OperationState represents the complete state of a run
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	// Steps holds the state of each scheduled step; Order keeps their run order.
	Steps map[string]*StepState `json:"steps"`
	Order []string              `json:"order"`

	Data *RunData `json:"-"`

	Error error `json:"-"`
}

// NewOperationState creates a new operation state with empty run data
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Data:      &RunData{Warnings: apperrors.NewWarnings()},
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
}

// GetStage returns the state of a specific step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage registers the state of a step in run order
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stageID]; !exists {
		p.Order = append(p.Order, stageID)
	}
	p.Steps[stageID] = state
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetFailedStages returns all failed steps in run order
func (p *OperationState) GetFailedStages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var failed []*StepState
	for _, id := range p.Order {
		if s := p.Steps[id]; s.GetStatus() == StepStatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// HasFailures returns true if any step has failed
func (p *OperationState) HasFailures() bool {
	return len(p.GetFailedStages()) > 0
}
