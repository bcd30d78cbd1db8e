package services

import (
	"context"
	"runtime"
	"time"

	"prfcli/pkg/contracts"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Data      map[string]interface{} `json:"data"`
}

// HealthService reports liveness and the loaded data
type HealthService struct {
	data      *DashboardService
	startTime time.Time
}

// NewHealthService creates a new health service
func NewHealthService(data *DashboardService) *HealthService {
	return &HealthService{data: data, startTime: time.Now()}
}

// HealthCheck returns "ok" when accident data is loaded, "degraded" otherwise
func (h *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Data: map[string]interface{}{"rows": 0, "years": []int{}},
	}
	if h.data == nil || h.data.Rows() == 0 {
		status.Status = "degraded"
		return status
	}
	status.Data["rows"] = h.data.Rows()
	status.Data["years"] = h.data.Years(ctx)
	return status
}
