package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/observability"
)

// Application-level metrics following Prometheus conventions
const (
	OperationsTotal       = "app_operations_total"
	OperationsErrorsTotal = "app_operations_errors_total"
	OperationDuration     = "app_operation_duration_ms"

	GenerationCallsTotal   = "generation_calls_total"
	GenerationCallDuration = "generation_call_duration_ms"
	GenerationPromptTokens = "generation_prompt_tokens_total"
	GenerationOutputTokens = "generation_completion_tokens_total"

	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordOperation records one overview or explanation request.
func RecordOperation(operation string, success bool, elapsed time.Duration) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	_ = sys.Counter(OperationsTotal, 1, map[string]string{
		"operation": operation,
		"status":    status,
	})
	_ = sys.Histogram(OperationDuration, elapsed, map[string]string{
		"operation": operation,
	})
}

// RecordOperationError records an application operation error
func RecordOperationError(operation string, errorType string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			OperationsErrorsTotal,
			1,
			map[string]string{
				"operation":  operation,
				"error_type": errorType,
			},
		)
	}
}

// ObserveCall records one provider call. It is installed on the gateway
// through ailink.WithObserver.
func ObserveCall(ev ailink.CallEvent) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}

	tags := map[string]string{
		"prompt": ev.Slug,
		"model":  ev.Model,
		"status": callStatus(ev.Err),
	}
	_ = sys.Counter(GenerationCallsTotal, 1, tags)
	_ = sys.Histogram(GenerationCallDuration, ev.Elapsed, map[string]string{"model": ev.Model})

	if ev.Err != nil || ev.Usage == nil {
		return
	}
	modelTag := map[string]string{"model": ev.Model}
	_ = sys.Counter(GenerationPromptTokens, float64(ev.Usage.PromptTokens), modelTag)
	_ = sys.Counter(GenerationOutputTokens, float64(ev.Usage.CompletionTokens), modelTag)
}

func callStatus(err error) string {
	if err == nil {
		return "success"
	}
	var pe *driver.ProviderError
	if errors.As(err, &pe) {
		return pe.Kind()
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "failure"
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(timestamp), nil)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerUptime, float64(seconds), nil)
	}
}
