package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-navigation/internal/logging"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus categorizes how a command execution ended.
type TelemetryStatus string

const (
	// TelemetryStatusSuccess marks executions that returned no error.
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusFailed marks executions whose handler returned an error.
	TelemetryStatusFailed TelemetryStatus = "failed"
	// TelemetryStatusContextError marks executions cut short by context
	// cancellation or deadline expiry.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after every command
// execution, successful or not.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry observes command outcomes. Callbacks run synchronously after
// the handler returns, so long work belongs on a goroutine.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs each outcome through the supplied logger. Cache
// invalidations, seed applies, and file syncs all report through this
// path unless the host installs its own callback.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Operation != "" {
			args = append(args, "operation", info.Operation)
		}
		if info.Status == TelemetryStatusSuccess {
			entry.Info(statusMessage(info.Status), args...)
			return
		}
		entry.Error(statusMessage(info.Status), append(args, "error", info.Error)...)
	}
}

func statusMessage(status TelemetryStatus) string {
	switch status {
	case TelemetryStatusSuccess:
		return "command.execute.success"
	case TelemetryStatusContextError:
		return "command.execute.context_error"
	default:
		return "command.execute.failed"
	}
}
