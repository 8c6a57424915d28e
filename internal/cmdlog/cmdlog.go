package cmdlog

import (
	"time"

	"solofeed/internal/logging"
	"solofeed/internal/metrics"
)

// Run executes a CLI subcommand, counting runs and errors and logging how long it took.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	fields := map[string]any{"command": cmd, "elapsed_ms": time.Since(start).Milliseconds()}
	if err != nil {
		metrics.IncCommandError(cmd)
		fields["error"] = err.Error()
		logging.Error("command_failed", fields)
		return err
	}
	logging.Debug("command_done", fields)
	return nil
}
