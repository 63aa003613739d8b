package deploy

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// WorkflowOption is a functional option for configuring a Workflow
type WorkflowOption func(*Workflow)

// WithClock sets the clock used for poll intervals and the monitor timeout
func WithClock(clock clockwork.Clock) WorkflowOption {
	return func(w *Workflow) {
		w.clock = clock
	}
}

// WithMonitorConfig overrides the poll interval and timeout. Zero values keep the defaults.
func WithMonitorConfig(cfg MonitorConfig) WorkflowOption {
	return func(w *Workflow) {
		if cfg.Interval > 0 {
			w.monitor.Interval = cfg.Interval
		}
		if cfg.Timeout > 0 {
			w.monitor.Timeout = cfg.Timeout
		}
	}
}

// WithLogger sets the logger workflow events are written to
func WithLogger(logger zerolog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logger
	}
}
