package app

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics counts host loop activity for the shutdown summary.
type Metrics struct {
	iterations    atomic.Uint64
	selections    atomic.Uint64
	invalidInputs atomic.Uint64
	reloads       atomic.Uint64
	interrupts    atomic.Uint64
	wakeups       atomic.Uint64
	tempCleared   atomic.Uint64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Iterations    uint64
	Selections    uint64
	InvalidInputs uint64
	Reloads       uint64
	Interrupts    uint64
	Wakeups       uint64
	TempCleared   uint64
	Uptime        time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordIteration counts one pass of the host loop.
func (m *Metrics) RecordIteration() { m.iterations.Add(1) }

// RecordSelection counts a parsed menu selection.
func (m *Metrics) RecordSelection() { m.selections.Add(1) }

// RecordInvalidInput counts input that was not a selection.
func (m *Metrics) RecordInvalidInput() { m.invalidInputs.Add(1) }

// RecordReload counts an applied configuration reload.
func (m *Metrics) RecordReload() { m.reloads.Add(1) }

// RecordInterrupt counts an interrupt signal.
func (m *Metrics) RecordInterrupt() { m.interrupts.Add(1) }

// RecordWakeup counts a prompt woken by a config file change.
func (m *Metrics) RecordWakeup() { m.wakeups.Add(1) }

// RecordTempCleared counts removed temp entries.
func (m *Metrics) RecordTempCleared(n int) {
	if n > 0 {
		m.tempCleared.Add(uint64(n))
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Iterations:    m.iterations.Load(),
		Selections:    m.selections.Load(),
		InvalidInputs: m.invalidInputs.Load(),
		Reloads:       m.reloads.Load(),
		Interrupts:    m.interrupts.Load(),
		Wakeups:       m.wakeups.Load(),
		TempCleared:   m.tempCleared.Load(),
		Uptime:        time.Since(m.startTime),
	}
}

// LogSummary writes the counters at debug level.
func (m *Metrics) LogSummary(logger *slog.Logger) {
	s := m.Snapshot()
	logger.Debug("session summary",
		"uptime", s.Uptime.Round(time.Millisecond),
		"iterations", s.Iterations,
		"selections", s.Selections,
		"invalid_inputs", s.InvalidInputs,
		"reloads", s.Reloads,
		"interrupts", s.Interrupts,
		"wakeups", s.Wakeups,
		"temp_cleared", s.TempCleared)
}
