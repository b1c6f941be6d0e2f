package dispatcher

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

// Metrics collects per-entry dispatch statistics for the session.
type Metrics struct {
	mu sync.RWMutex

	entries map[string]*EntryMetrics

	totalDispatches uint64
	totalFailures   uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// EntryMetrics holds statistics for one menu entry.
type EntryMetrics struct {
	Name          string
	DispatchCount uint64
	FailureCount  uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastStatus    handler.Status
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		entries: make(map[string]*EntryMetrics),
	}
}

// RecordDispatch records one dispatch of the named entry.
func (m *Metrics) RecordDispatch(name string, duration time.Duration, status handler.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := handler.Result{Status: status}.IsFailure()

	m.totalDispatches++
	m.totalDuration += duration
	if failed {
		m.totalFailures++
	}

	em := m.entries[name]
	if em == nil {
		em = &EntryMetrics{Name: name}
		m.entries[name] = em
	}
	em.DispatchCount++
	em.TotalDuration += duration
	em.LastStatus = status
	em.LastDispatch = time.Now()
	if duration > em.MaxDuration {
		em.MaxDuration = duration
	}
	if failed {
		em.FailureCount++
	}
}

// RecordPanic records a recovered panic.
func (m *Metrics) RecordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// TotalDispatches returns the number of recorded dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalFailures returns the number of failed dispatches.
func (m *Metrics) TotalFailures() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalFailures
}

// TotalPanics returns the number of recovered panics.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// EntryStats returns a copy of the metrics for one entry, or nil.
func (m *Metrics) EntryStats(name string) *EntryMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	em := m.entries[name]
	if em == nil {
		return nil
	}
	c := *em
	return &c
}

// TopEntries returns the n most dispatched entries.
func (m *Metrics) TopEntries(n int) []*EntryMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*EntryMetrics, 0, len(m.entries))
	for _, em := range m.entries {
		c := *em
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Name < out[j].Name
	})

	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// LogSummary writes the session totals and per-entry counts at debug level.
func (m *Metrics) LogSummary(logger *slog.Logger) {
	m.mu.RLock()
	dur := m.totalDuration
	m.mu.RUnlock()

	logger.Debug("dispatch summary",
		"dispatches", m.TotalDispatches(),
		"failures", m.TotalFailures(),
		"panics", m.TotalPanics(),
		"duration", dur)

	for _, em := range m.TopEntries(math.MaxInt) {
		logger.Debug("dispatch entry",
			"entry", em.Name,
			"count", em.DispatchCount,
			"failures", em.FailureCount,
			"max", em.MaxDuration,
			"last_status", em.LastStatus.String())
	}
}
