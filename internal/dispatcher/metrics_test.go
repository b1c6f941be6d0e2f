package dispatcher

import (
	"log/slog"
	"testing"
	"time"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.RecordDispatch("book", 10*time.Millisecond, handler.StatusOK)
	m.RecordDispatch("book", 30*time.Millisecond, handler.StatusRuntimeError)
	m.RecordDispatch("tasks", 5*time.Millisecond, handler.StatusNotFound)
	m.RecordPanic("book")

	if m.TotalDispatches() != 3 {
		t.Errorf("TotalDispatches() = %d, want 3", m.TotalDispatches())
	}
	if m.TotalFailures() != 2 {
		t.Errorf("TotalFailures() = %d, want 2", m.TotalFailures())
	}
	if m.TotalPanics() != 1 {
		t.Errorf("TotalPanics() = %d, want 1", m.TotalPanics())
	}

	book := m.EntryStats("book")
	if book == nil {
		t.Fatal("expected stats for book")
	}
	if book.DispatchCount != 2 || book.FailureCount != 1 {
		t.Errorf("book stats = %+v", book)
	}
	if book.MaxDuration != 30*time.Millisecond {
		t.Errorf("MaxDuration = %v", book.MaxDuration)
	}
	if book.LastStatus != handler.StatusRuntimeError {
		t.Errorf("LastStatus = %v", book.LastStatus)
	}

	if m.EntryStats("missing") != nil {
		t.Error("expected nil stats for unknown entry")
	}

	top := m.TopEntries(1)
	if len(top) != 1 || top[0].Name != "book" {
		t.Errorf("TopEntries(1) = %v", top)
	}
	if len(m.TopEntries(10)) != 2 {
		t.Error("TopEntries should cap at the number of entries")
	}

	m.LogSummary(slog.New(slog.DiscardHandler))
}
