package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRecordBorrowReturn(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBorrow()
	c.RecordBorrow()
	c.RecordReturn()

	if got := counterValue(t, reg, "bookhaven_borrows_total"); got != 2 {
		t.Errorf("borrows_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "bookhaven_returns_total"); got != 1 {
		t.Errorf("returns_total = %v, want 1", got)
	}
}

func TestRecordLockCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLockAcquired()
	c.RecordLockAcquired()
	c.RecordLockContended()

	if got := counterValue(t, reg, "bookhaven_lock_acquired_total"); got != 2 {
		t.Errorf("lock_acquired_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "bookhaven_lock_contended_total"); got != 1 {
		t.Errorf("lock_contended_total = %v, want 1", got)
	}
}

func TestRecordCacheCounters_ByFamily(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCacheHit("books")
	c.RecordCacheHit("books")
	c.RecordCacheMiss("authors")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, mf := range metrics {
		switch mf.GetName() {
		case "bookhaven_cache_hits_total":
			m := mf.GetMetric()[0]
			if m.GetLabel()[0].GetValue() != "books" {
				t.Errorf("hit label = %q, want books", m.GetLabel()[0].GetValue())
			}
			if m.GetCounter().GetValue() != 2 {
				t.Errorf("cache_hits_total{books} = %v, want 2", m.GetCounter().GetValue())
			}
		case "bookhaven_cache_misses_total":
			m := mf.GetMetric()[0]
			if m.GetLabel()[0].GetValue() != "authors" {
				t.Errorf("miss label = %q, want authors", m.GetLabel()[0].GetValue())
			}
		}
	}
}

func TestRecordBorrowLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBorrowLatency(100 * time.Millisecond)
	c.RecordBorrowLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "bookhaven_borrow_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("bookhaven_borrow_latency_seconds metric not found")
	}
}

func TestHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBorrow()
	c.RecordLockAcquired()
	c.RecordCacheHit("books")

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, metric := range []string{
		"bookhaven_borrows_total",
		"bookhaven_lock_acquired_total",
		"bookhaven_cache_hits_total",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

func TestCollector_ImplementsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ Recorder = NewCollector(reg)
	var _ Recorder = Noop{}
}
