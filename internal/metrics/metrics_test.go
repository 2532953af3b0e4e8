package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SetManaged(3)
	m.ObserveSweep(20 * time.Millisecond)
	m.ObserveSweep(30 * time.Millisecond)
	m.StartIssued("web", "dependency")
	m.StartIssued("web", "dependency")
	m.StartIssued("backup", "schedule")
	m.StartFailed("ghost", "not_found")
	m.ProbeFailed("db")

	if got := testutil.ToFloat64(m.sweeps); got != 2 {
		t.Errorf("sweeps = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.managed); got != 3 {
		t.Errorf("managed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.starts.WithLabelValues("web", "dependency")); got != 2 {
		t.Errorf("starts{web,dependency} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.starts.WithLabelValues("backup", "schedule")); got != 1 {
		t.Errorf("starts{backup,schedule} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.startFailures.WithLabelValues("ghost", "not_found")); got != 1 {
		t.Errorf("start failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.probeFailures.WithLabelValues("db")); got != 1 {
		t.Errorf("probe failures = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.SetManaged(1)
	m.ObserveSweep(time.Second)
	m.StartIssued("web", "delay")
	m.StartFailed("web", "error")
	m.ProbeFailed("web")
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.StartIssued("web", "dependency")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, `depstart_container_starts_total{container="web",trigger="dependency"} 1`) {
		t.Errorf("exposition missing start counter:\n%s", body)
	}
}
