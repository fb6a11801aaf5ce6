package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"hargaemas/internal/source"
)

func TestObserveSource(t *testing.T) {
	r := New()

	r.ObserveSource(source.GoEmas, true, 20*time.Millisecond)
	r.ObserveSource(source.GoEmas, false, 30*time.Millisecond)
	r.ObserveSource(source.GoEmas, true, 10*time.Millisecond)

	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("goEmas", OutcomeSuccess)); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("goEmas", OutcomeFailure)); got != 1 {
		t.Errorf("failure count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess.WithLabelValues("goEmas")); got <= 0 {
		t.Errorf("last success timestamp = %v, want > 0", got)
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveSource(source.EmasNow, true, time.Millisecond)

	if got := testutil.ToFloat64(b.runsTotal.WithLabelValues("emasNow", OutcomeSuccess)); got != 0 {
		t.Errorf("second recorder saw %v runs, want 0", got)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.ObserveSource(source.RajaEmas, false, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	want := `hargaemas_source_runs_total{outcome="failure",source="rajaEmas"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q:\n%s", want, body)
	}
}
