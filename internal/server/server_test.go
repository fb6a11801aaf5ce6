package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hargaemas/internal/ratelimit"
	"hargaemas/internal/source"
)

type stubAggregator struct {
	result source.AggregateResult
	calls  atomic.Int32
}

func (s *stubAggregator) Run(ctx context.Context) source.AggregateResult {
	s.calls.Add(1)
	return s.result
}

func newStub() *stubAggregator {
	return &stubAggregator{result: source.AggregateResult{
		source.RajaEmas: source.Succeeded(source.Prices{
			Jewelry: []source.PriceQuote{{Label: "24K", Buy: source.Price(1015000)}},
		}),
		source.ILoveEmas: source.Failed(errors.New("status 403")),
		source.GoEmas:    source.Succeeded(source.Prices{}),
		source.EmasNow:   source.Succeeded(source.Prices{}),
	}}
}

func TestPrices(t *testing.T) {
	agg := newStub()
	srv := httptest.NewServer(New(agg).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/prices")
	if err != nil {
		t.Fatalf("GET /prices failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]struct {
		Jewelry []map[string]any `json:"jewelry"`
		Bullion []map[string]any `json:"bullion"`
		Error   *string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	for _, id := range source.AllIDs {
		if _, ok := body[string(id)]; !ok {
			t.Errorf("response missing key %q", id)
		}
	}
	if e := body["iloveemas"].Error; e == nil || *e != "status 403" {
		t.Errorf("iloveemas error = %v, want %q", e, "status 403")
	}
	raja := body["rajaEmas"].Jewelry
	if len(raja) != 1 || raja[0]["sell"] != nil || raja[0]["buy"] != float64(1015000) {
		t.Errorf("rajaEmas jewelry = %v", raja)
	}
}

func TestPrices_FreshPerRequest(t *testing.T) {
	agg := newStub()
	h := New(agg).Handler()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices", nil))
	}

	if got := agg.calls.Load(); got != 3 {
		t.Errorf("aggregator ran %d times, want 3", got)
	}
}

func TestIndex(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC) }
	h := New(newStub(),
		WithLocation(time.FixedZone("WITA", 8*60*60)),
		WithClock(clock),
	).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Rp 1.015.000", "Gagal: status 403", "Diperbarui: 1/1/2025, 09.00.00 WITA"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "hargaemas_up 1\n")
	})

	withMetrics := New(newStub(), WithMetrics(metrics)).Handler()
	rec := httptest.NewRecorder()
	withMetrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hargaemas_up 1") {
		t.Errorf("GET /metrics = %d %q", rec.Code, rec.Body.String())
	}

	without := New(newStub()).Handler()
	rec = httptest.NewRecorder()
	without.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without recorder = %d, want 404", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newStub()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestThrottle(t *testing.T) {
	agg := newStub()
	h := New(agg, WithLimiter(ratelimit.New(1, 2))).Handler()

	var codes []int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices", nil))
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
	if got := agg.calls.Load(); got != 2 {
		t.Errorf("aggregator ran %d times, want 2", got)
	}

	// The report route has its own budget
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", rec.Code)
	}
}
