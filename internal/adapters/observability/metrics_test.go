package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewdash/internal/adapters/observability"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	out := scrape(t, observability.MetricsHandler(reg))
	if !strings.Contains(out, "reviewdash_http_requests_total") {
		t.Fatalf("expected reviewdash_http_requests_total in output")
	}
}

func TestObserveSync(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveSync(2, 1, 1, 0, 1)

	out := scrape(t, observability.MetricsHandler(reg))
	for _, want := range []string{
		`reviewdash_sync_items_total{outcome="insert"}`,
		`reviewdash_sync_items_total{outcome="reject"}`,
		`reviewdash_sync_runs_total{result="partial"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}
