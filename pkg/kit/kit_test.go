package kit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatalf("first two hits must pass")
	}
	if l.Allow("1.1.1.1") {
		t.Fatalf("third hit inside the window must be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatalf("other keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("1.1.1.1") {
		t.Fatalf("hits outside the window must be forgotten")
	}

	now = now.Add(2 * time.Minute)
	l.Sweep()
	if len(l.hits) != 0 {
		t.Fatalf("sweep left %d keys", len(l.hits))
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("retry-after=%q", rec.Header().Get("Retry-After"))
	}
}

func TestIPRateLimiter_DisabledWhenLimitZero(t *testing.T) {
	l := NewIPRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("limit 0 must not limit")
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(r); got != "192.0.2.1" {
		t.Fatalf("got %q", got)
	}
	r.Header.Set("X-Forwarded-For", " 203.0.113.9 ,192.0.2.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}
}

func TestMetricsAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("scrape-me"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name  string
		hash  string
		authz string
		want  int
	}{
		{"no hash configured", "", "Bearer scrape-me", http.StatusForbidden},
		{"missing header", string(hash), "", http.StatusForbidden},
		{"wrong scheme", string(hash), "Basic scrape-me", http.StatusForbidden},
		{"wrong token", string(hash), "Bearer nope", http.StatusForbidden},
		{"valid token", string(hash), "Bearer scrape-me", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.authz != "" {
				req.Header.Set("Authorization", tc.authz)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tc.hash)(ok).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d", rec.Code, tc.want)
			}
		})
	}
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware("test", RoutePattern))
	r.Get("/items/{slug}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	for _, slug := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+slug, nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("test", "GET", "/items/{slug}", "418")); got != 3 {
		t.Fatalf("pattern counter=%v want 3", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("test", "GET", "unmatched", "404")); got != 1 {
		t.Fatalf("unmatched counter=%v want 1", got)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zap.NewNop(), nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"server error"`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Slug string `json:"slug"`
	}

	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"slug":"belt"}`, false},
		{"unknown field", `{"slug":"belt","x":1}`, true},
		{"trailing data", `{"slug":"belt"}{}`, true},
		{"not json", `slug=belt`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
