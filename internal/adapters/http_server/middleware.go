package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"reviewdash/internal/adapters/auth"
	"reviewdash/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- response recorder ----

// srw records status and body size for the observe middleware.
type srw struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *srw) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// ---- per-request facts shared between middlewares ----

// requestInfo is created by Observe and filled in by inner middlewares (Authenticate sets the
// user), so the access log sees facts established deeper in the chain.
type requestInfo struct {
	user string
}

type infoKey struct{}

func infoFrom(r *http.Request) *requestInfo {
	ri, _ := r.Context().Value(infoKey{}).(*requestInfo)
	return ri
}

// ---- metrics + access log ----

// Observe records the request in prometheus and writes one access log line.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ri := &requestInfo{}
			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), infoKey{}, ri)))

			dur := time.Since(start)
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			observability.ObserveHTTP(route, r.Method, sw.Status(), dur)

			ev := l.Info()
			if sw.Status() >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			ev = ev.
				Str("route", route).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Int("bytes", sw.bytes).
				Dur("duration", dur).
				Str("remote", remoteIP(r)).
				Str("req_id", chimw.GetReqID(r.Context()))
			if ri.user != "" {
				ev = ev.Str("user", ri.user)
			}
			ev.Msg("http_request")
		})
	}
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- Bearer authentication ----

// Authenticate verifies the hosted-auth access token and stores its claims in the request context.
func Authenticate(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			claims, err := v.Parse(strings.TrimSpace(h[len("Bearer "):]))
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			if ri := infoFrom(r); ri != nil {
				ri.user = claims.UserID()
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
