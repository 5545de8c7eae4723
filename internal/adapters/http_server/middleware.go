package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"propsite/internal/adapters/observability"
	"propsite/internal/app"
	"propsite/internal/auth"
	"propsite/internal/domain"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- status-recording ResponseWriter ----

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

// routeOf returns the matched chi pattern so metric labels stay bounded.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &srw{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routeOf(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

// Logger writes one access line per request. The query string is left out: guest links
// carry booking ids in it.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			ev := l.Info()
			switch {
			case sw.Status() >= 500:
				ev = l.Error()
			case sw.Status() >= 400:
				ev = l.Warn()
			}
			ev.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Int("bytes", sw.bytes).
				Bool("guest", r.URL.Query().Get("source") == app.GuestSource).
				Dur("duration", time.Since(start)).
				Str("remote", remoteIP(r)).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

// remoteIP is the host part of RemoteAddr. Forwarding headers are honoured only through
// the RealIP middleware, which New installs for trusted proxies.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- Admin authentication ----

// Authenticate resolves HTTP basic credentials against the user directory and puts the
// session on the request context. Requests without credentials continue without a
// session; the service layer decides whether that is allowed.
func Authenticate(dir domain.UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, pass, ok := r.BasicAuth()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := auth.Authenticate(r.Context(), dir, email, pass)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// ---- Guest link rate limiting ----

// guestIdle is how long a client can stay quiet before its bucket is dropped.
const guestIdle = 10 * time.Minute

type guestClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// GuestLimiter throttles source=guest requests per client IP so booking ids cannot be
// enumerated quickly. Other requests pass through untouched. Buckets idle longer than
// guestIdle are swept.
type GuestLimiter struct {
	mu        sync.Mutex
	clients   map[string]*guestClient
	rps       rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func NewGuestLimiter(rps float64, burst int) *GuestLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &GuestLimiter{clients: map[string]*guestClient{}, rps: rate.Limit(rps), burst: burst, now: time.Now}
}

func (g *GuestLimiter) allow(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastSweep) >= guestIdle {
		for k, c := range g.clients {
			if now.Sub(c.seen) >= guestIdle {
				delete(g.clients, k)
			}
		}
		g.lastSweep = now
	}
	c, ok := g.clients[ip]
	if !ok {
		c = &guestClient{lim: rate.NewLimiter(g.rps, g.burst)}
		g.clients[ip] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

func (g *GuestLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g == nil || g.rps <= 0 || r.URL.Query().Get("source") != app.GuestSource {
			next.ServeHTTP(w, r)
			return
		}
		ip := remoteIP(r)
		if !g.allow(ip) {
			observability.ObserveGuest("limited")
			log.Warn().Str("remote", ip).Msg("guest link rate limited")
			w.Header().Set("Retry-After", "1")
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
