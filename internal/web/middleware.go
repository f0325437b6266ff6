// internal/web/middleware.go
// This file contains the middleware shared by every service. Each function
// wraps an http.Handler and runs before the router sees the request.
package web

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RecoverPanic turns a panic in a downstream handler into a 500 response
// instead of a dropped connection.
func (rs *Responder) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deferred calls still run while a panic unwinds the goroutine.
		defer func() {
			if err := recover(); err != nil {
				// Close the connection once this response is written.
				w.Header().Set("Connection", "close")
				rs.ServerErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LimiterConfig configures per-IP rate limiting.
type LimiterConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// DefaultLimiterConfig allows 50 requests per second with a burst of 100 per
// client IP. Only clients well past normal use ever see a 429.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{Enabled: true, RPS: 50, Burst: 100}
}

// client holds a per-IP limiter and when it was last seen, so idle entries
// can be evicted.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a token bucket per client IP. Entries idle for three
// minutes are evicted by a background sweep.
func (rs *Responder) RateLimit(cfg LimiterConfig, next http.Handler) http.Handler {
	if !cfg.Enabled {
		return next
	}

	// clients maps a client IP to its own limiter.
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Sweep stale entries once a minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, c := range clients {
				if time.Since(c.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The bucket is keyed by IP alone; the port changes per connection.
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			rs.ServerErrorResponse(w, r, err)
			return
		}

		mu.Lock()
		// First request from this IP gets a fresh bucket.
		if _, found := clients[ip]; !found {
			clients[ip] = &client{
				limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
			}
		}
		clients[ip].lastSeen = time.Now()

		// Out of tokens: answer 429 without calling the next handler.
		if !clients[ip].limiter.Allow() {
			mu.Unlock()
			rs.RateLimitExceededResponse(w, r)
			return
		}
		mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// RequestID tags each request with an id, reusing the caller's X-Request-ID
// when present, and echoes it in the response.
func (rs *Responder) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Keep the caller's id so one request can be traced across services.
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		r = r.WithContext(ContextWithRequestID(r.Context(), requestID))
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one line per completed request.
func (rs *Responder) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// A handler that never calls WriteHeader has answered 200.
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		rs.Logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", RequestIDFromContext(r.Context())),
		)
	})
}
