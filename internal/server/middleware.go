// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ============================================================================
// MIDDLEWARE CHAIN
// ============================================================================

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first listed runs outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// ============================================================================
// RECOVERY
// ============================================================================

// RecoveryMiddleware recovers from handler panics and returns a 500.
func RecoveryMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("PANIC | %s %s | %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"detail":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// LOGGING
// ============================================================================

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs one line per request with method, path, status
// and duration. Bodies are never logged.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Printf("HTTP | %s %s | %d | %v", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}

// ============================================================================
// RATE LIMITING
// ============================================================================

const (
	// DefaultRequestsPerSecond is the steady per-client request rate.
	DefaultRequestsPerSecond = 10

	// DefaultBurst is the per-client burst allowance.
	DefaultBurst = 30

	// visitorTTL is how long an idle client's limiter is kept.
	visitorTTL = 3 * time.Minute
)

// VisitorLimiter holds one token bucket per client IP.
type VisitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewVisitorLimiter creates a per-IP limiter and starts its janitor.
func NewVisitorLimiter(rps rate.Limit, burst int) *VisitorLimiter {
	vl := &VisitorLimiter{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
	}
	go vl.cleanup()
	return vl
}

// Allow reports whether the client may proceed.
func (vl *VisitorLimiter) Allow(ip string) bool {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	v, ok := vl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vl.rps, vl.burst)}
		vl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (vl *VisitorLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		vl.mu.Lock()
		for ip, v := range vl.visitors {
			if time.Since(v.lastSeen) > visitorTTL {
				delete(vl.visitors, ip)
			}
		}
		vl.mu.Unlock()
	}
}

// RateLimitMiddleware rejects clients exceeding their token bucket.
func RateLimitMiddleware(limiter *VisitorLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiter.Allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"detail":"Rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
