// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"efoodadmin/internal/render"
)

// attempts holds the times of one client's recent requests, oldest first.
type attempts struct {
	mu    sync.Mutex
	times []time.Time
}

// prune drops attempts at or before cutoff.
func (a *attempts) prune(cutoff time.Time) {
	i := 0
	for i < len(a.times) && !a.times[i].After(cutoff) {
		i++
	}
	a.times = a.times[i:]
}

// RateLimiter caps login and OTP attempts per client IP over a sliding
// window.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*attempts
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
}

// NewRateLimiter allows limit attempts per window and sweeps idle clients
// in the background until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*attempts),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background sweep.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// entry returns the attempt log for key, creating it on first use.
func (rl *RateLimiter) entry(key string) *attempts {
	rl.mu.RLock()
	a, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return a
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if a, ok = rl.clients[key]; !ok {
		a = &attempts{}
		rl.clients[key] = a
	}
	return a
}

// allow records an attempt for key. When the key is over its limit the
// attempt is not recorded and retry is the time until the oldest attempt
// leaves the window.
func (rl *RateLimiter) allow(key string) (ok bool, retry time.Duration) {
	a := rl.entry(key)
	now := rl.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.prune(now.Add(-rl.window))
	if len(a.times) >= rl.limit {
		return false, a.times[0].Add(rl.window).Sub(now)
	}
	a.times = append(a.times, now)
	return true, 0
}

// cleanup forgets clients with no attempt inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, a := range rl.clients {
		a.mu.Lock()
		a.prune(cutoff)
		idle := len(a.times) == 0
		a.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientIP(r))
		if !ok {
			secs := max(1, int(math.Ceil(retry.Seconds())))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			render.Error(w, http.StatusTooManyRequests, "Too many attempts. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the originating client address: the leftmost
// X-Forwarded-For entry, then X-Real-IP, then the connection host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
