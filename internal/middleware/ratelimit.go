package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	limit   int
	per     time.Duration
}

// RateLimit caps requests per client IP in a fixed window. Applied to the
// dispatch endpoint so the orchestrator itself is not the one bursting.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		per:     per,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if retryAfter, ok := rl.take(ClientIP(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take consumes one slot for ip. On refusal it returns the time left in the
// current window.
func (rl *rateLimiter) take(ip string) (time.Duration, bool) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.windows[ip]
	if !ok || now.After(win.resetAt) {
		rl.prune(now)
		win = &rateWindow{resetAt: now.Add(rl.per)}
		rl.windows[ip] = win
	}
	if win.count >= rl.limit {
		return time.Until(win.resetAt), false
	}
	win.count++
	return 0, true
}

// prune drops expired windows so the map does not grow with one-off clients.
// Called with the mutex held.
func (rl *rateLimiter) prune(now time.Time) {
	for ip, win := range rl.windows {
		if now.After(win.resetAt) {
			delete(rl.windows, ip)
		}
	}
}
