package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"clinic-backend/pkg/response"

	"golang.org/x/time/rate"
)

// clientLimiter pairs a token bucket with its last-seen instant so stale
// entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per source address. The table is
// process-local and lost on restart.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	budget   int
	window   time.Duration
	stopOnce sync.Once
	stop     chan struct{}
}

// NewRateLimiter builds a limiter allowing budget requests per window from
// each source address.
func NewRateLimiter(budget int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(budget) / window.Seconds()),
		burst:   budget,
		budget:  budget,
		window:  window,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Handle enforces the bucket and emits standard throttling headers.
func (rl *RateLimiter) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		limiter := rl.limiterFor(addr)

		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.budget))
		w.Header().Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", rl.budget, int(rl.window.Seconds())))

		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.TooManyRequests(w, "Too many requests from this address, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiterFor(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[addr]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[addr] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupLoop evicts buckets idle for longer than three windows.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for addr, client := range rl.clients {
				if now.Sub(client.lastSeen) > 3*rl.window {
					delete(rl.clients, addr)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the cleanup loop.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
