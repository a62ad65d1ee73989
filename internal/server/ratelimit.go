package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/joaorhodenntc/encontra-mais/internal/api"
)

// Per-group request budgets. Auth endpoints are throttled hard because
// credential stuffing is the realistic abuse there; the public listing
// gets a wider budget sized for a search page re-querying on every
// filter change.
const (
	authRPS   = 5
	authBurst = 10

	publicRPS   = 20
	publicBurst = 40
)

// clientIdleTTL is how long a client IP keeps its token bucket after
// its last request.
const clientIdleTTL = 3 * time.Minute

type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterClient
	rate    rate.Limit
	burst   int
}

type limiterClient struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	l := &ipLimiter{
		clients: make(map[string]*limiterClient),
		rate:    rate.Limit(rps),
		burst:   burst,
	}
	go l.prune()
	return l
}

func (l *ipLimiter) prune() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for ip, c := range l.clients {
			if time.Since(c.lastSeen) > clientIdleTTL {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &limiterClient{bucket: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()

	return c.bucket.Allow()
}

// RateLimitMiddleware throttles requests per client IP. Each route
// group builds its own middleware, so the auth and public-listing
// groups keep separate token buckets.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(rps, burst)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
