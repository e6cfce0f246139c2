package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/server/respond"
)

const (
	DefaultRateLimitGroup = "DEFAULT"
	// LLMRateLimitGroup covers routes that issue model calls.
	LLMRateLimitGroup = "LLM"

	pruneEvery = 5 * time.Minute
)

// RateLimitRule allows PerMinute requests on average with bursts up to Burst.
// A zero rule disables limiting for its group.
type RateLimitRule struct {
	PerMinute float64
	Burst     int
}

func (r RateLimitRule) perSecond() float64 { return r.PerMinute / 60 }

func (r RateLimitRule) disabled() bool { return r.PerMinute <= 0 || r.Burst <= 0 }

type RateLimitConfig struct {
	Rules    map[string]RateLimitRule
	GroupFor func(*gin.Context) string
	Limiter  *RateLimiter
}

// RateLimiter keeps one token bucket per client and group.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastPrune time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
	burst  int
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now, lastPrune: now()}
}

// LLMRoutes maps "METHOD /full/path" route patterns to LLMRateLimitGroup.
func LLMRoutes(routes ...string) func(*gin.Context) string {
	set := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		set[r] = struct{}{}
	}
	return func(c *gin.Context) string {
		if _, ok := set[c.Request.Method+" "+c.FullPath()]; ok {
			return LLMRateLimitGroup
		}
		return DefaultRateLimitGroup
	}
}

func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		group := DefaultRateLimitGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok || rule.disabled() {
			c.Next()
			return
		}

		allowed, wait := cfg.Limiter.Allow(c.ClientIP()+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}
		waitMs := max(wait.Milliseconds(), 1)
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(float64(waitMs)/1000)), 10))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"retryAfterMs": waitMs,
			"group":        group,
		})
	}
}

// Allow takes a token from key's bucket. When none is left it reports how
// long until one is.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) >= pruneEvery {
		l.prune(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	b.burst = rule.Burst
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.perSecond())
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := (1 - b.tokens) / rule.perSecond()
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// prune drops buckets idle long enough to have refilled completely. Refill
// speed is unknown here, so "long enough" is one prune interval.
func (l *RateLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) >= pruneEvery {
			delete(l.buckets, key)
		}
	}
	l.lastPrune = now
}

// Len returns the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
