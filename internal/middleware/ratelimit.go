package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"reachright.co.za/web/internal/observability"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a per-key token bucket kept in process memory.
type MemoryLimiter struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter builds a token bucket allowing rps events per second with
// the given burst for every key.
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MemoryLimiter{
		entries:      make(map[string]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	ent, ok := m.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(m.rps, m.burst)}
		m.entries[key] = ent
	}
	ent.lastSeen = now
	m.mu.Unlock()

	res := ent.lim.ReserveN(now, 1)
	if !res.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

// Cleanup drops keys that have been idle longer than the idle TTL.
func (m *MemoryLimiter) Cleanup() {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, ent := range m.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(m.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (m *MemoryLimiter) StartJanitor(ctx context.Context) {
	if m.cleanupEvery <= 0 {
		return
	}
	t := time.NewTicker(m.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Cleanup()
			}
		}
	}()
}

func (m *MemoryLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RedisLimiter is a fixed-window counter shared by every instance that talks
// to the same Redis.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit events per window for every key.
func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit < 1 {
		limit = 1
	}
	return &RedisLimiter{
		rdb:    rdb,
		prefix: "reachright:ratelimit",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	bucket, reset := l.bucket(key, now)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true}, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if incr.Val() > l.limit {
		return Decision{Allowed: false, RetryAfter: reset}, nil
	}
	return Decision{Allowed: true}, nil
}

// bucket returns the window key for now and the time left in that window.
func (l *RedisLimiter) bucket(key string, now time.Time) (string, time.Duration) {
	start := now.Truncate(l.window)
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix()), start.Add(l.window).Sub(now)
}

// RateLimitOptions configures the RateLimit middleware.
type RateLimitOptions struct {
	Limiter Limiter
	// KeyFn identifies the caller. Defaults to the client IP.
	KeyFn func(*http.Request) string
	// OnLimited renders the rejection. Defaults to a 429 error response.
	OnLimited func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

// RateLimit rejects requests once the limiter denies the caller's key. Limiter
// errors are logged and the request is let through.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = rateLimitKey
	}
	if opts.OnLimited == nil {
		opts.OnLimited = func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
			writeError(w, r, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
		}
	}
	return func(next http.Handler) http.Handler {
		if opts.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			dec, err := opts.Limiter.Allow(r.Context(), key)
			if err != nil {
				observability.FromContext(r.Context()).Warn("rate limit check failed", zap.Error(err))
			}
			if !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter))
				opts.OnLimited(w, r, dec.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	ip := clientIP(r)
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip = strings.TrimSpace(ip); ip == "" {
		return "unknown"
	}
	return ip
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
