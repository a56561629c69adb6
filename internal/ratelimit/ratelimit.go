// Package ratelimit throttles slash commands per member.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/mellow/internal/constants"
)

type Config struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
	TTL             time.Duration
}

func DefaultConfig() Config {
	return Config{
		Rate:            rate.Limit(constants.CommandRatePerSecond),
		Burst:           constants.CommandBurst,
		CleanupInterval: constants.LimiterCleanup,
		TTL:             constants.LimiterTTL,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter keeps one token bucket per key and drops idle buckets in the
// background until Stop is called.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow spends one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)}
		l.entries[key] = e
	}
	e.lastUsed = now
	return e.limiter.AllowN(now, 1)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, e := range l.entries {
		if now.Sub(e.lastUsed) > l.cfg.TTL {
			delete(l.entries, k)
		}
	}
}
