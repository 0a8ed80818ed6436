package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Limiter is a best-effort in-memory attempt counter keyed by a hash of an
// identifier (usually an email address). Entries older than the window are
// pruned before every check. State is advisory and not durable.
type Limiter struct {
	mu          sync.Mutex
	entries     map[string]*entry
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

type entry struct {
	attempts int
	start    time.Time
}

func New(maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		entries:     make(map[string]*entry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Allow records an attempt for the identifier and reports whether it is
// within the limit. The attempt that hits the cap is the first one refused.
func (l *Limiter) Allow(identifier string) bool {
	key := hashIdentifier(identifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.entries {
		if now.Sub(e.start) > l.window {
			delete(l.entries, k)
		}
	}

	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &entry{attempts: 1, start: now}
		return true
	}
	if e.attempts >= l.maxAttempts {
		return false
	}
	e.attempts++
	return true
}

func hashIdentifier(identifier string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(identifier))))
	return hex.EncodeToString(h[:])
}
