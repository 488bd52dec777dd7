// Package guard filters incoming events before dispatch: users writing faster
// than the flood window and updates that sat in the queue too long.
package guard

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultFloodTTL      = 3 * time.Second
	DefaultFloodCapacity = 100
	DefaultMaxAge        = 30 * time.Second
)

// FloodGuard admits at most one event per user per TTL. The set is bounded;
// when full, the oldest inserted user is forgotten first.
type FloodGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	users *expirable.LRU[int64, struct{}]
}

func NewFloodGuard(ttl time.Duration, capacity int) *FloodGuard {
	if ttl <= 0 {
		ttl = DefaultFloodTTL
	}
	if capacity <= 0 {
		capacity = DefaultFloodCapacity
	}
	return &FloodGuard{
		ttl:   ttl,
		users: expirable.NewLRU[int64, struct{}](capacity, nil, ttl),
	}
}

// Admit records the user and returns true, or returns false when the user
// already has a live entry. Check and insert happen under one lock.
func (g *FloodGuard) Admit(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Peek honours expiry without touching recency, so eviction stays insertion-ordered.
	if _, ok := g.users.Peek(userID); ok {
		return false
	}
	g.users.Add(userID, struct{}{})
	return true
}

func (g *FloodGuard) TTL() time.Duration { return g.ttl }

// StalenessGuard drops events older than MaxAge.
type StalenessGuard struct {
	MaxAge time.Duration
}

func NewStalenessGuard(maxAge time.Duration) StalenessGuard {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return StalenessGuard{MaxAge: maxAge}
}

// Fresh reports whether an event sent at sentAt may still be handled at now.
func (g StalenessGuard) Fresh(sentAt, now time.Time) bool {
	return now.Sub(sentAt) <= g.MaxAge
}
