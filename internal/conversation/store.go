package conversation

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUStore keeps sessions in memory; a session untouched for ttl falls back to Idle,
// and at most size users are tracked.
type LRUStore struct {
	cache *expirable.LRU[int64, Session]
}

func NewLRUStore(size int, ttl time.Duration) *LRUStore {
	return &LRUStore{cache: expirable.NewLRU[int64, Session](size, nil, ttl)}
}

func (s *LRUStore) Get(userID int64) (Session, bool) {
	return s.cache.Get(userID)
}

func (s *LRUStore) Set(userID int64, sess Session) {
	s.cache.Add(userID, sess)
}

func (s *LRUStore) Clear(userID int64) {
	s.cache.Remove(userID)
}

// Len is the number of tracked sessions.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
