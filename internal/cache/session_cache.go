package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/yhafez/read-master-sub002/internal/models"
)

// TTL constants. The sync snapshot TTL is sized just under the default client
// poll interval so the polling herd is absorbed by Redis instead of Postgres.
const (
	SyncStateTTL = 2 * time.Second
	FirstPageTTL = 5 * time.Second
)

// SessionCache handles live-session caching (sync snapshots and the first
// message page, which every joining client fetches).
type SessionCache struct {
	redis *RedisCache
}

// NewSessionCache creates a new session cache
func NewSessionCache(redis *RedisCache) *SessionCache {
	return &SessionCache{redis: redis}
}

func syncStateKey(sessionID uint) string {
	return fmt.Sprintf("session:%d:sync", sessionID)
}

func firstPageKey(sessionID uint) string {
	return fmt.Sprintf("session:%d:messages:first", sessionID)
}

// GetSyncState retrieves a cached sync snapshot
func (sc *SessionCache) GetSyncState(sessionID uint) (*models.SyncState, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(syncStateKey(sessionID))
	if err != nil || data == nil {
		return nil, false
	}

	var state models.SyncState
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, false
	}

	return &state, true
}

// SetSyncState caches a sync snapshot
func (sc *SessionCache) SetSyncState(sessionID uint, state *models.SyncState) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(state)
	if err != nil {
		return err
	}

	return sc.redis.Set(syncStateKey(sessionID), data, SyncStateTTL)
}

// InvalidateSyncState removes a sync snapshot from cache
func (sc *SessionCache) InvalidateSyncState(sessionID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(syncStateKey(sessionID))
}

// FirstPage is the cached newest message page. The pagination markers are
// stored with the rows: recomputing has_more from the trimmed slice alone
// would report false whenever the page is exactly full.
type FirstPage struct {
	Messages   []models.SessionMessageResponse `msgpack:"messages"`
	HasMore    bool                            `msgpack:"has_more"`
	NextCursor uint                            `msgpack:"next_cursor"`
}

// GetFirstPage retrieves the cached newest message page
func (sc *SessionCache) GetFirstPage(sessionID uint) (*FirstPage, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(firstPageKey(sessionID))
	if err != nil || data == nil {
		return nil, false
	}

	var page FirstPage
	if err := msgpack.Unmarshal(data, &page); err != nil {
		return nil, false
	}

	return &page, true
}

// SetFirstPage caches the newest message page
func (sc *SessionCache) SetFirstPage(sessionID uint, page *FirstPage) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(page)
	if err != nil {
		return err
	}

	return sc.redis.Set(firstPageKey(sessionID), data, FirstPageTTL)
}

// InvalidateMessages removes the cached message page for a session
func (sc *SessionCache) InvalidateMessages(sessionID uint) error {
	if sc == nil || sc.redis == nil {
		return nil
	}
	return sc.redis.Delete(firstPageKey(sessionID))
}
