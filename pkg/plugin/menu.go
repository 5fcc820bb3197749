// ABOUTME: TTL store for inline context menus awaiting a context_menu request
// ABOUTME: Entries expire after a fixed lifetime; reads do not extend it

package plugin

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultContextMenuTTL is how long inline context menus stay retrievable.
const DefaultContextMenuTTL = 10 * time.Minute

// maxInlineMenus bounds the store; the least recently used menu goes first.
const maxInlineMenus = 4096

type menuStore struct {
	cache *ttlcache.Cache[string, []Result]
	ttl   time.Duration
}

func newMenuStore(ttl time.Duration) *menuStore {
	if ttl <= 0 {
		ttl = DefaultContextMenuTTL
	}
	c := ttlcache.New[string, []Result](
		ttlcache.WithTTL[string, []Result](ttl),
		ttlcache.WithCapacity[string, []Result](maxInlineMenus),
		ttlcache.WithDisableTouchOnHit[string, []Result](),
	)
	return &menuStore{cache: c, ttl: ttl}
}

// sweep deletes expired menus once per TTL until ctx is done. Expired
// entries are never returned by get, sweeping only frees their memory.
func (m *menuStore) sweep(ctx context.Context) {
	t := time.NewTicker(m.ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.cache.DeleteExpired()
		}
	}
}

func (m *menuStore) put(key string, results []Result) {
	m.cache.Set(key, results, ttlcache.DefaultTTL)
}

func (m *menuStore) get(key string) ([]Result, bool) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (m *menuStore) len() int { return m.cache.Len() }
