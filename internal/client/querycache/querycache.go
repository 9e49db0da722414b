package querycache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Key addresses one cached query result. Keys form a hierarchy so whole
// branches can be invalidated at once:
//
//	orders                     all order queries
//	orders/list                every list
//	orders/list/<accountId>    one account's list
//	orders/detail              every detail
//	orders/detail/<id>         one order
type Key string

func AllOrders() Key {
	return "orders"
}

func Lists() Key {
	return "orders/list"
}

func List(accountID string) Key {
	return Key("orders/list/" + accountID)
}

func Details() Key {
	return "orders/detail"
}

func Detail(id int64) Key {
	return Key("orders/detail/" + strconv.FormatInt(id, 10))
}

// hasPrefix reports whether k lives under branch in the key hierarchy.
func (k Key) hasPrefix(branch Key) bool {
	return k == branch || strings.HasPrefix(string(k), string(branch)+"/")
}

type entry struct {
	value     any
	stale     bool
	updatedAt time.Time
}

// Cache is an owned key-value store for query results. It is safe for
// concurrent use and is only touched through Get, Set and Invalidate; there
// is no ambient global instance.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
	}
}

// Get returns the cached value for key. Stale entries are reported as
// misses.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}

	return e.value, true
}

// Set stores a fresh value under key, replacing any prior entry.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		updatedAt: time.Now(),
	}
}

// Invalidate marks the branch rooted at key stale. The values stay in place
// until replaced so failed refetches do not erase the last known state.
func (c *Cache) Invalidate(branch Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if key.hasPrefix(branch) {
			e.stale = true
			c.entries[key] = e
		}
	}
}

// Len returns the number of entries, stale included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
