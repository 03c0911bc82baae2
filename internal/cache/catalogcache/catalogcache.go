// Package catalogcache keeps decoded catalog payloads in a bounded
// in-process LRU with a per-entry TTL.
package catalogcache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/biomart-gateway/internal/cache"
)

const defaultSize = 256

type entry struct {
	val any
	exp time.Time
}

type Cache struct {
	lru *lru.Cache[string, entry]

	now func() time.Time
}

var _ cache.Interface = (*Cache)(nil)

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultSize
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: time.Now}, nil
}

// Get returns the cached value for key. Entries past their deadline are
// dropped and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.val, true
}

// Put stores val under key. A ttl of zero or less means the entry never
// expires and lives until LRU eviction.
func (c *Cache) Put(key string, val any, ttl time.Duration) {
	if key == "" {
		return
	}
	e := entry{val: val}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
}

func (c *Cache) Remove(keys ...string) {
	for _, k := range keys {
		c.lru.Remove(k)
	}
}

func (c *Cache) Len() int { return c.lru.Len() }

func (c *Cache) Purge() { c.lru.Purge() }
