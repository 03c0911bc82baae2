// Package cache defines the store contract for decoded catalog payloads.
package cache

import "time"

type Interface interface {
	Get(key string) (any, bool)
	Put(key string, val any, ttl time.Duration)
	Remove(keys ...string)
}
