// Package decision picks catalog cache lifetimes from kind and request heat.
package decision

import "time"

type Interface interface {
	// TTL returns the cache lifetime for a catalog payload. kind is the
	// payload class and scope the mart or dataset it belongs to.
	TTL(kind, scope string) time.Duration
	// Hot reports whether the scope's request heat crossed the threshold.
	Hot(scope string) bool
}
