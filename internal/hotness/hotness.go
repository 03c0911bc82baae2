// Package hotness tracks per-dataset request heat for cache TTL decisions.
package hotness

type Interface interface {
	Inc(key string)
	Score(key string) float64
	Reset(keys ...string)
}
