package simple

import (
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/decision"
	"github.com/mohammed-shakir/biomart-gateway/internal/hotness"
)

type Engine struct {
	Heat      hotness.Interface
	Threshold float64

	Base   time.Duration
	HotTTL time.Duration

	// Overrides pins the TTL for a catalog kind regardless of heat.
	Overrides map[string]time.Duration
}

var _ decision.Interface = (*Engine)(nil)

// returns true if the scope's current score reaches the threshold
func (e *Engine) Hot(scope string) bool {
	if scope == "" || e.Heat == nil || e.Threshold <= 0 {
		return false
	}
	return e.Heat.Score(scope) >= e.Threshold
}

// TTL applies kind overrides first, then stretches the lifetime for hot
// scopes so busy datasets keep their catalogs resident longer.
func (e *Engine) TTL(kind, scope string) time.Duration {
	if d, ok := e.Overrides[kind]; ok {
		return d
	}
	if e.HotTTL > e.Base && e.Hot(scope) {
		return e.HotTTL
	}
	return e.Base
}
