// Package homology expands cross-species orthology requests into the
// attribute names the service exposes them under.
package homology

import (
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/resolve"
)

// Expand resolves each requested species against the derived species
// catalog and produces one attribute name per species and field,
// species-major. Attribute names follow the service convention
// <token>_homolog_<field>. Species that match nothing are dropped;
// several matches take the first, keeping bulk fetches permissive.
// Either list empty means no expansion.
func Expand(species []model.Entry, homSpecies, homQuery []string) []string {
	if len(homSpecies) == 0 || len(homQuery) == 0 {
		return nil
	}
	out := make([]string, 0, len(homSpecies)*len(homQuery))
	for _, want := range homSpecies {
		sp, ok := resolve.First(want, species)
		if !ok {
			continue
		}
		for _, field := range homQuery {
			out = append(out, sp.Name+"_homolog_"+field)
		}
	}
	return out
}
