package biomart

import (
	"sort"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/mart"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/resolve"
)

// ValidateAttributes resolves requested attribute names against a
// dataset catalog, best effort: unknown names are dropped, several
// matches take the first in catalog order, and the result keeps request
// order since it fixes the output columns. Repeats collapse onto their
// first occurrence.
func ValidateAttributes(requested []string, attrs []model.Attribute) []string {
	entries := model.Entries(attrs)
	seen := make(map[string]struct{}, len(requested))
	var out []string
	for _, want := range requested {
		e, ok := resolve.First(want, entries)
		if !ok {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	return out
}

// ValidateFilters resolves requested filter names the same way and
// types each value against the filter's kind. Unknown names drop out
// silently; a value of the wrong shape is an InvalidFilterValueError.
// Clauses come back in sorted name order so built queries are
// deterministic.
func ValidateFilters(requested map[string]any, filters []model.Filter) ([]model.FilterClause, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(requested))
	for k := range requested {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := model.Entries(filters)
	byName := make(map[string]model.Filter, len(filters))
	for _, f := range filters {
		byName[f.Name] = f
	}

	seen := make(map[string]struct{}, len(keys))
	var out []model.FilterClause
	for _, k := range keys {
		e, ok := resolve.First(k, entries)
		if !ok {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		clause, err := mart.TranslateFilter(byName[e.Name], requested[k])
		if err != nil {
			return nil, err
		}
		seen[e.Name] = struct{}{}
		out = append(out, clause)
	}
	return out, nil
}

func defaultAttributes(attrs []model.Attribute) []string {
	var out []string
	for _, a := range attrs {
		if a.Default {
			out = append(out, a.Name)
		}
	}
	return out
}
