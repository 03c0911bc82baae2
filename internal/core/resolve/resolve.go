// Package resolve matches free-form user input against mart catalogs.
package resolve

import (
	"fmt"
	"strings"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

// Normalize folds a name to the comparison form used on both sides of a
// match: lower case, underscores as spaces, whitespace runs collapsed.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasWS := false
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' || r == '_' {
			if !wasWS {
				b.WriteByte(' ')
				wasWS = true
			}
			continue
		}
		b.WriteRune(r)
		wasWS = false
	}
	return strings.TrimSpace(b.String())
}

// Match returns the entries whose internal or display name contains the
// query after normalization, in catalog order. An empty query matches
// everything.
func Match(query string, entries []model.Entry) []model.Entry {
	q := Normalize(query)
	var out []model.Entry
	for _, e := range entries {
		if strings.Contains(Normalize(e.Name), q) || strings.Contains(Normalize(e.DisplayName), q) {
			out = append(out, e)
		}
	}
	return out
}

// One resolves a query that must name exactly one entry. Zero matches is
// a NotFoundError, several is an AmbiguousError carrying the candidates.
func One(query string, entries []model.Entry, scope string) (model.Entry, error) {
	m := Match(query, entries)
	switch len(m) {
	case 0:
		return model.Entry{}, &NotFoundError{Query: query, Scope: scope}
	case 1:
		return m[0], nil
	default:
		return model.Entry{}, &AmbiguousError{Query: query, Scope: scope, Candidates: m}
	}
}

// First resolves a query best effort: the first catalog-order match wins
// and a miss is reported through ok, never as an error.
func First(query string, entries []model.Entry) (model.Entry, bool) {
	m := Match(query, entries)
	if len(m) == 0 {
		return model.Entry{}, false
	}
	return m[0], true
}

type NotFoundError struct {
	Query string
	Scope string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s matching %q", e.Scope, e.Query)
}

// AmbiguousError reports a query that matched more than one catalog
// entry. Candidates keep catalog order.
type AmbiguousError struct {
	Query      string
	Scope      string
	Candidates []model.Entry
}

func (e *AmbiguousError) Error() string {
	const maxListed = 8
	names := make([]string, 0, min(len(e.Candidates), maxListed))
	for i, c := range e.Candidates {
		if i == maxListed {
			names = append(names, fmt.Sprintf("and %d more", len(e.Candidates)-maxListed))
			break
		}
		names = append(names, c.String())
	}
	return fmt.Sprintf("%d %ss match %q: %s; narrow the query",
		len(e.Candidates), e.Scope, e.Query, strings.Join(names, ", "))
}
