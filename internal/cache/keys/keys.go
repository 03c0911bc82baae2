package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Catalog builds the cache key for one decoded catalog payload. kind is
// the payload class (registry, datasets, config) and scope narrows it to
// a mart or dataset name. Scope text is sanitized so server-supplied
// names cannot smuggle separators or non-ASCII runes into keys.
func Catalog(kind, scope string) string {
	k := sanitizeForKey(strings.TrimSpace(kind))
	s := sanitizeForKey(collapseASCIIWhitespace(scope))

	const maxScopeLen = 120
	if len(s) > maxScopeLen {
		s = s[:maxScopeLen]
	}

	if s == "" {
		return "catalog:" + k
	}
	return "catalog:" + k + ":" + s
}

// Fingerprint digests a built query document into a short stable id used
// in log lines and published events.
func Fingerprint(doc string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(doc))
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '=':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

// converts any run of ASCII whitespace to a single space.
func collapseASCIIWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasWS := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
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

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
