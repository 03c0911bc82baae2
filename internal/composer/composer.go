// Package composer renders result tables in the representation the
// caller asked for.
package composer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

type Format int

const (
	FormatCSV Format = iota
	FormatTSV
	FormatJSON
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeTSV  = "text/tab-separated-values"
	contentTypeJSON = "application/json"
)

func formatString(f Format) string {
	switch f {
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	default:
		return "csv"
	}
}

type NegotiationInput struct {
	AcceptHeader  string
	OutputFormat  string
	DefaultFormat Format
}

type Negotiation struct {
	Format      Format
	ContentType string
}

func negotiationFor(f Format) Negotiation {
	switch f {
	case FormatTSV:
		return Negotiation{Format: FormatTSV, ContentType: contentTypeTSV}
	case FormatJSON:
		return Negotiation{Format: FormatJSON, ContentType: contentTypeJSON}
	default:
		return Negotiation{Format: FormatCSV, ContentType: contentTypeCSV}
	}
}

// NegotiateFormat determines the output format and content type. An
// explicit format parameter wins over the Accept header.
func NegotiateFormat(in NegotiationInput) Negotiation {
	of := strings.ToLower(strings.TrimSpace(in.OutputFormat))
	switch {
	case of == "csv" || strings.HasPrefix(of, contentTypeCSV):
		return negotiationFor(FormatCSV)
	case of == "tsv" || strings.HasPrefix(of, contentTypeTSV):
		return negotiationFor(FormatTSV)
	case of == "json" || strings.HasPrefix(of, contentTypeJSON):
		return negotiationFor(FormatJSON)
	}

	ah := strings.ToLower(in.AcceptHeader)
	bestQ := -1.0
	best := Negotiation{}
	for part := range strings.SplitSeq(ah, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		mt := token
		params := ""
		if i := strings.Index(token, ";"); i >= 0 {
			mt = strings.TrimSpace(token[:i])
			params = token[i+1:]
		}
		q := 1.0
		for p := range strings.SplitSeq(params, ";") {
			p = strings.TrimSpace(p)
			if after, ok := strings.CutPrefix(p, "q="); ok {
				if v, err := strconv.ParseFloat(after, 64); err == nil {
					q = v
				}
			}
		}
		var cand *Negotiation
		switch {
		case mt == "*/*" || mt == "text/*":
			tmp := negotiationFor(in.DefaultFormat)
			cand = &tmp
		case mt == contentTypeCSV:
			tmp := negotiationFor(FormatCSV)
			cand = &tmp
		case mt == contentTypeTSV || strings.Contains(mt, "tab-separated"):
			tmp := negotiationFor(FormatTSV)
			cand = &tmp
		case mt == contentTypeJSON || strings.HasSuffix(mt, "+json"):
			tmp := negotiationFor(FormatJSON)
			cand = &tmp
		}
		if cand != nil && q > bestQ {
			bestQ = q
			best = *cand
		}
	}
	if bestQ >= 0 {
		return best
	}

	return negotiationFor(in.DefaultFormat)
}

type Result struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Compose renders tab in the negotiated representation.
func Compose(tab model.Table, in NegotiationInput) (Result, error) {
	neg := NegotiateFormat(in)
	body, err := Render(tab, neg.Format)
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", formatString(neg.Format), err)
	}
	return Result{StatusCode: http.StatusOK, Body: body, ContentType: neg.ContentType}, nil
}

// Render serializes tab. CSV and TSV emit a header row first; JSON
// carries columns and rows as separate members.
func Render(tab model.Table, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return renderSeparated(tab, ',')
	case FormatTSV:
		return renderSeparated(tab, '\t')
	case FormatJSON:
		return renderJSON(tab)
	default:
		return nil, fmt.Errorf("unsupported format %d", f)
	}
}

func renderSeparated(tab model.Table, comma rune) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma

	if len(tab.Columns) > 0 {
		if err := w.Write(tab.Columns); err != nil {
			return nil, err
		}
	}
	for _, row := range tab.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(tab model.Table) ([]byte, error) {
	out := struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}{
		Columns: tab.Columns,
		Rows:    tab.Rows,
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Rows == nil {
		out.Rows = [][]string{}
	}
	return json.Marshal(out)
}
