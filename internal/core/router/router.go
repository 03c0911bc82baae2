package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/cache/keys"
	"github.com/mohammed-shakir/biomart-gateway/internal/composer"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/observability"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/resolve"
	"github.com/mohammed-shakir/biomart-gateway/internal/queryevents"
	"github.com/mohammed-shakir/biomart-gateway/pkg/biomart"
)

// Backend is the catalog and query surface the handlers serve from.
// *biomart.Client satisfies it; scenarios may hand in a decorated one.
type Backend interface {
	ListDatabases(ctx context.Context) ([]model.Database, error)
	Datasets(ctx context.Context, database string) ([]model.Dataset, error)
	FindDatasets(ctx context.Context, database, species string) ([]model.Dataset, error)
	Attributes(ctx context.Context, ref biomart.Ref) ([]model.Attribute, error)
	Filters(ctx context.Context, ref biomart.Ref) ([]model.Filter, error)
	Homology(ctx context.Context, ref biomart.Ref) (biomart.HomologyInfo, error)
	Fetch(ctx context.Context, req biomart.Request) (model.Table, error)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument observes method, route and status for every request.
func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

func HandleDatabases(logger *slog.Logger, b Backend) http.HandlerFunc {
	return instrument("/databases", func(w http.ResponseWriter, r *http.Request) {
		dbs, err := b.ListDatabases(r.Context())
		if err != nil {
			writeError(logger, w, err)
			return
		}

		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			matches := resolve.Match(q, model.Entries(dbs))
			keep := make(map[string]struct{}, len(matches))
			for _, e := range matches {
				keep[e.Name] = struct{}{}
			}
			kept := dbs[:0]
			for _, db := range dbs {
				if _, ok := keep[db.Name]; ok {
					kept = append(kept, db)
				}
			}
			dbs = kept
		}

		out := make([]databaseDTO, 0, len(dbs))
		for _, db := range dbs {
			out = append(out, databaseDTO{Name: db.Name, DisplayName: db.DisplayName, Visible: db.Visible})
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func HandleDatasets(logger *slog.Logger, b Backend) http.HandlerFunc {
	return instrument("/datasets", func(w http.ResponseWriter, r *http.Request) {
		db := strings.TrimSpace(r.URL.Query().Get("db"))
		if db == "" {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: "missing required parameter: db"})
			return
		}
		species := strings.TrimSpace(r.URL.Query().Get("species"))

		var (
			ds  []model.Dataset
			err error
		)
		if species != "" {
			ds, err = b.FindDatasets(r.Context(), db, species)
		} else {
			ds, err = b.Datasets(r.Context(), db)
		}
		if err != nil {
			writeError(logger, w, err)
			return
		}

		out := make([]datasetDTO, 0, len(ds))
		for _, d := range ds {
			out = append(out, datasetDTO{Name: d.Name, DisplayName: d.DisplayName, Mart: d.Mart})
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func HandleAttributes(logger *slog.Logger, b Backend) http.HandlerFunc {
	return instrument("/attributes", func(w http.ResponseWriter, r *http.Request) {
		ref, err := parseRef(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
			return
		}
		attrs, err := b.Attributes(r.Context(), ref)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		out := make([]attributeDTO, 0, len(attrs))
		for _, a := range attrs {
			out = append(out, attributeDTO{
				Name:        a.Name,
				DisplayName: a.DisplayName,
				Description: a.Description,
				Default:     a.Default,
			})
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func HandleFilters(logger *slog.Logger, b Backend) http.HandlerFunc {
	return instrument("/filters", func(w http.ResponseWriter, r *http.Request) {
		ref, err := parseRef(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
			return
		}
		filters, err := b.Filters(r.Context(), ref)
		if err != nil {
			writeError(logger, w, err)
			return
		}

		out := make([]filterDTO, 0, len(filters))
		for _, f := range filters {
			d := filterDTO{
				Name:        f.Name,
				DisplayName: f.DisplayName,
				Type:        f.Type,
				Kind:        f.Kind().String(),
				Operator:    f.Operator,
			}
			for _, o := range f.Options {
				d.Options = append(d.Options, optionDTO{Name: o.Name, DisplayName: o.DisplayName, Value: o.Value})
			}
			out = append(out, d)
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func HandleHomology(logger *slog.Logger, b Backend) http.HandlerFunc {
	return instrument("/homology", func(w http.ResponseWriter, r *http.Request) {
		ref, err := parseRef(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
			return
		}
		info, err := b.Homology(r.Context(), ref)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		out := homologyDTO{Species: toEntryDTOs(info.Species), Fields: info.Fields}
		if out.Species == nil {
			out.Species = []entryDTO{}
		}
		if out.Fields == nil {
			out.Fields = []string{}
		}
		writeJSON(w, http.StatusOK, out)
	})
}

// HandleQuery validates input query params, runs the fetch and renders
// the table in the negotiated format.
func HandleQuery(logger *slog.Logger, cfg config.Config, b Backend) http.HandlerFunc {
	return instrument("/query", func(w http.ResponseWriter, r *http.Request) {
		req, warn, err := ParseQueryRequest(r, cfg.MaxFilterBytes)
		if warn != "" {
			logger.Warn(warn)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
			return
		}

		start := time.Now()
		tab, err := b.Fetch(r.Context(), req)
		if err != nil {
			writeError(logger, w, err)
			publishEvent(cfg, req, -1, time.Since(start))
			return
		}
		publishEvent(cfg, req, len(tab.Rows), time.Since(start))

		res, err := composer.Compose(tab, composer.NegotiationInput{
			AcceptHeader:  r.Header.Get("Accept"),
			OutputFormat:  r.URL.Query().Get("format"),
			DefaultFormat: composer.FormatCSV,
		})
		if err != nil {
			writeError(logger, w, err)
			return
		}
		w.Header().Set("Content-Type", res.ContentType)
		w.WriteHeader(res.StatusCode)
		_, _ = w.Write(res.Body)
	})
}

// publishEvent emits one usage event per executed query. The dataset is
// reported as requested; a negative row count marks a failed fetch.
func publishEvent(cfg config.Config, req biomart.Request, rows int, took time.Duration) {
	ds := req.Ref.Dataset
	if ds == "" {
		ds = req.Ref.Database + "/" + req.Ref.Species
	}
	queryevents.Publish(queryevents.Event{
		Dataset:     ds,
		Attributes:  len(req.Attributes),
		Filters:     len(req.Filters),
		Homologs:    len(req.HomSpecies),
		Rows:        rows,
		DurationMS:  took.Milliseconds(),
		Fingerprint: keys.Fingerprint(requestCanonical(req)),
		Scenario:    cfg.Scenario,
	})
}

// requestCanonical flattens a request into a stable string so equal
// requests share a fingerprint.
func requestCanonical(req biomart.Request) string {
	var b strings.Builder
	b.WriteString(req.Ref.Dataset)
	b.WriteByte('|')
	b.WriteString(req.Ref.Database)
	b.WriteByte('|')
	b.WriteString(req.Ref.Species)
	b.WriteByte('|')
	b.WriteString(strings.Join(req.Attributes, ","))
	b.WriteByte('|')
	if len(req.Filters) > 0 {
		names := make([]string, 0, len(req.Filters))
		for k := range req.Filters {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			fmt.Fprintf(&b, "%s=%v;", k, req.Filters[k])
		}
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(req.HomSpecies, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(req.HomQuery, ","))
	if req.AllRows {
		b.WriteString("|all")
	}
	return b.String()
}

// ParseQueryRequest validates the query string of a /query request.
func ParseQueryRequest(r *http.Request, maxFilterBytes int) (biomart.Request, string, error) {
	var warn string
	q := r.URL.Query()

	ref := biomart.Ref{
		Dataset:  strings.TrimSpace(q.Get("dataset")),
		Database: strings.TrimSpace(q.Get("db")),
		Species:  strings.TrimSpace(q.Get("species")),
	}
	// drop db/species if dataset is given (dataset wins)
	if ref.Dataset != "" && (ref.Database != "" || ref.Species != "") {
		warn = "both dataset and db/species supplied; preferring dataset"
		ref.Database, ref.Species = "", ""
	}
	if ref.Dataset == "" && (ref.Database == "" || ref.Species == "") {
		return biomart.Request{}, warn, errors.New("missing required parameter: dataset, or db and species")
	}

	filters, err := parseFilters(q.Get("filters"), maxFilterBytes)
	if err != nil {
		return biomart.Request{}, warn, fmt.Errorf("invalid filters: %w", err)
	}

	allRows := false
	if v := strings.TrimSpace(q.Get("all_rows")); v != "" {
		allRows, err = strconv.ParseBool(v)
		if err != nil {
			return biomart.Request{}, warn, fmt.Errorf("invalid all_rows: %w", err)
		}
	}

	homSpecies := splitList(q.Get("homologs"))
	homQuery := splitList(q.Get("homology_fields"))
	if len(homSpecies) > 0 && len(homQuery) == 0 {
		return biomart.Request{}, warn, errors.New("homologs given without homology_fields")
	}
	if len(homQuery) > 0 && len(homSpecies) == 0 {
		return biomart.Request{}, warn, errors.New("homology_fields given without homologs")
	}

	return biomart.Request{
		Ref:        ref,
		Attributes: splitList(q.Get("attrs")),
		Filters:    filters,
		HomSpecies: homSpecies,
		HomQuery:   homQuery,
		AllRows:    allRows,
	}, warn, nil
}

// parseRef reads the dataset reference shared by the catalog handlers.
// Either dataset alone or the db and species pair identifies one.
func parseRef(r *http.Request) (biomart.Ref, error) {
	q := r.URL.Query()
	ref := biomart.Ref{
		Dataset:  strings.TrimSpace(q.Get("dataset")),
		Database: strings.TrimSpace(q.Get("db")),
		Species:  strings.TrimSpace(q.Get("species")),
	}
	if ref.Dataset == "" && (ref.Database == "" || ref.Species == "") {
		return biomart.Ref{}, errors.New("missing required parameter: dataset, or db and species")
	}
	return ref, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseFilters decodes the filters parameter, a JSON object mapping
// filter names to values. The raw text is size-capped before decoding.
func parseFilters(raw string, maxBytes int) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, fmt.Errorf("filters exceed %d bytes", maxBytes)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return m, nil
}
