// Package biomart is a client for BioMart-style query services. It
// resolves fuzzy, human-facing names (databases, species, attributes,
// filters) against the service's own catalogs, builds the wire query
// and returns tabular results.
package biomart

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/catalog"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/homology"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/httpclient"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/resolve"
)

// DefaultBaseURL is the public Ensembl mart.
const DefaultBaseURL = "http://www.ensembl.org/biomart/martservice"

// Client talks to one mart service. It holds no per-call state and is
// safe for concurrent use; every top-level call fetches the catalogs it
// needs fresh.
type Client struct {
	exec   executor.Interface
	schema string
	logger *slog.Logger
}

type options struct {
	logger  *slog.Logger
	client  *http.Client
	schema  string
	timeout time.Duration
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func WithVirtualSchema(schema string) Option {
	return func(o *options) { o.schema = schema }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New builds a client for the service at base. A base naming only a
// host gets the well-known /biomart/martservice path appended.
func New(base string, opts ...Option) (*Client, error) {
	o := applyOptions(opts)
	hc := o.client
	if hc == nil {
		hc = httpclient.NewOutbound(o.timeout)
	}
	exec, err := executor.New(o.logger, hc, base)
	if err != nil {
		return nil, err
	}
	return &Client{exec: exec, schema: o.schema, logger: o.logger}, nil
}

// NewWithService wires a client over a custom service implementation.
// The gateway uses this to slot a catalog cache between the client and
// the wire.
func NewWithService(svc executor.Interface, opts ...Option) *Client {
	o := applyOptions(opts)
	return &Client{exec: svc, schema: o.schema, logger: o.logger}
}

func applyOptions(opts []Option) options {
	o := options{schema: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// ListDatabases returns the service registry.
func (c *Client) ListDatabases(ctx context.Context) ([]model.Database, error) {
	return c.exec.Registry(ctx)
}

// Datasets lists every dataset of one database. The database name is
// matched fuzzily but must narrow to exactly one registry entry.
func (c *Client) Datasets(ctx context.Context, database string) ([]model.Dataset, error) {
	db, err := c.database(ctx, database)
	if err != nil {
		return nil, err
	}
	return c.exec.Datasets(ctx, db.Name)
}

// FindDatasets lists the datasets of a database whose name or display
// name matches species. An empty result is a valid answer, not an
// error; an empty species lists everything.
func (c *Client) FindDatasets(ctx context.Context, database, species string) ([]model.Dataset, error) {
	ds, err := c.Datasets(ctx, database)
	if err != nil {
		return nil, err
	}
	matched := resolve.Match(species, model.Entries(ds))
	keep := make(map[string]struct{}, len(matched))
	for _, e := range matched {
		keep[e.Name] = struct{}{}
	}
	var out []model.Dataset
	for _, d := range ds {
		if _, ok := keep[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Attributes returns the attribute catalog of the referenced dataset.
func (c *Client) Attributes(ctx context.Context, ref Ref) ([]model.Attribute, error) {
	name, err := c.resolveDataset(ctx, ref)
	if err != nil {
		return nil, err
	}
	attrs, _, err := c.exec.Config(ctx, name)
	return attrs, err
}

// Filters returns the filter catalog of the referenced dataset.
func (c *Client) Filters(ctx context.Context, ref Ref) ([]model.Filter, error) {
	name, err := c.resolveDataset(ctx, ref)
	if err != nil {
		return nil, err
	}
	_, filters, err := c.exec.Config(ctx, name)
	return filters, err
}

// Homology describes the orthology surface of the referenced dataset.
func (c *Client) Homology(ctx context.Context, ref Ref) (HomologyInfo, error) {
	name, err := c.resolveDataset(ctx, ref)
	if err != nil {
		return HomologyInfo{}, err
	}
	attrs, _, err := c.exec.Config(ctx, name)
	if err != nil {
		return HomologyInfo{}, err
	}
	return HomologyInfo{
		Species: catalog.HomologySpecies(attrs),
		Fields:  catalog.HomologyFields(attrs),
	}, nil
}

// Fetch resolves the request against the dataset's catalogs, builds the
// query and executes it.
//
// Dataset and database references resolve strictly: no match or an
// ambiguous one fails with the candidates listed. Attribute, filter and
// homology species names resolve best effort: unknown ones drop out so
// a typo cannot sink a bulk fetch.
func (c *Client) Fetch(ctx context.Context, req Request) (model.Table, error) {
	name, err := c.resolveDataset(ctx, req.Ref)
	if err != nil {
		return model.Table{}, err
	}

	attrCat, filterCat, err := c.exec.Config(ctx, name)
	if err != nil {
		return model.Table{}, err
	}

	var attrs []string
	if len(req.Attributes) == 0 {
		attrs = defaultAttributes(attrCat)
	} else {
		attrs = ValidateAttributes(req.Attributes, attrCat)
	}
	if len(req.HomSpecies) > 0 && len(req.HomQuery) > 0 {
		species := catalog.HomologySpecies(attrCat)
		attrs = append(attrs, homology.Expand(species, req.HomSpecies, req.HomQuery)...)
	}

	clauses, err := ValidateFilters(req.Filters, filterCat)
	if err != nil {
		return model.Table{}, err
	}

	c.logger.Debug("fetch", "dataset", name, "attributes", len(attrs), "filters", len(clauses))

	return c.exec.Run(ctx, model.Query{
		VirtualSchema: c.schema,
		Dataset:       name,
		Attributes:    attrs,
		Filters:       clauses,
		AllRows:       req.AllRows,
	})
}

func (c *Client) database(ctx context.Context, name string) (model.Database, error) {
	dbs, err := c.exec.Registry(ctx)
	if err != nil {
		return model.Database{}, err
	}
	e, err := resolve.One(name, model.Entries(dbs), "database")
	if err != nil {
		return model.Database{}, err
	}
	for _, db := range dbs {
		if db.Name == e.Name {
			return db, nil
		}
	}
	return model.Database{}, &resolve.NotFoundError{Query: name, Scope: "database"}
}

// resolveDataset turns a Ref into a dataset internal name. A direct
// dataset name passes through untouched; a database and species pair
// must narrow to exactly one dataset.
func (c *Client) resolveDataset(ctx context.Context, ref Ref) (string, error) {
	if d := strings.TrimSpace(ref.Dataset); d != "" {
		return d, nil
	}
	if ref.Database == "" || ref.Species == "" {
		return "", fmt.Errorf("dataset reference needs a dataset name or a database and species pair")
	}
	matches, err := c.FindDatasets(ctx, ref.Database, ref.Species)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", &resolve.NotFoundError{Query: ref.Species, Scope: "dataset"}
	case 1:
		return matches[0].Name, nil
	default:
		return "", &resolve.AmbiguousError{Query: ref.Species, Scope: "dataset", Candidates: model.Entries(matches)}
	}
}
