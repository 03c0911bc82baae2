// Package executor runs catalog and data requests against the mart
// service and decodes what comes back.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/catalog"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/mart"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/observability"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/tabular"
)

// In-band error markers the service embeds in 200 responses.
const (
	configProblemMarker = "Problem retrieving configuration"
	queryErrorMarker    = "Query ERROR"
)

const errSnippetLimit = 8 << 10

type Interface interface {
	Registry(ctx context.Context) ([]model.Database, error)
	Datasets(ctx context.Context, mart string) ([]model.Dataset, error)
	Config(ctx context.Context, dataset string) ([]model.Attribute, []model.Filter, error)
	Run(ctx context.Context, q model.Query) (model.Table, error)
}

type Executor struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint *url.URL
	startNow func() time.Time // for tests
}

var _ Interface = (*Executor)(nil)

func New(logger *slog.Logger, client *http.Client, base string) (*Executor, error) {
	u, err := url.Parse(mart.Endpoint(base))
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("service url %q has no host", base)
	}
	return &Executor{
		logger:   logger,
		client:   client,
		endpoint: u,
		startNow: time.Now,
	}, nil
}

func (e *Executor) Registry(ctx context.Context) ([]model.Database, error) {
	body, err := e.get(ctx, "registry", mart.RegistryParams())
	if err != nil {
		return nil, err
	}
	dbs, err := catalog.DecodeRegistry(body)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return dbs, nil
}

func (e *Executor) Datasets(ctx context.Context, martName string) ([]model.Dataset, error) {
	body, err := e.get(ctx, "datasets", mart.DatasetsParams(martName))
	if err != nil {
		return nil, err
	}
	return catalog.DecodeDatasets(body, martName), nil
}

func (e *Executor) Config(ctx context.Context, dataset string) ([]model.Attribute, []model.Filter, error) {
	body, err := e.get(ctx, "configuration", mart.ConfigParams(dataset))
	if err != nil {
		return nil, nil, err
	}
	if bytes.Contains(body, []byte(configProblemMarker)) {
		return nil, nil, &ServiceError{Call: "configuration", Message: snippet(body)}
	}
	attrs, filters, err := catalog.DecodeConfig(body)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration %s: %w", dataset, err)
	}
	return attrs, filters, nil
}

// Run builds the wire document for q, submits it and decodes the CSV
// result. The service reports malformed queries in-band with a 200, so
// the payload is sniffed before decoding.
func (e *Executor) Run(ctx context.Context, q model.Query) (model.Table, error) {
	doc, err := mart.BuildQuery(q)
	if err != nil {
		return model.Table{}, err
	}
	body, err := e.get(ctx, "query", mart.QueryParams(doc))
	if err != nil {
		return model.Table{}, err
	}
	if bytes.Contains(body, []byte(queryErrorMarker)) {
		return model.Table{}, &ServiceError{Call: "query", Message: snippet(body)}
	}
	t, err := tabular.Decode(bytes.NewReader(body))
	if err != nil {
		return model.Table{}, fmt.Errorf("query %s: %w", q.Dataset, err)
	}
	observability.ObserveQueryRows(len(t.Rows))
	e.logger.Debug("query done", "dataset", q.Dataset, "rows", len(t.Rows))
	return t, nil
}

func (e *Executor) get(ctx context.Context, call string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", call, err)
	}
	u := *e.endpoint
	u.RawQuery = params.Encode()
	req.URL = &u
	req.Host = e.endpoint.Host

	start := e.startNow()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &TransportError{Call: call, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	dur := time.Since(start)
	observability.ObserveUpstreamLatency(call, dur.Seconds())
	e.logger.Debug("mart call done", "call", call, "status", resp.StatusCode, "duration", dur.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errSnippetLimit))
		return nil, &TransportError{Call: call, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Call: call, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// snippet trims an in-band error payload to something loggable.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
