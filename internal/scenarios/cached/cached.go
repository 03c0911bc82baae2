// Package cached layers an in-process catalog cache and a dataset heat
// model over the direct path. Query results always go upstream.
package cached

import (
	"context"
	"log/slog"

	cacheiface "github.com/mohammed-shakir/biomart-gateway/internal/cache"
	"github.com/mohammed-shakir/biomart-gateway/internal/cache/catalogcache"
	"github.com/mohammed-shakir/biomart-gateway/internal/cache/keys"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/observability"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/router"
	"github.com/mohammed-shakir/biomart-gateway/internal/decision"
	"github.com/mohammed-shakir/biomart-gateway/internal/decision/simple"
	"github.com/mohammed-shakir/biomart-gateway/internal/hotness"
	"github.com/mohammed-shakir/biomart-gateway/internal/hotness/expdecay"
	"github.com/mohammed-shakir/biomart-gateway/internal/hotness/metricswrap"
	"github.com/mohammed-shakir/biomart-gateway/internal/scenarios"
	"github.com/mohammed-shakir/biomart-gateway/pkg/biomart"
)

func init() {
	scenarios.Register("cached", newCached)
}

func newCached(cfg config.Config, logger *slog.Logger, exec executor.Interface) (router.Backend, error) {
	store, err := catalogcache.New(cfg.CatalogCacheSize)
	if err != nil {
		return nil, err
	}

	hot := metricswrap.New(expdecay.New(cfg.HotHalfLife), "expdecay")
	ttl := &simple.Engine{
		Heat:      hot,
		Threshold: cfg.HotThreshold,
		Base:      cfg.CatalogTTL,
		HotTTL:    cfg.CatalogTTLHot,
		Overrides: cfg.CatalogTTLOvr,
	}

	svc := &cachingService{
		logger: logger,
		inner:  exec,
		store:  store,
		ttl:    ttl,
		hot:    hot,
	}
	c := biomart.NewWithService(svc,
		biomart.WithLogger(logger),
		biomart.WithVirtualSchema(cfg.VirtualSchema),
	)
	return c, nil
}

// cachingService decorates the mart service with a catalog cache. The
// heat model is fed from catalog touches and executed queries, so a
// busy dataset earns the longer TTL.
type cachingService struct {
	logger *slog.Logger
	inner  executor.Interface
	store  cacheiface.Interface
	ttl    decision.Interface
	hot    hotness.Interface
}

var _ executor.Interface = (*cachingService)(nil)

type configPayload struct {
	attrs   []model.Attribute
	filters []model.Filter
}

func (s *cachingService) Registry(ctx context.Context) ([]model.Database, error) {
	key := keys.Catalog("registry", "")
	if v, ok := s.store.Get(key); ok {
		if dbs, ok := v.([]model.Database); ok {
			observability.IncCatalogCacheHit("registry")
			return dbs, nil
		}
	}
	observability.IncCatalogCacheMiss("registry")

	dbs, err := s.inner.Registry(ctx)
	if err != nil {
		return nil, err
	}
	s.store.Put(key, dbs, s.ttl.TTL("registry", ""))
	return dbs, nil
}

func (s *cachingService) Datasets(ctx context.Context, mart string) ([]model.Dataset, error) {
	key := keys.Catalog("datasets", mart)
	if v, ok := s.store.Get(key); ok {
		if ds, ok := v.([]model.Dataset); ok {
			observability.IncCatalogCacheHit("datasets")
			return ds, nil
		}
	}
	observability.IncCatalogCacheMiss("datasets")

	ds, err := s.inner.Datasets(ctx, mart)
	if err != nil {
		return nil, err
	}
	s.store.Put(key, ds, s.ttl.TTL("datasets", mart))
	return ds, nil
}

func (s *cachingService) Config(ctx context.Context, dataset string) ([]model.Attribute, []model.Filter, error) {
	s.hot.Inc(dataset)

	key := keys.Catalog("config", dataset)
	if v, ok := s.store.Get(key); ok {
		if p, ok := v.(configPayload); ok {
			observability.IncCatalogCacheHit("config")
			s.logger.Debug("catalog cache hit", "kind", "config", "dataset", dataset)
			return p.attrs, p.filters, nil
		}
	}
	observability.IncCatalogCacheMiss("config")

	attrs, filters, err := s.inner.Config(ctx, dataset)
	if err != nil {
		return nil, nil, err
	}
	s.store.Put(key, configPayload{attrs: attrs, filters: filters}, s.ttl.TTL("config", dataset))
	return attrs, filters, nil
}

// Run never serves from cache; result payloads are too large and too
// filter-specific to keep resident. It only feeds the heat model.
func (s *cachingService) Run(ctx context.Context, q model.Query) (model.Table, error) {
	s.hot.Inc(q.Dataset)
	return s.inner.Run(ctx, q)
}
