package cached

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/pkg/biomart"
)

type fakeService struct {
	registryCalls int
	datasetsCalls int
	configCalls   int
	runCalls      int
}

func (f *fakeService) Registry(context.Context) ([]model.Database, error) {
	f.registryCalls++
	return []model.Database{
		{Name: "ENSEMBL_MART_ENSEMBL", DisplayName: "Ensembl Genes 113", Visible: true},
	}, nil
}

func (f *fakeService) Datasets(_ context.Context, mart string) ([]model.Dataset, error) {
	f.datasetsCalls++
	return []model.Dataset{
		{Name: "hsapiens_gene_ensembl", DisplayName: "Human genes (GRCh38.p14)", Mart: mart},
	}, nil
}

func (f *fakeService) Config(context.Context, string) ([]model.Attribute, []model.Filter, error) {
	f.configCalls++
	attrs := []model.Attribute{
		{Name: "ensembl_gene_id", DisplayName: "Gene stable ID", Default: true},
		{Name: "external_gene_name", DisplayName: "Gene name"},
	}
	filters := []model.Filter{
		{Name: "chromosome_name", DisplayName: "Chromosome/scaffold name", Type: "text"},
	}
	return attrs, filters, nil
}

func (f *fakeService) Run(context.Context, model.Query) (model.Table, error) {
	f.runCalls++
	return model.Table{Columns: []string{"Gene stable ID"}, Rows: [][]string{{"ENSG00000139618"}}}, nil
}

func testConfig() config.Config {
	return config.Config{
		VirtualSchema:    "default",
		CatalogCacheSize: 16,
		CatalogTTL:       time.Minute,
		CatalogTTLHot:    2 * time.Minute,
		HotThreshold:     5,
		HotHalfLife:      time.Minute,
	}
}

func newBackendForTest(t *testing.T, f *fakeService) *biomart.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := newCached(testConfig(), logger, f)
	if err != nil {
		t.Fatalf("newCached: %v", err)
	}
	c, ok := b.(*biomart.Client)
	if !ok {
		t.Fatalf("backend is %T, want *biomart.Client", b)
	}
	return c
}

func TestCatalogCalls_SecondHitServesFromCache(t *testing.T) {
	f := &fakeService{}
	c := newBackendForTest(t, f)
	ctx := context.Background()

	if _, err := c.ListDatabases(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListDatabases(ctx); err != nil {
		t.Fatal(err)
	}
	if f.registryCalls != 1 {
		t.Fatalf("registry upstream calls = %d, want 1", f.registryCalls)
	}

	ref := biomart.Ref{Dataset: "hsapiens_gene_ensembl"}
	if _, err := c.Attributes(ctx, ref); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Filters(ctx, ref); err != nil {
		t.Fatal(err)
	}
	if f.configCalls != 1 {
		t.Fatalf("config upstream calls = %d, want 1", f.configCalls)
	}
}

func TestDatasets_CachedPerMart(t *testing.T) {
	f := &fakeService{}
	c := newBackendForTest(t, f)
	ctx := context.Background()

	for range 3 {
		if _, err := c.Datasets(ctx, "ensembl genes"); err != nil {
			t.Fatal(err)
		}
	}
	if f.datasetsCalls != 1 {
		t.Fatalf("datasets upstream calls = %d, want 1", f.datasetsCalls)
	}
}

func TestQueries_AlwaysGoUpstream(t *testing.T) {
	f := &fakeService{}
	c := newBackendForTest(t, f)
	ctx := context.Background()

	req := biomart.Request{
		Ref:        biomart.Ref{Dataset: "hsapiens_gene_ensembl"},
		Attributes: []string{"ensembl_gene_id"},
	}
	for range 2 {
		tab, err := c.Fetch(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if len(tab.Rows) != 1 {
			t.Fatalf("rows = %d", len(tab.Rows))
		}
	}

	if f.runCalls != 2 {
		t.Fatalf("query upstream calls = %d, want 2", f.runCalls)
	}
	if f.configCalls != 1 {
		t.Fatalf("config upstream calls = %d, want 1 (catalog cached across fetches)", f.configCalls)
	}
}
