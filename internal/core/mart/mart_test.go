package mart

import (
	"errors"
	"strings"
	"testing"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

func TestEndpoint_AppendsWellKnownPathToBareHosts(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"http://www.ensembl.org", "http://www.ensembl.org/biomart/martservice"},
		{"http://www.ensembl.org/", "http://www.ensembl.org/biomart/martservice"},
		{"http://www.ensembl.org:8080", "http://www.ensembl.org:8080/biomart/martservice"},
		{"https://plants.ensembl.org/biomart/martservice", "https://plants.ensembl.org/biomart/martservice"},
		{"http://127.0.0.1:9011/mart", "http://127.0.0.1:9011/mart"},
	}
	for _, c := range cases {
		if got := Endpoint(c.in); got != c.want {
			t.Fatalf("Endpoint(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParams_CatalogRequests(t *testing.T) {
	if got := RegistryParams().Encode(); got != "type=registry" {
		t.Fatalf("registry params: %s", got)
	}
	p := DatasetsParams("ENSEMBL_MART_ENSEMBL")
	if p.Get("type") != "datasets" || p.Get("mart") != "ENSEMBL_MART_ENSEMBL" {
		t.Fatalf("datasets params: %v", p)
	}
	p = ConfigParams("hsapiens_gene_ensembl")
	if p.Get("type") != "configuration" || p.Get("dataset") != "hsapiens_gene_ensembl" {
		t.Fatalf("config params: %v", p)
	}
	if got := QueryParams([]byte("<Query/>")).Get("query"); got != "<Query/>" {
		t.Fatalf("query params: %s", got)
	}
}

func TestBuildQuery_ExactWireDocument(t *testing.T) {
	doc, err := BuildQuery(model.Query{
		VirtualSchema: "default",
		Dataset:       "hsapiens_gene_ensembl",
		Attributes:    []string{"ensembl_gene_id", "external_gene_name"},
		Filters: []model.FilterClause{
			{Name: "chromosome_name", Kind: model.KindList, Values: []string{"1", "2"}},
			{Name: "transcript_tsl", Kind: model.KindBoolean, Excluded: true},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<Query virtualSchemaName="default" formatter="CSV" header="1" uniqueRows="1" datasetConfigVersion="0.6">` +
		`<Dataset name="hsapiens_gene_ensembl" interface="default">` +
		`<Attribute name="ensembl_gene_id"></Attribute>` +
		`<Attribute name="external_gene_name"></Attribute>` +
		`<Filter name="chromosome_name" value="1,2"></Filter>` +
		`<Filter name="transcript_tsl" excluded="1"></Filter>` +
		`</Dataset></Query>`
	if string(doc) != want {
		t.Fatalf("document mismatch:\n got %s\nwant %s", doc, want)
	}
}

func TestBuildQuery_AllRowsAndSchemaDefaulting(t *testing.T) {
	doc, err := BuildQuery(model.Query{
		Dataset:    "drerio_gene_ensembl",
		Attributes: []string{"ensembl_gene_id"},
		AllRows:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(doc), `uniqueRows="0"`) {
		t.Fatalf("AllRows must disable row de-duplication: %s", doc)
	}
	if !strings.Contains(string(doc), `virtualSchemaName="default"`) {
		t.Fatalf("empty schema must default: %s", doc)
	}
}

func TestBuildQuery_EmptyDatasetIsContractViolation(t *testing.T) {
	if _, err := BuildQuery(model.Query{Attributes: []string{"x"}}); err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}

func TestBuildQuery_AttributeOrderRoundTrips(t *testing.T) {
	attrs := []string{
		"ensembl_gene_id",
		"chromosome_name",
		"hsapiens_homolog_ensembl_gene",
		"hsapiens_homolog_orthology_type",
		"mmusculus_homolog_ensembl_gene",
		"mmusculus_homolog_orthology_type",
	}
	doc, err := BuildQuery(model.Query{Dataset: "drerio_gene_ensembl", Attributes: attrs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ParseQueryAttributes(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(attrs) {
		t.Fatalf("round trip lost attributes: %v", got)
	}
	for i := range attrs {
		if got[i] != attrs[i] {
			t.Fatalf("order changed at %d: got %v, want %v", i, got, attrs)
		}
	}
}

func TestTranslateFilter_BooleanForms(t *testing.T) {
	tsl := model.Filter{Name: "transcript_tsl", Type: "boolean"}
	for _, v := range []any{true, "included", "only"} {
		c, err := TranslateFilter(tsl, v)
		if err != nil {
			t.Fatalf("value %v: %v", v, err)
		}
		if c.Kind != model.KindBoolean || c.Excluded {
			t.Fatalf("value %v must include rows: %+v", v, c)
		}
	}
	for _, v := range []any{false, "excluded"} {
		c, err := TranslateFilter(tsl, v)
		if err != nil {
			t.Fatalf("value %v: %v", v, err)
		}
		if !c.Excluded {
			t.Fatalf("value %v must exclude rows: %+v", v, c)
		}
	}

	_, err := TranslateFilter(tsl, "maybe")
	var inv *InvalidFilterValueError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidFilterValueError, got %v", err)
	}
	if inv.Name != "transcript_tsl" || inv.Kind != model.KindBoolean {
		t.Fatalf("error fields wrong: %+v", inv)
	}
}

func TestTranslateFilter_ListForms(t *testing.T) {
	chrom := model.Filter{Name: "chromosome_name", Type: "list"}

	c, err := TranslateFilter(chrom, []string{"1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Values) != 2 || c.Values[0] != "1" || c.Values[1] != "2" {
		t.Fatalf("values wrong: %+v", c)
	}

	c, err = TranslateFilter(chrom, "X")
	if err != nil || len(c.Values) != 1 || c.Values[0] != "X" {
		t.Fatalf("scalar form wrong: %+v err=%v", c, err)
	}

	// mixed scalars as decoded from json
	c, err = TranslateFilter(chrom, []any{"MT", float64(7), 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Values[1] != "7" || c.Values[2] != "12" {
		t.Fatalf("numeric stringification wrong: %+v", c)
	}

	var inv *InvalidFilterValueError
	if _, err := TranslateFilter(chrom, true); !errors.As(err, &inv) {
		t.Fatalf("bool for a list filter must fail, got %v", err)
	}
	if _, err := TranslateFilter(chrom, []any{"1", false}); !errors.As(err, &inv) {
		t.Fatalf("bool inside a list must fail, got %v", err)
	}
}
