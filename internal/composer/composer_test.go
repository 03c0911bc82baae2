package composer

import (
	"encoding/json"
	"testing"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

func sampleTable() model.Table {
	return model.Table{
		Columns: []string{"Gene stable ID", "Gene name"},
		Rows: [][]string{
			{"ENSG00000139618", "BRCA2"},
			{"ENSG00000141510", "TP53"},
		},
	}
}

func TestNegotiateFormat_OrderOfPrecedence(t *testing.T) {
	neg := NegotiateFormat(NegotiationInput{
		OutputFormat:  "json",
		AcceptHeader:  "text/csv",
		DefaultFormat: FormatCSV,
	})
	if neg.Format != FormatJSON {
		t.Fatalf("format param must win; got %v", neg.Format)
	}

	neg = NegotiateFormat(NegotiationInput{
		OutputFormat:  "",
		AcceptHeader:  "application/json;q=0.9,text/csv;q=0.5",
		DefaultFormat: FormatCSV,
	})
	if neg.Format != FormatJSON {
		t.Fatalf("expected JSON via Accept q-values; got %v", neg.Format)
	}

	neg = NegotiateFormat(NegotiationInput{
		AcceptHeader:  "*/*",
		DefaultFormat: FormatCSV,
	})
	if neg.Format != FormatCSV || neg.ContentType != "text/csv" {
		t.Fatalf("wildcard Accept must fall back to default; got %v %s", neg.Format, neg.ContentType)
	}
}

func TestNegotiateFormat_TSVVariants(t *testing.T) {
	for _, of := range []string{"tsv", "text/tab-separated-values"} {
		neg := NegotiateFormat(NegotiationInput{OutputFormat: of})
		if neg.Format != FormatTSV {
			t.Fatalf("OutputFormat=%q: got %v want TSV", of, neg.Format)
		}
	}
}

func TestRender_CSVWithHeader(t *testing.T) {
	b, err := Render(sampleTable(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	want := "Gene stable ID,Gene name\nENSG00000139618,BRCA2\nENSG00000141510,TP53\n"
	if string(b) != want {
		t.Fatalf("csv mismatch:\ngot:  %q\nwant: %q", string(b), want)
	}
}

func TestRender_TSVUsesTabs(t *testing.T) {
	b, err := Render(sampleTable(), FormatTSV)
	if err != nil {
		t.Fatal(err)
	}
	want := "Gene stable ID\tGene name\nENSG00000139618\tBRCA2\nENSG00000141510\tTP53\n"
	if string(b) != want {
		t.Fatalf("tsv mismatch:\ngot:  %q\nwant: %q", string(b), want)
	}
}

func TestRender_JSONCarriesColumnsAndRows(t *testing.T) {
	b, err := Render(sampleTable(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(out.Columns) != 2 || out.Columns[0] != "Gene stable ID" {
		t.Fatalf("columns = %v", out.Columns)
	}
	if len(out.Rows) != 2 || out.Rows[1][1] != "TP53" {
		t.Fatalf("rows = %v", out.Rows)
	}
}

func TestRender_EmptyTableJSONHasEmptyArrays(t *testing.T) {
	b, err := Render(model.Table{}, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != `{"columns":[],"rows":[]}` {
		t.Fatalf("empty table json = %s", got)
	}
}

func TestCompose_SetsContentType(t *testing.T) {
	res, err := Compose(sampleTable(), NegotiationInput{AcceptHeader: "application/json"})
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentType != "application/json" {
		t.Fatalf("content type = %s", res.ContentType)
	}
	if res.StatusCode != 200 {
		t.Fatalf("status = %d", res.StatusCode)
	}
}
