package mart

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

type queryDoc struct {
	XMLName       xml.Name  `xml:"Query"`
	VirtualSchema string    `xml:"virtualSchemaName,attr"`
	Formatter     string    `xml:"formatter,attr"`
	Header        string    `xml:"header,attr"`
	UniqueRows    string    `xml:"uniqueRows,attr"`
	ConfigVersion string    `xml:"datasetConfigVersion,attr"`
	Dataset       datasetEl `xml:"Dataset"`
}

type datasetEl struct {
	Name       string        `xml:"name,attr"`
	Interface  string        `xml:"interface,attr"`
	Attributes []attributeEl `xml:"Attribute"`
	Filters    []filterEl    `xml:"Filter"`
}

type attributeEl struct {
	Name string `xml:"name,attr"`
}

type filterEl struct {
	Name     string  `xml:"name,attr"`
	Excluded *string `xml:"excluded,attr"`
	Value    *string `xml:"value,attr"`
}

// BuildQuery renders a resolved query as the service's XML document.
// Attribute order carries through unchanged since it fixes the output
// column order. Callers resolve names first; an empty dataset here is a
// contract violation, not a user error.
func BuildQuery(q model.Query) ([]byte, error) {
	if q.Dataset == "" {
		return nil, fmt.Errorf("build query: empty dataset name")
	}
	schema := q.VirtualSchema
	if schema == "" {
		schema = "default"
	}
	uniqueRows := "1"
	if q.AllRows {
		uniqueRows = "0"
	}

	doc := queryDoc{
		VirtualSchema: schema,
		Formatter:     "CSV",
		Header:        "1",
		UniqueRows:    uniqueRows,
		ConfigVersion: "0.6",
		Dataset: datasetEl{
			Name:      q.Dataset,
			Interface: "default",
		},
	}
	for _, a := range q.Attributes {
		doc.Dataset.Attributes = append(doc.Dataset.Attributes, attributeEl{Name: a})
	}
	for _, f := range q.Filters {
		el := filterEl{Name: f.Name}
		switch f.Kind {
		case model.KindBoolean:
			v := "0"
			if f.Excluded {
				v = "1"
			}
			el.Excluded = &v
		default:
			v := strings.Join(f.Values, ",")
			el.Value = &v
		}
		doc.Dataset.Filters = append(doc.Dataset.Filters, el)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return out, nil
}

// ParseQueryAttributes re-derives the attribute order from a built
// document.
func ParseQueryAttributes(doc []byte) ([]string, error) {
	var q queryDoc
	if err := xml.Unmarshal(doc, &q); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	out := make([]string, len(q.Dataset.Attributes))
	for i, a := range q.Dataset.Attributes {
		out[i] = a.Name
	}
	return out, nil
}
