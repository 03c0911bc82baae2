// Package catalog decodes the mart service's self-describing payloads:
// the registry of databases, the dataset listing of a mart, and the
// attribute/filter configuration of a dataset.
package catalog

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

type registryDoc struct {
	Locations []struct {
		Name          string `xml:"name,attr"`
		DisplayName   string `xml:"displayName,attr"`
		Host          string `xml:"host,attr"`
		Path          string `xml:"path,attr"`
		Port          string `xml:"port,attr"`
		VirtualSchema string `xml:"serverVirtualSchema,attr"`
		Visible       string `xml:"visible,attr"`
	} `xml:"MartURLLocation"`
}

// DecodeRegistry parses the registry XML into the database catalog,
// keeping server order.
func DecodeRegistry(data []byte) ([]model.Database, error) {
	var doc registryDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	dbs := make([]model.Database, 0, len(doc.Locations))
	for _, loc := range doc.Locations {
		if loc.Name == "" {
			continue
		}
		dbs = append(dbs, model.Database{
			Name:          loc.Name,
			DisplayName:   loc.DisplayName,
			Host:          loc.Host,
			Path:          loc.Path,
			Port:          loc.Port,
			VirtualSchema: loc.VirtualSchema,
			Visible:       loc.Visible == "1",
		})
	}
	return dbs, nil
}

// DecodeDatasets parses the tab-separated dataset listing of one mart.
// Only columns 1 and 2 carry information; short or blank lines are
// server noise and skipped.
func DecodeDatasets(data []byte, mart string) []model.Dataset {
	var out []model.Dataset
	for _, line := range strings.Split(string(data), "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}
		name := strings.TrimSpace(cols[1])
		if name == "" {
			continue
		}
		out = append(out, model.Dataset{
			Name:        name,
			DisplayName: strings.TrimSpace(cols[2]),
			Mart:        mart,
		})
	}
	return out
}
