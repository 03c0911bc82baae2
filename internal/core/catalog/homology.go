package catalog

import (
	"regexp"
	"strings"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

var homologyName = regexp.MustCompile(`^([^_]+)_homolog_(.+)$`)

// HomologySpecies derives the species catalog from a dataset's attribute
// listing. Attribute names shaped <token>_homolog_<field> identify a
// species token; its display name comes from the token's ensembl_gene
// row with the "gene stable ID" wording stripped, so e.g.
// "Mouse gene stable ID" yields the species "Mouse". Tokens without an
// ensembl_gene row are not addressable as species and are left out,
// matching how the service presents its orthology tables.
func HomologySpecies(attrs []model.Attribute) []model.Entry {
	var out []model.Entry
	seen := make(map[string]struct{})
	for _, a := range attrs {
		m := homologyName.FindStringSubmatch(a.Name)
		if m == nil || m[2] != "ensembl_gene" {
			continue
		}
		token := m[1]
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		display := strings.TrimSpace(strings.ReplaceAll(a.DisplayName, "gene stable ID", ""))
		out = append(out, model.Entry{Name: token, DisplayName: display})
	}
	return out
}

// HomologyFields lists the distinct per-species field names the dataset
// exposes, in first-appearance order.
func HomologyFields(attrs []model.Attribute) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, a := range attrs {
		m := homologyName.FindStringSubmatch(a.Name)
		if m == nil {
			continue
		}
		if _, dup := seen[m[2]]; dup {
			continue
		}
		seen[m[2]] = struct{}{}
		out = append(out, m[2])
	}
	return out
}
