package biomart

import "github.com/mohammed-shakir/biomart-gateway/internal/core/model"

// Ref names a dataset, either directly or as a database plus species
// pair to narrow down. Dataset wins when set.
type Ref struct {
	Dataset  string
	Database string
	Species  string
}

// Request is one data fetch. Attributes and Filters take internal or
// display names; unknown ones are dropped rather than failing the
// fetch. An empty attribute list selects the dataset's default columns.
// HomSpecies and HomQuery expand into one extra column per species and
// field. AllRows disables the service-side row de-duplication that is
// otherwise requested.
type Request struct {
	Ref
	Attributes []string
	Filters    map[string]any
	HomSpecies []string
	HomQuery   []string
	AllRows    bool
}

// HomologyInfo describes the orthology surface of a dataset: the
// species it links to and the per-species fields it can return.
type HomologyInfo struct {
	Species []model.Entry
	Fields  []string
}
