// Package model defines core domain types shared across the service.
package model

import "fmt"

// Entry is the name pair every mart catalog row reduces to: the internal
// name used on the wire and the human-readable display name.
type Entry struct {
	Name        string
	DisplayName string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.DisplayName, e.Name)
}

// Database is one mart from the service registry.
type Database struct {
	Name          string
	DisplayName   string
	Host          string
	Path          string
	Port          string
	VirtualSchema string
	Visible       bool
}

func (d Database) Entry() Entry {
	return Entry{Name: d.Name, DisplayName: d.DisplayName}
}

// Dataset is one dataset of a mart. Mart is the owning database name.
type Dataset struct {
	Name        string
	DisplayName string
	Mart        string
}

func (d Dataset) Entry() Entry {
	return Entry{Name: d.Name, DisplayName: d.DisplayName}
}

// Attribute is a selectable output column of a dataset. Default marks
// members of the server-declared default selection.
type Attribute struct {
	Name        string
	DisplayName string
	Description string
	Default     bool
}

func (a Attribute) Entry() Entry {
	return Entry{Name: a.Name, DisplayName: a.DisplayName}
}

// FilterKind decides how a requested filter value is translated to wire
// form.
type FilterKind int

const (
	// KindList filters carry one or more plain values, comma-joined on
	// the wire.
	KindList FilterKind = iota
	// KindBoolean filters carry an include/exclude switch instead of a
	// value.
	KindBoolean
)

func (k FilterKind) String() string {
	if k == KindBoolean {
		return "boolean"
	}
	return "list"
}

// Filter is a row constraint a dataset accepts. Operator is the server's
// qualifier (=, >=, only, ...); Options enumerates permitted values when
// the server declares them.
type Filter struct {
	Name        string
	DisplayName string
	Description string
	Type        string
	Operator    string
	Options     []Option
}

func (f Filter) Entry() Entry {
	return Entry{Name: f.Name, DisplayName: f.DisplayName}
}

// Kind reports the translation rule for the filter. Only the literal
// boolean type toggles rows; every other declared type takes values.
func (f Filter) Kind() FilterKind {
	if f.Type == "boolean" {
		return KindBoolean
	}
	return KindList
}

// Option is one server-enumerated value of a list filter.
type Option struct {
	Name        string
	DisplayName string
	Value       string
}

// FilterClause is a validated filter ready for the wire. Excluded is only
// meaningful for KindBoolean; Values only for KindList.
type FilterClause struct {
	Name     string
	Kind     FilterKind
	Excluded bool
	Values   []string
}

// Query is a fully resolved request against a single dataset. Attribute
// order is the order of the output columns. AllRows=false asks the
// service to de-duplicate result rows.
type Query struct {
	VirtualSchema string
	Dataset       string
	Attributes    []string
	Filters       []FilterClause
	AllRows       bool
}

// Table is a decoded tabular result.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Entries projects catalog slices onto the shared Entry shape so one
// matcher serves all of them.
func Entries[T interface{ Entry() Entry }](items []T) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = it.Entry()
	}
	return out
}
