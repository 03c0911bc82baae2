package mart

import (
	"fmt"
	"strconv"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

// InvalidFilterValueError reports a filter value whose shape does not
// fit the filter's kind.
type InvalidFilterValueError struct {
	Name  string
	Value any
	Kind  model.FilterKind
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s filter %q", e.Value, e.Kind, e.Name)
}

// TranslateFilter types a requested value against the filter's kind and
// produces its wire clause.
//
// Boolean filters take true, "included" or "only" to keep matching rows
// and false or "excluded" to drop them. List filters take a scalar or a
// slice of scalars, joined into a comma-separated value list.
func TranslateFilter(f model.Filter, value any) (model.FilterClause, error) {
	clause := model.FilterClause{Name: f.Name, Kind: f.Kind()}
	if f.Kind() == model.KindBoolean {
		switch value {
		case true, "included", "only":
			clause.Excluded = false
		case false, "excluded":
			clause.Excluded = true
		default:
			return model.FilterClause{}, &InvalidFilterValueError{Name: f.Name, Value: value, Kind: model.KindBoolean}
		}
		return clause, nil
	}

	switch v := value.(type) {
	case []string:
		clause.Values = v
	case []any:
		for _, item := range v {
			s, ok := scalarString(item)
			if !ok {
				return model.FilterClause{}, &InvalidFilterValueError{Name: f.Name, Value: value, Kind: model.KindList}
			}
			clause.Values = append(clause.Values, s)
		}
	default:
		s, ok := scalarString(value)
		if !ok {
			return model.FilterClause{}, &InvalidFilterValueError{Name: f.Name, Value: value, Kind: model.KindList}
		}
		clause.Values = []string{s}
	}
	return clause, nil
}

// scalarString renders the scalar shapes filter values arrive in,
// including the numeric types JSON decoding produces.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}
