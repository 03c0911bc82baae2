// Package tabular decodes the service's CSV result payloads.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
)

// Decode reads a CSV payload into a table. The first record is the
// header produced by the query's header flag; no records at all decodes
// to an empty table.
func Decode(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	var t model.Table
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("decode result: %w", err)
		}
		if t.Columns == nil {
			t.Columns = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
}
