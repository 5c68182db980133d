package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV reads a whole CSV document, tolerating ragged rows and stray quotes.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
