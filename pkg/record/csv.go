package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadRows parses a CSV batch file into rows keyed by the header line.
// Rows shorter than the header are padded with empty fields; fully empty
// lines are skipped. The reader is lenient about quoting, matching the
// output of common tabular export tools.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	var rows []Row
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		empty := true
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		values := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(fields) {
				values[name] = strings.TrimSpace(fields[i])
			} else {
				values[name] = ""
			}
		}
		rows = append(rows, Row{Line: line, Fields: values})
	}

	return rows, nil
}
