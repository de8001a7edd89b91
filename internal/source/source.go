// Package source loads roster files into the raw records the resolver
// consumes. Only CSV with a header row is supported; the header names become
// the record field names verbatim.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/lawyer-matcher/internal/roster"
)

// ErrEmpty is returned when a roster file has a header but no data rows, or
// no usable header at all.
var ErrEmpty = errors.New("no records")

// LoadCSV reads the file at path into raw records tagged with the given
// source name. Rows shorter than the header are padded with empty fields,
// matching the "named field or empty string" contract of the records.
func LoadCSV(path, sourceTag string) ([]roster.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %q: %w", path, err)
	}
	defer f.Close()

	records, err := readCSV(f, sourceTag)
	if err != nil {
		return nil, fmt.Errorf("roster %q: %w", path, err)
	}

	return records, nil
}

func readCSV(r io.Reader, sourceTag string) ([]roster.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []roster.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			fields[name] = value
		}

		records = append(records, roster.RawRecord{Source: sourceTag, Fields: fields})
	}

	if len(records) == 0 {
		return nil, ErrEmpty
	}

	return records, nil
}
