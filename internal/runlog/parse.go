package runlog

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("run log column missing")

// Parse reads a CSV run log with a header row. Rows may be ragged; missing
// trailing cells read as empty. Cells are trimmed.
func Parse(r io.Reader, cols Columns) (*Log, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("run log is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read run log header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, name := range []string{cols.Run, cols.Quality, cols.Category} {
		if _, ok := index[name]; !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", name)
		}
	}

	log := &Log{Header: header}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read run log row %d", line)
		}

		cell := func(name string) string {
			i := index[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		fields := make(map[string]string, len(header))
		for name := range index {
			fields[name] = cell(name)
		}

		e := Entry{
			Line:     line,
			RawRun:   cell(cols.Run),
			Quality:  cell(cols.Quality),
			Category: cell(cols.Category),
			Fields:   fields,
		}
		e.Run, e.RunValid = ParseRun(e.RawRun)
		log.Entries = append(log.Entries, e)
	}
	return log, nil
}
