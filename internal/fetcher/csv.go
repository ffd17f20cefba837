package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quickmap/internal/table"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool // trim surrounding whitespace from every field
}

// StreamCSV reads CSV rows and sends them to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSVTable reads a CSV document whose first row names the columns. Empty cells become
// missing values. Rows longer than the header are rejected.
func ReadCSVTable(ctx context.Context, r io.Reader, opts CSVOptions) (*table.Table, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	rowCh, errCh := StreamCSV(ctx, r, opts)

	var header []string
	var rows [][]any
	for record := range rowCh {
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, textCells(record))
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	if header == nil {
		return nil, eris.New("csv: missing header row")
	}

	t, err := table.New(cleanHeader(header), rows)
	if err != nil {
		return nil, eris.Wrap(err, "csv: build table")
	}
	return t, nil
}

// textCells converts text fields into table cells, mapping empty fields to nil.
func textCells(fields []string) []any {
	cells := make([]any, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		cells[i] = f
	}
	return cells
}

// cleanHeader strips a UTF-8 byte order mark and surrounding whitespace from column names.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
