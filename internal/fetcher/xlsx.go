package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/quickmap/internal/table"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // rows above the header row
}

// ReadXLSX reads a worksheet and returns all rows as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		rows = append(rows, rowToStrings(row))
	}

	return rows, nil
}

// ReadXLSXTable reads a worksheet whose first row (after SkipRows) names the columns.
// Numeric and boolean cells keep their types; empty cells become missing values.
func ReadXLSXTable(path string, opts XLSXOptions) (*table.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var header []string
	var rows [][]any
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		if header == nil {
			header = cleanHeader(rowToStrings(row))
			continue
		}
		cells := make([]any, len(header))
		for j, cell := range row.Cells {
			if j >= len(header) {
				break
			}
			cells[j] = cellValue(cell)
		}
		rows = append(rows, cells)
	}
	if header == nil {
		return nil, eris.Errorf("xlsx: sheet in %s has no header row", path)
	}

	t, err := table.New(header, rows)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: build table")
	}
	return t, nil
}

func cellValue(cell *xlsx.Cell) any {
	if cell == nil {
		return nil
	}
	switch cell.Type() {
	case xlsx.CellTypeBool:
		return cell.Bool()
	case xlsx.CellTypeNumeric:
		if f, err := cell.Float(); err == nil {
			return f
		}
	}
	s := cell.String()
	if s == "" {
		return nil
	}
	return s
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
