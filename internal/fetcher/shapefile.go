package fetcher

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/table"
)

// ReadShapefile reads a point shapefile into a table. DBF attributes become columns and the point
// geometry becomes the lat and lon columns, replacing attributes of the same name. Records
// without point geometry are skipped.
func ReadShapefile(shpPath string) (*table.Table, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	var (
		columns []string
		attrIdx []int
	)
	for i, f := range reader.Fields() {
		name := strings.TrimSpace(strings.TrimRight(f.String(), "\x00"))
		if name == table.ColLat || name == table.ColLon {
			continue
		}
		columns = append(columns, name)
		attrIdx = append(attrIdx, i)
	}
	columns = append(columns, table.ColLat, table.ColLon)

	var rows [][]any
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		x, y, ok := pointXY(shape)
		if !ok {
			skipped++
			continue
		}

		row := make([]any, 0, len(columns))
		for _, idx := range attrIdx {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val == "" {
				row = append(row, nil)
			} else {
				row = append(row, val)
			}
		}
		row = append(row, y, x)
		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("shapefile: skipped records without point geometry",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	t, err := table.New(columns, rows)
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: build table")
	}
	return t, nil
}

func pointXY(shape shp.Shape) (x, y float64, ok bool) {
	switch s := shape.(type) {
	case *shp.Point:
		return s.X, s.Y, true
	case *shp.PointZ:
		return s.X, s.Y, true
	case *shp.PointM:
		return s.X, s.Y, true
	}
	return 0, 0, false
}
