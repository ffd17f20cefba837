package table

import "slices"

// Canonical coordinate column names.
const (
	ColLat = "lat"
	ColLon = "lon"
)

// Column name aliases recognized by Standardize. Matching is case-sensitive.
var (
	LatAliases = []string{"latitude", "lat_col", "Latitude", "LAT", "y"}
	LonAliases = []string{"longitude", "lon_col", "long", "Long", "Longitude", "LON", "x"}
)

// CanonicalName returns the standardized name for a column.
func CanonicalName(col string) string {
	switch {
	case slices.Contains(LatAliases, col):
		return ColLat
	case slices.Contains(LonAliases, col):
		return ColLon
	}
	return col
}

// Standardize renames coordinate alias columns to lat and lon. When several columns map to the
// same name, the one furthest right wins and keeps the position of the first. The input table is
// not modified.
func Standardize(t *Table) *Table {
	var (
		columns []string
		source  []int
	)
	index := make(map[string]int, len(t.columns))
	for j, c := range t.columns {
		name := CanonicalName(c)
		if pos, seen := index[name]; seen {
			source[pos] = j
			continue
		}
		index[name] = len(columns)
		columns = append(columns, name)
		source = append(source, j)
	}

	if len(columns) == len(t.columns) && slices.Equal(columns, t.columns) {
		return t
	}

	rows := make([][]any, len(t.rows))
	for i, src := range t.rows {
		cells := make([]any, len(columns))
		for k, j := range source {
			cells[k] = src[j]
		}
		rows[i] = cells
	}
	return &Table{columns: columns, index: index, rows: rows}
}
