package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardize_LatAliases(t *testing.T) {
	for _, alias := range LatAliases {
		t.Run(alias, func(t *testing.T) {
			tbl := mustTable(t, []string{alias}, []any{1.0})
			out := Standardize(tbl)
			assert.Equal(t, []string{"lat"}, out.Columns())
			assert.Equal(t, "1", out.Row(0).String("lat"))
		})
	}
}

func TestStandardize_LonAliases(t *testing.T) {
	for _, alias := range LonAliases {
		t.Run(alias, func(t *testing.T) {
			tbl := mustTable(t, []string{alias}, []any{2.0})
			out := Standardize(tbl)
			assert.Equal(t, []string{"lon"}, out.Columns())
		})
	}
}

func TestStandardize_CaseSensitive(t *testing.T) {
	tbl := mustTable(t, []string{"LATITUDE", "Lon", "X"}, []any{1.0, 2.0, 3.0})
	out := Standardize(tbl)
	assert.Equal(t, []string{"LATITUDE", "Lon", "X"}, out.Columns())
}

func TestStandardize_Idempotent(t *testing.T) {
	tbl := mustTable(t, []string{"name", "lat", "lon"}, []any{"a", 1.0, 2.0})
	once := Standardize(tbl)
	twice := Standardize(once)

	assert.Equal(t, tbl.Columns(), once.Columns())
	assert.Equal(t, once.Columns(), twice.Columns())
	assert.Equal(t, "a", twice.Row(0).String("name"))
}

func TestStandardize_PassThroughAndPurity(t *testing.T) {
	tbl := mustTable(t, []string{"name", "Latitude", "Longitude", "status"},
		[]any{"plant", 10.0, 20.0, "Operational"},
	)
	out := Standardize(tbl)

	assert.Equal(t, []string{"name", "lat", "lon", "status"}, out.Columns())
	assert.Equal(t, []string{"name", "Latitude", "Longitude", "status"}, tbl.Columns())
	lat, ok := out.Row(0).Float("lat")
	require.True(t, ok)
	assert.InDelta(t, 10.0, lat, 1e-9)
	assert.Equal(t, "Operational", out.Row(0).String("status"))
}

func TestStandardize_CollisionLastWins(t *testing.T) {
	tbl := mustTable(t, []string{"latitude", "name", "LAT", "lat"},
		[]any{1.0, "a", 2.0, 3.0},
	)
	out := Standardize(tbl)

	assert.Equal(t, []string{"lat", "name"}, out.Columns())
	lat, ok := out.Row(0).Float("lat")
	require.True(t, ok)
	assert.InDelta(t, 3.0, lat, 1e-9)
}
