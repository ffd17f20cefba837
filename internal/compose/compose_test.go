package compose

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/render"
	"github.com/sells-group/quickmap/internal/table"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newComposer() *Composer {
	return New(canvas.Options{}, WithClock(func() time.Time { return fixedNow }))
}

func newTable(t *testing.T, cols []string, rows ...[]any) *table.Table {
	t.Helper()
	tbl, err := table.New(cols, rows)
	require.NoError(t, err)
	return tbl
}

func layerByName(t *testing.T, cv *canvas.Canvas, name string) *canvas.Layer {
	t.Helper()
	for _, l := range cv.Layers() {
		if l.Name() == name {
			return l
		}
	}
	require.Failf(t, "layer not found", "layer %q", name)
	return nil
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("maps", "ccus_status_map_20240309_140507.html"),
		OutputPath("maps", ReportStatus, fixedNow),
	)
}

func TestQuickPlot_NoSave(t *testing.T) {
	tbl := newTable(t, []string{"Latitude", "Longitude", "name"},
		[]any{1.0, 2.0, "a"},
		[]any{nil, 2.0, "b"},
	)

	res, err := newComposer().QuickPlot(tbl, render.Options{PopupCols: []string{"name"}, Style: render.DefaultStyle()}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Path)
	assert.Equal(t, 2, res.Input)
	assert.Equal(t, 1, res.Plotted)
	require.Len(t, res.Canvas.Markers(), 1)
	assert.Equal(t, "name: a", res.Canvas.Markers()[0].Popup)
}

func TestQuickPlot_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "quick.html")
	tbl := newTable(t, []string{"lat", "lon"}, []any{1.0, 2.0})

	res, err := newComposer().QuickPlot(tbl, render.Options{Style: render.DefaultStyle()}, path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.FileExists(t, path)
}

func TestQuickPlot_MissingColumns(t *testing.T) {
	tbl := newTable(t, []string{"name"}, []any{"a"})
	res, err := newComposer().QuickPlot(tbl, render.Options{Style: render.DefaultStyle()}, "")
	require.NoError(t, err)
	assert.Zero(t, res.Canvas.MarkerCount())
}

func TestSaveErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	tbl := newTable(t, []string{"status", "lat", "lon"})
	_, err := newComposer().PlotByDeploymentStatus(tbl, filepath.Join(blocker, "maps"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compose: save ccus_status_map")
}
