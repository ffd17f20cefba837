// Package compose builds layered CCUS project maps: it filters a project table, derives category
// columns, partitions rows into one layer per category and saves the assembled canvas.
package compose

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/render"
	"github.com/sells-group/quickmap/internal/table"
)

// Source and derived column names.
const (
	ColStatus            = "status"
	ColSizeCategory      = "size_category"
	ColHubFlag           = "hub_development_flag"
	ColDACFlag           = "dac_flag"
	ColName              = "name"
	ColCapacity          = "capacity"
	ColPlannedOrDeployed = "planned_or_deployed"
	ColSingleOrHub       = "single_or_hub"
)

// SizeLarge is the only size category plotted by the CCUS reports.
const SizeLarge = "Large"

// Report names, used as output file name prefixes.
const (
	ReportStatus   = "ccus_status_map"
	ReportMaturity = "ccus_maturity_map"
	ReportQuick    = "quick_map"
)

// timestampLayout formats the save time in output file names (YYYYMMDD_HHMMSS).
const timestampLayout = "20060102_150405"

// Composer runs the map pipelines. The zero value is not usable; call New.
type Composer struct {
	canvasOpts canvas.Options
	now        func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock overrides the clock used for output file timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// New creates a Composer whose canvases start from base. Center is set per pipeline.
func New(base canvas.Options, opts ...Option) *Composer {
	c := &Composer{canvasOpts: base, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LayerSummary describes one rendered layer.
type LayerSummary struct {
	Name    string `json:"name" yaml:"name"`
	Color   string `json:"color" yaml:"color"`
	Markers int    `json:"markers" yaml:"markers"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	Report  string         `json:"report" yaml:"report"`
	Path    string         `json:"path,omitempty" yaml:"path,omitempty"` // empty when not saved
	Input   int            `json:"input_rows" yaml:"input_rows"`
	Plotted int            `json:"plotted" yaml:"plotted"`
	Layers  []LayerSummary `json:"layers" yaml:"layers"`

	Canvas *canvas.Canvas `json:"-" yaml:"-"`
}

// QuickPlot draws every row with coordinates straight onto a fresh canvas. The canvas is saved
// to savePath when it is set.
func (c *Composer) QuickPlot(t *table.Table, opts render.Options, savePath string) (*Result, error) {
	cv := canvas.New(c.canvasOptions("Quick map", nil))
	markers := render.Points(t, opts, cv)

	res := &Result{
		Report:  ReportQuick,
		Input:   t.Len(),
		Plotted: len(markers),
		Canvas:  cv,
	}
	if savePath == "" {
		return res, nil
	}
	if err := cv.Save(savePath); err != nil {
		return nil, eris.Wrap(err, "compose: save quick map")
	}
	res.Path = savePath
	return res, nil
}

func (c *Composer) canvasOptions(title string, center *canvas.LatLon) canvas.Options {
	opts := c.canvasOpts
	opts.Title = title
	opts.Center = center
	return opts
}

// finish persists cv under outputDir when it is set.
func (c *Composer) finish(res *Result, outputDir string) (*Result, error) {
	for _, l := range res.Layers {
		res.Plotted += l.Markers
		zap.L().Debug("compose: layer rendered",
			zap.String("report", res.Report),
			zap.String("layer", l.Name),
			zap.Int("markers", l.Markers),
		)
	}
	zap.L().Info("compose: map built",
		zap.String("report", res.Report),
		zap.Int("input_rows", res.Input),
		zap.Int("plotted", res.Plotted),
	)

	if outputDir == "" {
		return res, nil
	}
	path := OutputPath(outputDir, res.Report, c.now())
	if err := res.Canvas.Save(path); err != nil {
		return nil, eris.Wrapf(err, "compose: save %s", res.Report)
	}
	res.Path = path
	return res, nil
}

// OutputPath returns {dir}/{report}_{YYYYMMDD_HHMMSS}.html.
func OutputPath(dir, report string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.html", report, at.Format(timestampLayout)))
}

// filterLarge keeps Large projects when the table has a size category column.
func filterLarge(t *table.Table) *table.Table {
	if !t.Has(ColSizeCategory) {
		return t
	}
	return t.Filter(func(r table.Row) bool { return r.String(ColSizeCategory) == SizeLarge })
}

// coordinates returns the row position; ok is false when either coordinate is missing.
func coordinates(r table.Row) (canvas.LatLon, bool) {
	lat, okLat := r.Float(table.ColLat)
	lon, okLon := r.Float(table.ColLon)
	return canvas.LatLon{Lat: lat, Lon: lon}, okLat && okLon
}

func hasCoordinates(r table.Row) bool {
	_, ok := coordinates(r)
	return ok
}
