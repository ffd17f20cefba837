// Package canvas owns the rendering surface of a map document: base tiles, marker layers and
// the layer control, and writes the finished document to disk.
package canvas

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Canvas defaults.
const (
	DefaultZoom  = 3
	DefaultTiles = "OpenStreetMap"
)

// Options configures a new canvas.
type Options struct {
	Center   *LatLon // nil centers on 0,0
	Zoom     int     // 0 means DefaultZoom
	Tiles    string  // provider name or URL template; "" means DefaultTiles
	TileKeys TileKeys
	Title    string
}

// LayerControl is the overlay toggle widget.
type LayerControl struct {
	Collapsed bool `json:"collapsed"`
}

// Canvas is a single map document under construction.
type Canvas struct {
	id      string
	title   string
	center  LatLon
	zoom    int
	base    TileLayer
	tiles   []TileLayer
	layers  []*Layer
	markers []Marker
	control *LayerControl
}

// New creates a canvas and registers the default optional base layers.
func New(opts Options) *Canvas {
	c := &Canvas{
		id:    "map_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		title: opts.Title,
		zoom:  opts.Zoom,
	}
	if opts.Center != nil {
		c.center = *opts.Center
	}
	if c.zoom <= 0 {
		c.zoom = DefaultZoom
	}
	tiles := opts.Tiles
	if tiles == "" {
		tiles = DefaultTiles
	}
	c.base = ResolveTiles(tiles)
	if c.title == "" {
		c.title = "Map"
	}

	for _, t := range DefaultTileLayers(opts.TileKeys) {
		c.AddTileLayer(t)
	}
	return c
}

// ID returns the document element id of the map.
func (c *Canvas) ID() string { return c.id }

// Center returns the initial map center.
func (c *Canvas) Center() LatLon { return c.center }

// Zoom returns the initial zoom level.
func (c *Canvas) Zoom() int { return c.zoom }

// BaseTiles returns the default base layer.
func (c *Canvas) BaseTiles() TileLayer { return c.base }

// AddTileLayer registers an optional base layer. Layers without a URL, or named like the base
// layer or an already registered one, are skipped.
func (c *Canvas) AddTileLayer(t TileLayer) {
	if strings.TrimSpace(t.URL) == "" {
		zap.L().Warn("canvas: skipping tile layer without url", zap.String("name", t.Name))
		return
	}
	if t.Name == c.base.Name || slices.ContainsFunc(c.tiles, func(o TileLayer) bool { return o.Name == t.Name }) {
		zap.L().Debug("canvas: skipping duplicate tile layer", zap.String("name", t.Name))
		return
	}
	c.tiles = append(c.tiles, t)
}

// TileLayers returns the optional base layers in registration order.
func (c *Canvas) TileLayers() []TileLayer { return c.tiles }

// AddLayer attaches an overlay layer. The canvas owns the layer from here on.
func (c *Canvas) AddLayer(l *Layer) { c.layers = append(c.layers, l) }

// Layers returns the overlay layers in the order they were attached.
func (c *Canvas) Layers() []*Layer { return c.layers }

// AddMarker draws a marker outside any toggleable layer.
func (c *Canvas) AddMarker(m Marker) { c.markers = append(c.markers, m) }

// Markers returns markers attached directly to the canvas.
func (c *Canvas) Markers() []Marker { return c.markers }

// AddLayerControl adds the overlay toggle widget.
func (c *Canvas) AddLayerControl(collapsed bool) {
	c.control = &LayerControl{Collapsed: collapsed}
}

// LayerControl returns the layer control, or nil when none was added.
func (c *Canvas) LayerControl() *LayerControl { return c.control }

// MarkerCount returns the number of markers across the canvas and all layers.
func (c *Canvas) MarkerCount() int {
	n := len(c.markers)
	for _, l := range c.layers {
		n += l.Len()
	}
	return n
}

// Handle returns the canvas as a displayable document.
func (c *Canvas) Handle() http.Handler { return c }

// ServeHTTP renders the document.
func (c *Canvas) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		zap.L().Error("canvas: render", zap.String("id", c.id), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Save writes the HTML document to path, creating parent directories as needed.
func (c *Canvas) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	zap.L().Info("canvas: map saved",
		zap.String("path", path),
		zap.Int("layers", len(c.layers)),
		zap.Int("markers", c.MarkerCount()),
	)
	return nil
}

// SaveGeoJSON writes every marker as a GeoJSON FeatureCollection to path.
func (c *Canvas) SaveGeoJSON(path string) error {
	data, err := c.FeatureCollection().MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "canvas: encode geojson")
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	zap.L().Info("canvas: geojson saved", zap.String("path", path))
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "canvas: create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "canvas: write %s", path)
	}
	return nil
}
