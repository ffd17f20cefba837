// Package render turns table rows into map markers.
package render

import (
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/table"
)

// Target receives rendered markers. Both *canvas.Layer and *canvas.Canvas satisfy it.
type Target interface {
	AddMarker(canvas.Marker)
}

// PopupMaxWidth is the popup width used for generic point plots.
const PopupMaxWidth = 300

// Style controls how every marker of one render call looks.
type Style struct {
	Kind        canvas.MarkerKind
	Color       string
	Radius      float64
	Fill        bool
	Weight      float64
	Opacity     float64
	FillOpacity float64
	Icon        string
}

// DefaultStyle returns the circle style used when the caller does not pick one.
func DefaultStyle() Style {
	return Style{
		Kind:        canvas.KindCircle,
		Color:       "blue",
		Radius:      5,
		Fill:        true,
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.7,
	}
}

// Options selects columns and style for Points.
type Options struct {
	LatCol    string // "" means table.ColLat
	LonCol    string // "" means table.ColLon
	PopupCols []string
	Style     Style
}

// Points renders one marker per row with both coordinates present, attaching each to target in
// row order. When the coordinate columns are missing it logs a warning and leaves target
// untouched.
func Points(t *table.Table, opts Options, target Target) []canvas.Marker {
	t = table.Standardize(t)

	latCol, lonCol := opts.LatCol, opts.LonCol
	if latCol == "" {
		latCol = table.ColLat
	}
	if lonCol == "" {
		lonCol = table.ColLon
	}
	if !t.Has(latCol) || !t.Has(lonCol) {
		zap.L().Warn("render: coordinate columns not found",
			zap.String("lat_col", latCol),
			zap.String("lon_col", lonCol),
			zap.Strings("columns", t.Columns()),
		)
		return nil
	}

	var popupCols []string
	for _, c := range opts.PopupCols {
		if t.Has(c) {
			popupCols = append(popupCols, c)
		}
	}

	var markers []canvas.Marker
	for row := range t.Rows() {
		lat, okLat := row.Float(latCol)
		lon, okLon := row.Float(lonCol)
		if !okLat || !okLon {
			continue
		}

		m := Marker(opts.Style, canvas.LatLon{Lat: lat, Lon: lon}, Popup(row, popupCols))
		if target != nil {
			target.AddMarker(m)
		}
		markers = append(markers, m)
	}
	return markers
}

// Marker builds the marker for a single location. Pins carry only color, icon and popup.
func Marker(s Style, loc canvas.LatLon, popup string) canvas.Marker {
	m := canvas.Marker{
		Location:      loc,
		Kind:          s.Kind,
		Color:         s.Color,
		Icon:          s.Icon,
		Popup:         popup,
		PopupMaxWidth: PopupMaxWidth,
	}
	if m.Kind == "" {
		m.Kind = canvas.KindCircle
	}
	if m.Kind == canvas.KindCircle {
		m.Radius = s.Radius
		m.Fill = s.Fill
		m.Weight = s.Weight
		m.Opacity = s.Opacity
		m.FillOpacity = s.FillOpacity
	}
	return m
}

// Popup joins "column: value" lines for the given columns. Values are HTML-escaped.
func Popup(row table.Row, cols []string) string {
	lines := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := row.Value(c); !ok {
			continue
		}
		lines = append(lines, c+": "+html.EscapeString(row.String(c)))
	}
	return strings.Join(lines, "<br>")
}
