package canvas

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection returns every marker as a GeoJSON point feature. Layer markers carry their
// layer name in the "layer" property.
func (c *Canvas) FeatureCollection() *geojson.FeatureCollection {
	fc := markerCollection(c.markers, "")
	for _, l := range c.layers {
		fc.Features = append(fc.Features, markerCollection(l.markers, l.name).Features...)
	}
	return fc
}

func markerCollection(markers []Marker, layer string) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(markers))}
	for _, m := range markers {
		props := m.properties()
		if layer != "" {
			props["layer"] = layer
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{m.Location.Lon, m.Location.Lat}),
			Properties: props,
		})
	}
	return fc
}

// properties maps a marker onto the feature properties the document script draws from.
func (m Marker) properties() map[string]any {
	kind := m.Kind
	if kind == "" {
		kind = KindCircle
	}
	props := map[string]any{
		"kind":  string(kind),
		"color": m.Color,
	}
	if kind == KindCircle {
		props["radius"] = m.Radius
		props["fill"] = m.Fill
		props["weight"] = m.Weight
		props["opacity"] = m.Opacity
		props["fillOpacity"] = m.FillOpacity
		if m.FillColor != "" {
			props["fillColor"] = m.FillColor
		}
	}
	if m.Icon != "" {
		props["icon"] = m.Icon
	}
	if m.Popup != "" {
		props["popup"] = m.Popup
		props["popupMaxWidth"] = m.PopupMaxWidth
	}
	return props
}
