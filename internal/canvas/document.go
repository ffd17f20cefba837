package canvas

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/rotisserie/eris"
)

type overlayJSON struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type mapState struct {
	Center   [2]float64      `json:"center"`
	Zoom     int             `json:"zoom"`
	Base     TileLayer       `json:"base"`
	Tiles    []TileLayer     `json:"tiles"`
	Markers  json.RawMessage `json:"markers"`
	Overlays []overlayJSON   `json:"overlays"`
	Control  *LayerControl   `json:"control,omitempty"`
}

type documentData struct {
	ID    string
	Title string
	State mapState
}

var documentTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body { height: 100%; margin: 0; padding: 0; }</style>
</head>
<body>
<div id="{{.ID}}" style="position: absolute; top: 0; bottom: 0; left: 0; right: 0;"></div>
<script>
(function () {
  var state = {{.State}};
  var map = L.map({{.ID}}, { center: state.center, zoom: state.zoom });

  function tiles(t) {
    return L.tileLayer(t.url, { attribution: t.attribution, maxZoom: 18 });
  }
  var bases = {};
  bases[state.base.name] = tiles(state.base).addTo(map);
  (state.tiles || []).forEach(function (t) {
    if (!bases[t.name]) {
      bases[t.name] = tiles(t);
    }
  });

  function features(data) {
    return L.geoJSON(data, {
      pointToLayer: function (feature, latlng) {
        var p = feature.properties;
        var m;
        if (p.kind === "pin") {
          var opts = {};
          if (p.icon) {
            var icon = document.createElement("i");
            icon.className = "fa fa-" + p.icon;
            icon.style.color = p.color || "";
            icon.style.fontSize = "18px";
            opts.icon = L.divIcon({ className: "", html: icon });
          }
          m = L.marker(latlng, opts);
        } else {
          m = L.circleMarker(latlng, {
            radius: p.radius,
            color: p.color,
            fill: p.fill,
            fillColor: p.fillColor || p.color,
            weight: p.weight,
            opacity: p.opacity,
            fillOpacity: p.fillOpacity
          });
        }
        if (p.popup) {
          m.bindPopup(p.popup, { maxWidth: p.popupMaxWidth });
        }
        return m;
      }
    });
  }

  features(state.markers).addTo(map);
  var overlays = {};
  (state.overlays || []).forEach(function (o) {
    overlays[o.name] = features(o.data).addTo(map);
  });
  if (state.control) {
    L.control.layers(bases, overlays, { collapsed: state.control.collapsed }).addTo(map);
  }
})();
</script>
</body>
</html>
`))

// Render writes the self-contained HTML document.
func (c *Canvas) Render(w io.Writer) error {
	state := mapState{
		Center:   [2]float64{c.center.Lat, c.center.Lon},
		Zoom:     c.zoom,
		Base:     c.base,
		Tiles:    c.tiles,
		Overlays: make([]overlayJSON, 0, len(c.layers)),
		Control:  c.control,
	}
	if state.Tiles == nil {
		state.Tiles = []TileLayer{}
	}

	markers, err := markerCollection(c.markers, "").MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "canvas: encode markers")
	}
	state.Markers = markers

	for _, l := range c.layers {
		data, err := markerCollection(l.markers, "").MarshalJSON()
		if err != nil {
			return eris.Wrapf(err, "canvas: encode layer %s", l.name)
		}
		state.Overlays = append(state.Overlays, overlayJSON{Name: l.name, Data: data})
	}

	if err := documentTmpl.Execute(w, documentData{ID: c.id, Title: c.title, State: state}); err != nil {
		return eris.Wrap(err, "canvas: render document")
	}
	return nil
}
