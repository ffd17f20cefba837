package canvas

import (
	"net/url"
	"strings"
)

// TileLayer is a named base map tile source.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// TileKeys holds credentials for keyed tile providers.
type TileKeys struct {
	Thunderforest string
	Mapbox        string
}

const osmAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`

// namedTiles are the built-in providers selectable by name.
var namedTiles = map[string]TileLayer{
	"OpenStreetMap": {
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: osmAttribution,
	},
	"CartoDB Positron": {
		Name:        "CartoDB Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: osmAttribution + ` &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	},
}

// ResolveTiles returns the provider registered under name. Any other value is treated as a URL
// template.
func ResolveTiles(name string) TileLayer {
	if t, ok := namedTiles[name]; ok {
		return t
	}
	return TileLayer{Name: name, URL: name}
}

// DefaultTileLayers returns the four optional base layers added to every canvas.
func DefaultTileLayers(keys TileKeys) []TileLayer {
	return []TileLayer{
		{
			Name:        "Thunderforest",
			URL:         "https://tile.thunderforest.com/neighbourhood/{z}/{x}/{y}.png" + keyQuery("apikey", keys.Thunderforest),
			Attribution: "Thunderforest",
		},
		{
			Name:        "Thunderforest_trans",
			URL:         "https://tile.thunderforest.com/transport/{z}/{x}/{y}.png" + keyQuery("apikey", keys.Thunderforest),
			Attribution: "Thunderforest_trans",
		},
		{
			Name:        "Mapbox Satellite",
			URL:         "https://api.mapbox.com/styles/v1/mapbox/satellite-streets-v11/tiles/{z}/{x}/{y}" + keyQuery("access_token", keys.Mapbox),
			Attribution: "Mapbox Satellite",
		},
		namedTiles["CartoDB Positron"],
	}
}

func keyQuery(param, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return "?" + param + "=" + url.QueryEscape(key)
}
