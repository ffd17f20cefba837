package canvas

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Options{})

	assert.True(t, strings.HasPrefix(c.ID(), "map_"))
	assert.Len(t, c.ID(), len("map_")+32)
	assert.Equal(t, LatLon{}, c.Center())
	assert.Equal(t, DefaultZoom, c.Zoom())
	assert.Equal(t, "OpenStreetMap", c.BaseTiles().Name)
	assert.Nil(t, c.LayerControl())
	assert.Zero(t, c.MarkerCount())

	names := make([]string, 0, len(c.TileLayers()))
	for _, tl := range c.TileLayers() {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"Thunderforest", "Thunderforest_trans", "Mapbox Satellite", "CartoDB Positron"}, names)
}

func TestNew_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, New(Options{}).ID(), New(Options{}).ID())
}

func TestNew_Options(t *testing.T) {
	c := New(Options{
		Center:   &LatLon{Lat: 10, Lon: 20},
		Zoom:     6,
		Tiles:    "CartoDB Positron",
		TileKeys: TileKeys{Thunderforest: "tf key", Mapbox: "mb"},
	})

	assert.Equal(t, LatLon{Lat: 10, Lon: 20}, c.Center())
	assert.Equal(t, 6, c.Zoom())
	assert.Equal(t, "CartoDB Positron", c.BaseTiles().Name)
	assert.Contains(t, c.TileLayers()[0].URL, "?apikey=tf+key")
	assert.Contains(t, c.TileLayers()[2].URL, "?access_token=mb")
}

func TestResolveTiles_URLTemplate(t *testing.T) {
	tl := ResolveTiles("https://example.com/{z}/{x}/{y}.png")
	assert.Equal(t, "https://example.com/{z}/{x}/{y}.png", tl.URL)
}

func TestAddTileLayer_SkipsEmptyURL(t *testing.T) {
	c := New(Options{})
	before := len(c.TileLayers())
	c.AddTileLayer(TileLayer{Name: "broken"})
	assert.Len(t, c.TileLayers(), before)
}

func TestNew_BaseNotDuplicatedInTileLayers(t *testing.T) {
	c := New(Options{Tiles: "CartoDB Positron"})

	names := make([]string, 0, len(c.TileLayers()))
	for _, tl := range c.TileLayers() {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"Thunderforest", "Thunderforest_trans", "Mapbox Satellite"}, names)

	c.AddTileLayer(TileLayer{Name: "Mapbox Satellite", URL: "https://example.com/{z}/{x}/{y}.png"})
	assert.Len(t, c.TileLayers(), 3)
}

func TestRender_PinIconBuiltWithDOM(t *testing.T) {
	c := New(Options{})
	c.AddMarker(Marker{
		Location: LatLon{Lat: 1, Lon: 2},
		Kind:     KindPin,
		Color:    `red"><img src=x onerror=alert(1)>`,
		Icon:     `info"></i><script>alert(1)</script>`,
	})

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	doc := buf.String()

	assert.Contains(t, doc, `document.createElement("i")`)
	assert.NotContains(t, doc, `'<i class="fa fa-' +`)
	assert.NotContains(t, doc, "<script>alert(1)</script>")
	assert.NotContains(t, doc, "<img src=x")
}

func TestLayers_OrderAndCounts(t *testing.T) {
	c := New(Options{})
	a := NewLayer("a")
	a.AddMarker(Marker{Location: LatLon{Lat: 1, Lon: 2}})
	a.AddMarker(Marker{Location: LatLon{Lat: 3, Lon: 4}})
	b := NewLayer("b")
	c.AddLayer(a)
	c.AddLayer(b)
	c.AddMarker(Marker{Location: LatLon{Lat: 5, Lon: 6}})
	c.AddLayerControl(true)

	require.Len(t, c.Layers(), 2)
	assert.Equal(t, "a", c.Layers()[0].Name())
	assert.Equal(t, "b", c.Layers()[1].Name())
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, LatLon{Lat: 3, Lon: 4}, a.Markers()[1].Location)
	assert.Equal(t, 3, c.MarkerCount())
	assert.True(t, c.LayerControl().Collapsed)
}

func TestFeatureCollection(t *testing.T) {
	c := New(Options{})
	l := NewLayer("Hub, Deployed")
	l.AddMarker(Marker{
		Location: LatLon{Lat: 10, Lon: 20}, Kind: KindCircle, Color: "red",
		Fill: true, FillColor: "red", Radius: 2.5, Weight: 2, FillOpacity: 1,
		Popup: "Name: x", PopupMaxWidth: 150,
	})
	c.AddLayer(l)
	c.AddMarker(Marker{Location: LatLon{Lat: 1, Lon: 2}, Kind: KindPin, Color: "blue", Icon: "info"})

	data, err := c.FeatureCollection().MarshalJSON()
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)

	pin := doc.Features[0]
	assert.Equal(t, []float64{2, 1}, pin.Geometry.Coordinates)
	assert.Equal(t, "pin", pin.Properties["kind"])
	assert.Equal(t, "info", pin.Properties["icon"])
	assert.NotContains(t, pin.Properties, "popup")
	assert.NotContains(t, pin.Properties, "layer")

	circle := doc.Features[1]
	assert.Equal(t, "Point", circle.Geometry.Type)
	assert.Equal(t, []float64{20, 10}, circle.Geometry.Coordinates)
	assert.Equal(t, "Hub, Deployed", circle.Properties["layer"])
	assert.Equal(t, "circle", circle.Properties["kind"])
	assert.Equal(t, 2.5, circle.Properties["radius"])
	assert.Equal(t, true, circle.Properties["fill"])
	assert.Equal(t, "Name: x", circle.Properties["popup"])
}

func TestRender_Document(t *testing.T) {
	c := New(Options{Title: "Status <map>"})
	l := NewLayer("Single, Planned")
	l.AddMarker(Marker{Location: LatLon{Lat: 1, Lon: 2}, Color: "#00AC4F", Popup: "Name: a<br>Capacity: 3"})
	c.AddLayer(l)
	c.AddLayerControl(false)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	html := buf.String()

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "leaflet.js")
	assert.Contains(t, html, `id="`+c.ID()+`"`)
	assert.Contains(t, html, "Status &lt;map&gt;")
	assert.Contains(t, html, "Single, Planned")
	assert.Contains(t, html, "L.control.layers")
	assert.Contains(t, html, `#00AC4F`)
	assert.NotContains(t, html, "Name: a<br>", "popup markup must be escaped inside the script")
}

func TestSave_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "map.html")

	c := New(Options{})
	require.NoError(t, c.Save(path))
	require.NoError(t, c.Save(path), "saving twice must succeed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), c.ID())
}

func TestSave_Error(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New(Options{}).Save(filepath.Join(blocker, "map.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas: create directory")
}

func TestSaveGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "map.geojson")
	c := New(Options{})
	c.AddMarker(Marker{Location: LatLon{Lat: 1, Lon: 2}})
	require.NoError(t, c.SaveGeoJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}

func TestHandle_ServesDocument(t *testing.T) {
	c := New(Options{})
	rec := httptest.NewRecorder()
	c.Handle().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), c.ID())
}
