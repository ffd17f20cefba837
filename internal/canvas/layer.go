package canvas

// MarkerKind selects how a point is drawn.
type MarkerKind string

// Marker kinds.
const (
	KindCircle MarkerKind = "circle"
	KindPin    MarkerKind = "pin"
)

// LatLon is a WGS84 position.
type LatLon struct {
	Lat float64
	Lon float64
}

// Marker is the rendering instruction for one point.
type Marker struct {
	Location      LatLon
	Kind          MarkerKind
	Color         string
	Fill          bool
	FillColor     string // empty leaves the fill color to the stroke color
	Radius        float64
	Weight        float64
	Opacity       float64
	FillOpacity   float64
	Icon          string // pin glyph, optional
	Popup         string // HTML; empty means no popup
	PopupMaxWidth int
}

// Layer is a named group of markers toggled as one.
type Layer struct {
	name    string
	markers []Marker
}

// NewLayer creates an empty layer.
func NewLayer(name string) *Layer {
	return &Layer{name: name}
}

// Name returns the layer name shown in the layer control.
func (l *Layer) Name() string { return l.name }

// AddMarker appends a marker. Later markers draw on top.
func (l *Layer) AddMarker(m Marker) { l.markers = append(l.markers, m) }

// Markers returns the layer's markers in draw order.
func (l *Layer) Markers() []Marker { return l.markers }

// Len returns the number of markers.
func (l *Layer) Len() int { return len(l.markers) }
