package compose

import (
	"html"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/classify"
	"github.com/sells-group/quickmap/internal/table"
)

// Maturity map marker style.
const (
	maturityRadius        = 5
	maturityWeight        = 3
	maturityFillOpacity   = 0.7
	maturityPopupMaxWidth = 150
)

// PrepareMaturity applies the maturity map filters: Large projects only, no direct air capture,
// no projects completed after operation, coordinates present and latitude not zero.
func PrepareMaturity(t *table.Table) *table.Table {
	t = filterLarge(table.Standardize(t))
	if t.Has(ColDACFlag) {
		t = t.Filter(func(r table.Row) bool { return !r.Bool(ColDACFlag) })
	}
	return t.Filter(func(r table.Row) bool {
		if r.String(ColStatus) == classify.StatusCompletedAfterOperation {
			return false
		}
		loc, ok := coordinates(r)
		// Zero latitude marks rows that were never geocoded; longitude is not checked.
		return ok && loc.Lat != 0
	})
}

// MeanCenter returns the mean position of the rows, or 0,0 for an empty table.
func MeanCenter(t *table.Table) canvas.LatLon {
	var sum canvas.LatLon
	n := 0
	for row := range t.Rows() {
		loc, ok := coordinates(row)
		if !ok {
			continue
		}
		sum.Lat += loc.Lat
		sum.Lon += loc.Lon
		n++
	}
	if n == 0 {
		return canvas.LatLon{}
	}
	return canvas.LatLon{Lat: sum.Lat / float64(n), Lon: sum.Lon / float64(n)}
}

// PlotByMaturity maps projects into one layer per maturity stage, centered on their mean
// position. Every stage gets a layer, even when no project is in it. The map is saved under
// outputDir when it is set.
func (c *Composer) PlotByMaturity(t *table.Table, outputDir string) (*Result, error) {
	prepared := PrepareMaturity(t)
	center := MeanCenter(prepared)

	cv := canvas.New(c.canvasOptions("CCUS maturity map", &center))
	layers := make(map[string]*canvas.Layer, len(classify.MaturityStages))
	for _, stage := range classify.MaturityStages {
		layers[stage] = canvas.NewLayer(stage)
	}

	for row := range prepared.Rows() {
		status := row.String(ColStatus)
		l, ok := layers[status]
		if !ok {
			continue
		}
		loc, _ := coordinates(row)
		l.AddMarker(maturityMarker(status, loc, row))
	}

	res := &Result{Report: ReportMaturity, Input: t.Len(), Canvas: cv}
	for _, stage := range classify.MaturityStages {
		l := layers[stage]
		cv.AddLayer(l)
		res.Layers = append(res.Layers, LayerSummary{Name: stage, Color: classify.MaturityColor(stage), Markers: l.Len()})
	}
	cv.AddLayerControl(true)

	return c.finish(res, outputDir)
}

func maturityMarker(status string, loc canvas.LatLon, row table.Row) canvas.Marker {
	return canvas.Marker{
		Location:      loc,
		Kind:          canvas.KindCircle,
		Color:         classify.MaturityColor(status),
		Fill:          true,
		Radius:        maturityRadius,
		Weight:        maturityWeight,
		Opacity:       1,
		FillOpacity:   maturityFillOpacity,
		PopupMaxWidth: maturityPopupMaxWidth,
		Popup:         "Name: " + html.EscapeString(row.StringOr(ColName, "N/A")) + "<br>Status: " + html.EscapeString(status),
	}
}
