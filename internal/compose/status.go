package compose

import (
	"html"

	"go.uber.org/zap"

	"github.com/sells-group/quickmap/internal/canvas"
	"github.com/sells-group/quickmap/internal/classify"
	"github.com/sells-group/quickmap/internal/table"
)

// Status map colors.
const (
	ColorHub    = "#C84623"
	ColorSingle = "#00AC4F"
)

// Status map marker geometry.
const (
	statusRadius        = 2.5
	statusWeight        = 2
	statusPopupMaxWidth = 150
)

// StatusCategory is one layer of the deployment status map.
type StatusCategory struct {
	Label     string
	Structure classify.Structure
	Bucket    classify.Bucket
	Color     string
	Fill      bool
}

// StatusCategories lists the status map layers in layer control order. Deployed projects are
// drawn filled, planned ones as outlines.
var StatusCategories = []StatusCategory{
	{Label: "Hub, Planned", Structure: classify.Hub, Bucket: classify.Planned, Color: ColorHub, Fill: false},
	{Label: "Hub, Deployed", Structure: classify.Hub, Bucket: classify.Deployed, Color: ColorHub, Fill: true},
	{Label: "Single, Deployed", Structure: classify.SingleSource, Bucket: classify.Deployed, Color: ColorSingle, Fill: true},
	{Label: "Single, Planned", Structure: classify.SingleSource, Bucket: classify.Planned, Color: ColorSingle, Fill: false},
}

type statusKey struct {
	structure classify.Structure
	bucket    classify.Bucket
}

// PrepareStatus applies the status map filters and derives planned_or_deployed and
// single_or_hub. Rows it returns all have coordinates and a Planned or Deployed bucket.
func PrepareStatus(t *table.Table) *table.Table {
	t = filterLarge(table.Standardize(t))
	if !t.Has(ColStatus) {
		zap.L().Warn("compose: table has no status column, every row is bucketed as Others",
			zap.String("column", ColStatus))
	}

	t = t.WithColumn(ColPlannedOrDeployed, func(r table.Row) any {
		return string(classify.ClassifyStatus(r.String(ColStatus)))
	})
	t = t.Filter(func(r table.Row) bool {
		return r.String(ColPlannedOrDeployed) != string(classify.Others)
	})

	if t.Has(ColHubFlag) {
		t = t.WithColumn(ColSingleOrHub, func(r table.Row) any {
			v, _ := r.Value(ColHubFlag)
			return string(classify.ClassifyStructure(v))
		})
	} else {
		zap.L().Info("compose: no hub flag column, defaulting every project",
			zap.String("column", ColHubFlag),
			zap.String("structure", string(classify.StructureDefault)),
		)
		t = t.WithColumn(ColSingleOrHub, func(table.Row) any { return string(classify.StructureDefault) })
	}

	return t.Filter(hasCoordinates)
}

// PlotByDeploymentStatus maps Large projects into four layers by hub/single structure and
// planned/deployed bucket. The map is saved under outputDir when it is set.
func (c *Composer) PlotByDeploymentStatus(t *table.Table, outputDir string) (*Result, error) {
	prepared := PrepareStatus(t)

	cv := canvas.New(c.canvasOptions("CCUS status map", nil))
	layers := make([]*canvas.Layer, len(StatusCategories))
	index := make(map[statusKey]int, len(StatusCategories))
	for i, cat := range StatusCategories {
		layers[i] = canvas.NewLayer(cat.Label)
		index[statusKey{structure: cat.Structure, bucket: cat.Bucket}] = i
	}

	for row := range prepared.Rows() {
		key := statusKey{
			structure: classify.Structure(row.String(ColSingleOrHub)),
			bucket:    classify.Bucket(row.String(ColPlannedOrDeployed)),
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		loc, _ := coordinates(row)
		layers[i].AddMarker(statusMarker(StatusCategories[i], loc, row))
	}

	res := &Result{Report: ReportStatus, Input: t.Len(), Canvas: cv}
	for i, l := range layers {
		cv.AddLayer(l)
		res.Layers = append(res.Layers, LayerSummary{Name: l.Name(), Color: StatusCategories[i].Color, Markers: l.Len()})
	}
	cv.AddLayerControl(true)

	return c.finish(res, outputDir)
}

func statusMarker(cat StatusCategory, loc canvas.LatLon, row table.Row) canvas.Marker {
	m := canvas.Marker{
		Location:      loc,
		Kind:          canvas.KindCircle,
		Color:         cat.Color,
		Fill:          cat.Fill,
		Radius:        statusRadius,
		Weight:        statusWeight,
		Opacity:       1,
		PopupMaxWidth: statusPopupMaxWidth,
		Popup: "Name: " + html.EscapeString(row.StringOr(ColName, "N/A")) +
			"<br>Capacity: " + html.EscapeString(row.StringOr(ColCapacity, "N/A")) +
			"<br>" + cat.Label,
	}
	if cat.Fill {
		m.FillColor = cat.Color
		m.FillOpacity = 1
	}
	return m
}
