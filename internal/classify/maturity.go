package classify

import "slices"

// MaturityStages is the project lifecycle from first announcement to operation.
var MaturityStages = []string{
	"Announced",
	"Feasibility",
	"Design",
	"Financing",
	"Construction",
	"Operational",
}

// MaturityPalette colors stages by position in MaturityStages, cycling when shorter.
var MaturityPalette = []string{
	"#00A3E0",
	"#FFCD00",
	"#E03C31",
	"#007A33",
	"#6244BB",
	"#000000",
}

// MaturityFallbackColor is returned for statuses outside MaturityStages.
const MaturityFallbackColor = "gray"

var maturityColors = func() map[string]string {
	m := make(map[string]string, len(MaturityStages))
	for i, stage := range MaturityStages {
		m[stage] = MaturityPalette[i%len(MaturityPalette)]
	}
	return m
}()

// MaturityColor returns the palette color for a maturity stage.
func MaturityColor(status string) string {
	if c, ok := maturityColors[status]; ok {
		return c
	}
	return MaturityFallbackColor
}

// IsMaturityStage reports whether status is one of MaturityStages.
func IsMaturityStage(status string) bool {
	return slices.Contains(MaturityStages, status)
}
