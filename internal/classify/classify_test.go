package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected Bucket
	}{
		{"Design", Planned},
		{"Feasibility", Planned},
		{"Announced", Planned},
		{"Financing", Planned},
		{"Operational", Deployed},
		{"Completed after operation", Deployed},
		{"Construction", Deployed},
		{"Cancelled", Others},
		{"operational", Others},
		{"", Others},
		{" Design", Others},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStatus(tt.status))
		})
	}
}

func TestClassifyStatus_Total(t *testing.T) {
	valid := map[Bucket]bool{Planned: true, Deployed: true, Others: true}
	inputs := []string{"Suspended", "Decommissioned", "??", "Construction ", "日本", "\x00"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ClassifyStatus(in) })
		assert.True(t, valid[ClassifyStatus(in)], "unexpected bucket for %q", in)
	}
}

func TestClassifyStructure(t *testing.T) {
	tests := []struct {
		name     string
		flag     any
		expected Structure
	}{
		{"bool true", true, Hub},
		{"bool false", false, SingleSource},
		{"string True", "True", Hub},
		{"string 1", "1", Hub},
		{"string false", "false", SingleSource},
		{"garbage", "yes please", SingleSource},
		{"nil", nil, SingleSource},
		{"float one", 1.0, Hub},
		{"int64 one", int64(1), Hub},
		{"float zero", 0.0, SingleSource},
		{"int64 zero", int64(0), SingleSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStructure(tt.flag))
		})
	}
}

func TestStructureDefault(t *testing.T) {
	assert.Equal(t, SingleSource, StructureDefault)
}
