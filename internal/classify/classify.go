// Package classify derives CCUS project categories from raw attribute values. Every rule is a
// total function over closed lookup tables: values outside a table fall through to an explicit
// default label instead of failing.
package classify

import "github.com/sells-group/quickmap/internal/table"

// Bucket is the deployment bucket of a project status.
type Bucket string

// Deployment buckets.
const (
	Planned  Bucket = "Planned"
	Deployed Bucket = "Deployed"
	Others   Bucket = "Others"
)

// Structure tells hub developments from single-source projects.
type Structure string

// Project structures.
const (
	Hub          Structure = "Hub"
	SingleSource Structure = "Single source"
)

// StructureDefault is assigned to every row when a table has no hub flag column.
const StructureDefault = SingleSource

// Project statuses with special handling.
const (
	StatusCompletedAfterOperation = "Completed after operation"
)

// statusBuckets maps each recognized status to its bucket. Unlisted statuses are Others.
var statusBuckets = map[string]Bucket{
	"Design":                      Planned,
	"Feasibility":                 Planned,
	"Announced":                   Planned,
	"Financing":                   Planned,
	"Operational":                 Deployed,
	StatusCompletedAfterOperation: Deployed,
	"Construction":                Deployed,
}

// ClassifyStatus returns the deployment bucket for a project status.
func ClassifyStatus(status string) Bucket {
	if b, ok := statusBuckets[status]; ok {
		return b
	}
	return Others
}

// ClassifyStructure returns Hub when flag is true (bool, "true"-like string or 1) and
// SingleSource otherwise.
func ClassifyStructure(flag any) Structure {
	if table.IsTrue(flag) {
		return Hub
	}
	return SingleSource
}
