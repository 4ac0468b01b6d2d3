package host

import "github.com/piwi3910/arrange/internal/bed"

// GeometryHandling selects how a Converter builds an item's outline and
// envelope from a host Arrangeable (spec.md §6 "Converter").
type GeometryHandling string

const (
	GeometryConvex    GeometryHandling = "convex"
	GeometryBalanced  GeometryHandling = "balanced"
	GeometryAdvanced  GeometryHandling = "advanced"
)

// ArrangeStrategy selects which kernel family a run uses (spec.md §6
// "arrange_strategy").
type ArrangeStrategy string

const (
	StrategyAuto         ArrangeStrategy = "auto"
	StrategyPullToCenter ArrangeStrategy = "pull_to_center"
)

// XLAlignment names the pivot corner used to post-align a pile inside a
// segmented-rectangle bed (spec.md §6 "xl_alignment", §4.6 "Segmented bed
// post-processing").
type XLAlignment string

const (
	XLCenter    XLAlignment = "center"
	XLFrontLeft XLAlignment = "front_left"
	XLFrontRight XLAlignment = "front_right"
	XLRearLeft  XLAlignment = "rear_left"
	XLRearRight XLAlignment = "rear_right"
	XLRandom    XLAlignment = "random"
)

// ToPivot maps the settings-facing alignment name to the bed package's
// pivot enum. "Front" in the settings vocabulary corresponds to the bed's
// Y=0 edge.
func (x XLAlignment) ToPivot() bed.Pivot {
	switch x {
	case XLFrontLeft:
		return bed.PivotBottomLeft
	case XLFrontRight:
		return bed.PivotBottomRight
	case XLRearLeft:
		return bed.PivotTopLeft
	case XLRearRight:
		return bed.PivotTopRight
	case XLRandom:
		return bed.PivotRandom
	default:
		return bed.PivotCenter
	}
}

// Settings is the flat, read-only configuration record for one run
// (spec.md §6 "Settings (flat record)"). Read-only at task start; mutating
// it mid-task is undefined, same as the spec states.
type Settings struct {
	// DistanceFromObjectsMM inflates each item's envelope before arranging
	// (halved, since the bed is also eroded by half the same distance so
	// item-item and item-bed clearance both equal this value). Default 6mm.
	DistanceFromObjectsMM float64 `json:"distance_from_objects"`
	// DistanceFromBedMM erodes the bed before packing. Default 0.
	DistanceFromBedMM float64 `json:"distance_from_bed"`
	// RotationsEnabled turns on rotation pre-enrichment. Default off.
	RotationsEnabled bool `json:"rotations_enabled"`
	// GeometryHandling selects the converter mode. Default convex.
	GeometryHandling GeometryHandling `json:"geometry_handling"`
	// ArrangeStrategy selects the kernel family. Default auto.
	ArrangeStrategy ArrangeStrategy `json:"arrange_strategy"`
	// XLAlignment is the segmented-bed post-alignment pivot. Default
	// front_left.
	XLAlignment XLAlignment `json:"xl_alignment"`
	// Accuracy tunes the edge-cache sample density and optimizer iteration
	// budget (internal/optimize.Options); not named in the source's
	// flattened settings table but present as a slider in the original
	// arrange dialog (original_source/.../ArrangeSettingsView.hpp), so it is
	// carried here rather than hard-coded. Default 0.65.
	Accuracy float64 `json:"accuracy"`
	// Seed drives every run-scoped source of randomness (currently, the
	// "random" xl_alignment pivot re-roll). Two runs built from identical
	// Settings and model state, seed included, place items identically.
	// Default 0.
	Seed int64 `json:"seed"`
}

// DefaultSettings returns the documented defaults (spec.md §6 table).
func DefaultSettings() Settings {
	return Settings{
		DistanceFromObjectsMM: 6,
		DistanceFromBedMM:     0,
		RotationsEnabled:      false,
		GeometryHandling:      GeometryConvex,
		ArrangeStrategy:       StrategyAuto,
		XLAlignment:           XLFrontLeft,
		Accuracy:              0.65,
	}
}
