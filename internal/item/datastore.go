package item

import "github.com/piwi3910/arrange/internal/geometry"

// DataKey names a recognized slot in an item's data store. Unlike the
// source's arbitrary key->value map (spec.md §9 "Arbitrary key->value data
// store per item"), the target language has no convenient heterogeneous
// runtime map, so the store is a small closed sum of typed slots. Keys
// other than the constants below are dropped at conversion time by the
// host.Converter.
type DataKey string

const (
	// DataKeySink holds the gravity sink point a GravityKernel or TMKernel
	// pulls the item toward (spec.md §4.3).
	DataKeySink DataKey = "sink"
	// DataKeyWipeTower marks an item as a wipe tower: excluded from
	// rotation and from segmented-bed pile-shift post-processing
	// (spec.md §4.6, GLOSSARY).
	DataKeyWipeTower DataKey = "wipe_tower"
	// DataKeyAllowedRotations overrides the default {0} rotation set with
	// an explicit list: host.Converter copies a non-empty list into
	// Item.AllowedRotations. Rotation pre-enrichment, when enabled,
	// replaces that set in turn.
	DataKeyAllowedRotations DataKey = "allowed_rotations"
	// DataKeyHostID carries the host's own identifier for the item,
	// distinct from the engine-local Item.ID, so tasks can report results
	// keyed by the host's notion of identity (spec.md §6 Result).
	DataKeyHostID DataKey = "host_id"
)

// DataValue is the closed sum of value types a DataStore slot may hold.
// Exactly one field is meaningful, selected by which constructor built it.
type DataValue struct {
	kind       dataValueKind
	point      geometry.Point
	boolean    bool
	rotations  []float64
	stringData string
}

type dataValueKind int

const (
	kindPoint dataValueKind = iota
	kindBool
	kindRotations
	kindString
)

// PointValue wraps a point2d data value (e.g. a gravity sink).
func PointValue(p geometry.Point) DataValue { return DataValue{kind: kindPoint, point: p} }

// BoolValue wraps a boolean marker (e.g. wipe-tower).
func BoolValue(b bool) DataValue { return DataValue{kind: kindBool, boolean: b} }

// RotationsValue wraps a rotation list.
func RotationsValue(r []float64) DataValue {
	return DataValue{kind: kindRotations, rotations: append([]float64(nil), r...)}
}

// StringValue wraps a host id or other opaque string.
func StringValue(s string) DataValue { return DataValue{kind: kindString, stringData: s} }

// AsPoint returns the stored point and whether the slot actually holds one.
func (v DataValue) AsPoint() (geometry.Point, bool) {
	if v.kind != kindPoint {
		return geometry.Point{}, false
	}
	return v.point, true
}

// AsBool returns the stored boolean and whether the slot actually holds one.
func (v DataValue) AsBool() (bool, bool) {
	if v.kind != kindBool {
		return false, false
	}
	return v.boolean, true
}

// AsRotations returns the stored rotation list and whether the slot
// actually holds one.
func (v DataValue) AsRotations() ([]float64, bool) {
	if v.kind != kindRotations {
		return nil, false
	}
	return v.rotations, true
}

// AsString returns the stored string and whether the slot actually holds
// one.
func (v DataValue) AsString() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.stringData, true
}

// DataStore is a string-keyed bag of DataValue slots, imbued by the host
// converter (spec.md §6 "imbue_data") and read by kernels during scoring.
type DataStore map[DataKey]DataValue

// Clone returns a shallow copy of the store (DataValue is itself immutable
// once constructed, so a shallow copy is a full logical copy).
func (s DataStore) Clone() DataStore {
	if s == nil {
		return nil
	}
	out := make(DataStore, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
