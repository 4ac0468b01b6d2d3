// Package host defines the thin boundary between the arrange engine and
// the application that owns the object model: the Arrangeable interface a
// host implements per movable entity, the settings record that configures
// a run, and the converter that turns an Arrangeable into an internal
// item.Item (spec.md §6).
package host

import (
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// Arrangeable is a host object presentable as a 2D shape the engine may
// move (spec.md §6 "Arrangeable (host -> engine)").
type Arrangeable interface {
	// ID returns a stable unique identifier across the run.
	ID() string
	// GeometryID groups arrangeables that share an outline (e.g. copies of
	// the same object).
	GeometryID() string

	// FullOutline returns the possibly-concave outline as an expoly.
	FullOutline() geometry.ExPoly
	// ConvexOutline returns the outline's convex hull.
	ConvexOutline() geometry.Polygon

	// FullEnvelope returns an optional inflated envelope; ok is false when
	// the host has none, meaning "use the outline".
	FullEnvelope() (env geometry.ExPoly, ok bool)
	// ConvexEnvelope is the convex-hull counterpart of FullEnvelope.
	ConvexEnvelope() (env geometry.Polygon, ok bool)

	// Transform is called by the engine to record a placement.
	Transform(translation geometry.Point, rotation float64)

	IsPrintable() bool
	IsSelected() bool
	Priority() int

	// GetBedIndex returns the item's current logical bed, item.Unarranged
	// if none.
	GetBedIndex() int
	// AssignBed sets the logical bed index; the host may reject the
	// assignment by returning false.
	AssignBed(i int) bool

	// BedConstraint returns the hard bed constraint, if any.
	BedConstraint() (bed int, ok bool)

	// ImbueData writes host-specific keyed data (sink point, wipe-tower
	// flag, host id, ...) into store.
	ImbueData(store item.DataStore)
}

// ArrangeableModel is the host's collection of Arrangeables: iteration and
// a factory used by the fill-bed and multiply-selection tasks (spec.md §6
// "Arrangeable model").
type ArrangeableModel interface {
	// ForEach visits every arrangeable in the model; visit stops early if
	// fn returns false.
	ForEach(fn func(Arrangeable) bool)
	// Visit looks up a single arrangeable by id.
	Visit(id string) (Arrangeable, bool)
	// Add creates a new arrangeable cloned from prototypeID and returns its
	// new id. ok is false if prototypeID does not exist.
	Add(prototypeID string) (newID string, ok bool)
}
