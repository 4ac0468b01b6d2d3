// Package item models a single arrangeable shape: its outline and envelope,
// its placement (translation + rotation), and the metadata the selection
// loop and pack strategy use to decide where it goes (spec.md §3).
package item

import (
	"math"

	"github.com/piwi3910/arrange/internal/geometry"
)

// Unarranged is the bed index of an item that has not been placed, or that
// failed to place (spec.md §3).
const Unarranged = -1

// Shape holds an item's outline as both a convex decomposition (for NFP)
// and a few cached derived values. It never stores a transform of its own;
// Item applies translation/rotation on read, recomputing the cache
// (spec.md §9 "Shared caches inside Item mutated through aliased reads").
type Shape struct {
	// Pieces is the convex decomposition of Outline. Each piece must be
	// strictly convex (spec.md §3 invariant 3).
	Pieces []geometry.Polygon
	Outline geometry.ExPoly
}

// transformedCache holds derived values for one (translation, rotation)
// pair, recomputed on demand and never aliased outside the owning Item.
type transformedCache struct {
	valid       bool
	translation geometry.Point
	rotation    float64

	outline  geometry.ExPoly
	pieces   []geometry.Polygon
	hull     geometry.Polygon
	bbox     geometry.Box
	centroid geometry.Point
	refV     geometry.Point
	minV     geometry.Point
	area     float64
}

// Item is a single movable shape plus the metadata the engine needs to
// place it.
type Item struct {
	ID string

	shape    Shape
	envelope Shape // equals shape when the host supplies no separate envelope

	translation geometry.Point
	rotation    float64

	BedIndex      int
	BedConstraint *int
	Priority      int

	// AllowedRotations is the finite set of rotations the optimizer may
	// try. Defaults to {0}. Rotation pre-enrichment (spec.md §4.4) may
	// replace this before a batch is arranged.
	AllowedRotations []float64

	Data DataStore

	shapeCache    transformedCache
	envelopeCache transformedCache
}

// New creates an Item from an outline. The envelope defaults to the shape;
// call SetEnvelope to provide a distinct (usually larger) one.
func New(id string, shape Shape) *Item {
	it := &Item{
		ID:               id,
		shape:            shape,
		envelope:         shape,
		BedIndex:         Unarranged,
		AllowedRotations: []float64{0},
		Data:             DataStore{},
	}
	return it
}

// SetEnvelope installs a distinct envelope shape. Shape and envelope always
// share the item's translation/rotation (spec.md §3 invariant 2): there is
// no separate SetTranslation for the envelope.
func (it *Item) SetEnvelope(env Shape) {
	it.envelope = env
	it.envelopeCache.valid = false
}

// Translation returns the item's current translation.
func (it *Item) Translation() geometry.Point { return it.translation }

// Rotation returns the item's current rotation, in radians.
func (it *Item) Rotation() float64 { return it.rotation }

// SetTransform updates translation and rotation together and invalidates
// every cache (spec.md §3 invariant 1).
func (it *Item) SetTransform(translation geometry.Point, rotation float64) {
	it.translation = translation
	it.rotation = rotation
	it.shapeCache.valid = false
	it.envelopeCache.valid = false
}

// cacheFor recomputes (if necessary) and returns the transformed cache for
// the given shape/cache pair at the item's current transform.
func cacheFor(s Shape, cache *transformedCache, translation geometry.Point, rotation float64) *transformedCache {
	if cache.valid && cache.translation == translation && cache.rotation == rotation {
		return cache
	}
	rotated := s.Outline.Rotate(rotation)
	outline := rotated.Translate(translation)

	pieces := make([]geometry.Polygon, len(s.Pieces))
	for i, p := range s.Pieces {
		pieces[i] = p.Rotate(rotation).Translate(translation)
	}

	allVerts := outline.AllVertices()
	hull := geometry.ConvexHull(allVerts)

	*cache = transformedCache{
		valid:       true,
		translation: translation,
		rotation:    rotation,
		outline:     outline,
		pieces:      pieces,
		hull:        hull,
		bbox:        outline.BoundingBox(),
		centroid:    outline.Outer.Centroid(),
		refV:        outline.Outer.ReferenceVertex(),
		minV:        outline.Outer.MinVertex(),
		area:        outline.Area(),
	}
	return cache
}

// TransformedOutline returns the item's shape outline at its current
// transform.
func (it *Item) TransformedOutline() geometry.ExPoly {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).outline
}

// TransformedPieces returns the convex decomposition pieces at the current
// transform, for NFP construction.
func (it *Item) TransformedPieces() []geometry.Polygon {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).pieces
}

// TransformedEnvelope returns the envelope outline at the current
// transform, used for placement candidate scoring (spec.md §3).
func (it *Item) TransformedEnvelope() geometry.ExPoly {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).outline
}

// TransformedEnvelopePieces returns the envelope's convex decomposition at
// the current transform.
func (it *Item) TransformedEnvelopePieces() []geometry.Polygon {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).pieces
}

// ConvexHull returns the convex hull of the shape outline at the current
// transform.
func (it *Item) ConvexHull() geometry.Polygon {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).hull
}

// BoundingBox returns the shape's bounding box at the current transform.
func (it *Item) BoundingBox() geometry.Box {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).bbox
}

// EnvelopeBoundingBox returns the envelope's bounding box at the current
// transform.
func (it *Item) EnvelopeBoundingBox() geometry.Box {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).bbox
}

// EnvelopeConvexHull returns the convex hull of the envelope at the current
// transform, used by NFP/IFP construction: collision and fit are checked
// against the envelope, not the bare shape (spec.md §8 invariant 1 talks
// about "envelopes" being disjoint, not shapes).
func (it *Item) EnvelopeConvexHull() geometry.Polygon {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).hull
}

// EnvelopeReferenceVertex returns the envelope's reference vertex
// (rightmost-topmost) at the current transform.
func (it *Item) EnvelopeReferenceVertex() geometry.Point {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).refV
}

// Centroid returns the shape centroid at the current transform.
func (it *Item) Centroid() geometry.Point {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).centroid
}

// EnvelopeCentroid returns the envelope centroid at the current transform.
func (it *Item) EnvelopeCentroid() geometry.Point {
	return cacheFor(it.envelope, &it.envelopeCache, it.translation, it.rotation).centroid
}

// ReferenceVertex returns the shape's reference vertex (rightmost-topmost)
// at the current transform.
func (it *Item) ReferenceVertex() geometry.Point {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).refV
}

// MinVertex returns the shape's leftmost-bottommost vertex at the current
// transform.
func (it *Item) MinVertex() geometry.Point {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).minV
}

// Area returns the shape's unsigned area at the current transform (area is
// translation/rotation invariant, but is cached alongside the rest for
// uniformity).
func (it *Item) Area() float64 {
	return cacheFor(it.shape, &it.shapeCache, it.translation, it.rotation).area
}

// IsWipeTower reports whether the item is marked as a wipe tower.
func (it *Item) IsWipeTower() bool {
	v, ok := it.Data[DataKeyWipeTower]
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}

// Sink returns the item's gravity sink point and whether one was set in the
// data store.
func (it *Item) Sink() (geometry.Point, bool) {
	v, ok := it.Data[DataKeySink]
	if !ok {
		return geometry.Point{}, false
	}
	return v.AsPoint()
}

// MinAreaBoundingBoxRotation returns the rotation that minimizes the axis-
// aligned bounding box area of the shape's convex hull, found by rotating
// the hull so each edge lies flush with an axis in turn (rotating
// calipers) — the standard approach, and the one spec.md §4.4 names
// ("the min-area bounding-box rotation").
func (it *Item) MinAreaBoundingBoxRotation() float64 {
	hull := it.shape.Outline.Outer
	if len(hull) < 3 {
		hull = geometry.ConvexHull(it.shape.Outline.AllVertices())
	} else if !hull.IsConvex() {
		hull = geometry.ConvexHull(it.shape.Outline.AllVertices())
	}
	n := len(hull)
	if n < 2 {
		return 0
	}

	bestArea := math.Inf(1)
	bestAngle := 0.0
	for i := 0; i < n; i++ {
		a := hull[i]
		b := hull[(i+1)%n]
		dx := float64(b.X - a.X)
		dy := float64(b.Y - a.Y)
		angle := -math.Atan2(dy, dx)

		rotated := hull.Rotate(angle)
		box := rotated.BoundingBox()
		area := float64(box.Width()) * float64(box.Height())
		if area < bestArea {
			bestArea = area
			bestAngle = angle
		}
	}
	return bestAngle
}
