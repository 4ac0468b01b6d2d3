// Package bed models the planar region items must be packed into: the
// Infinite / Rectangle / Circle / Irregular / SegmentedRectangle sum type
// described in spec.md §3. Each variant knows how to report its bounding
// box, area, a uniformly offset copy of itself, and a polygon-set
// representation for IFP construction.
package bed

import (
	"math"

	"github.com/piwi3910/arrange/internal/geometry"
)

// Kind tags which variant a Bed holds. Go has no tagged union, so Kind plus
// a closed switch in every method stands in for the source's trait-dispatch
// on tag types (spec.md §9 "Source patterns requiring re-architecture").
type Kind int

const (
	Infinite Kind = iota
	Rectangle
	Circle
	Irregular
	SegmentedRectangle
)

// circlePolygonSides is the number of sides used to approximate a circular
// bed as a polygon, per spec.md §3 ("approximated by a 24-gon").
const circlePolygonSides = 24

// infiniteHalfExtent clamps an "infinite" bed to a large but finite square,
// staying well under half the int64 range so offsets and NFP translations
// never overflow (spec.md §3: "clamped to less than half the coordinate
// range").
const infiniteHalfExtent = int64(1) << 40

// Pivot names a corner (or center, or random) used to post-align a pile
// inside a SegmentedRectangle bed (spec.md §4.6).
type Pivot int

const (
	PivotCenter Pivot = iota
	PivotBottomLeft
	PivotTopLeft
	PivotBottomRight
	PivotTopRight
	PivotRandom
)

// Bed is the sum type of supported bed shapes.
type Bed struct {
	Kind Kind

	// Rectangle / SegmentedRectangle
	Width, Height int64
	Origin        geometry.Point // lower-left corner; zero unless moved by Offset

	// Circle
	Center geometry.Point
	Radius int64

	// Irregular
	Polygons geometry.PolygonSet

	// SegmentedRectangle
	SegmentsX, SegmentsY int
	Pivot                Pivot
}

// NewInfinite returns an Infinite bed centred at c.
func NewInfinite(c geometry.Point) Bed {
	return Bed{Kind: Infinite, Center: c}
}

// NewRectangle returns a Rectangle bed of the given size, corner at the
// origin.
func NewRectangle(width, height int64) Bed {
	return Bed{Kind: Rectangle, Width: width, Height: height}
}

// NewCircle returns a Circle bed.
func NewCircle(center geometry.Point, radius int64) Bed {
	return Bed{Kind: Circle, Center: center, Radius: radius}
}

// NewIrregular returns an Irregular bed from an arbitrary polygon set.
func NewIrregular(polys geometry.PolygonSet) Bed {
	return Bed{Kind: Irregular, Polygons: polys}
}

// NewSegmentedRectangle returns a Rectangle bed partitioned into sx*sy
// cells, with the given pivot used for post-alignment (spec.md §4.6).
func NewSegmentedRectangle(width, height int64, sx, sy int, pivot Pivot) Bed {
	return Bed{
		Kind: SegmentedRectangle, Width: width, Height: height,
		SegmentsX: sx, SegmentsY: sy, Pivot: pivot,
	}
}

// BoundingBox returns the bed's axis-aligned bounding box.
func (b Bed) BoundingBox() geometry.Box {
	switch b.Kind {
	case Infinite:
		return geometry.Box{
			Min: geometry.Point{X: b.Center.X - infiniteHalfExtent, Y: b.Center.Y - infiniteHalfExtent},
			Max: geometry.Point{X: b.Center.X + infiniteHalfExtent, Y: b.Center.Y + infiniteHalfExtent},
		}
	case Rectangle, SegmentedRectangle:
		return geometry.Box{Min: b.Origin, Max: geometry.Point{b.Origin.X + b.Width, b.Origin.Y + b.Height}}
	case Circle:
		return geometry.Box{
			Min: geometry.Point{b.Center.X - b.Radius, b.Center.Y - b.Radius},
			Max: geometry.Point{b.Center.X + b.Radius, b.Center.Y + b.Radius},
		}
	case Irregular:
		return b.Polygons.BoundingBox()
	default:
		return geometry.EmptyBox()
	}
}

// Area returns the bed's area; Infinite beds report +Inf.
func (b Bed) Area() float64 {
	switch b.Kind {
	case Infinite:
		return math.Inf(1)
	case Rectangle, SegmentedRectangle:
		return geometry.ToMM(b.Width) * geometry.ToMM(b.Height)
	case Circle:
		r := geometry.ToMM(b.Radius)
		return math.Pi * r * r
	case Irregular:
		return b.Polygons.Area()
	default:
		return 0
	}
}

// Offset returns a copy of the bed eroded (d>0 shrinks the usable area) or
// dilated (d<0 grows it) uniformly by d, matching "distance_from_bed"
// (spec.md §6).
func (b Bed) Offset(d int64) Bed {
	out := b
	switch b.Kind {
	case Infinite:
		// Unbounded; offsetting has no effect.
		return out
	case Rectangle, SegmentedRectangle:
		out.Width = maxInt64(0, b.Width-2*d)
		out.Height = maxInt64(0, b.Height-2*d)
		out.Origin = b.Origin.Add(geometry.Point{X: d, Y: d})
		return out
	case Circle:
		out.Radius = maxInt64(0, b.Radius-d)
		return out
	case Irregular:
		offset := make(geometry.PolygonSet, len(b.Polygons))
		for i, e := range b.Polygons {
			offset[i] = e.Inflate(-d)
		}
		out.Polygons = offset
		return out
	default:
		return out
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// ToPolygons converts the bed to a polygon set suitable for NFP/IFP
// construction.
func (b Bed) ToPolygons() geometry.PolygonSet {
	switch b.Kind {
	case Infinite:
		box := b.BoundingBox()
		return geometry.PolygonSet{{Outer: boxPolygon(box)}}
	case Rectangle, SegmentedRectangle:
		return geometry.PolygonSet{{Outer: boxPolygon(b.BoundingBox())}}
	case Circle:
		return geometry.PolygonSet{{Outer: circlePolygon(b.Center, b.Radius, circlePolygonSides)}}
	case Irregular:
		return b.Polygons
	default:
		return nil
	}
}

func boxPolygon(box geometry.Box) geometry.Polygon {
	return geometry.Polygon{
		{box.Min.X, box.Min.Y},
		{box.Max.X, box.Min.Y},
		{box.Max.X, box.Max.Y},
		{box.Min.X, box.Max.Y},
	}
}

// circlePolygon approximates a circle with an n-gon, CCW.
func circlePolygon(center geometry.Point, radius int64, n int) geometry.Polygon {
	poly := make(geometry.Polygon, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x := float64(center.X) + float64(radius)*math.Cos(theta)
		y := float64(center.Y) + float64(radius)*math.Sin(theta)
		poly[i] = geometry.Point{X: int64(math.Round(x)), Y: int64(math.Round(y))}
	}
	return poly
}

// SegmentSize returns the width/height of a single grid cell of a
// SegmentedRectangle bed.
func (b Bed) SegmentSize() (w, h int64) {
	if b.Kind != SegmentedRectangle || b.SegmentsX == 0 || b.SegmentsY == 0 {
		return 0, 0
	}
	return b.Width / int64(b.SegmentsX), b.Height / int64(b.SegmentsY)
}
