// Package geometry implements the scaled-integer 2D primitives the rest of
// the arrange engine builds on: points, polygons with holes, and the set
// operations (bounding box, convex hull, offset) that the NFP/IFP pipeline
// needs. All geometric predicates run on scaled integer coordinates so that
// placement decisions never depend on floating-point rounding; unscaled
// floats only appear in user-facing settings and kernel scoring.
package geometry

import (
	"math"
	"sort"
)

// Scale is the number of integer units per millimeter. Coordinates entering
// the engine (item outlines, bed dimensions) are expected to already be
// multiplied by this factor.
const Scale int64 = 1_000_000

// ToScaled converts a millimeter value to the scaled integer coordinate.
func ToScaled(mm float64) int64 {
	return int64(math.Round(mm * float64(Scale)))
}

// ToMM converts a scaled integer coordinate back to millimeters.
func ToMM(v int64) float64 {
	return float64(v) / float64(Scale)
}

// Point is a 2D point in scaled integer coordinates.
type Point struct {
	X, Y int64
}

// Pt constructs a Point.
func Pt(x, y int64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{-p.X, -p.Y} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) int64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the Z component of the 3D cross product p x q. Its sign
// gives the orientation of the turn from p to q.
func (p Point) Cross(q Point) int64 { return p.X*q.Y - p.Y*q.X }

// Length returns the Euclidean length of p as a float64 (unavoidable: square
// roots are not exactly representable in integers).
func (p Point) Length() float64 {
	return math.Hypot(float64(p.X), float64(p.Y))
}

// ToFloat returns the point as an unscaled float64 pair, in millimeters.
func (p Point) ToFloat() (x, y float64) { return ToMM(p.X), ToMM(p.Y) }

// FloatPoint constructs a Point from unscaled millimeter coordinates.
func FloatPoint(x, y float64) Point { return Point{ToScaled(x), ToScaled(y)} }

// RotatePoint rotates p by angle radians about the origin. The result is
// rounded back to the integer grid; repeated rotations accumulate rounding
// error exactly as the underlying float64 math.Sin/Cos would in any engine
// working in scaled integers.
func RotatePoint(p Point, angle float64) Point {
	if angle == 0 {
		return p
	}
	s, c := math.Sincos(angle)
	x := float64(p.X)*c - float64(p.Y)*s
	y := float64(p.X)*s + float64(p.Y)*c
	return Point{int64(math.Round(x)), int64(math.Round(y))}
}

// Box is an axis-aligned bounding box in scaled coordinates.
type Box struct {
	Min, Max Point
}

// EmptyBox returns a box with inverted bounds, used as the identity element
// for Box.Union.
func EmptyBox() Box {
	return Box{
		Min: Point{math.MaxInt64, math.MaxInt64},
		Max: Point{math.MinInt64, math.MinInt64},
	}
}

// IsEmpty reports whether b has never been extended by a point.
func (b Box) IsEmpty() bool { return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y }

// Width returns the box width.
func (b Box) Width() int64 { return b.Max.X - b.Min.X }

// Height returns the box height.
func (b Box) Height() int64 { return b.Max.Y - b.Min.Y }

// Area returns the box area.
func (b Box) Area() int64 { return b.Width() * b.Height() }

// Center returns the box center point.
func (b Box) Center() Point {
	return Point{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}

// ExtendPoint grows b to include p.
func (b Box) ExtendPoint(p Point) Box {
	if b.IsEmpty() {
		return Box{Min: p, Max: p}
	}
	out := b
	if p.X < out.Min.X {
		out.Min.X = p.X
	}
	if p.Y < out.Min.Y {
		out.Min.Y = p.Y
	}
	if p.X > out.Max.X {
		out.Max.X = p.X
	}
	if p.Y > out.Max.Y {
		out.Max.Y = p.Y
	}
	return out
}

// Union returns the smallest box containing both a and b.
func (b Box) Union(o Box) Box {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	out := b
	out = out.ExtendPoint(o.Min)
	out = out.ExtendPoint(o.Max)
	return out
}

// Intersects reports whether two boxes overlap (touching edges don't count).
func (b Box) Intersects(o Box) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y
}

// Contains reports whether o lies entirely within b.
func (b Box) Contains(o Box) bool {
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y &&
		b.Max.X >= o.Max.X && b.Max.Y >= o.Max.Y
}

// Translate returns a copy of b shifted by d.
func (b Box) Translate(d Point) Box {
	return Box{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Inflate grows (or, for negative d, shrinks) the box uniformly by d on
// every side.
func (b Box) Inflate(d int64) Box {
	return Box{
		Min: Point{b.Min.X - d, b.Min.Y - d},
		Max: Point{b.Max.X + d, b.Max.Y + d},
	}
}

// Polygon is an ordered, implicitly-closed sequence of vertices.
// Outer contours of an ExPoly are counter-clockwise; holes are clockwise.
type Polygon []Point

// BoundingBox returns the polygon's axis-aligned bounding box.
func (p Polygon) BoundingBox() Box {
	box := EmptyBox()
	for _, v := range p {
		box = box.ExtendPoint(v)
	}
	return box
}

// SignedArea returns twice the signed area of the polygon (positive for
// counter-clockwise orientation). Working in doubled area keeps the
// computation exact on the integer grid.
func (p Polygon) SignedArea() int64 {
	if len(p) < 3 {
		return 0
	}
	var area int64
	for i := range p {
		j := (i + 1) % len(p)
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area
}

// Area returns the unsigned area of the polygon.
func (p Polygon) Area() float64 {
	a := p.SignedArea()
	if a < 0 {
		a = -a
	}
	return float64(a) / 2
}

// IsCCW reports whether the polygon winds counter-clockwise.
func (p Polygon) IsCCW() bool { return p.SignedArea() > 0 }

// Reversed returns the polygon with its vertex order reversed (flips
// orientation).
func (p Polygon) Reversed() Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// EnsureOrientation returns p with the given winding direction.
func (p Polygon) EnsureOrientation(ccw bool) Polygon {
	if p.IsCCW() == ccw {
		return p
	}
	return p.Reversed()
}

// Centroid returns the area-weighted centroid of the polygon.
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	if len(p) < 3 {
		return p[0]
	}
	var cx, cy, area float64
	for i := range p {
		j := (i + 1) % len(p)
		cross := float64(p[i].X*p[j].Y - p[j].X*p[i].Y)
		cx += float64(p[i].X+p[j].X) * cross
		cy += float64(p[i].Y+p[j].Y) * cross
		area += cross
	}
	if area == 0 {
		return p.BoundingBox().Center()
	}
	area /= 2
	cx /= 6 * area
	cy /= 6 * area
	return Point{int64(math.Round(cx)), int64(math.Round(cy))}
}

// ReferenceVertex returns the rightmost-topmost vertex.
func (p Polygon) ReferenceVertex() Point {
	if len(p) == 0 {
		return Point{}
	}
	best := p[0]
	for _, v := range p[1:] {
		if v.X > best.X || (v.X == best.X && v.Y > best.Y) {
			best = v
		}
	}
	return best
}

// MinVertex returns the leftmost-bottommost vertex.
func (p Polygon) MinVertex() Point {
	if len(p) == 0 {
		return Point{}
	}
	best := p[0]
	for _, v := range p[1:] {
		if v.X < best.X || (v.X == best.X && v.Y < best.Y) {
			best = v
		}
	}
	return best
}

// Translate returns a copy of p shifted by d.
func (p Polygon) Translate(d Point) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(d)
	}
	return out
}

// Rotate returns a copy of p rotated by angle radians about the origin.
func (p Polygon) Rotate(angle float64) Polygon {
	if angle == 0 {
		return append(Polygon(nil), p...)
	}
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = RotatePoint(v, angle)
	}
	return out
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// ConvexHull returns the convex hull of the given points using Andrew's
// monotone chain, in counter-clockwise order.
func ConvexHull(points []Point) Polygon {
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = dedupSorted(pts)
	n := len(pts)
	if n < 3 {
		return Polygon(pts)
	}

	cross := func(o, a, b Point) int64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	lower := make([]Point, 0, n)
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]Point, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return Polygon(hull)
}

func dedupSorted(pts []Point) []Point {
	out := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			out = append(out, p)
		}
	}
	return out
}

// IsConvex reports whether the polygon is strictly convex (every turn has
// the same sign, matching the invariant that convex decomposition pieces
// must be strictly convex — spec.md §3 invariant 3).
func (p Polygon) IsConvex() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		c := p[(i+2)%n]
		cr := b.Sub(a).Cross(c.Sub(b))
		if cr == 0 {
			continue
		}
		s := 1
		if cr < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return false
		}
	}
	return sign != 0
}

// ContainsPoint reports whether q lies inside the polygon, using a standard
// ray-casting test. A q equal to a vertex counts as inside; other boundary
// points may be reported either way.
func (p Polygon) ContainsPoint(q Point) bool {
	inside := false
	n := len(p)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p[i], p[j]
		if pi == q {
			return true
		}
		if (pi.Y > q.Y) != (pj.Y > q.Y) {
			xint := float64(pj.X-pi.X)*float64(q.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
			if float64(q.X) < xint {
				inside = !inside
			}
		}
	}
	return inside
}

// ExPoly is an outer contour (CCW) with zero or more holes (CW).
type ExPoly struct {
	Outer Polygon
	Holes []Polygon
}

// BoundingBox returns the bounding box of the outer contour.
func (e ExPoly) BoundingBox() Box { return e.Outer.BoundingBox() }

// Area returns the outer area minus the area of all holes.
func (e ExPoly) Area() float64 {
	area := e.Outer.Area()
	for _, h := range e.Holes {
		area -= h.Area()
	}
	if area < 0 {
		return 0
	}
	return area
}

// Translate returns a copy of e shifted by d.
func (e ExPoly) Translate(d Point) ExPoly {
	holes := make([]Polygon, len(e.Holes))
	for i, h := range e.Holes {
		holes[i] = h.Translate(d)
	}
	return ExPoly{Outer: e.Outer.Translate(d), Holes: holes}
}

// Rotate returns a copy of e rotated by angle radians about the origin.
func (e ExPoly) Rotate(angle float64) ExPoly {
	holes := make([]Polygon, len(e.Holes))
	for i, h := range e.Holes {
		holes[i] = h.Rotate(angle)
	}
	return ExPoly{Outer: e.Outer.Rotate(angle), Holes: holes}
}

// AllVertices returns every vertex of the outer contour and all holes,
// useful as input to convex hull / triangulation routines.
func (e ExPoly) AllVertices() []Point {
	pts := append([]Point(nil), e.Outer...)
	for _, h := range e.Holes {
		pts = append(pts, h...)
	}
	return pts
}

// PolygonSet is an unordered collection of ExPoly contours, e.g. the result
// of a union or a feasible-region difference.
type PolygonSet []ExPoly

// BoundingBox returns the union bounding box of every contour in the set.
func (s PolygonSet) BoundingBox() Box {
	box := EmptyBox()
	for _, e := range s {
		box = box.Union(e.BoundingBox())
	}
	return box
}

// Area returns the total area of the set.
func (s PolygonSet) Area() float64 {
	var total float64
	for _, e := range s {
		total += e.Area()
	}
	return total
}

// IsEmpty reports whether the set has no contours, or only degenerate ones.
func (s PolygonSet) IsEmpty() bool {
	for _, e := range s {
		if len(e.Outer) >= 3 {
			return false
		}
	}
	return true
}

// Translate returns a copy of the set shifted by d.
func (s PolygonSet) Translate(d Point) PolygonSet {
	out := make(PolygonSet, len(s))
	for i, e := range s {
		out[i] = e.Translate(d)
	}
	return out
}

// Inflate offsets e's outer contour and holes uniformly by d (positive grows,
// negative shrinks), approximating a Minkowski sum with a disk by pushing
// each edge outward along its normal — exact for convex polygons and a
// reasonable approximation for the mildly concave outlines arrange.md
// expects (distance_from_objects, distance_from_bed in spec.md §6).
func (e ExPoly) Inflate(d int64) ExPoly {
	return ExPoly{
		Outer: offsetContour(e.Outer, d),
		Holes: offsetHoles(e.Holes, d),
	}
}

func offsetHoles(holes []Polygon, d int64) []Polygon {
	out := make([]Polygon, len(holes))
	for i, h := range holes {
		// Holes are wound clockwise, so the edge normal already points
		// into the hole: the same d that grows the outer shrinks the hole,
		// and eroding the outer grows it.
		out[i] = offsetContour(h, d)
	}
	return out
}

// offsetContour pushes every edge of a convex-ish contour outward by d along
// its outward normal and re-intersects consecutive offset edges, giving
// exactly one output vertex per input vertex. No vertex is dropped, so
// eroding by a d that is large relative to the shape can invert the
// contour locally.
func offsetContour(poly Polygon, d int64) Polygon {
	n := len(poly)
	if n < 3 || d == 0 {
		return poly.Clone()
	}
	type edge struct{ a, b Point }
	edges := make([]edge, n)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		nx, ny := edgeNormal(a, b)
		off := Point{int64(math.Round(nx * float64(d))), int64(math.Round(ny * float64(d)))}
		edges[i] = edge{a.Add(off), b.Add(off)}
	}
	out := make(Polygon, 0, n)
	for i := 0; i < n; i++ {
		prev := edges[(i-1+n)%n]
		cur := edges[i]
		p, ok := lineIntersect(prev.a, prev.b, cur.a, cur.b)
		if !ok {
			p = cur.a
		}
		out = append(out, p)
	}
	return out
}

// edgeNormal returns the outward unit normal of CCW edge a->b (for a CCW
// polygon this points away from the interior).
func edgeNormal(a, b Point) (nx, ny float64) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return dy / length, -dx / length
}

// lineIntersect intersects infinite lines p1-p2 and p3-p4.
func lineIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	x1, y1 := float64(p1.X), float64(p1.Y)
	x2, y2 := float64(p2.X), float64(p2.Y)
	x3, y3 := float64(p3.X), float64(p3.Y)
	x4, y4 := float64(p4.X), float64(p4.Y)

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	px := ((x1*y2-y1*x2)*(x3-x4) - (x1-x2)*(x3*y4-y3*x4)) / denom
	py := ((x1*y2-y1*x2)*(y3-y4) - (y1-y2)*(x3*y4-y3*x4)) / denom
	return Point{int64(math.Round(px)), int64(math.Round(py))}, true
}
