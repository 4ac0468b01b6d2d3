// Package nfp builds no-fit-polygons, inner-fit-polygons, and the feasible
// region that results from combining them (spec.md §4.1). Every entry
// point works on convex polygons directly; concave inputs are expected to
// already have been run through internal/decompose by the caller.
package nfp

import (
	"math"
	"sort"

	"github.com/piwi3910/arrange/internal/geometry"
)

// ConvexNFP computes the no-fit-polygon of fixed convex polygon f against
// movable convex polygon m: the locus of positions of m's local origin
// (the same coordinate frame Item.SetTransform adds translation in) at
// which m touches f without overlapping. It is the Minkowski sum of f and
// the point reflection of m, computed by merging the two edge sequences in
// angular order (spec.md §4.1 "Convex–convex NFP").
func ConvexNFP(f, m geometry.Polygon) geometry.Polygon {
	if len(f) < 3 || len(m) < 3 {
		return nil
	}
	fc := f.EnsureOrientation(true)
	negM := reflect(m.EnsureOrientation(true))
	return minkowskiSum(fc, negM)
}

// reflect returns {-v : v in m} in the same vertex order. Point reflection
// is a rotation by pi, so a CCW input stays CCW.
func reflect(m geometry.Polygon) geometry.Polygon {
	out := make(geometry.Polygon, len(m))
	for i, v := range m {
		out[i] = v.Neg()
	}
	return out
}

func minVertexIndex(p geometry.Polygon) int {
	best := 0
	for i, v := range p {
		if v.Y < p[best].Y || (v.Y == p[best].Y && v.X < p[best].X) {
			best = i
		}
	}
	return best
}

// minkowskiSum computes the Minkowski sum of two CCW convex polygons by
// merging their angularly-sorted edge sequences, the textbook linear-time
// construction spec.md §4.1 describes.
func minkowskiSum(p, q geometry.Polygon) geometry.Polygon {
	n, m := len(p), len(q)
	pi := minVertexIndex(p)
	qi := minVertexIndex(q)

	cur := p[pi].Add(q[qi])
	result := make(geometry.Polygon, 0, n+m)
	result = append(result, cur)

	i, j := 0, 0
	for i < n || j < m {
		var usedP bool
		switch {
		case i >= n:
			usedP = false
		case j >= m:
			usedP = true
		default:
			ei := p[(pi+i+1)%n].Sub(p[(pi+i)%n])
			ej := q[(qi+j+1)%m].Sub(q[(qi+j)%m])
			cr := ei.Cross(ej)
			usedP = cr >= 0
		}
		if usedP {
			cur = cur.Add(p[(pi+i+1)%n].Sub(p[(pi+i)%n]))
			i++
		} else {
			cur = cur.Add(q[(qi+j+1)%m].Sub(q[(qi+j)%m]))
			j++
		}
		result = append(result, cur)
	}
	if len(result) > 1 && result[len(result)-1] == result[0] {
		result = result[:len(result)-1]
	}
	return result
}

// ConcaveNFP computes the NFP of two (possibly concave) shapes already
// broken into convex pieces: it computes the convex-convex NFP for every
// (fPiece, mPiece) pair and unions the result (spec.md §4.1 "Concave
// NFP"). Each piece moves with the whole movable's translation, so every
// sub-NFP is already a set of whole-movable translations and is used
// without re-anchoring; mWholeReference is not used.
func ConcaveNFP(fPieces, mPieces []geometry.Polygon, mWholeReference geometry.Point) geometry.PolygonSet {
	var subNFPs []geometry.Polygon
	for _, fp := range fPieces {
		for _, mp := range mPieces {
			raw := ConvexNFP(fp, mp)
			if len(raw) < 3 {
				continue
			}
			subNFPs = append(subNFPs, raw)
		}
	}
	return unionApprox(subNFPs)
}

// unionApprox merges convex polygons whose bounding boxes overlap into their
// convex hull and keeps the others as separate contours. It is exact when
// no two inputs' bounding boxes overlap and an overestimate (never an underestimate) of
// the true union otherwise, the same trade-off geometry.ExPoly.Inflate
// already accepts for polygon offsetting.
func unionApprox(polys []geometry.Polygon) geometry.PolygonSet {
	pieces := make([]geometry.Polygon, 0, len(polys))
	for _, p := range polys {
		if len(p) >= 3 {
			pieces = append(pieces, p)
		}
	}

	changed := true
	for changed {
		changed = false
		for i := 0; i < len(pieces); i++ {
			for j := i + 1; j < len(pieces); j++ {
				if !boxesOverlap(pieces[i], pieces[j]) {
					continue
				}
				merged := geometry.ConvexHull(append(append([]geometry.Point{}, pieces[i]...), pieces[j]...))
				pieces[i] = merged
				pieces = append(pieces[:j], pieces[j+1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}

	out := make(geometry.PolygonSet, len(pieces))
	for i, p := range pieces {
		out[i] = geometry.ExPoly{Outer: p}
	}
	return out
}

func boxesOverlap(a, b geometry.Polygon) bool {
	return a.BoundingBox().Intersects(b.BoundingBox())
}

// ConvexIFP computes the inner-fit polygon of convex bed boundary bed
// against convex shape m, m already expressed in the same untranslated,
// current-rotation frame Item.SetTransform's translation is added in: the
// locus of valid translations at which m stays inside bed. It erodes each
// edge of bed inward by m's support distance in that edge's outward normal
// direction, measured from m's local origin (spec.md §4.1 "IFP") — the same
// frame a caller would pass straight to Item.SetTransform.
func ConvexIFP(bed geometry.Polygon, m geometry.Polygon) geometry.Polygon {
	n := len(bed)
	if n < 3 {
		return nil
	}
	bed = bed.EnsureOrientation(true)

	type edge struct{ a, b geometry.Point }
	edges := make([]edge, n)
	for i := 0; i < n; i++ {
		a, b := bed[i], bed[(i+1)%n]
		nx, ny := outwardNormal(a, b)
		support := supportDistance(m, nx, ny)
		off := geometry.Point{
			X: int64(math.Round(-nx * support)),
			Y: int64(math.Round(-ny * support)),
		}
		edges[i] = edge{a.Add(off), b.Add(off)}
	}

	out := make(geometry.Polygon, 0, n)
	for i := 0; i < n; i++ {
		prev := edges[(i-1+n)%n]
		cur := edges[i]
		p, ok := lineIntersect(prev.a, prev.b, cur.a, cur.b)
		if !ok {
			p = cur.a
		}
		out = append(out, p)
	}
	if out.SignedArea() <= 0 {
		return nil
	}
	return out
}

// supportDistance returns how far m reaches, from its local origin, in
// direction (nx,ny): the maximum projection of a vertex onto that direction.
func supportDistance(m geometry.Polygon, nx, ny float64) float64 {
	best := math.Inf(-1)
	for _, v := range m {
		dx := float64(v.X)
		dy := float64(v.Y)
		proj := dx*nx + dy*ny
		if proj > best {
			best = proj
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

func outwardNormal(a, b geometry.Point) (nx, ny float64) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return dy / length, -dx / length
}

func lineIntersect(p1, p2, p3, p4 geometry.Point) (geometry.Point, bool) {
	x1, y1 := float64(p1.X), float64(p1.Y)
	x2, y2 := float64(p2.X), float64(p2.Y)
	x3, y3 := float64(p3.X), float64(p3.Y)
	x4, y4 := float64(p4.X), float64(p4.Y)

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < 1e-9 {
		return geometry.Point{}, false
	}
	px := ((x1*y2-y1*x2)*(x3-x4) - (x1-x2)*(x3*y4-y3*x4)) / denom
	py := ((x1*y2-y1*x2)*(y3-y4) - (y1-y2)*(x3*y4-y3*x4)) / denom
	return geometry.Point{X: int64(math.Round(px)), Y: int64(math.Round(py))}, true
}

// Difference returns the piece(s) of subject lying outside convex hole.
// For each edge of hole, clipping subject to the outside half-plane of
// that edge's line gives one piece of the difference; their union (here
// returned as separate, possibly-overlapping polygons rather than merged)
// equals subject minus hole, because a point lies outside a convex polygon
// iff it lies outside at least one of its edges' half-planes. When hole
// only partially overlaps subject the returned pieces can overlap each
// other near hole's corners, overestimating the true union's area; the
// bounding-box short-circuit above keeps the common case (no overlap at
// all) exact.
func Difference(subject geometry.Polygon, hole geometry.Polygon) []geometry.Polygon {
	if len(hole) < 3 || len(subject) < 3 {
		return []geometry.Polygon{subject}
	}
	if !subject.BoundingBox().Intersects(hole.BoundingBox()) {
		return []geometry.Polygon{subject}
	}
	hole = hole.EnsureOrientation(true)
	var pieces []geometry.Polygon
	for i := 0; i < len(hole); i++ {
		v, w := hole[i], hole[(i+1)%len(hole)]
		clipped := clipOutsideLine(subject, v, w)
		if len(clipped) >= 3 {
			pieces = append(pieces, clipped)
		}
	}
	return pieces
}

// clipOutsideLine keeps the portion of subject strictly outside the
// directed line v->w (i.e. to its right, since hole is CCW and its
// interior lies to the left of every edge), using the standard
// Sutherland-Hodgman single-plane clip.
func clipOutsideLine(subject geometry.Polygon, v, w geometry.Point) geometry.Polygon {
	n := len(subject)
	if n == 0 {
		return nil
	}
	inside := func(p geometry.Point) bool {
		return w.Sub(v).Cross(p.Sub(v)) < 0
	}
	out := make(geometry.Polygon, 0, n+2)
	for i := 0; i < n; i++ {
		cur := subject[i]
		prev := subject[(i-1+n)%n]
		curIn := inside(cur)
		prevIn := inside(prev)
		if curIn {
			if !prevIn {
				out = append(out, segLineIntersect(prev, cur, v, w))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, segLineIntersect(prev, cur, v, w))
		}
	}
	return out
}

func segLineIntersect(a, b, v, w geometry.Point) geometry.Point {
	dx1, dy1 := float64(b.X-a.X), float64(b.Y-a.Y)
	dx2, dy2 := float64(w.X-v.X), float64(w.Y-v.Y)
	denom := dx1*dy2 - dy1*dx2
	if denom == 0 {
		return a
	}
	t := (float64(v.X-a.X)*dy2 - float64(v.Y-a.Y)*dx2) / denom
	return geometry.Point{
		X: int64(math.Round(float64(a.X) + t*dx1)),
		Y: int64(math.Round(float64(a.Y) + t*dy1)),
	}
}

// FeasibleRegion returns ifp minus the union of nfps, applied by
// subtracting one NFP contour at a time (spec.md §4.1 "Feasible region").
// Each NFP contour is treated as convex; concave ones (already a union of
// convex sub-NFPs from ConcaveNFP) are approximated by their convex hull,
// the same conservative trade-off unionApprox makes.
func FeasibleRegion(ifp geometry.PolygonSet, nfps geometry.PolygonSet) geometry.PolygonSet {
	result := make(geometry.PolygonSet, len(ifp))
	copy(result, ifp)

	for _, hole := range nfps {
		holePoly := hole.Outer
		if !holePoly.IsConvex() {
			holePoly = geometry.ConvexHull(holePoly)
		}
		var next geometry.PolygonSet
		for _, piece := range result {
			cut := Difference(piece.Outer, holePoly)
			for _, c := range cut {
				next = append(next, geometry.ExPoly{Outer: c})
			}
		}
		result = next
		if result.IsEmpty() {
			break
		}
	}
	return result
}

// SortByAngleFromReference orders points by polar angle around ref,
// ascending from the -X axis (atan2 order, -pi to pi). No code in this
// module calls it.
func SortByAngleFromReference(pts []geometry.Point, ref geometry.Point) {
	sort.Slice(pts, func(i, j int) bool {
		ai := math.Atan2(float64(pts[i].Y-ref.Y), float64(pts[i].X-ref.X))
		aj := math.Atan2(float64(pts[j].Y-ref.Y), float64(pts[j].X-ref.X))
		return ai < aj
	})
}
