// Package decompose turns an expoly (outer contour plus holes) into a set
// of strictly convex polygons, the form NFP construction requires
// (spec.md §4.1 "Convex decomposition"). Holes are eliminated first by
// bridging them into the outer contour, the resulting simple polygon is
// ear-clipped into triangles, and adjacent triangles are greedily merged
// back into larger convex pieces (a Hertel-Mehlhorn-style merge), so a
// typical mildly-concave outline decomposes into far fewer than 2*N-2
// pieces.
package decompose

import (
	"sort"

	"github.com/piwi3910/arrange/internal/geometry"
)

// Decompose returns a convex decomposition of e. Every returned polygon
// satisfies geometry.Polygon.IsConvex (spec.md §3 invariant 3). If the
// outer contour already is convex and has no holes, it is returned as a
// single piece.
func Decompose(e geometry.ExPoly) []geometry.Polygon {
	if len(e.Holes) == 0 && e.Outer.IsConvex() {
		return []geometry.Polygon{e.Outer.Clone()}
	}

	simple := bridgeHoles(e.Outer, e.Holes)
	triangles := earClip(simple)
	return mergeConvex(triangles)
}

// bridgeHoles eliminates holes by connecting each hole to the outer
// contour (or to a previously bridged hole) via the closest pair of
// mutually-visible vertices, the standard technique for reducing a
// polygon-with-holes to a single simple polygon before ear clipping.
func bridgeHoles(outer geometry.Polygon, holes []geometry.Polygon) geometry.Polygon {
	result := outer.Clone()
	for _, hole := range holes {
		h := hole.EnsureOrientation(false) // holes are CW
		result = bridgeOne(result, h)
	}
	return result
}

// bridgeOne splices a single hole into poly by finding the closest
// poly-vertex/hole-vertex pair and duplicating both endpoints to form a
// zero-width bridge.
func bridgeOne(poly, hole geometry.Polygon) geometry.Polygon {
	if len(hole) == 0 {
		return poly
	}
	bestI, bestJ := 0, 0
	bestDist := int64(-1)
	for i, p := range poly {
		for j, h := range hole {
			d := squaredDist(p, h)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				bestI, bestJ = i, j
			}
		}
	}

	out := make(geometry.Polygon, 0, len(poly)+len(hole)+2)
	out = append(out, poly[:bestI+1]...)
	// Walk the hole starting at bestJ, all the way around, back to bestJ.
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(bestJ+k)%len(hole)])
	}
	out = append(out, poly[bestI:]...)
	return out
}

func squaredDist(a, b geometry.Point) int64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// triangle is a triple of polygon vertices (copied points, not indices),
// used internally by earClip and mergeConvex.
type triangle struct {
	a, b, c geometry.Point
}

// earClip triangulates a simple (possibly non-convex, possibly
// self-touching after bridging) polygon using the standard ear-clipping
// algorithm.
func earClip(poly geometry.Polygon) []triangle {
	poly = poly.EnsureOrientation(true) // CCW
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}

	var tris []triangle
	guard := 0
	maxGuard := len(poly)*len(poly) + 8
	for len(idx) > 3 && guard < maxGuard {
		guard++
		earFound := false
		for i := 0; i < len(idx); i++ {
			n := len(idx)
			prev := idx[(i-1+n)%n]
			cur := idx[i]
			next := idx[(i+1)%n]
			a, b, c := poly[prev], poly[cur], poly[next]
			if !isConvexCorner(a, b, c) {
				continue
			}
			if anyOtherVertexInside(poly, idx, prev, cur, next, a, b, c) {
				continue
			}
			tris = append(tris, triangle{a, b, c})
			idx = append(append([]int{}, idx[:i]...), idx[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			break
		}
	}
	if len(idx) == 3 {
		tris = append(tris, triangle{poly[idx[0]], poly[idx[1]], poly[idx[2]]})
	}
	return tris
}

func isConvexCorner(a, b, c geometry.Point) bool {
	return b.Sub(a).Cross(c.Sub(b)) > 0
}

func anyOtherVertexInside(poly geometry.Polygon, idx []int, prev, cur, next int, a, b, c geometry.Point) bool {
	tri := geometry.Polygon{a, b, c}
	for _, i := range idx {
		if i == prev || i == cur || i == next {
			continue
		}
		if tri.ContainsPoint(poly[i]) {
			return true
		}
	}
	return false
}

// mergeConvex greedily fuses adjacent triangles sharing an edge whenever
// the union stays convex, reducing the triangle fan to a smaller convex
// decomposition (Hertel-Mehlhorn's algorithm guarantees at most 4x the
// optimal piece count; this greedy variant is simpler and sufficient for
// the mildly concave outlines arrange.md expects).
func mergeConvex(tris []triangle) []geometry.Polygon {
	pieces := make([]geometry.Polygon, len(tris))
	for i, t := range tris {
		pieces[i] = geometry.Polygon{t.a, t.b, t.c}
	}

	changed := true
	for changed {
		changed = false
		for i := 0; i < len(pieces); i++ {
			for j := i + 1; j < len(pieces); j++ {
				merged, ok := tryMerge(pieces[i], pieces[j])
				if !ok {
					continue
				}
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

	sort.Slice(pieces, func(i, j int) bool {
		return pieces[i].BoundingBox().Min.X < pieces[j].BoundingBox().Min.X
	})
	return pieces
}

// tryMerge attempts to fuse two convex polygons that share exactly one
// edge into a single convex polygon.
func tryMerge(p, q geometry.Polygon) (geometry.Polygon, bool) {
	si, sj, ok := sharedEdge(p, q)
	if !ok {
		return nil, false
	}
	merged := spliceAtSharedEdge(p, q, si, sj)
	if len(merged) < 3 || !merged.IsConvex() {
		return nil, false
	}
	return merged, true
}

// sharedEdge returns the index into p and the index into q of a shared
// edge (p[si]->p[si+1] equal to q[sj+1]->q[sj], i.e. traversed in opposite
// winding), if one exists.
func sharedEdge(p, q geometry.Polygon) (int, int, bool) {
	for i := 0; i < len(p); i++ {
		a1, a2 := p[i], p[(i+1)%len(p)]
		for j := 0; j < len(q); j++ {
			b1, b2 := q[j], q[(j+1)%len(q)]
			if a1 == b2 && a2 == b1 {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// spliceAtSharedEdge builds the union polygon by walking p from just after
// the shared edge around to it, then splicing in q's remaining vertices.
func spliceAtSharedEdge(p, q geometry.Polygon, si, sj int) geometry.Polygon {
	out := make(geometry.Polygon, 0, len(p)+len(q)-2)
	n := len(p)
	for k := 1; k <= n; k++ {
		out = append(out, p[(si+k)%n])
	}
	// out now runs p[si+1] .. p[si]. q continues from p[si] (= q[sj+1])
	// back to p[si+1] (= q[sj]), so append q's vertices off the shared
	// edge, q[sj+2] .. q[sj-1], to close the ring.
	m := len(q)
	for k := 1; k < m-1; k++ {
		out = append(out, q[(sj+1+k)%m])
	}
	return dedupConsecutive(out)
}

func dedupConsecutive(p geometry.Polygon) geometry.Polygon {
	if len(p) < 2 {
		return p
	}
	out := make(geometry.Polygon, 0, len(p))
	for i, v := range p {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
