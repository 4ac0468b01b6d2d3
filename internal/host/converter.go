package host

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/piwi3910/arrange/internal/decompose"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// ErrEmptyItemOutline is returned when a host arrangeable has no usable
// contour (spec.md §7 "EmptyItemOutline").
var ErrEmptyItemOutline = errors.New("arrangeable has an empty outline")

// simplifyTolMM is the magic tolerance the Advanced converter mode
// simplifies full outlines/envelopes to. Hard-coded per spec.md §9 Open
// Question 4: left unscaled, since the source gives no rule for scaling it
// with item size or bed resolution.
const simplifyTolMM = 0.2

// Converter turns a host Arrangeable into an internal item.Item, in one of
// three geometry-handling modes (spec.md §6 "Converter").
type Converter struct {
	Settings Settings
}

// NewConverter returns a Converter using s.
func NewConverter(s Settings) Converter {
	return Converter{Settings: s}
}

// Convert builds an item.Item from a, applying the converter's geometry
// mode and the distance_from_objects inflation. It returns
// ErrEmptyItemOutline if a's outline has no usable contour.
func (c Converter) Convert(a Arrangeable) (*item.Item, error) {
	full := a.FullOutline()
	if len(full.Outer) < 3 {
		return nil, fmt.Errorf("arrangeable %s: %w", a.ID(), ErrEmptyItemOutline)
	}

	halfClearance := geometry.ToScaled(c.Settings.DistanceFromObjectsMM / 2)

	shape, envelope := c.buildShape(a, full, halfClearance)

	it := item.New(hostItemID(a), shape)
	it.SetEnvelope(envelope)
	it.Priority = a.Priority()
	if bc, ok := a.BedConstraint(); ok {
		bedConstraint := bc
		it.BedConstraint = &bedConstraint
	}
	if idx := a.GetBedIndex(); idx >= 0 {
		it.BedIndex = idx
	}

	store := item.DataStore{}
	store[item.DataKeyHostID] = item.StringValue(a.ID())
	a.ImbueData(store)
	for k := range store {
		switch k {
		case item.DataKeySink, item.DataKeyWipeTower, item.DataKeyAllowedRotations, item.DataKeyHostID:
		default:
			delete(store, k)
		}
	}
	if v, ok := store[item.DataKeyAllowedRotations]; ok {
		if rotations, ok := v.AsRotations(); ok && len(rotations) > 0 {
			it.AllowedRotations = rotations
		}
	}
	it.Data = store

	return it, nil
}

func hostItemID(a Arrangeable) string {
	if id := a.ID(); id != "" {
		return id
	}
	return uuid.NewString()
}

// buildShape dispatches on GeometryHandling, returning the item's shape
// and envelope (spec.md §6 "Convex"/"Balanced"/"Advanced").
func (c Converter) buildShape(a Arrangeable, full geometry.ExPoly, halfClearance int64) (item.Shape, item.Shape) {
	switch c.Settings.GeometryHandling {
	case GeometryBalanced:
		outline := full.Inflate(halfClearance)
		envHull, ok := a.ConvexEnvelope()
		if !ok {
			envHull = geometry.ConvexHull(outline.AllVertices())
		}
		shape := item.Shape{Pieces: decompose.Decompose(outline), Outline: outline}
		envelope := item.Shape{Pieces: []geometry.Polygon{envHull}, Outline: geometry.ExPoly{Outer: envHull}}
		return shape, envelope

	case GeometryAdvanced:
		outline := simplify(full.Inflate(halfClearance), simplifyTolMM)
		env, ok := a.FullEnvelope()
		if !ok {
			env = outline
		} else {
			env = simplify(env.Inflate(halfClearance), simplifyTolMM)
		}
		shape := item.Shape{Pieces: decompose.Decompose(outline), Outline: outline}
		envelope := item.Shape{Pieces: decompose.Decompose(env), Outline: env}
		return shape, envelope

	default: // GeometryConvex
		hull := a.ConvexOutline()
		if len(hull) < 3 {
			hull = geometry.ConvexHull(full.AllVertices())
		}
		inflated := geometry.ExPoly{Outer: hull}.Inflate(halfClearance)
		shape := item.Shape{Pieces: []geometry.Polygon{inflated.Outer}, Outline: inflated}
		return shape, shape
	}
}

// simplify reduces a contour's vertex count within tolMM of the original
// shape using Douglas-Peucker, the standard simplification algorithm; a
// tessellation-only approximation is acceptable here since the spec rules
// out CGAL-style exact arithmetic (spec.md §1 "Out of scope").
func simplify(e geometry.ExPoly, tolMM float64) geometry.ExPoly {
	tol := geometry.ToScaled(tolMM)
	holes := make([]geometry.Polygon, len(e.Holes))
	for i, h := range e.Holes {
		holes[i] = douglasPeucker(h, tol)
	}
	return geometry.ExPoly{Outer: douglasPeucker(e.Outer, tol), Holes: holes}
}

// douglasPeucker simplifies a closed polygon contour, treating its longest
// chord as the initial split.
func douglasPeucker(poly geometry.Polygon, tol int64) geometry.Polygon {
	if len(poly) < 4 || tol <= 0 {
		return poly.Clone()
	}
	// Split the closed ring at its two farthest-apart vertices, simplify
	// each open chain, and recombine.
	i, j := farthestPair(poly)
	a := ringSlice(poly, i, j)
	b := ringSlice(poly, j, i)
	simplifiedA := simplifyChain(a, tol)
	simplifiedB := simplifyChain(b, tol)
	out := make(geometry.Polygon, 0, len(simplifiedA)+len(simplifiedB))
	out = append(out, simplifiedA...)
	out = append(out, simplifiedB[1:len(simplifiedB)-1]...)
	return out
}

func farthestPair(poly geometry.Polygon) (int, int) {
	bestI, bestJ := 0, 1
	var bestD int64 = -1
	for i := range poly {
		for j := i + 1; j < len(poly); j++ {
			dx := poly[i].X - poly[j].X
			dy := poly[i].Y - poly[j].Y
			d := dx*dx + dy*dy
			if d > bestD {
				bestD = d
				bestI, bestJ = i, j
			}
		}
	}
	return bestI, bestJ
}

func ringSlice(poly geometry.Polygon, i, j int) geometry.Polygon {
	n := len(poly)
	out := geometry.Polygon{}
	for k := i; ; k = (k + 1) % n {
		out = append(out, poly[k])
		if k == j {
			break
		}
	}
	return out
}

// simplifyChain runs Douglas-Peucker on an open polyline (first and last
// points always kept).
func simplifyChain(chain geometry.Polygon, tol int64) geometry.Polygon {
	if len(chain) < 3 {
		return chain.Clone()
	}
	a, b := chain[0], chain[len(chain)-1]
	bestIdx := -1
	var bestDist float64
	for i := 1; i < len(chain)-1; i++ {
		d := perpendicularDistance(chain[i], a, b)
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestIdx == -1 || bestDist <= float64(tol) {
		return geometry.Polygon{a, b}
	}
	left := simplifyChain(chain[:bestIdx+1], tol)
	right := simplifyChain(chain[bestIdx:], tol)
	out := make(geometry.Polygon, 0, len(left)+len(right)-1)
	out = append(out, left...)
	out = append(out, right[1:]...)
	return out
}

func perpendicularDistance(p, a, b geometry.Point) float64 {
	if a == b {
		return p.Sub(a).Length()
	}
	ab := b.Sub(a)
	ap := p.Sub(a)
	cross := float64(ab.Cross(ap))
	length := ab.Length()
	if length == 0 {
		return 0
	}
	d := cross / length
	if d < 0 {
		d = -d
	}
	return d
}
