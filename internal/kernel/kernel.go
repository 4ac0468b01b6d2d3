// Package kernel implements the pluggable placement-scoring strategies the
// pack strategy consults while searching a feasible region (spec.md §4.3).
package kernel

import (
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// Kernel scores candidate placements, gets a chance to pre-place an item
// before NFP sampling starts, and casts a final veto once a placement is
// chosen (spec.md §4.3).
type Kernel interface {
	// PlacementFitness scores a candidate translation for it; higher is
	// better, NaN discards the candidate. It is called with it's rotation
	// already fixed for the current rotation-loop iteration (spec.md §4.4).
	PlacementFitness(it *item.Item, translation geometry.Point) float64

	// OnStartPacking gives the kernel a chance to place it directly,
	// bypassing NFP sampling (e.g. snapping to a gravity sink on an empty
	// bed). ok is false if the kernel declines.
	OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (translation geometry.Point, ok bool)

	// OnItemPacked is the final veto after a placement has been chosen:
	// returning false discards the placement. Kernels that track running
	// state (spatial indexes, hull points, pile bounding boxes) update it
	// here.
	OnItemPacked(it *item.Item) bool
}

// envelopeCentroidAt returns it's envelope centroid as if it were
// translated to `translation`, without mutating it. Valid only while it's
// rotation stays fixed across the candidates being compared — which the
// pack strategy guarantees (spec.md §4.4: rotation is set once per
// rotation-loop iteration, before any translation candidates are scored).
func envelopeCentroidAt(it *item.Item, translation geometry.Point) geometry.Point {
	delta := translation.Sub(it.Translation())
	return it.EnvelopeCentroid().Add(delta)
}

// envelopeBoxAt returns it's envelope bounding box as if translated to
// `translation`, under the same fixed-rotation assumption as
// envelopeCentroidAt.
func envelopeBoxAt(it *item.Item, translation geometry.Point) geometry.Box {
	delta := translation.Sub(it.Translation())
	box := it.EnvelopeBoundingBox()
	return geometry.Box{Min: box.Min.Add(delta), Max: box.Max.Add(delta)}
}

func boxCorners(b geometry.Box) []geometry.Point {
	return []geometry.Point{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}
}

func squaredDistanceMM(a, b geometry.Point) float64 {
	dx := geometry.ToMM(a.X - b.X)
	dy := geometry.ToMM(a.Y - b.Y)
	return dx*dx + dy*dy
}
