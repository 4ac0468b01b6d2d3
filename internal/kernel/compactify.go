package kernel

import (
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// CompactifyKernel wraps another kernel to minimize the convex hull area
// of the union of all placed envelopes (spec.md §4.3 "Compactify
// wrapper"). It tracks every committed envelope's corner points and
// penalizes whichever candidate would grow that hull the most.
type CompactifyKernel struct {
	Inner Kernel

	hullPoints []geometry.Point
}

// NewCompactifyKernel wraps inner with a convex-hull-area penalty.
func NewCompactifyKernel(inner Kernel) *CompactifyKernel {
	return &CompactifyKernel{Inner: inner}
}

func (k *CompactifyKernel) PlacementFitness(it *item.Item, translation geometry.Point) float64 {
	base := k.Inner.PlacementFitness(it, translation)
	candidate := boxCorners(envelopeBoxAt(it, translation))
	pts := make([]geometry.Point, 0, len(k.hullPoints)+len(candidate))
	pts = append(pts, k.hullPoints...)
	pts = append(pts, candidate...)
	hull := geometry.ConvexHull(pts)
	areaMM2 := hull.Area() / float64(geometry.Scale) / float64(geometry.Scale)
	return base - areaMM2
}

func (k *CompactifyKernel) OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (geometry.Point, bool) {
	return k.Inner.OnStartPacking(it, b, ctx, remaining)
}

func (k *CompactifyKernel) OnItemPacked(it *item.Item) bool {
	if !k.Inner.OnItemPacked(it) {
		return false
	}
	k.hullPoints = append(k.hullPoints, boxCorners(it.EnvelopeBoundingBox())...)
	return true
}
