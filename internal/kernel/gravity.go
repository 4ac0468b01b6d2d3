package kernel

import (
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// GravityKernel pulls every item toward a sink point, taken from the
// item's data store under key "sink" or, absent that, the bed's centre
// (spec.md §4.3 "Gravity kernel").
type GravityKernel struct {
	Bed bed.Bed
}

// NewGravityKernel returns a kernel scoped to b.
func NewGravityKernel(b bed.Bed) *GravityKernel {
	return &GravityKernel{Bed: b}
}

func (k *GravityKernel) sink(it *item.Item) geometry.Point {
	if p, ok := it.Sink(); ok {
		return p
	}
	return k.Bed.BoundingBox().Center()
}

// PlacementFitness scores translation as the negative squared distance
// from the item's envelope centroid to its sink.
func (k *GravityKernel) PlacementFitness(it *item.Item, translation geometry.Point) float64 {
	centroid := envelopeCentroidAt(it, translation)
	return -squaredDistanceMM(centroid, k.sink(it))
}

// OnStartPacking centres it on its sink when the bed is still empty,
// bypassing NFP sampling entirely.
func (k *GravityKernel) OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (geometry.Point, bool) {
	if !ctx.IsEmpty() {
		return geometry.Point{}, false
	}
	delta := k.sink(it).Sub(it.EnvelopeCentroid())
	return it.Translation().Add(delta), true
}

// OnItemPacked never vetoes; the gravity kernel has no running state.
func (k *GravityKernel) OnItemPacked(it *item.Item) bool { return true }
