package kernel

import (
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// RectangleOverfitKernel wraps another kernel for arranging into a
// rectangle with no fixed items: it scores as if the bed were infinite,
// but adds a quadratic penalty for however far the growing pile's bbox
// exceeds the target rectangle. PostAlign, called once packing finishes,
// translates the whole pile back into the target rectangle
// (spec.md §4.3 "Rectangle-overfit wrapper").
type RectangleOverfitKernel struct {
	Inner  Kernel
	Target geometry.Box

	pile geometry.Box
}

// NewRectangleOverfitKernel wraps inner, penalizing overflow past target.
func NewRectangleOverfitKernel(inner Kernel, target geometry.Box) *RectangleOverfitKernel {
	return &RectangleOverfitKernel{Inner: inner, Target: target, pile: geometry.EmptyBox()}
}

func (k *RectangleOverfitKernel) PlacementFitness(it *item.Item, translation geometry.Point) float64 {
	base := k.Inner.PlacementFitness(it, translation)
	projected := k.pile.Union(envelopeBoxAt(it, translation))
	miss := rectangleMissMM(projected, k.Target)
	return base - miss*miss
}

func (k *RectangleOverfitKernel) OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (geometry.Point, bool) {
	return k.Inner.OnStartPacking(it, b, ctx, remaining)
}

func (k *RectangleOverfitKernel) OnItemPacked(it *item.Item) bool {
	if !k.Inner.OnItemPacked(it) {
		return false
	}
	k.pile = k.pile.Union(it.EnvelopeBoundingBox())
	return true
}

// PostAlign translates every item in items so the pile's bbox is centred
// inside the target rectangle.
func (k *RectangleOverfitKernel) PostAlign(items []*item.Item) {
	if k.pile.IsEmpty() {
		return
	}
	delta := k.Target.Center().Sub(k.pile.Center())
	for _, it := range items {
		it.SetTransform(it.Translation().Add(delta), it.Rotation())
	}
	k.pile = k.pile.Translate(delta)
}

// rectangleMissMM returns how far, in millimeters, box overflows beyond
// target on each side, summed.
func rectangleMissMM(box, target geometry.Box) float64 {
	var miss float64
	if box.Min.X < target.Min.X {
		miss += geometry.ToMM(target.Min.X - box.Min.X)
	}
	if box.Min.Y < target.Min.Y {
		miss += geometry.ToMM(target.Min.Y - box.Min.Y)
	}
	if box.Max.X > target.Max.X {
		miss += geometry.ToMM(box.Max.X - target.Max.X)
	}
	if box.Max.Y > target.Max.Y {
		miss += geometry.ToMM(box.Max.Y - target.Max.Y)
	}
	return miss
}
