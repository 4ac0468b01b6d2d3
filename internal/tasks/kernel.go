package tasks

import (
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/kernel"
)

// baseKernel picks a kernel family from the run's arrange_strategy and the
// bed's kind (spec.md §6 "arrange_strategy": "auto picks TM for
// rectangle/irregular beds and gravity for circle beds; pull_to_center
// forces gravity").
func baseKernel(s host.Settings, b bed.Bed, totalCount int) kernel.Kernel {
	if s.ArrangeStrategy == host.StrategyPullToCenter {
		return kernel.NewGravityKernel(b)
	}
	switch b.Kind {
	case bed.Circle:
		return kernel.NewGravityKernel(b)
	default:
		return kernel.NewTMKernel(b, totalCount)
	}
}

// selectKernel picks the kernel a pass should score placements with, and
// the bed it should actually pack candidates against. Arranging into a
// rectangle (or segmented-rectangle) bed with no fixed items gets wrapped
// in RectangleOverfitKernel: it packs against an infinite bed and only
// penalizes overflow past the real target, so early items aren't
// artificially squeezed by a boundary nothing has claimed yet
// (spec.md §4.3 "Rectangle-overfit wrapper"). postPack must be called once
// packing finishes, before reading items' final positions, to translate
// the pile back inside the target rectangle; it is a no-op when the
// wrapper wasn't used.
func selectKernel(s host.Settings, b bed.Bed, totalCount int, fixed []*item.Item) (kern kernel.Kernel, packBed bed.Bed, postPack func([]*item.Item)) {
	inner := baseKernel(s, b, totalCount)
	noOp := func([]*item.Item) {}

	isRectangular := b.Kind == bed.Rectangle || b.Kind == bed.SegmentedRectangle
	if s.ArrangeStrategy != host.StrategyAuto || !isRectangular || len(fixed) != 0 {
		return inner, b, noOp
	}

	overfit := kernel.NewRectangleOverfitKernel(inner, b.BoundingBox())
	return overfit, bed.NewInfinite(b.BoundingBox().Center()), overfit.PostAlign
}
