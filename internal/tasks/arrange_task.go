package tasks

import (
	"context"
	"math/rand"

	"github.com/piwi3910/arrange/internal/arrange"
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/optimize"
	"github.com/piwi3910/arrange/internal/pack"
)

// unselectedClearanceMM is the "small negative offset" unselected items are
// converted with (spec.md §4.6 "Unselected items are converted with a small
// negative offset so they cannot be touched by movers"): a hairline
// deflation, rather than the usual inflation, so a mover's envelope may
// still rest flush against an unselected obstacle without the converter's
// own clearance inflation double-counting against it.
const unselectedClearanceMM = -0.02

// ArrangeTask packs a host model's selected items onto b, treating
// unselected items as fixed obstacles and keeping printable and
// unprintable items on disjoint ranges of logical beds (spec.md §4.6
// "Arrange task").
type ArrangeTask struct {
	Bed      bed.Bed
	Settings host.Settings
}

// NewArrangeTask returns a task scoped to b and configured by s.
func NewArrangeTask(b bed.Bed, s host.Settings) ArrangeTask {
	return ArrangeTask{Bed: b, Settings: s}
}

// bucket groups a model's arrangeables along the (printable, selected) axes
// spec.md §4.6 describes.
type bucket struct {
	printableSelected     []host.Arrangeable
	printableUnselected   []host.Arrangeable
	unprintableSelected   []host.Arrangeable
	unprintableUnselected []host.Arrangeable
}

func bucketModel(model host.ArrangeableModel) bucket {
	var b bucket
	model.ForEach(func(a host.Arrangeable) bool {
		switch {
		case a.IsPrintable() && a.IsSelected():
			b.printableSelected = append(b.printableSelected, a)
		case a.IsPrintable() && !a.IsSelected():
			b.printableUnselected = append(b.printableUnselected, a)
		case !a.IsPrintable() && a.IsSelected():
			b.unprintableSelected = append(b.unprintableSelected, a)
		default:
			b.unprintableUnselected = append(b.unprintableUnselected, a)
		}
		return true
	})
	return b
}

// convertAll converts every arrangeable with conv, logging and dropping any
// that fail (spec.md §7 "EmptyItemOutline": logged by the task, the item is
// dropped from this run).
func convertAll(conv host.Converter, arrangeables []host.Arrangeable) []*item.Item {
	out := make([]*item.Item, 0, len(arrangeables))
	for _, a := range arrangeables {
		it, err := conv.Convert(a)
		if err != nil {
			logger.Warn("dropping arrangeable with empty outline", "id", a.ID(), "error", err)
			continue
		}
		out = append(out, it)
	}
	return out
}

// erodedBed erodes b by distance_from_bed plus half of distance_from_objects
// (spec.md §6: the two settings together define a uniform item-item and
// item-bed clearance).
func erodedBed(b bed.Bed, s host.Settings) bed.Bed {
	total := s.DistanceFromBedMM + s.DistanceFromObjectsMM/2
	return b.Offset(geometry.ToScaled(total))
}

// maxBedIndex returns one past the highest bed index touched by any item in
// contexts, or 0 if contexts is empty — the "next empty logical bed"
// spec.md §4.6 packs the unprintable pass onto.
func maxBedIndex(contexts map[int]*item.PackingContext) int {
	max := -1
	for idx, pc := range contexts {
		if pc.IsEmpty() {
			continue
		}
		if idx > max {
			max = idx
		}
	}
	return max + 1
}

// shiftBedIndex adds offset to every item's BedIndex in place, used to
// align "logical bed 1 of unprintables" onto the first bed free of
// printables (spec.md §4.6).
func shiftBedIndex(items []*item.Item, offset int) {
	for _, it := range items {
		if it.BedIndex >= 0 {
			it.BedIndex += offset
		}
	}
}

// Run executes the arrange task against model: converts every bucket,
// packs printable-selected against printable-unselected across every bed,
// then packs unprintable-selected onto the next empty logical bed (with
// unprintable-unselected shifted to align), and returns the combined result
// (spec.md §4.6, §6 "Result").
func (t ArrangeTask) Run(ctx context.Context, model host.ArrangeableModel) host.Result {
	buckets := bucketModel(model)

	movableConv := host.NewConverter(t.Settings)
	fixedSettings := t.Settings
	fixedSettings.DistanceFromObjectsMM = unselectedClearanceMM
	fixedConv := host.NewConverter(fixedSettings)

	printableSelected := convertAll(movableConv, buckets.printableSelected)
	printableUnselected := convertAll(fixedConv, buckets.printableUnselected)
	unprintableSelected := convertAll(movableConv, buckets.unprintableSelected)
	unprintableUnselected := convertAll(fixedConv, buckets.unprintableUnselected)

	runBed := erodedBed(t.Bed, t.Settings)

	if t.Settings.RotationsEnabled {
		pack.PreEnrichRotations(runBed, printableSelected)
		pack.PreEnrichRotations(runBed, unprintableSelected)
	}

	printableKernel, printablePackBed, printablePostPack := selectKernel(t.Settings, runBed, len(printableSelected), printableUnselected)
	strategy := pack.Strategy{
		Kernel:  printableKernel,
		Options: optimize.DefaultOptions(t.Settings.Accuracy),
	}

	printableScene := arrange.Scene{
		Bed:      printablePackBed,
		Items:    printableSelected,
		Fixed:    printableUnselected,
		Strategy: strategy,
	}
	printableContexts := arrange.Run(ctx, printableScene, func(it *item.Item, packed bool) {})
	printablePostPack(printableSelected)

	offset := maxBedIndex(printableContexts)
	shiftBedIndex(unprintableUnselected, offset)

	unprintableKernel, unprintablePackBed, unprintablePostPack := selectKernel(t.Settings, runBed, len(unprintableSelected), unprintableUnselected)
	unprintableStrategy := pack.Strategy{
		Kernel:  unprintableKernel,
		Options: optimize.DefaultOptions(t.Settings.Accuracy),
	}
	unprintableScene := arrange.Scene{
		Bed:            unprintablePackBed,
		Items:          unprintableSelected,
		Fixed:          unprintableUnselected,
		Strategy:       unprintableStrategy,
		BedIndexOffset: offset,
	}
	arrange.Run(ctx, unprintableScene, func(it *item.Item, packed bool) {})
	unprintablePostPack(unprintableSelected)

	if runBed.Kind == bed.SegmentedRectangle {
		all := make([]*item.Item, 0, len(printableSelected)+len(printableUnselected)+len(unprintableSelected)+len(unprintableUnselected))
		all = append(all, printableSelected...)
		all = append(all, printableUnselected...)
		all = append(all, unprintableSelected...)
		all = append(all, unprintableUnselected...)
		rng := rand.New(rand.NewSource(t.Settings.Seed))
		SegmentedBedPostProcess(runBed, all, t.Settings.XLAlignment.ToPivot(), rng)
	}

	result := host.Result{}
	for _, it := range printableSelected {
		result.Placements = append(result.Placements, host.NewPlacement(it))
	}
	for _, it := range unprintableSelected {
		result.Placements = append(result.Placements, host.NewPlacement(it))
	}
	return result
}
