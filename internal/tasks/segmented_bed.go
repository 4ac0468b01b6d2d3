package tasks

import (
	"math"
	"math/rand"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// SegmentedBedPostProcess shifts each logical bed's pile toward pivot by a
// whole number of segment cells, after packing is complete (spec.md §4.6
// "Segmented bed post-processing"). It is a no-op unless b is a
// SegmentedRectangle. Beds holding a wipe tower are left untouched
// entirely; wipe towers on an otherwise-shifted bed are excluded from the
// shift. rng resolves the pivot when pivot is PivotRandom (spec.md §9: the
// random pivot must draw from an explicitly-plumbed, seedable source rather
// than the global generator, so a run is reproducible given its seed); it is
// never consulted for any other pivot and may be nil in that case.
func SegmentedBedPostProcess(b bed.Bed, items []*item.Item, pivot bed.Pivot, rng *rand.Rand) {
	if b.Kind != bed.SegmentedRectangle {
		return
	}
	segW, segH := b.SegmentSize()
	if segW <= 0 || segH <= 0 {
		return
	}
	bedBox := b.BoundingBox()

	byBed := map[int][]*item.Item{}
	for _, it := range items {
		if it.BedIndex < 0 {
			continue
		}
		byBed[it.BedIndex] = append(byBed[it.BedIndex], it)
	}

	for _, pile := range byBed {
		if hasWipeTower(pile) {
			continue
		}
		pileBox := pileEnvelopeBox(pile)
		if pileBox.IsEmpty() {
			continue
		}
		snappedW := segW * ceilDiv(pileBox.Width(), segW)
		snappedH := segH * ceilDiv(pileBox.Height(), segH)
		target := pivotTarget(bedBox, snappedW, snappedH, pivot, rng)
		shift := target.Min.Sub(pileBox.Min)
		if shift == (geometry.Point{}) {
			continue
		}
		for _, it := range pile {
			it.SetTransform(it.Translation().Add(shift), it.Rotation())
		}
	}
}

func hasWipeTower(pile []*item.Item) bool {
	for _, it := range pile {
		if it.IsWipeTower() {
			return true
		}
	}
	return false
}

func pileEnvelopeBox(pile []*item.Item) geometry.Box {
	box := geometry.EmptyBox()
	for _, it := range pile {
		box = box.Union(it.EnvelopeBoundingBox())
	}
	return box
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(a) / float64(b)))
}

// pivotTarget returns the snappedW x snappedH cell within bedBox that the
// pile should occupy, anchored at the named corner (spec.md §4.6). Random
// re-rolls a corner uniformly on every call using rng, matching the
// original's "uniformly-random pick" per bed while keeping that pick
// reproducible for a given seed.
func pivotTarget(bedBox geometry.Box, snappedW, snappedH int64, pivot bed.Pivot, rng *rand.Rand) geometry.Box {
	switch pivot {
	case bed.PivotBottomLeft:
		return geometry.Box{Min: bedBox.Min, Max: geometry.Point{X: bedBox.Min.X + snappedW, Y: bedBox.Min.Y + snappedH}}
	case bed.PivotTopLeft:
		return geometry.Box{
			Min: geometry.Point{X: bedBox.Min.X, Y: bedBox.Max.Y - snappedH},
			Max: geometry.Point{X: bedBox.Min.X + snappedW, Y: bedBox.Max.Y},
		}
	case bed.PivotBottomRight:
		return geometry.Box{
			Min: geometry.Point{X: bedBox.Max.X - snappedW, Y: bedBox.Min.Y},
			Max: geometry.Point{X: bedBox.Max.X, Y: bedBox.Min.Y + snappedH},
		}
	case bed.PivotTopRight:
		return geometry.Box{
			Min: geometry.Point{X: bedBox.Max.X - snappedW, Y: bedBox.Max.Y - snappedH},
			Max: geometry.Point{X: bedBox.Max.X, Y: bedBox.Max.Y},
		}
	case bed.PivotRandom:
		corners := []bed.Pivot{bed.PivotBottomLeft, bed.PivotTopLeft, bed.PivotBottomRight, bed.PivotTopRight}
		return pivotTarget(bedBox, snappedW, snappedH, corners[rng.Intn(len(corners))], rng)
	default: // PivotCenter
		cx := (bedBox.Min.X + bedBox.Max.X) / 2
		cy := (bedBox.Min.Y + bedBox.Max.Y) / 2
		return geometry.Box{
			Min: geometry.Point{X: cx - snappedW/2, Y: cy - snappedH/2},
			Max: geometry.Point{X: cx + snappedW/2, Y: cy + snappedH/2},
		}
	}
}
