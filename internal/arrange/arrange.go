// Package arrange implements the first-fit selection loop that drives the
// pack strategy across numbered logical beds (spec.md §4.5, §5).
package arrange

import (
	"context"
	"sort"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/pack"
)

// Comparator orders movable items for attempt order; it reports whether a
// should be attempted before b.
type Comparator func(a, b *item.Item) bool

// DefaultComparator attempts higher-priority items first, then larger
// envelope convex-hull area first (spec.md §4.5 step 2).
func DefaultComparator(a, b *item.Item) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return hullArea(a) > hullArea(b)
}

func hullArea(it *item.Item) float64 {
	return it.EnvelopeConvexHull().Area()
}

// Callback is invoked once per movable item after the selection loop has
// decided its fate (packed or left Unarranged); it is also the point at
// which a caller's progress bar advances and cancellation is ultimately
// observed (spec.md §4.5 step 5c/5d).
type Callback func(it *item.Item, packed bool)

// Scene bundles everything one arrange run needs: the bed, the movable
// items to place, already-assigned fixed items, and the strategy that
// scores and commits candidate placements (spec.md §3 "Data flow").
type Scene struct {
	Bed        bed.Bed
	Items      []*item.Item
	Fixed      []*item.Item
	Strategy   pack.Strategy
	Comparator Comparator

	// MaxLogicalBeds bounds how many logical (virtual) beds beyond
	// BedIndexOffset the loop will open for overflow items. Defaults to
	// len(Items)+1 if zero, since no run ever needs more logical beds than
	// it has items.
	MaxLogicalBeds int

	// BedIndexOffset shifts the first unconstrained bed index the loop
	// tries, letting a caller stack one Run's logical beds after
	// another's (spec.md §4.6 "packs unprintable-selected on the next
	// empty logical bed"). Bed-constrained items still target their
	// constraint's absolute index, unaffected by this offset.
	BedIndexOffset int
}

// Run executes the first-fit selection loop over scene, invoking
// onArranged once for every movable item it reaches, unpackable ones
// included; once ctx is cancelled, the items not yet attempted get no
// callback and stay Unarranged. It mutates each item in scene.Items in
// place (translation, rotation, BedIndex) and returns the map of per-bed
// packing contexts it built, for callers (e.g. segmented-bed
// post-processing) that need to inspect the final piles.
func Run(ctx context.Context, scene Scene, onArranged Callback) map[int]*item.PackingContext {
	comparator := scene.Comparator
	if comparator == nil {
		comparator = DefaultComparator
	}
	maxBeds := scene.MaxLogicalBeds
	if maxBeds <= 0 {
		maxBeds = len(scene.Items) + 1
	}

	// Step 1: mark every movable item Unarranged.
	for _, it := range scene.Items {
		it.BedIndex = item.Unarranged
	}

	// Step 2: stable-sort movables by the comparator.
	movables := append([]*item.Item(nil), scene.Items...)
	sort.SliceStable(movables, func(i, j int) bool {
		return comparator(movables[i], movables[j])
	})

	// Step 3: seed fixed items into their bed's packing context.
	contexts := map[int]*item.PackingContext{}
	contextFor := func(bedIndex int) *item.PackingContext {
		pc, ok := contexts[bedIndex]
		if !ok {
			pc = item.NewPackingContext(bedIndex)
			contexts[bedIndex] = pc
		}
		return pc
	}
	for _, f := range scene.Fixed {
		if f.BedIndex < 0 {
			continue
		}
		pc := contextFor(f.BedIndex)
		pc.Fixed = append(pc.Fixed, f)
	}

	// Step 4: filter unpackable items.
	remaining := make([]*item.Item, 0, len(movables))
	for _, it := range movables {
		if pack.Unpackable(scene.Bed, it) {
			logger.Info("item unpackable, skipping", "item_id", it.ID)
			onArranged(it, false)
			continue
		}
		remaining = append(remaining, it)
	}

	// Step 5: attempt each remaining item in order.
	for i, it := range remaining {
		if ctx.Err() != nil {
			logger.Info("arrange cancelled, leaving remainder unarranged", "remaining", len(remaining)-i)
			break
		}

		tail := remaining[i+1:]
		packed := attemptItem(ctx, scene, contextFor, it, tail, scene.BedIndexOffset, maxBeds)
		onArranged(it, packed)
	}

	return contexts
}

// attemptItem tries to place it on its constrained bed, or on beds
// offset..offset+maxBeds-1 in ascending order if unconstrained (spec.md §4.5 step 5a,
// state machine "Unarranged -> TryingBed(k) -> Packed(k) or
// TryingBed(k+1) or Unarranged").
func attemptItem(ctx context.Context, scene Scene, contextFor func(int) *item.PackingContext, it *item.Item, tail []*item.Item, offset, maxBeds int) bool {
	if it.BedConstraint != nil {
		bedIdx := *it.BedConstraint
		pc := contextFor(bedIdx)
		if scene.Strategy.Pack(ctx, scene.Bed, it, pc, tail) {
			return true
		}
		logger.Info("bed constraint unsatisfiable", "item_id", it.ID, "bed", bedIdx)
		return false
	}

	for k := 0; k < maxBeds; k++ {
		bedIdx := offset + k
		if ctx.Err() != nil {
			return false
		}
		pc := contextFor(bedIdx)
		if scene.Strategy.Pack(ctx, scene.Bed, it, pc, tail) {
			return true
		}
	}
	return false
}
