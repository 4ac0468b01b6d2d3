package item

// PackingContext tracks, for one bed, which items are already fixed in
// place (obstacles the current item must avoid) and which have been newly
// packed during the current selection loop pass (spec.md §3 "Packing
// context"). Kernels read both; only newly packed items participate in
// OnItemPacked feedback for the current pass.
type PackingContext struct {
	BedIndex int

	// Fixed holds items that were already placed before this pass began
	// (e.g. from a prior arrange call, or items the host pinned in place).
	Fixed []*Item

	// Packed holds items placed onto this bed during the current pass, in
	// placement order.
	Packed []*Item
}

// NewPackingContext returns an empty context for the given bed.
func NewPackingContext(bedIndex int) *PackingContext {
	return &PackingContext{BedIndex: bedIndex}
}

// Obstacles returns every item (fixed or already packed this pass) that a
// new placement must avoid colliding with, in a freshly allocated slice
// safe for the caller to mutate.
func (pc *PackingContext) Obstacles() []*Item {
	out := make([]*Item, 0, len(pc.Fixed)+len(pc.Packed))
	out = append(out, pc.Fixed...)
	out = append(out, pc.Packed...)
	return out
}

// Commit appends it to Packed, marking it placed on this bed for the
// remainder of the pass.
func (pc *PackingContext) Commit(it *Item) {
	it.BedIndex = pc.BedIndex
	pc.Packed = append(pc.Packed, it)
}

// Count returns the total number of obstacles currently tracked.
func (pc *PackingContext) Count() int {
	return len(pc.Fixed) + len(pc.Packed)
}

// IsEmpty reports whether the bed has no fixed or packed items yet.
func (pc *PackingContext) IsEmpty() bool {
	return len(pc.Fixed) == 0 && len(pc.Packed) == 0
}
