package host

import (
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// Placement is one item's outcome: its new transform and assigned bed
// (spec.md §6 "Result").
type Placement struct {
	HostID      string
	Translation geometry.Point
	Rotation    float64
	BedIndex    int
}

// NewPlacement captures it's current state as a Placement.
func NewPlacement(it *item.Item) Placement {
	hostID, _ := it.Data[item.DataKeyHostID].AsString()
	return Placement{
		HostID:      hostID,
		Translation: it.Translation(),
		Rotation:    it.Rotation(),
		BedIndex:    it.BedIndex,
	}
}

// Result is a task's output: every item's placement, plus any new items a
// fill-bed or multiply task created from a prototype (spec.md §6
// "Result").
type Result struct {
	Placements []Placement
	// NewPrototypeIDs lists the geometry ids new items were cloned from,
	// one entry per item in NewHostIDs at the same index.
	NewPrototypeIDs []string
	// NewHostIDs lists the host ids ArrangeableModel.Add assigned to the
	// newly created items.
	NewHostIDs []string
}

// ApplyOn writes every placement back onto model, via each Arrangeable's
// Transform and AssignBed. It returns false if any item could not be
// re-identified or its bed assignment was rejected by the host; partial
// application is allowed, matching spec.md §7 "ApplyFailed" (per-item
// partial application is allowed) and §8 invariant 4 (idempotent to
// re-apply, since Transform/AssignBed are themselves idempotent writes).
func (r Result) ApplyOn(model ArrangeableModel) bool {
	ok := true
	for _, p := range r.Placements {
		a, found := model.Visit(p.HostID)
		if !found {
			ok = false
			continue
		}
		a.Transform(p.Translation, p.Rotation)
		if !a.AssignBed(p.BedIndex) {
			ok = false
		}
	}
	return ok
}
