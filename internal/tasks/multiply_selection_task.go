package tasks

import (
	"context"

	"github.com/piwi3910/arrange/internal/arrange"
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/optimize"
	"github.com/piwi3910/arrange/internal/pack"
)

// MultiplySelectionTask appends Count copies of the selected geometry and
// arranges them alongside the rest of the current selection (spec.md §4.6
// "Multiply-selection task").
type MultiplySelectionTask struct {
	Bed      bed.Bed
	Settings host.Settings
	Count    int
}

// NewMultiplySelectionTask returns a task scoped to b, configured by s,
// that appends count copies.
func NewMultiplySelectionTask(b bed.Bed, s host.Settings, count int) MultiplySelectionTask {
	return MultiplySelectionTask{Bed: b, Settings: s, Count: count}
}

// Run detects the prototype the same way FillBedTask does, creates exactly
// Count copies via model.Add, and arranges them together with every other
// currently-selected item against the unselected items as fixed obstacles.
func (t MultiplySelectionTask) Run(ctx context.Context, model host.ArrangeableModel) host.Result {
	if t.Count <= 0 {
		return host.Result{}
	}

	prototype, selected, fixed := partitionSelection(model)
	if prototype == nil {
		return host.Result{}
	}

	conv := host.NewConverter(t.Settings)
	existing := convertAll(conv, selected)
	copies, copyHostIDs := cloneN(model, conv, prototype, t.Count)

	fixedSettings := t.Settings
	fixedSettings.DistanceFromObjectsMM = unselectedClearanceMM
	fixedItems := convertAll(host.NewConverter(fixedSettings), fixed)

	movable := make([]*item.Item, 0, len(existing)+len(copies))
	movable = append(movable, existing...)
	movable = append(movable, copies...)

	runBed := erodedBed(t.Bed, t.Settings)
	if t.Settings.RotationsEnabled {
		pack.PreEnrichRotations(runBed, movable)
	}

	kern, packBed, postPack := selectKernel(t.Settings, runBed, len(movable), fixedItems)
	strategy := pack.Strategy{
		Kernel:  kern,
		Options: optimize.DefaultOptions(t.Settings.Accuracy),
	}
	scene := arrange.Scene{
		Bed:      packBed,
		Items:    movable,
		Fixed:    fixedItems,
		Strategy: strategy,
	}
	arrange.Run(ctx, scene, func(it *item.Item, packed bool) {})
	postPack(movable)

	result := host.Result{}
	for _, it := range existing {
		result.Placements = append(result.Placements, host.NewPlacement(it))
	}
	for i, it := range copies {
		result.Placements = append(result.Placements, host.NewPlacement(it))
		result.NewHostIDs = append(result.NewHostIDs, copyHostIDs[i])
		result.NewPrototypeIDs = append(result.NewPrototypeIDs, prototype.GeometryID())
	}
	return result
}

// partitionSelection returns the first selected arrangeable (the prototype
// to copy), every selected arrangeable (including the prototype), and every
// unselected one.
func partitionSelection(model host.ArrangeableModel) (host.Arrangeable, []host.Arrangeable, []host.Arrangeable) {
	var prototype host.Arrangeable
	var selected, fixed []host.Arrangeable
	model.ForEach(func(a host.Arrangeable) bool {
		if a.IsSelected() {
			if prototype == nil {
				prototype = a
			}
			selected = append(selected, a)
		} else {
			fixed = append(fixed, a)
		}
		return true
	})
	return prototype, selected, fixed
}
