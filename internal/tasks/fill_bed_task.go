package tasks

import (
	"context"
	"math"

	"github.com/piwi3910/arrange/internal/arrange"
	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/optimize"
	"github.com/piwi3910/arrange/internal/pack"
)

// fillerClearanceMM is the distance_from_objects value filler copies are
// converted with, in place of the run's own setting: being negative, it
// shrinks each filler by 0.5 mm per side, so fillers patch residual gaps a
// full-clearance copy would be rejected from (spec.md §4.6 "the same number of slightly
// shrunken 'filler' copies").
const fillerClearanceMM = -1.0

// fillerPriority sorts fillers after every ordinary copy in the selection
// loop's attempt order, so the main copies claim space first and fillers
// only ever patch what's left.
const fillerPriority = -1

// FillBedTask fills the remaining free area of a bed with copies of the
// single selected geometry, plus a matching set of shrunken filler copies
// (spec.md §4.6 "Fill-bed task").
type FillBedTask struct {
	Bed      bed.Bed
	Settings host.Settings
}

// NewFillBedTask returns a task scoped to b and configured by s.
func NewFillBedTask(b bed.Bed, s host.Settings) FillBedTask {
	return FillBedTask{Bed: b, Settings: s}
}

// Run picks the selected prototype, estimates how many copies fit by area,
// creates that many ordinary and filler copies via model.Add, arranges them
// against the model's unselected items on a single bed (no virtual-bed
// overflow), and reports the copies that actually landed.
func (t FillBedTask) Run(ctx context.Context, model host.ArrangeableModel) host.Result {
	prototype, fixed := pickPrototype(model)
	if prototype == nil {
		return host.Result{}
	}

	conv := host.NewConverter(t.Settings)
	protoItem, err := conv.Convert(prototype)
	if err != nil {
		logger.Warn("fill-bed prototype has empty outline", "id", prototype.ID(), "error", err)
		return host.Result{}
	}
	prototypeArea := envelopeAreaMM2(protoItem)
	if prototypeArea <= 0 {
		return host.Result{}
	}

	fixedSettings := t.Settings
	fixedSettings.DistanceFromObjectsMM = unselectedClearanceMM
	fixedItems := convertAll(host.NewConverter(fixedSettings), fixed)

	runBed := erodedBed(t.Bed, t.Settings)
	freeArea := runBed.Area() - sumEnvelopeAreaMM2(fixedItems)
	count := int(math.Ceil(freeArea / prototypeArea))
	if count <= 0 {
		return host.Result{}
	}

	mainItems, mainHostIDs := cloneN(model, conv, prototype, count)

	fillerSettings := t.Settings
	fillerSettings.DistanceFromObjectsMM = fillerClearanceMM
	fillerItems, fillerHostIDs := cloneN(model, host.NewConverter(fillerSettings), prototype, count)
	for _, it := range fillerItems {
		it.Priority = fillerPriority
	}

	movable := make([]*item.Item, 0, len(mainItems)+len(fillerItems))
	movable = append(movable, mainItems...)
	movable = append(movable, fillerItems...)

	// Not wrapped in the rectangle-overfit kernel: this task's capacity
	// estimate and its "a spill means stop" semantics both depend on the
	// bed's real boundary, the one thing that kernel replaces with an
	// infinite one.
	strategy := pack.Strategy{
		Kernel:  baseKernel(t.Settings, runBed, len(movable)),
		Options: optimize.DefaultOptions(t.Settings.Accuracy),
	}
	scene := arrange.Scene{
		Bed:            runBed,
		Items:          movable,
		Fixed:          fixedItems,
		Strategy:       strategy,
		MaxLogicalBeds: 1, // no virtual-bed overflow: a spill means "stop"
	}
	arrange.Run(ctx, scene, func(it *item.Item, packed bool) {})

	result := host.Result{}
	report := func(items []*item.Item, hostIDs []string) {
		for i, it := range items {
			if it.BedIndex != 0 {
				continue
			}
			result.Placements = append(result.Placements, host.NewPlacement(it))
			result.NewHostIDs = append(result.NewHostIDs, hostIDs[i])
			result.NewPrototypeIDs = append(result.NewPrototypeIDs, prototype.GeometryID())
		}
	}
	report(mainItems, mainHostIDs)
	report(fillerItems, fillerHostIDs)
	return result
}

// pickPrototype returns the first selected arrangeable the model yields as
// the prototype to copy, and every other arrangeable as fixed obstacles.
func pickPrototype(model host.ArrangeableModel) (host.Arrangeable, []host.Arrangeable) {
	var prototype host.Arrangeable
	var fixed []host.Arrangeable
	model.ForEach(func(a host.Arrangeable) bool {
		if prototype == nil && a.IsSelected() {
			prototype = a
			return true
		}
		fixed = append(fixed, a)
		return true
	})
	return prototype, fixed
}
