package tasks

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/stretchr/testify/assert"
)

func squareShape(side int64) item.Shape {
	poly := geometry.Polygon{{0, 0}, {side, 0}, {side, side}, {0, side}}
	return item.Shape{Pieces: []geometry.Polygon{poly}, Outline: geometry.ExPoly{Outer: poly}}
}

func TestSegmentedBedPostProcess_ShiftsPileTowardBottomLeft(t *testing.T) {
	b := bed.NewSegmentedRectangle(geometry.ToScaled(100), geometry.ToScaled(100), 2, 2, bed.PivotBottomLeft)
	it := item.New("a", squareShape(geometry.ToScaled(10)))
	it.SetTransform(geometry.Pt(geometry.ToScaled(40), geometry.ToScaled(40)), 0)
	it.BedIndex = 0

	SegmentedBedPostProcess(b, []*item.Item{it}, bed.PivotBottomLeft, nil)

	box := it.EnvelopeBoundingBox()
	assert.Equal(t, int64(0), box.Min.X)
	assert.Equal(t, int64(0), box.Min.Y)
}

func TestSegmentedBedPostProcess_SkipsBedWithWipeTower(t *testing.T) {
	b := bed.NewSegmentedRectangle(geometry.ToScaled(100), geometry.ToScaled(100), 2, 2, bed.PivotBottomLeft)
	wt := item.New("wt", squareShape(geometry.ToScaled(10)))
	wt.Data[item.DataKeyWipeTower] = item.BoolValue(true)
	wt.SetTransform(geometry.Pt(geometry.ToScaled(40), geometry.ToScaled(40)), 0)
	wt.BedIndex = 0
	before := wt.Translation()

	SegmentedBedPostProcess(b, []*item.Item{wt}, bed.PivotBottomLeft, nil)

	assert.Equal(t, before, wt.Translation())
}

func TestSegmentedBedPostProcess_NoOpOnNonSegmentedBed(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	it := item.New("a", squareShape(geometry.ToScaled(10)))
	it.SetTransform(geometry.Pt(geometry.ToScaled(40), geometry.ToScaled(40)), 0)
	it.BedIndex = 0
	before := it.Translation()

	SegmentedBedPostProcess(b, []*item.Item{it}, bed.PivotBottomLeft, nil)

	assert.Equal(t, before, it.Translation())
}

func TestSegmentedBedPostProcess_RandomPivotIsReproducibleForAGivenSeed(t *testing.T) {
	b := bed.NewSegmentedRectangle(geometry.ToScaled(100), geometry.ToScaled(100), 2, 2, bed.PivotRandom)

	run := func(seed int64) geometry.Point {
		it := item.New("a", squareShape(geometry.ToScaled(10)))
		it.SetTransform(geometry.Pt(geometry.ToScaled(40), geometry.ToScaled(40)), 0)
		it.BedIndex = 0
		SegmentedBedPostProcess(b, []*item.Item{it}, bed.PivotRandom, rand.New(rand.NewSource(seed)))
		return it.Translation()
	}

	first := run(42)
	second := run(42)
	assert.Equal(t, first, second, "the same seed must reroll the same corner")
}
