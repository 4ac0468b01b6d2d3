package arrange

import (
	"context"
	"testing"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/kernel"
	"github.com/piwi3910/arrange/internal/optimize"
	"github.com/piwi3910/arrange/internal/pack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id string, side int64) *item.Item {
	poly := geometry.Polygon{{0, 0}, {side, 0}, {side, side}, {0, side}}
	shape := item.Shape{Pieces: []geometry.Polygon{poly}, Outline: geometry.ExPoly{Outer: poly}}
	return item.New(id, shape)
}

func newScene(b bed.Bed, items []*item.Item) Scene {
	k := kernel.NewGravityKernel(b)
	return Scene{
		Bed:      b,
		Items:    items,
		Strategy: pack.Strategy{Kernel: k, Options: optimize.DefaultOptions(0.3)},
	}
}

func TestRun_PacksAllItemsThatFit(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	items := []*item.Item{
		square("a", geometry.ToScaled(10)),
		square("b", geometry.ToScaled(10)),
		square("c", geometry.ToScaled(10)),
	}
	scene := newScene(b, items)

	var packedCount int
	Run(context.Background(), scene, func(it *item.Item, packed bool) {
		if packed {
			packedCount++
		}
	})

	assert.Equal(t, 3, packedCount)
	for _, it := range items {
		assert.Equal(t, 0, it.BedIndex)
	}
	assert.False(t, items[0].EnvelopeBoundingBox().Intersects(items[1].EnvelopeBoundingBox()))
}

func TestRun_OversizeItemOverflowsToNextBed(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(30), geometry.ToScaled(30))
	// The three small items are pre-arranged along bed 0's bottom edge,
	// leaving no room there for the 29 mm item.
	small1 := square("small1", geometry.ToScaled(10))
	small2 := square("small2", geometry.ToScaled(10))
	small3 := square("small3", geometry.ToScaled(10))
	for i, s := range []*item.Item{small1, small2, small3} {
		s.SetTransform(geometry.Pt(geometry.ToScaled(float64(10*i)), 0), 0)
		s.BedIndex = 0
	}
	big := square("big", geometry.ToScaled(29))
	scene := newScene(b, []*item.Item{big})
	scene.Fixed = []*item.Item{small1, small2, small3}

	Run(context.Background(), scene, func(it *item.Item, packed bool) {})

	assert.Equal(t, 0, small1.BedIndex)
	assert.Equal(t, 0, small2.BedIndex)
	assert.Equal(t, 0, small3.BedIndex)
	assert.Equal(t, 1, big.BedIndex)
}

func TestRun_UnpackableItemIsSkippedWithoutAttempt(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(10), geometry.ToScaled(10))
	oversize := square("huge", geometry.ToScaled(500))
	scene := newScene(b, []*item.Item{oversize})

	var calls int
	Run(context.Background(), scene, func(it *item.Item, packed bool) {
		calls++
		assert.False(t, packed)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, item.Unarranged, oversize.BedIndex)
}

func TestRun_BedConstraintRespected(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(50), geometry.ToScaled(50))
	constrained := square("constrained", geometry.ToScaled(10))
	bedOne := 1
	constrained.BedConstraint = &bedOne
	scene := newScene(b, []*item.Item{constrained})
	scene.MaxLogicalBeds = 3

	Run(context.Background(), scene, func(it *item.Item, packed bool) {})

	if constrained.BedIndex != item.Unarranged {
		assert.Equal(t, 1, constrained.BedIndex)
	}
}

func TestRun_PriorityOrdersAttempts(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	low := square("low", geometry.ToScaled(10))
	high := square("high", geometry.ToScaled(10))
	high.Priority = 10
	scene := newScene(b, []*item.Item{low, high})

	var order []string
	Run(context.Background(), scene, func(it *item.Item, packed bool) {
		order = append(order, it.ID)
	})

	require.Len(t, order, 2)
	assert.Equal(t, "high", order[0])
}

func TestRun_CancelledContextLeavesRemainderUnarranged(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	items := []*item.Item{square("a", geometry.ToScaled(10)), square("b", geometry.ToScaled(10))}
	scene := newScene(b, items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Run(ctx, scene, func(it *item.Item, packed bool) {})
	for _, it := range items {
		assert.Equal(t, item.Unarranged, it.BedIndex)
	}
}

func TestRun_FixedItemsAreAvoided(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(30), geometry.ToScaled(30))
	fixed := square("fixed", geometry.ToScaled(20))
	fixed.SetTransform(geometry.Point{}, 0)
	fixed.BedIndex = 0

	movable := square("movable", geometry.ToScaled(20))
	scene := newScene(b, []*item.Item{movable})
	scene.Fixed = []*item.Item{fixed}

	Run(context.Background(), scene, func(it *item.Item, packed bool) {})

	if movable.BedIndex == 0 {
		assert.False(t, movable.EnvelopeBoundingBox().Intersects(fixed.EnvelopeBoundingBox()))
	}
}
