package kernel

import (
	"testing"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side int64) item.Shape {
	poly := geometry.Polygon{{0, 0}, {side, 0}, {side, side}, {0, side}}
	return item.Shape{Pieces: []geometry.Polygon{poly}, Outline: geometry.ExPoly{Outer: poly}}
}

func TestGravityKernel_ScoresCloserToSinkHigher(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewGravityKernel(b)
	it := item.New("a", square(geometry.ToScaled(10)))

	near := b.BoundingBox().Center()
	far := geometry.Pt(0, 0)

	scoreNear := k.PlacementFitness(it, near)
	scoreFar := k.PlacementFitness(it, far)
	assert.Greater(t, scoreNear, scoreFar)
}

func TestGravityKernel_OnStartPacking_CentersOnEmptyBed(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewGravityKernel(b)
	it := item.New("a", square(geometry.ToScaled(10)))
	ctx := item.NewPackingContext(0)

	translation, ok := k.OnStartPacking(it, b, ctx, nil)
	require.True(t, ok)

	it.SetTransform(translation, 0)
	assert.Equal(t, b.BoundingBox().Center(), it.EnvelopeCentroid())
}

func TestGravityKernel_OnStartPacking_DeclinesWhenBedNotEmpty(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewGravityKernel(b)
	it := item.New("a", square(geometry.ToScaled(10)))
	ctx := item.NewPackingContext(0)
	ctx.Fixed = append(ctx.Fixed, item.New("fixed", square(geometry.ToScaled(10))))

	_, ok := k.OnStartPacking(it, b, ctx, nil)
	assert.False(t, ok)
}

func TestTMKernel_WipeTowerAlwaysScoresAgainstSink(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(200), geometry.ToScaled(200))
	k := NewTMKernel(b, 10)
	it := item.New("wipe", square(geometry.ToScaled(10)))
	it.Data[item.DataKeyWipeTower] = item.BoolValue(true)
	it.Data[item.DataKeySink] = item.PointValue(geometry.Pt(geometry.ToScaled(50), geometry.ToScaled(50)))

	near := geometry.Pt(geometry.ToScaled(45), geometry.ToScaled(45))
	far := geometry.Pt(geometry.ToScaled(150), geometry.ToScaled(150))
	assert.Greater(t, k.PlacementFitness(it, near), k.PlacementFitness(it, far))
}

func TestTMKernel_BigItemClassification(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100)) // 10000 mm^2
	k := NewTMKernel(b, 4)

	small := item.New("small", square(geometry.ToScaled(5))) // 25mm^2, well under 2%
	big := item.New("big", square(geometry.ToScaled(50)))    // 2500mm^2 > 2% of 10000

	assert.False(t, k.isBig(small))
	assert.True(t, k.isBig(big))
}

func TestTMKernel_OnItemPacked_UpdatesIndexesAndCount(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewTMKernel(b, 2)
	it := item.New("a", square(geometry.ToScaled(50)))

	ok := k.OnItemPacked(it)
	assert.True(t, ok)
	assert.Equal(t, 1, k.Packed)
	assert.Equal(t, 1, k.All.Len())
	assert.Equal(t, 1, k.Big.Len())
}

func TestTMKernel_OnStartPacking_RebuildsTreesOnBedChange(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewTMKernel(b, 3)
	bed0 := item.NewPackingContext(0)
	bed1 := item.NewPackingContext(1)

	// Bind the kernel to bed 0 first: Pack always calls OnStartPacking
	// before OnItemPacked.
	_, _ = k.OnStartPacking(item.New("first", square(geometry.ToScaled(10))), b, bed0, nil)

	placed := item.New("placed-on-bed-0", square(geometry.ToScaled(50)))
	require.True(t, k.OnItemPacked(placed))
	require.Equal(t, 1, k.Packed)
	require.Equal(t, 1, k.All.Len())

	_, ok := k.OnStartPacking(item.New("next", square(geometry.ToScaled(10))), b, bed0, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, k.All.Len(), "same bed index must not reset the trees")

	_, ok = k.OnStartPacking(item.New("next", square(geometry.ToScaled(10))), b, bed1, nil)
	assert.False(t, ok)
	assert.Equal(t, 0, k.Packed, "a new bed index must reset the packed count")
	assert.Equal(t, 0, k.All.Len(), "a new bed index must not carry over the previous bed's placements")
}

func TestTMKernel_OnStartPacking_SeedsTreesFromFixedObstacles(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	k := NewTMKernel(b, 1)
	fixed := item.New("fixed", square(geometry.ToScaled(20)))
	ctx := item.NewPackingContext(0)
	ctx.Fixed = []*item.Item{fixed}

	_, ok := k.OnStartPacking(item.New("movable", square(geometry.ToScaled(10))), b, ctx, nil)
	assert.False(t, ok)
	assert.Equal(t, 1, k.All.Len(), "fixed obstacles must be visible to TM scoring")
}

func TestRectangleOverfitKernel_PenalizesOverflow(t *testing.T) {
	inner := NewGravityKernel(bed.NewInfinite(geometry.Point{}))
	target := geometry.Box{Min: geometry.Point{0, 0}, Max: geometry.Point{geometry.ToScaled(50), geometry.ToScaled(50)}}
	k := NewRectangleOverfitKernel(inner, target)

	it := item.New("a", square(geometry.ToScaled(10)))
	inside := geometry.Pt(geometry.ToScaled(20), geometry.ToScaled(20))
	outside := geometry.Pt(geometry.ToScaled(100), geometry.ToScaled(100))

	assert.Greater(t, k.PlacementFitness(it, inside), k.PlacementFitness(it, outside))
}

func TestRectangleOverfitKernel_PostAlignCentersPile(t *testing.T) {
	inner := NewGravityKernel(bed.NewInfinite(geometry.Point{}))
	target := geometry.Box{Min: geometry.Point{0, 0}, Max: geometry.Point{geometry.ToScaled(100), geometry.ToScaled(100)}}
	k := NewRectangleOverfitKernel(inner, target)

	it := item.New("a", square(geometry.ToScaled(10)))
	it.SetTransform(geometry.Pt(geometry.ToScaled(500), geometry.ToScaled(500)), 0)
	k.OnItemPacked(it)

	k.PostAlign([]*item.Item{it})
	assert.Equal(t, target.Center(), it.BoundingBox().Center())
}

func TestCompactifyKernel_PenalizesHullGrowth(t *testing.T) {
	inner := NewGravityKernel(bed.NewInfinite(geometry.Point{}))
	k := NewCompactifyKernel(inner)

	existing := item.New("a", square(geometry.ToScaled(10)))
	k.OnItemPacked(existing)

	it := item.New("b", square(geometry.ToScaled(10)))
	near := geometry.Pt(geometry.ToScaled(10), 0)
	far := geometry.Pt(geometry.ToScaled(1000), 0)

	assert.Greater(t, k.PlacementFitness(it, near), k.PlacementFitness(it, far))
}
