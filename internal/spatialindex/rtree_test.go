package spatialindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(minX, minY, maxX, maxY float64) Box {
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func TestRTree_SearchFindsIntersectingEntries(t *testing.T) {
	rt := New(4)
	rt.Insert("a", box(0, 0, 1, 1), 0.5, 0.5, "a")
	rt.Insert("b", box(10, 10, 11, 11), 10.5, 10.5, "b")

	found := rt.Search(box(-1, -1, 2, 2))
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].ID)
}

func TestRTree_SplitsAfterExceedingMaxItems(t *testing.T) {
	rt := New(4)
	for i := 0; i < 20; i++ {
		x := float64(i)
		rt.Insert(string(rune('a'+i)), box(x, x, x+1, x+1), x+0.5, x+0.5, i)
	}
	assert.Equal(t, 20, rt.Len())
}

func TestRTree_DeleteRemovesEntry(t *testing.T) {
	rt := New(4)
	rt.Insert("a", box(0, 0, 1, 1), 0.5, 0.5, nil)
	assert.True(t, rt.Delete("a"))
	assert.Equal(t, 0, rt.Len())
	assert.False(t, rt.Delete("a"))
}

func TestRTree_NearestOrdersByDistance(t *testing.T) {
	rt := New(4)
	rt.Insert("far", box(100, 100, 101, 101), 100.5, 100.5, nil)
	rt.Insert("near", box(1, 1, 2, 2), 1.5, 1.5, nil)

	nearest := rt.Nearest(0, 0, 1)
	require.Len(t, nearest, 1)
	assert.Equal(t, "near", nearest[0].ID)
}

func TestRTree_DistanceToNearestBox_EmptyIsInfinite(t *testing.T) {
	rt := New(4)
	d := rt.DistanceToNearestBox(0, 0)
	assert.True(t, d > 1e300)
}
