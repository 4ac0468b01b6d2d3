package item

import (
	"testing"

	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func TestPackingContext_CommitSetsBedIndex(t *testing.T) {
	pc := NewPackingContext(2)
	it := New("a", square(geometry.ToScaled(10)))

	pc.Commit(it)

	assert.Equal(t, 2, it.BedIndex)
	assert.Len(t, pc.Packed, 1)
	assert.Equal(t, 1, pc.Count())
}

func TestPackingContext_ObstaclesCombinesFixedAndPacked(t *testing.T) {
	pc := NewPackingContext(0)
	fixed := New("fixed", square(geometry.ToScaled(10)))
	pc.Fixed = append(pc.Fixed, fixed)

	packed := New("packed", square(geometry.ToScaled(10)))
	pc.Commit(packed)

	obstacles := pc.Obstacles()
	assert.Len(t, obstacles, 2)
	assert.Contains(t, obstacles, fixed)
	assert.Contains(t, obstacles, packed)
}

func TestPackingContext_IsEmpty(t *testing.T) {
	pc := NewPackingContext(0)
	assert.True(t, pc.IsEmpty())

	pc.Commit(New("a", square(geometry.ToScaled(10))))
	assert.False(t, pc.IsEmpty())
}
