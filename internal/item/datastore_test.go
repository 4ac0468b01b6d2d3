package item

import (
	"math"
	"testing"

	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func TestDataValue_KindMismatchReturnsFalse(t *testing.T) {
	v := BoolValue(true)
	_, ok := v.AsPoint()
	assert.False(t, ok)
	_, ok = v.AsRotations()
	assert.False(t, ok)
	_, ok = v.AsString()
	assert.False(t, ok)

	b, ok := v.AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestRotationsValue_DefensiveCopy(t *testing.T) {
	src := []float64{0, math.Pi}
	v := RotationsValue(src)
	src[0] = 99

	got, ok := v.AsRotations()
	assert.True(t, ok)
	assert.Equal(t, 0.0, got[0])
}

func TestDataStore_CloneIsIndependent(t *testing.T) {
	store := DataStore{
		DataKeySink: PointValue(geometry.Pt(1, 2)),
	}
	clone := store.Clone()
	clone[DataKeyWipeTower] = BoolValue(true)

	_, ok := store[DataKeyWipeTower]
	assert.False(t, ok)
	_, ok = clone[DataKeySink]
	assert.True(t, ok)
}

func TestDataStore_CloneOfNilIsNil(t *testing.T) {
	var store DataStore
	assert.Nil(t, store.Clone())
}
