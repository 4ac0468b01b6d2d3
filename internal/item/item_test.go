package item

import (
	"math"
	"testing"

	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side int64) Shape {
	poly := geometry.Polygon{
		{0, 0}, {side, 0}, {side, side}, {0, side},
	}
	return Shape{
		Pieces:  []geometry.Polygon{poly},
		Outline: geometry.ExPoly{Outer: poly},
	}
}

func TestNew_DefaultsEnvelopeToShapeAndBedIndexUnarranged(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	assert.Equal(t, Unarranged, it.BedIndex)
	assert.Equal(t, []float64{0}, it.AllowedRotations)
	assert.Equal(t, it.TransformedOutline(), it.TransformedEnvelope())
}

func TestSetTransform_TranslatesOutline(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	d := geometry.Pt(geometry.ToScaled(5), geometry.ToScaled(5))
	it.SetTransform(d, 0)

	box := it.BoundingBox()
	assert.Equal(t, d, box.Min)
}

func TestSetTransform_InvalidatesCache(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	first := it.BoundingBox()

	it.SetTransform(geometry.Pt(geometry.ToScaled(100), 0), 0)
	second := it.BoundingBox()

	assert.NotEqual(t, first, second)
}

func TestSetEnvelope_SharesTransformWithShape(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	it.SetEnvelope(square(geometry.ToScaled(20)))

	d := geometry.Pt(geometry.ToScaled(3), geometry.ToScaled(4))
	it.SetTransform(d, 0)

	shapeBox := it.BoundingBox()
	envBox := it.EnvelopeBoundingBox()
	assert.Equal(t, d, shapeBox.Min)
	assert.Equal(t, d, envBox.Min)
	assert.NotEqual(t, shapeBox.Max, envBox.Max)
}

func TestEnvelopeReferenceVertex_UsesEnvelopeNotShape(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	it.SetEnvelope(square(geometry.ToScaled(20)))

	shapeRef := it.ReferenceVertex()
	envRef := it.EnvelopeReferenceVertex()
	assert.NotEqual(t, shapeRef, envRef)
	assert.Equal(t, geometry.Pt(geometry.ToScaled(20), geometry.ToScaled(20)), envRef)
}

func TestEnvelopeConvexHull_TracksEnvelopeTransform(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	it.SetEnvelope(square(geometry.ToScaled(20)))

	d := geometry.Pt(geometry.ToScaled(1), geometry.ToScaled(1))
	it.SetTransform(d, 0)

	hull := it.EnvelopeConvexHull()
	box := hull.BoundingBox()
	assert.Equal(t, d, box.Min)
	assert.Equal(t, d.Add(geometry.Pt(geometry.ToScaled(20), geometry.ToScaled(20))), box.Max)
}

func TestReferenceVertex_TracksTranslation(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	ref0 := it.ReferenceVertex()

	d := geometry.Pt(geometry.ToScaled(5), geometry.ToScaled(5))
	it.SetTransform(d, 0)
	ref1 := it.ReferenceVertex()

	assert.Equal(t, ref0.Add(d), ref1)
}

func TestIsWipeTower_DefaultsFalse(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	assert.False(t, it.IsWipeTower())

	it.Data[DataKeyWipeTower] = BoolValue(true)
	assert.True(t, it.IsWipeTower())
}

func TestSink_AbsentByDefault(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	_, ok := it.Sink()
	require.False(t, ok)

	p := geometry.Pt(geometry.ToScaled(1), geometry.ToScaled(2))
	it.Data[DataKeySink] = PointValue(p)
	got, ok := it.Sink()
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestMinAreaBoundingBoxRotation_SquareIsAlreadyMinimal(t *testing.T) {
	it := New("a", square(geometry.ToScaled(10)))
	angle := it.MinAreaBoundingBoxRotation()
	// A square's bounding box area is the same at 0 as at any multiple of
	// pi/2; just check it doesn't blow up and produces a finite angle.
	assert.False(t, math.IsNaN(angle))
}

func TestMinAreaBoundingBoxRotation_TiltedRectangleFindsAxisAlignment(t *testing.T) {
	// A 10x2 rectangle rotated 30 degrees should have a smaller bounding
	// box when rotated back by roughly -30 degrees than at its current
	// orientation.
	rectPoly := geometry.Polygon{
		{0, 0},
		{geometry.ToScaled(10), 0},
		{geometry.ToScaled(10), geometry.ToScaled(2)},
		{0, geometry.ToScaled(2)},
	}
	tilted := rectPoly.Rotate(math.Pi / 6)
	shape := Shape{Pieces: []geometry.Polygon{tilted}, Outline: geometry.ExPoly{Outer: tilted}}
	it := New("a", shape)

	angle := it.MinAreaBoundingBoxRotation()
	it.SetTransform(geometry.Point{}, angle)
	rotatedBox := it.BoundingBox()

	untiltedArea := float64(rotatedBox.Width()) * float64(rotatedBox.Height())
	originalArea := float64(tilted.BoundingBox().Width()) * float64(tilted.BoundingBox().Height())
	assert.Less(t, untiltedArea, originalArea)
}
