package host

import (
	"testing"

	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArrangeable is a minimal in-memory Arrangeable used to test the
// converter and result application without a real host model.
type fakeArrangeable struct {
	id          string
	geomID      string
	outline     geometry.ExPoly
	envelope    geometry.ExPoly
	hasEnvelope bool
	printable   bool
	selected    bool
	priority    int
	bedIndex    int
	bedConstr   *int

	translation geometry.Point
	rotation    float64
	assignedBed int
	rejectBed   bool
}

func square(side int64) geometry.ExPoly {
	poly := geometry.Polygon{{0, 0}, {side, 0}, {side, side}, {0, side}}
	return geometry.ExPoly{Outer: poly}
}

func (f *fakeArrangeable) ID() string             { return f.id }
func (f *fakeArrangeable) GeometryID() string     { return f.geomID }
func (f *fakeArrangeable) FullOutline() geometry.ExPoly { return f.outline }
func (f *fakeArrangeable) ConvexOutline() geometry.Polygon {
	return geometry.ConvexHull(f.outline.AllVertices())
}
func (f *fakeArrangeable) FullEnvelope() (geometry.ExPoly, bool) { return f.envelope, f.hasEnvelope }
func (f *fakeArrangeable) ConvexEnvelope() (geometry.Polygon, bool) {
	if !f.hasEnvelope {
		return nil, false
	}
	return geometry.ConvexHull(f.envelope.AllVertices()), true
}
func (f *fakeArrangeable) Transform(translation geometry.Point, rotation float64) {
	f.translation = translation
	f.rotation = rotation
}
func (f *fakeArrangeable) IsPrintable() bool { return f.printable }
func (f *fakeArrangeable) IsSelected() bool  { return f.selected }
func (f *fakeArrangeable) Priority() int     { return f.priority }
func (f *fakeArrangeable) GetBedIndex() int  { return f.bedIndex }
func (f *fakeArrangeable) AssignBed(i int) bool {
	if f.rejectBed {
		return false
	}
	f.assignedBed = i
	return true
}
func (f *fakeArrangeable) BedConstraint() (int, bool) {
	if f.bedConstr == nil {
		return 0, false
	}
	return *f.bedConstr, true
}
func (f *fakeArrangeable) ImbueData(store item.DataStore) {}

type fakeModel struct {
	items map[string]*fakeArrangeable
}

func (m *fakeModel) ForEach(fn func(Arrangeable) bool) {
	for _, a := range m.items {
		if !fn(a) {
			return
		}
	}
}
func (m *fakeModel) Visit(id string) (Arrangeable, bool) {
	a, ok := m.items[id]
	return a, ok
}
func (m *fakeModel) Add(prototypeID string) (string, bool) {
	proto, ok := m.items[prototypeID]
	if !ok {
		return "", false
	}
	clone := *proto
	clone.id = prototypeID + "-copy"
	m.items[clone.id] = &clone
	return clone.id, true
}

func TestConverter_ConvexMode_InflatesHull(t *testing.T) {
	c := NewConverter(Settings{GeometryHandling: GeometryConvex, DistanceFromObjectsMM: 2})
	a := &fakeArrangeable{id: "a", outline: square(geometry.ToScaled(10)), bedIndex: item.Unarranged}

	it, err := c.Convert(a)
	require.NoError(t, err)
	box := it.BoundingBox()
	assert.InDelta(t, 12.0, geometry.ToMM(box.Width()), 1e-6)
}

func TestConverter_EmptyOutlineReturnsError(t *testing.T) {
	c := NewConverter(DefaultSettings())
	a := &fakeArrangeable{id: "a", bedIndex: item.Unarranged}

	_, err := c.Convert(a)
	require.ErrorIs(t, err, ErrEmptyItemOutline)
}

func TestConverter_BalancedMode_EnvelopeIsConvexHullOfOutline(t *testing.T) {
	c := NewConverter(Settings{GeometryHandling: GeometryBalanced})
	a := &fakeArrangeable{id: "a", outline: square(geometry.ToScaled(10)), bedIndex: item.Unarranged}

	it, err := c.Convert(a)
	require.NoError(t, err)
	assert.True(t, it.EnvelopeBoundingBox().Contains(it.BoundingBox()) || it.EnvelopeBoundingBox() == it.BoundingBox())
}

func TestConverter_CarriesHostIDAndPriority(t *testing.T) {
	c := NewConverter(DefaultSettings())
	a := &fakeArrangeable{id: "host-42", outline: square(geometry.ToScaled(5)), priority: 7, bedIndex: item.Unarranged}

	it, err := c.Convert(a)
	require.NoError(t, err)
	assert.Equal(t, 7, it.Priority)
	hostID, ok := it.Data[item.DataKeyHostID].AsString()
	require.True(t, ok)
	assert.Equal(t, "host-42", hostID)
}

func TestResult_ApplyOnWritesTransformAndBed(t *testing.T) {
	model := &fakeModel{items: map[string]*fakeArrangeable{
		"a": {id: "a", bedIndex: item.Unarranged},
	}}
	result := Result{Placements: []Placement{
		{HostID: "a", Translation: geometry.Pt(geometry.ToScaled(1), geometry.ToScaled(2)), Rotation: 0.5, BedIndex: 0},
	}}

	ok := result.ApplyOn(model)
	assert.True(t, ok)
	assert.Equal(t, geometry.Pt(geometry.ToScaled(1), geometry.ToScaled(2)), model.items["a"].translation)
	assert.Equal(t, 0, model.items["a"].assignedBed)
}

func TestResult_ApplyOnMissingIDReturnsFalse(t *testing.T) {
	model := &fakeModel{items: map[string]*fakeArrangeable{}}
	result := Result{Placements: []Placement{{HostID: "ghost"}}}

	ok := result.ApplyOn(model)
	assert.False(t, ok)
}
