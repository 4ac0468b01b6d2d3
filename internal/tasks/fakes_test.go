package tasks

import (
	"fmt"

	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/piwi3910/arrange/internal/item"
)

// fakeArrangeable is a minimal in-memory host.Arrangeable used across this
// package's tests.
type fakeArrangeable struct {
	id        string
	geomID    string
	outline   geometry.ExPoly
	printable bool
	selected  bool
	priority  int
	bedIndex  int
	wipeTower bool

	translation geometry.Point
	rotation    float64
	assignedBed int
}

func square(side int64) geometry.ExPoly {
	poly := geometry.Polygon{{0, 0}, {side, 0}, {side, side}, {0, side}}
	return geometry.ExPoly{Outer: poly}
}

func (f *fakeArrangeable) ID() string                   { return f.id }
func (f *fakeArrangeable) GeometryID() string           { return f.geomID }
func (f *fakeArrangeable) FullOutline() geometry.ExPoly { return f.outline }
func (f *fakeArrangeable) ConvexOutline() geometry.Polygon {
	return geometry.ConvexHull(f.outline.AllVertices())
}
func (f *fakeArrangeable) FullEnvelope() (geometry.ExPoly, bool)    { return geometry.ExPoly{}, false }
func (f *fakeArrangeable) ConvexEnvelope() (geometry.Polygon, bool) { return nil, false }
func (f *fakeArrangeable) Transform(translation geometry.Point, rotation float64) {
	f.translation = translation
	f.rotation = rotation
}
func (f *fakeArrangeable) IsPrintable() bool    { return f.printable }
func (f *fakeArrangeable) IsSelected() bool     { return f.selected }
func (f *fakeArrangeable) Priority() int        { return f.priority }
func (f *fakeArrangeable) GetBedIndex() int     { return f.bedIndex }
func (f *fakeArrangeable) AssignBed(i int) bool { f.assignedBed = i; return true }
func (f *fakeArrangeable) BedConstraint() (int, bool) {
	return 0, false
}
func (f *fakeArrangeable) ImbueData(store item.DataStore) {
	if f.wipeTower {
		store[item.DataKeyWipeTower] = item.BoolValue(true)
	}
}

// fakeModel is a minimal in-memory host.ArrangeableModel.
type fakeModel struct {
	order []string
	items map[string]*fakeArrangeable
	seq   int
}

func newFakeModel(arrangeables ...*fakeArrangeable) *fakeModel {
	m := &fakeModel{items: map[string]*fakeArrangeable{}}
	for _, a := range arrangeables {
		m.items[a.id] = a
		m.order = append(m.order, a.id)
	}
	return m
}

func (m *fakeModel) ForEach(fn func(host.Arrangeable) bool) {
	for _, id := range m.order {
		if !fn(m.items[id]) {
			return
		}
	}
}

func (m *fakeModel) Visit(id string) (host.Arrangeable, bool) {
	a, ok := m.items[id]
	return a, ok
}

func (m *fakeModel) Add(prototypeID string) (string, bool) {
	proto, ok := m.items[prototypeID]
	if !ok {
		return "", false
	}
	m.seq++
	clone := *proto
	clone.id = fmt.Sprintf("%s-copy-%d", prototypeID, m.seq)
	clone.selected = true
	m.items[clone.id] = &clone
	m.order = append(m.order, clone.id)
	return clone.id, true
}
