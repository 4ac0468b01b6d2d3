package tasks

import (
	"context"
	"testing"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrangeTask_PacksPrintableSelectedAroundFixed(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	model := newFakeModel(
		&fakeArrangeable{id: "movable", geomID: "g1", outline: square(geometry.ToScaled(10)), printable: true, selected: true, bedIndex: -1},
		&fakeArrangeable{id: "fixed", geomID: "g2", outline: square(geometry.ToScaled(10)), printable: true, selected: false, bedIndex: 0},
	)
	task := NewArrangeTask(b, host.DefaultSettings())

	result := task.Run(context.Background(), model)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, "movable", result.Placements[0].HostID)
	assert.Equal(t, 0, result.Placements[0].BedIndex)
}

func TestArrangeTask_UnprintableStartsOnNextFreeBed(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(30), geometry.ToScaled(30))
	model := newFakeModel(
		&fakeArrangeable{id: "p1", geomID: "g", outline: square(geometry.ToScaled(10)), printable: true, selected: true, bedIndex: -1},
		&fakeArrangeable{id: "up1", geomID: "g", outline: square(geometry.ToScaled(10)), printable: false, selected: true, bedIndex: -1},
	)
	task := NewArrangeTask(b, host.DefaultSettings())

	result := task.Run(context.Background(), model)

	var printableBed, unprintableBed int
	for _, p := range result.Placements {
		switch p.HostID {
		case "p1":
			printableBed = p.BedIndex
		case "up1":
			unprintableBed = p.BedIndex
		}
	}
	assert.GreaterOrEqual(t, unprintableBed, printableBed)
}

func TestArrangeTask_SoloItemOnRectangleBedUsesRectangleOverfit(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(100), geometry.ToScaled(100))
	model := newFakeModel(
		&fakeArrangeable{id: "solo", geomID: "g", outline: square(geometry.ToScaled(10)), printable: true, selected: true, bedIndex: -1},
	)
	task := NewArrangeTask(b, host.DefaultSettings())

	result := task.Run(context.Background(), model)

	require.Len(t, result.Placements, 1)
	// With no fixed items to avoid, the rectangle-overfit kernel packs
	// against an infinite bed and then re-centers the pile inside the
	// original target — so the item must still land inside it, even though
	// nothing bounded the search that found its position.
	assert.GreaterOrEqual(t, result.Placements[0].Translation.X, int64(0))
	assert.GreaterOrEqual(t, result.Placements[0].Translation.Y, int64(0))
	assert.LessOrEqual(t, result.Placements[0].Translation.X, geometry.ToScaled(100))
	assert.LessOrEqual(t, result.Placements[0].Translation.Y, geometry.ToScaled(100))
}

func TestArrangeTask_EmptyOutlineIsDropped(t *testing.T) {
	b := bed.NewRectangle(geometry.ToScaled(50), geometry.ToScaled(50))
	model := newFakeModel(
		&fakeArrangeable{id: "ghost", geomID: "g", printable: true, selected: true, bedIndex: -1},
	)
	task := NewArrangeTask(b, host.DefaultSettings())

	result := task.Run(context.Background(), model)
	assert.Empty(t, result.Placements)
}
