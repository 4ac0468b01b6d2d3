package tasks

import (
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// envelopeAreaMM2 returns it's envelope convex-hull area in mm², the unit
// fill-bed and multiply-selection capacity estimates work in.
func envelopeAreaMM2(it *item.Item) float64 {
	return it.EnvelopeConvexHull().Area() / float64(geometry.Scale*geometry.Scale)
}

func sumEnvelopeAreaMM2(items []*item.Item) float64 {
	var total float64
	for _, it := range items {
		total += envelopeAreaMM2(it)
	}
	return total
}
