//go:build arrangedebug

package kernel

import (
	"fmt"
	"os"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
)

// SVGDebugKernel wraps another kernel and emits one SVG file per placement
// attempt, showing the bed outline and the candidate's envelope bounding
// box; fixed and already-packed items are not drawn.
// Present only in debug builds (spec.md §4.3 "SVG debug wrapper",
// built with -tags arrangedebug).
type SVGDebugKernel struct {
	Inner   Kernel
	Bed     bed.Bed
	Dir     string
	attempt int
}

// NewSVGDebugKernel wraps inner, writing one SVG per PlacementFitness call
// into dir.
func NewSVGDebugKernel(inner Kernel, b bed.Bed, dir string) *SVGDebugKernel {
	return &SVGDebugKernel{Inner: inner, Bed: b, Dir: dir}
}

func (k *SVGDebugKernel) PlacementFitness(it *item.Item, translation geometry.Point) float64 {
	score := k.Inner.PlacementFitness(it, translation)
	k.attempt++
	k.writeSVG(it, translation, score)
	return score
}

func (k *SVGDebugKernel) OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (geometry.Point, bool) {
	return k.Inner.OnStartPacking(it, b, ctx, remaining)
}

func (k *SVGDebugKernel) OnItemPacked(it *item.Item) bool {
	return k.Inner.OnItemPacked(it)
}

func (k *SVGDebugKernel) writeSVG(it *item.Item, translation geometry.Point, score float64) {
	box := k.Bed.BoundingBox()
	w, h := geometry.ToMM(box.Width()), geometry.ToMM(box.Height())

	path := fmt.Sprintf("%s/attempt_%05d.svg", k.Dir, k.attempt)
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %f %f\">\n", w, h)
	fmt.Fprintf(f, "  <rect x=\"0\" y=\"0\" width=\"%f\" height=\"%f\" fill=\"none\" stroke=\"black\"/>\n", w, h)
	fmt.Fprintf(f, "  <!-- item %s score=%f translation=(%f,%f) -->\n",
		it.ID, score, geometry.ToMM(translation.X), geometry.ToMM(translation.Y))
	writePolygon(f, envelopeBoxAt(it, translation), "rgba(200,0,0,0.4)")
	fmt.Fprintln(f, "</svg>")
}

func writePolygon(f *os.File, box geometry.Box, fill string) {
	minX, minY := geometry.ToMM(box.Min.X), geometry.ToMM(box.Min.Y)
	w, h := geometry.ToMM(box.Width()), geometry.ToMM(box.Height())
	fmt.Fprintf(f, "  <rect x=\"%f\" y=\"%f\" width=\"%f\" height=\"%f\" fill=\"%s\"/>\n", minX, minY, w, h, fill)
}
