// Package pack implements the per-item, per-bed placement attempt:
// feasible-region construction, rotation search, optimizer call, and
// kernel commit/veto (spec.md §4.4).
package pack

import (
	"context"
	"math"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/decompose"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/kernel"
	"github.com/piwi3910/arrange/internal/nfp"
	"github.com/piwi3910/arrange/internal/optimize"
)

// Strategy bundles the kernel and optimizer tuning used to pack items onto
// one bed.
type Strategy struct {
	Kernel  kernel.Kernel
	Options optimize.Options
}

// Pack attempts to place it onto b, searching across it.AllowedRotations
// and, for each, the feasible region (NFP against pc's obstacles,
// intersected with the bed's IFP). It returns true if it was placed
// (spec.md §4.4).
func (s Strategy) Pack(ctx context.Context, b bed.Bed, it *item.Item, pc *item.PackingContext, remaining []*item.Item) bool {
	if ctx.Err() != nil {
		return false
	}

	if translation, ok := s.Kernel.OnStartPacking(it, b, pc, remaining); ok {
		it.SetTransform(translation, it.Rotation())
		return s.commit(it, pc)
	}

	rotations := it.AllowedRotations
	if len(rotations) == 0 {
		rotations = []float64{0}
	}

	type candidate struct {
		rotation    float64
		translation geometry.Point
		score       float64
	}
	var best *candidate

	obstacles := pc.Obstacles()
	for _, rotation := range rotations {
		if ctx.Err() != nil {
			break
		}
		it.SetTransform(geometry.Point{}, rotation)
		region := feasibleRegion(b, it, obstacles)
		if region.IsEmpty() {
			continue
		}

		found, ok := optimize.SearchRegion(ctx, region, func(p geometry.Point) float64 {
			return s.Kernel.PlacementFitness(it, p)
		}, s.Options)
		if !ok || math.IsNaN(found.Score) {
			continue
		}
		if best == nil || found.Score > best.score {
			best = &candidate{rotation: rotation, translation: found.Point, score: found.Score}
		}
	}

	if best == nil {
		it.SetTransform(geometry.Point{}, 0)
		return false
	}

	it.SetTransform(best.translation, best.rotation)
	return s.commit(it, pc)
}

func (s Strategy) commit(it *item.Item, pc *item.PackingContext) bool {
	if !s.Kernel.OnItemPacked(it) {
		return false
	}
	pc.Commit(it)
	return true
}

// feasibleRegion computes IFP(b, it) minus the union of NFP(obstacle, it)
// for every obstacle, with it's rotation already set and its translation
// held at the origin (spec.md §4.1 "Feasible region").
func feasibleRegion(b bed.Bed, it *item.Item, obstacles []*item.Item) geometry.PolygonSet {
	ifp := bedIFP(b, it)
	if ifp.IsEmpty() {
		return nil
	}
	nfps := obstacleNFPs(it, obstacles)
	if len(nfps) == 0 {
		return ifp
	}
	return nfp.FeasibleRegion(ifp, nfps)
}

// obstacleNFPs computes the NFP of every obstacle against it's envelope:
// collision-freeness is defined on envelopes, not bare shapes (spec.md §8
// invariant 1), so the envelope's own convex decomposition drives the NFP,
// and (below) its bounding box or convex hull drives the IFP.
func obstacleNFPs(it *item.Item, obstacles []*item.Item) geometry.PolygonSet {
	var out geometry.PolygonSet
	ref := it.EnvelopeReferenceVertex()
	mPieces := it.TransformedEnvelopePieces()
	for _, ob := range obstacles {
		fPieces := ob.TransformedEnvelopePieces()
		out = append(out, nfp.ConcaveNFP(fPieces, mPieces, ref)...)
	}
	return out
}

// bedIFP computes the inner-fit polygon for it's envelope (rotation
// already set, translation at the origin) against b, dispatching per bed
// kind. The result is expressed as a set of valid translations — the same
// frame Item.SetTransform takes and feasibleRegion's NFP holes are already
// in — not as positions of any particular vertex (spec.md §4.1 "IFP").
func bedIFP(b bed.Bed, it *item.Item) geometry.PolygonSet {
	switch b.Kind {
	case bed.Rectangle, bed.SegmentedRectangle:
		return rectangleIFP(b, it)
	case bed.Infinite:
		box := b.BoundingBox()
		return geometry.PolygonSet{{Outer: boxPolygon(box)}}
	case bed.Circle:
		ring := b.ToPolygons()[0].Outer
		hull := it.EnvelopeConvexHull()
		ifp := nfp.ConvexIFP(ring, hull)
		if len(ifp) < 3 {
			return nil
		}
		return geometry.PolygonSet{{Outer: ifp}}
	case bed.Irregular:
		var out geometry.PolygonSet
		hull := it.EnvelopeConvexHull()
		for _, region := range b.Polygons {
			for _, piece := range decompose.Decompose(region) {
				ifp := nfp.ConvexIFP(piece, hull)
				if len(ifp) >= 3 {
					out = append(out, geometry.ExPoly{Outer: ifp})
				}
			}
		}
		return out
	default:
		return nil
	}
}

// rectangleIFP computes the exact inner-fit polygon against an
// axis-aligned rectangular bed: the range of translations that keep it's
// current envelope bounding box inside the bed, empty if it does not fit
// (spec.md §4.1 "Rectangle bed").
func rectangleIFP(b bed.Bed, it *item.Item) geometry.PolygonSet {
	box := it.EnvelopeBoundingBox()
	bedBox := b.BoundingBox()
	if box.Width() > bedBox.Width() || box.Height() > bedBox.Height() {
		return nil
	}
	minT := bedBox.Min.Sub(box.Min)
	maxT := bedBox.Max.Sub(box.Max)
	if minT.X > maxT.X || minT.Y > maxT.Y {
		return nil
	}
	return geometry.PolygonSet{{Outer: boxPolygon(geometry.Box{Min: minT, Max: maxT})}}
}

func boxPolygon(box geometry.Box) geometry.Polygon {
	return geometry.Polygon{
		box.Min,
		{X: box.Max.X, Y: box.Min.Y},
		box.Max,
		{X: box.Min.X, Y: box.Max.Y},
	}
}

// PreEnrichRotations computes, for each item with rotation enabled, a
// recommended rotation set: the min-area bounding-box rotation, that
// rotation plus {pi/4, pi/2, 3pi/4, pi}, the zero rotation (if different),
// and — for rectangle beds — a rotation that would make an
// otherwise-oversized item fit. Wipe towers are excluded
// (spec.md §4.4 "Rotation pre-enrichment").
func PreEnrichRotations(b bed.Bed, items []*item.Item) {
	for _, it := range items {
		if it.IsWipeTower() {
			continue
		}
		base := it.MinAreaBoundingBoxRotation()
		set := []float64{base, base + math.Pi/4, base + math.Pi/2, base + 3*math.Pi/4, base + math.Pi}
		if base != 0 {
			set = append(set, 0)
		}
		if b.Kind == bed.Rectangle || b.Kind == bed.SegmentedRectangle {
			if r, ok := fitRotation(b, it); ok {
				set = append(set, r)
			}
		}
		it.AllowedRotations = normalizeRotations(set)
	}
}

func fitRotation(b bed.Bed, it *item.Item) (float64, bool) {
	saved := it.Translation()
	savedRot := it.Rotation()
	defer it.SetTransform(saved, savedRot)

	it.SetTransform(geometry.Point{}, 0)
	box := it.EnvelopeBoundingBox()
	bedBox := b.BoundingBox()
	if box.Width() <= bedBox.Width() && box.Height() <= bedBox.Height() {
		return 0, false
	}
	if box.Height() <= bedBox.Width() && box.Width() <= bedBox.Height() {
		return math.Pi / 2, true
	}
	return 0, false
}

func normalizeRotations(rotations []float64) []float64 {
	const twoPi = 2 * math.Pi
	seen := make(map[int64]bool, len(rotations))
	out := make([]float64, 0, len(rotations))
	for _, r := range rotations {
		norm := math.Mod(r, twoPi)
		if norm < 0 {
			norm += twoPi
		}
		key := int64(math.Round(norm * 1e6))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, norm)
	}
	return out
}

// Unpackable reports whether it cannot fit onto an otherwise-empty b at
// any of its allowed rotations (spec.md §4.4 "Unpackable filtering").
func Unpackable(b bed.Bed, it *item.Item) bool {
	saved := it.Translation()
	savedRot := it.Rotation()
	defer it.SetTransform(saved, savedRot)

	rotations := it.AllowedRotations
	if len(rotations) == 0 {
		rotations = []float64{0}
	}
	for _, r := range rotations {
		it.SetTransform(geometry.Point{}, r)
		if !bedIFP(b, it).IsEmpty() {
			return false
		}
	}
	return true
}
