package kernel

import (
	"math"
	"strconv"

	"github.com/piwi3910/arrange/internal/bed"
	"github.com/piwi3910/arrange/internal/geometry"
	"github.com/piwi3910/arrange/internal/item"
	"github.com/piwi3910/arrange/internal/spatialindex"
)

// bigItemAreaFraction is the envelope-area threshold (as a fraction of bed
// area) above which an item is classified "big" for TM scoring purposes
// (spec.md §4.3 "envelope area > 2% of bed area").
const bigItemAreaFraction = 0.02

// TMKernel ("topographic-mix") is used when items vary in size. It
// maintains two R*-trees over placed items — one for "big" items, one for
// all items — and picks among three scoring cases depending on the
// candidate item's size and the state of the pile (spec.md §4.3
// "TM kernel").
type TMKernel struct {
	Bed bed.Bed

	Big *spatialindex.RTree
	All *spatialindex.RTree

	// TotalCount is the number of items this pass is expected to place;
	// Packed tracks how many have been committed so far on the current
	// bed. Their ratio drives the compaction/alignment weighting factor R.
	TotalCount int
	Packed     int

	nextID int

	seeded     bool
	currentBed int
}

// NewTMKernel returns a kernel scoped to b, expecting to place totalCount
// items this pass.
func NewTMKernel(b bed.Bed, totalCount int) *TMKernel {
	return &TMKernel{
		Bed:        b,
		Big:        spatialindex.New(9),
		All:        spatialindex.New(9),
		TotalCount: totalCount,
	}
}

// ensureBed rebuilds the R*-trees from scratch whenever ctx names a bed
// index different from the one they were last built for, seeding them with
// every item ctx already holds (fixed and packed) and setting Packed to
// ctx's packed count: the trees never carry placements from a different
// logical bed into this one's scoring, and the bed's existing items are
// visible to TM scoring from the first candidate onward. While the bed
// index stays the same the trees are kept and extended by OnItemPacked.
func (k *TMKernel) ensureBed(ctx *item.PackingContext) {
	if k.seeded && k.currentBed == ctx.BedIndex {
		return
	}
	k.seeded = true
	k.currentBed = ctx.BedIndex
	k.Big = spatialindex.New(9)
	k.All = spatialindex.New(9)
	k.nextID = 0
	for _, placed := range ctx.Obstacles() {
		k.insert(placed)
	}
	k.Packed = len(ctx.Packed)
}

func (k *TMKernel) sink(it *item.Item) geometry.Point {
	if p, ok := it.Sink(); ok {
		return p
	}
	return k.Bed.BoundingBox().Center()
}

func (k *TMKernel) isBig(it *item.Item) bool {
	areaMM2 := it.TransformedEnvelope().Area() / float64(geometry.Scale*geometry.Scale)
	return areaMM2 > bigItemAreaFraction*k.Bed.Area()
}

// remainingWeight returns R = (remaining/total)^(1/3), shifting weight
// from compaction toward neighbour alignment as the bed fills
// (spec.md §4.3).
func (k *TMKernel) remainingWeight() float64 {
	if k.TotalCount <= 0 {
		return 0
	}
	remaining := float64(k.TotalCount - k.Packed)
	if remaining < 0 {
		remaining = 0
	}
	return math.Cbrt(remaining / float64(k.TotalCount))
}

// bedNorm is the divisor every distance score is normalized by: the square
// root of the bed's area, matching KernelUtils.hpp's norm(val) = val/m_norm
// with m_norm = sqrt(bin_area).
func (k *TMKernel) bedNorm() float64 {
	box := k.Bed.BoundingBox()
	w := geometry.ToMM(box.Width())
	h := geometry.ToMM(box.Height())
	return math.Sqrt(w * h)
}

func (k *TMKernel) pileCentre() geometry.Point {
	if k.All.Len() == 0 {
		return k.Bed.BoundingBox().Center()
	}
	nearest := k.All.Search(spatialindex.Box{MinX: -math.MaxFloat64, MinY: -math.MaxFloat64, MaxX: math.MaxFloat64, MaxY: math.MaxFloat64})
	var sx, sy float64
	for _, e := range nearest {
		sx += e.X
		sy += e.Y
	}
	n := float64(len(nearest))
	return geometry.FloatPoint(sx/n, sy/n)
}

func (k *TMKernel) bigItemsBBoxCentre() geometry.Point {
	if k.Big.Len() == 0 {
		return k.Bed.BoundingBox().Center()
	}
	entries := k.Big.Search(spatialindex.Box{MinX: -math.MaxFloat64, MinY: -math.MaxFloat64, MaxX: math.MaxFloat64, MaxY: math.MaxFloat64})
	box := geometry.EmptyBox()
	for _, e := range entries {
		box = box.Union(e.Data.(neighborEntry).box)
	}
	return box.Center()
}

// PlacementFitness implements the three scoring cases from spec.md §4.3.
func (k *TMKernel) PlacementFitness(it *item.Item, translation geometry.Point) float64 {
	if it.IsWipeTower() {
		centroid := envelopeCentroidAt(it, translation)
		return -squaredDistanceMM(centroid, k.sink(it))
	}

	if k.isBig(it) || k.All.Len() == 0 {
		norm := k.bedNorm()
		if norm == 0 {
			return 0
		}
		dist := math.Sqrt(squaredDistanceMM(envelopeCentroidAt(it, translation), k.pileCentre())) / norm
		align := k.alignmentBonus(it, translation)
		r := k.remainingWeight()
		// Weights kept verbatim from KernelUtils.hpp's TMArrangeKernel: let
		// density matter more when fewer objects remain.
		score := 0.6*dist + 0.1*align + (1-r)*(0.3*dist) + r*0.3*align
		return -score
	}

	return k.smallItemScore(it, translation)
}

func (k *TMKernel) smallItemScore(it *item.Item, translation geometry.Point) float64 {
	norm := k.bedNorm()
	if norm == 0 {
		return 0
	}
	d := math.Sqrt(squaredDistanceMM(envelopeCentroidAt(it, translation), k.bigItemsBBoxCentre())) / norm
	return -d
}

// neighborEntry is what insert stores in each R*-tree entry: the envelope
// bounding box and footprint area of the item it represents, so
// alignmentBonus can restrict its search to same-footprint neighbours.
type neighborEntry struct {
	box     geometry.Box
	areaMM2 float64
}

// alignmentBonus scores how tightly the candidate's bounding box would
// merge with its best-aligned already-placed neighbour of the same
// footprint size: one minus the ratio of the sum of the two individual bbox
// areas to the merged bbox area, minimized over every intersecting,
// same-size neighbour (lower is tighter; PlacementFitness adds it to a cost
// it then negates). It is 1 when no neighbour qualifies. Matches the original's restriction to
// same-footprint items — it is an alignment score, not a proximity one, so
// a much smaller or larger neighbour merging "tightly" by sheer size
// difference shouldn't count.
func (k *TMKernel) alignmentBonus(it *item.Item, translation geometry.Point) float64 {
	best := 1.0
	if k.All.Len() == 0 {
		return best
	}

	itemBox := envelopeBoxAt(it, translation)
	itemArea := it.Area() / float64(geometry.Scale*geometry.Scale)

	index := k.All
	if k.isBig(it) {
		index = k.Big
	}

	sx, sy := geometry.ToMM(itemBox.Min.X), geometry.ToMM(itemBox.Min.Y)
	ex, ey := geometry.ToMM(itemBox.Max.X), geometry.ToMM(itemBox.Max.Y)
	candidates := index.Search(spatialindex.Box{MinX: sx, MinY: sy, MaxX: ex, MaxY: ey})

	itemBoxAreaMM2 := float64(itemBox.Area()) / float64(geometry.Scale*geometry.Scale)
	for _, e := range candidates {
		n := e.Data.(neighborEntry)
		if itemArea == 0 || math.Abs(1-n.areaMM2/itemArea) >= 1e-6 {
			continue
		}
		merged := itemBox.Union(n.box)
		mergedAreaMM2 := float64(merged.Area()) / float64(geometry.Scale*geometry.Scale)
		if mergedAreaMM2 == 0 {
			continue
		}
		neighbourBoxAreaMM2 := float64(n.box.Area()) / float64(geometry.Scale*geometry.Scale)
		ascore := 1 - (itemBoxAreaMM2+neighbourBoxAreaMM2)/mergedAreaMM2
		if ascore < best {
			best = ascore
		}
	}
	return best
}

// OnStartPacking never pre-places: TM scoring relies on the candidate
// being evaluated through the normal NFP/optimizer path even for the
// wipe-tower and empty-pile cases. It does rebuild the R*-trees, via
// ensureBed, whenever ctx names a bed this kernel hasn't seen yet.
func (k *TMKernel) OnStartPacking(it *item.Item, b bed.Bed, ctx *item.PackingContext, remaining []*item.Item) (geometry.Point, bool) {
	k.ensureBed(ctx)
	return geometry.Point{}, false
}

// insert registers it's envelope bounding box and footprint area in both
// R*-trees (the big-item tree only if it qualifies).
func (k *TMKernel) insert(it *item.Item) {
	box := it.EnvelopeBoundingBox()
	centre := box.Center()
	x, y := geometry.ToMM(centre.X), geometry.ToMM(centre.Y)
	sx, sy := geometry.ToMM(box.Min.X), geometry.ToMM(box.Min.Y)
	ex, ey := geometry.ToMM(box.Max.X), geometry.ToMM(box.Max.Y)
	bbox := spatialindex.Box{MinX: sx, MinY: sy, MaxX: ex, MaxY: ey}
	entry := neighborEntry{box: box, areaMM2: it.Area() / float64(geometry.Scale*geometry.Scale)}

	k.nextID++
	id := it.ID
	if id == "" {
		id = strconv.Itoa(k.nextID)
	}
	k.All.Insert(id, bbox, x, y, entry)
	if k.isBig(it) {
		k.Big.Insert(id, bbox, x, y, entry)
	}
}

// OnItemPacked registers the committed item in both R*-trees and advances
// the packed count used by remainingWeight.
func (k *TMKernel) OnItemPacked(it *item.Item) bool {
	k.insert(it)
	k.Packed++
	return true
}
