// Package spatialindex implements an R-tree over placed items' bounding
// boxes, used by the TM placement kernel to query nearby neighbours
// without scanning every item already on a bed (spec.md §4.3 "Maintains
// two R*-trees over placed items").
package spatialindex

import (
	"math"
	"sort"
)

// Box is an axis-aligned bounding box in the index's coordinate space.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

func combine(a, b Box) Box {
	return Box{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

func area(b Box) float64 { return (b.MaxX - b.MinX) * (b.MaxY - b.MinY) }

func intersects(a, b Box) bool {
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

func enlargement(bbox, itemBBox Box) float64 {
	return area(combine(bbox, itemBBox)) - area(bbox)
}

func distanceToBox(x, y float64, b Box) float64 {
	dx := math.Max(math.Max(b.MinX-x, 0), x-b.MaxX)
	dy := math.Max(math.Max(b.MinY-y, 0), y-b.MaxY)
	return math.Hypot(dx, dy)
}

// Entry is one indexed payload with its bounding box.
type Entry struct {
	ID   string
	BBox Box
	X, Y float64 // representative point, used for nearest-neighbour ranking
	Data any
}

type node struct {
	bbox     Box
	entries  []Entry
	children []*node
	isLeaf   bool
}

// RTree is a quadratic-split R-tree adapted for the arrange engine's
// placed-item neighbour queries. An overflowing leaf is split in place into
// an internal node with two leaf children, so leaves can sit at different
// depths.
type RTree struct {
	root     *node
	maxItems int
}

// New creates an empty R-tree. maxItems bounds leaf node fan-out before a
// split; values below 4 fall back to a default of 9.
func New(maxItems int) *RTree {
	if maxItems < 4 {
		maxItems = 9
	}
	return &RTree{root: &node{isLeaf: true}, maxItems: maxItems}
}

// Insert adds an entry to the tree.
func (rt *RTree) Insert(id string, bbox Box, x, y float64, data any) {
	e := Entry{ID: id, BBox: bbox, X: x, Y: y, Data: data}
	leaf := rt.chooseLeaf(rt.root, e)
	leaf.entries = append(leaf.entries, e)
	if len(leaf.entries) > rt.maxItems {
		rt.split(leaf)
	}
	rt.adjustBounds(leaf)
}

func (rt *RTree) chooseLeaf(n *node, e Entry) *node {
	if n.isLeaf {
		return n
	}
	n.bbox = combine(n.bbox, e.BBox)
	best := n.children[0]
	bestEnlargement := math.Inf(1)
	for _, c := range n.children {
		enl := enlargement(c.bbox, e.BBox)
		if enl < bestEnlargement {
			bestEnlargement = enl
			best = c
		}
	}
	return rt.chooseLeaf(best, e)
}

func (rt *RTree) split(n *node) {
	if !n.isLeaf {
		return
	}
	s1, s2 := pickSeeds(n.entries)
	group1 := []Entry{n.entries[s1]}
	group2 := []Entry{n.entries[s2]}
	bbox1 := n.entries[s1].BBox
	bbox2 := n.entries[s2].BBox

	for i, e := range n.entries {
		if i == s1 || i == s2 {
			continue
		}
		if enlargement(bbox1, e.BBox) <= enlargement(bbox2, e.BBox) {
			group1 = append(group1, e)
			bbox1 = combine(bbox1, e.BBox)
		} else {
			group2 = append(group2, e)
			bbox2 = combine(bbox2, e.BBox)
		}
	}

	n.isLeaf = false
	n.entries = nil
	n.children = []*node{
		{isLeaf: true, entries: group1, bbox: bbox1},
		{isLeaf: true, entries: group2, bbox: bbox2},
	}
	n.bbox = combine(bbox1, bbox2)
}

// pickSeeds runs the quadratic-split seed-picking heuristic: the pair of
// entries whose combined bbox wastes the most area if grouped together.
func pickSeeds(entries []Entry) (int, int) {
	maxWaste := -1.0
	s1, s2 := 0, 1
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			waste := area(combine(entries[i].BBox, entries[j].BBox)) - area(entries[i].BBox) - area(entries[j].BBox)
			if waste > maxWaste {
				maxWaste = waste
				s1, s2 = i, j
			}
		}
	}
	return s1, s2
}

func (rt *RTree) adjustBounds(n *node) {
	if n.isLeaf {
		if len(n.entries) == 0 {
			return
		}
		box := n.entries[0].BBox
		for _, e := range n.entries[1:] {
			box = combine(box, e.BBox)
		}
		n.bbox = box
		return
	}
	if len(n.children) == 0 {
		return
	}
	box := n.children[0].bbox
	for _, c := range n.children[1:] {
		box = combine(box, c.bbox)
	}
	n.bbox = box
}

// Search returns every entry whose bounding box intersects query.
func (rt *RTree) Search(query Box) []Entry {
	var out []Entry
	rt.searchNode(rt.root, query, &out)
	return out
}

func (rt *RTree) searchNode(n *node, query Box, out *[]Entry) {
	if n == nil || !intersects(n.bbox, query) {
		return
	}
	if n.isLeaf {
		for _, e := range n.entries {
			if intersects(e.BBox, query) {
				*out = append(*out, e)
			}
		}
		return
	}
	for _, c := range n.children {
		rt.searchNode(c, query, out)
	}
}

// Delete removes the entry with the given id, reporting whether it was
// found.
func (rt *RTree) Delete(id string) bool {
	return rt.deleteFromNode(rt.root, id)
}

func (rt *RTree) deleteFromNode(n *node, id string) bool {
	if n.isLeaf {
		for i, e := range n.entries {
			if e.ID == id {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				rt.adjustBounds(n)
				return true
			}
		}
		return false
	}
	for _, c := range n.children {
		if rt.deleteFromNode(c, id) {
			rt.adjustBounds(n)
			return true
		}
	}
	return false
}

// Nearest returns the k entries whose representative point is closest to
// (x,y), ascending by distance.
func (rt *RTree) Nearest(x, y float64, k int) []Entry {
	if k <= 0 {
		return nil
	}
	var all []Entry
	rt.collectLeaves(rt.root, &all)
	sort.Slice(all, func(i, j int) bool {
		di := math.Hypot(all[i].X-x, all[i].Y-y)
		dj := math.Hypot(all[j].X-x, all[j].Y-y)
		return di < dj
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func (rt *RTree) collectLeaves(n *node, out *[]Entry) {
	if n == nil {
		return
	}
	if n.isLeaf {
		*out = append(*out, n.entries...)
		return
	}
	for _, c := range n.children {
		rt.collectLeaves(c, out)
	}
}

// Len returns the number of entries currently indexed.
func (rt *RTree) Len() int {
	var out []Entry
	rt.collectLeaves(rt.root, &out)
	return len(out)
}

// DistanceToNearestBox returns the distance from (x,y) to the closest
// indexed bounding box, or +Inf if the tree is empty.
func (rt *RTree) DistanceToNearestBox(x, y float64) float64 {
	best := math.Inf(1)
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.isLeaf {
			for _, e := range n.entries {
				if d := distanceToBox(x, y, e.BBox); d < best {
					best = d
				}
			}
			return
		}
		for _, c := range n.children {
			if d := distanceToBox(x, y, c.bbox); d < best {
				walk(c)
			}
		}
	}
	walk(rt.root)
	return best
}
