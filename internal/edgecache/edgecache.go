// Package edgecache precomputes a cumulative arc-length parametrization of
// a feasible-region contour, so a scalar t in [0,1] maps to a point on the
// boundary by binary search plus linear interpolation, and so a sparse set
// of starting samples can be picked without walking every vertex
// (spec.md §4.2).
package edgecache

import (
	"math"
	"sort"

	"github.com/piwi3910/arrange/internal/geometry"
)

// Cache holds the cumulative edge lengths of a single closed contour.
type Cache struct {
	contour    geometry.Polygon
	cumulative []float64 // cumulative[i] = length of contour up to and including vertex i+1
	total      float64
}

// Build precomputes the cumulative length cache for contour, which is
// treated as implicitly closed (the edge from the last vertex back to the
// first is included).
func Build(contour geometry.Polygon) *Cache {
	n := len(contour)
	c := &Cache{contour: contour, cumulative: make([]float64, n)}
	var running float64
	for i := 0; i < n; i++ {
		a := contour[i]
		b := contour[(i+1)%n]
		running += a.Sub(b).Length()
		c.cumulative[i] = running
	}
	c.total = running
	return c
}

// Len returns the number of vertices in the cached contour.
func (c *Cache) Len() int { return len(c.contour) }

// TotalLength returns the contour's total perimeter length.
func (c *Cache) TotalLength() float64 { return c.total }

// PointAt maps t in [0,1] to a point on the contour boundary by locating
// the edge whose cumulative-length range contains t*total, then linearly
// interpolating within it.
func (c *Cache) PointAt(t float64) geometry.Point {
	n := len(c.contour)
	if n == 0 {
		return geometry.Point{}
	}
	if n == 1 || c.total == 0 {
		return c.contour[0]
	}
	t = clamp01(t)
	target := t * c.total

	// cumulative is sorted ascending, so binary search finds the first
	// edge whose cumulative length is >= target.
	i := sort.Search(n, func(i int) bool { return c.cumulative[i] >= target })
	if i >= n {
		i = n - 1
	}
	edgeStart := 0.0
	if i > 0 {
		edgeStart = c.cumulative[i-1]
	}
	edgeLen := c.cumulative[i] - edgeStart
	a := c.contour[i]
	b := c.contour[(i+1)%n]
	if edgeLen == 0 {
		return a
	}
	frac := (target - edgeStart) / edgeLen
	dx := float64(b.X-a.X) * frac
	dy := float64(b.Y-a.Y) * frac
	return geometry.Point{
		X: a.X + int64(math.Round(dx)),
		Y: a.Y + int64(math.Round(dy)),
	}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// SampleStride returns the stride (in vertex count) a sparse sampling pass
// should use for the given accuracy in [0,1]: stride = round(N /
// N^(a^(1/3))), per spec.md §4.2. Larger accuracy means a denser
// (smaller-stride) sample set.
func SampleStride(vertexCount int, accuracy float64) int {
	n := float64(vertexCount)
	if n <= 1 {
		return 1
	}
	a := clamp01(accuracy)
	exponent := math.Cbrt(a)
	denom := math.Pow(n, exponent)
	if denom <= 0 {
		return 1
	}
	stride := int(math.Round(n / denom))
	if stride < 1 {
		stride = 1
	}
	if stride > vertexCount {
		stride = vertexCount
	}
	return stride
}

// Samples returns a sparse set of t values in [0,1], one per
// SampleStride(len(contour), accuracy) vertices, suitable as starting
// points for the candidate optimizer (spec.md §4.2).
func (c *Cache) Samples(accuracy float64) []float64 {
	n := len(c.contour)
	if n == 0 {
		return nil
	}
	stride := SampleStride(n, accuracy)
	count := (n + stride - 1) / stride
	out := make([]float64, 0, count)
	for i := 0; i < n; i += stride {
		out = append(out, float64(i)/float64(n))
	}
	return out
}
