// Package optimize implements the bounded 1-D candidate optimizer described
// in spec.md §4.2: a sparse global sampler over a feasible-region contour,
// refined per-sample by a derivative-free local method. Contours are
// searched concurrently with golang.org/x/sync/errgroup; the samples of one
// contour are refined one after another.
package optimize

import (
	"context"
	"math"

	gonumopt "gonum.org/v1/gonum/optimize"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/arrange/internal/edgecache"
	"github.com/piwi3910/arrange/internal/geometry"
)

// Options configures the local optimizer and global sampler. AbsTol and
// RelTol are carried but refine does not pass them to the gonum solver.
type Options struct {
	Accuracy        float64
	IterationBudget int
	AbsTol          float64
	RelTol          float64
	StopScore       float64
	HasStopScore    bool
}

// DefaultOptions returns the spec's default tuning for the given accuracy:
// iteration budget floor(1000*accuracy), relative tolerance 1e-20
// (spec.md §4.2).
func DefaultOptions(accuracy float64) Options {
	return Options{
		Accuracy:        accuracy,
		IterationBudget: int(math.Floor(1000 * accuracy)),
		RelTol:          1e-20,
	}
}

// ScoreFunc scores a candidate placement; higher is better. NaN discards
// the candidate (spec.md §4.3 placement_fitness).
type ScoreFunc func(t float64) float64

// Candidate is a scored point on a feasible-region contour.
type Candidate struct {
	ContourIndex int
	T            float64
	Point        geometry.Point
	Score        float64
}

// SearchContour runs the bounded 1-D local optimizer around every sparse
// sample of cache and returns the best candidate found, or ok=false if
// every candidate scored NaN (spec.md §4.2).
func SearchContour(cache *edgecache.Cache, score ScoreFunc, opts Options) (Candidate, bool) {
	best := Candidate{Score: math.Inf(-1)}
	found := false
	for _, t0 := range cache.Samples(opts.Accuracy) {
		t, s := refine(t0, score, opts)
		if math.IsNaN(s) {
			continue
		}
		if !found || s > best.Score {
			best = Candidate{T: t, Point: cache.PointAt(t), Score: s}
			found = true
		}
		if opts.HasStopScore && s >= opts.StopScore {
			break
		}
	}
	return best, found
}

// refine runs a bounded derivative-free local search within [0,1] starting
// from t0, using gonum's Nelder-Mead simplex method as the default
// subplex-style optimizer spec.md §4.2 calls for. Candidates outside
// [0,1] are penalized to +infinity (after negation, since gonum minimizes)
// so the search stays within the contour's valid domain.
func refine(t0 float64, score ScoreFunc, opts Options) (float64, float64) {
	if opts.IterationBudget <= 0 {
		return t0, score(t0)
	}

	problem := gonumopt.Problem{
		Func: func(x []float64) float64 {
			t := x[0]
			if t < 0 || t > 1 {
				return math.Inf(1)
			}
			s := score(t)
			if math.IsNaN(s) {
				return math.Inf(1)
			}
			return -s
		},
	}
	settings := &gonumopt.Settings{
		MajorIterations: opts.IterationBudget,
		FuncEvaluations: opts.IterationBudget,
	}
	result, err := gonumopt.Minimize(problem, []float64{t0}, settings, &gonumopt.NelderMead{})
	if err != nil || result == nil || len(result.X) == 0 {
		return t0, score(t0)
	}
	t := clamp01(result.X[0])
	return t, score(t)
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

// SearchVertices scores only the vertices of contour, with no
// interpolation and no optimizer pass — the simpler fallback spec.md §4.2
// names for items whose shape is already simple enough.
func SearchVertices(contour geometry.Polygon, scoreAt func(geometry.Point) float64) (Candidate, bool) {
	best := Candidate{Score: math.Inf(-1)}
	found := false
	n := len(contour)
	for i, v := range contour {
		s := scoreAt(v)
		if math.IsNaN(s) {
			continue
		}
		if !found || s > best.Score {
			best = Candidate{T: float64(i) / float64(n), Point: v, Score: s}
			found = true
		}
	}
	return best, found
}

// SearchRegion runs SearchContour over every contour of region concurrently,
// one goroutine per contour (a contour's samples are not split across
// goroutines), stopping early if ctx is cancelled, and returns the best candidate
// across all contours.
func SearchRegion(ctx context.Context, region geometry.PolygonSet, scoreAt func(geometry.Point) float64, opts Options) (Candidate, bool) {
	type result struct {
		c  Candidate
		ok bool
	}
	results := make([]result, len(region))

	g, gctx := errgroup.WithContext(ctx)
	for i, contour := range region {
		i, contour := i, contour
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			cache := edgecache.Build(contour.Outer)
			score := func(t float64) float64 {
				if gctx.Err() != nil {
					return math.NaN()
				}
				return scoreAt(cache.PointAt(t))
			}
			cand, ok := SearchContour(cache, score, opts)
			cand.ContourIndex = i
			results[i] = result{cand, ok}
			return nil
		})
	}
	_ = g.Wait() // cancellation is advisory: partial results are still usable

	best := Candidate{Score: math.Inf(-1)}
	found := false
	for _, r := range results {
		if !r.ok {
			continue
		}
		if !found || r.c.Score > best.Score {
			best = r.c
			found = true
		}
	}
	return best, found
}
