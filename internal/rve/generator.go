package rve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/anurag-upadhay/oofem/internal/monitoring"
)

// ctxPollMask controls how often the sampling loop checks for cancellation.
const ctxPollMask = 1<<10 - 1

var errGeneratorUsed = errors.New("generator already ran")

// Params are the inputs of one generation run.
type Params struct {
	MinDensity float64 `json:"min_density"` // target volume fraction
	BoxSize    float64 `json:"box_size"`    // edge length of the periodic domain
	MinRadius  float64 `json:"min_radius"`
	MaxRadius  float64 `json:"max_radius"`
	ForcedDist float64 `json:"forced_dist"` // minimum surface-to-surface clearance
	NDim       int     `json:"ndim"`
	Seed       int64   `json:"seed"`

	// Sampling budgets. Zero means unbounded.
	MaxMisses   int `json:"max_misses,omitempty"`   // consecutive rejections
	MaxAttempts int `json:"max_attempts,omitempty"` // total draws

	Index IndexKind `json:"index,omitempty"`

	// StrictImages also rejects candidates whose periodic images would
	// violate the clearance. Off by default; it changes which candidates are
	// accepted for a given seed.
	StrictImages bool `json:"strict_images,omitempty"`
}

// Validate checks the parameters before any sampling happens.
func (p Params) Validate() error {
	if _, err := DimensionOf(p.NDim); err != nil {
		return err
	}
	switch {
	case !positive(p.MinDensity):
		return fmt.Errorf("%w: min_density must be positive, got %g", ErrInvalidParameters, p.MinDensity)
	case !positive(p.BoxSize):
		return fmt.Errorf("%w: box_size must be positive, got %g", ErrInvalidParameters, p.BoxSize)
	case !positive(p.MinRadius):
		return fmt.Errorf("%w: min_radius must be positive, got %g", ErrInvalidParameters, p.MinRadius)
	case !positive(p.MaxRadius) || p.MaxRadius < p.MinRadius:
		return fmt.Errorf("%w: max_radius must be >= min_radius, got [%g, %g]", ErrInvalidParameters, p.MinRadius, p.MaxRadius)
	case p.ForcedDist < 0 || math.IsNaN(p.ForcedDist) || math.IsInf(p.ForcedDist, 0):
		return fmt.Errorf("%w: forced_dist must be non-negative, got %g", ErrInvalidParameters, p.ForcedDist)
	case p.MaxMisses < 0:
		return fmt.Errorf("%w: max_misses must be non-negative, got %d", ErrInvalidParameters, p.MaxMisses)
	case p.MaxAttempts < 0:
		return fmt.Errorf("%w: max_attempts must be non-negative, got %d", ErrInvalidParameters, p.MaxAttempts)
	}
	switch p.Index {
	case "", IndexGrid, IndexKDTree:
	default:
		return fmt.Errorf("%w: unknown index kind %q", ErrInvalidParameters, p.Index)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Plan holds the expected values computed before sampling. They are logged
// and reported but never used for control flow.
type Plan struct {
	BoxVolume     float64 `json:"box_volume"`
	TargetVolume  float64 `json:"target_volume"`
	AverageRadius float64 `json:"average_radius"`
	AverageVolume float64 `json:"average_volume"`
	ExpectedCount float64 `json:"expected_count"`
}

func newPlan(p Params, dim Dimension) Plan {
	boxVolume := dim.BoxVolume(p.BoxSize)
	avgRadius := (p.MinRadius + p.MaxRadius) / 2.
	avgVolume := dim.BallVolume(avgRadius)
	return Plan{
		BoxVolume:     boxVolume,
		TargetVolume:  p.MinDensity * boxVolume,
		AverageRadius: avgRadius,
		AverageVolume: avgVolume,
		ExpectedCount: math.Ceil(p.MinDensity * boxVolume / avgVolume),
	}
}

// Result is the outcome of a generation run.
type Result struct {
	RunID  uuid.UUID `json:"run_id"`
	Params Params    `json:"params"`
	Plan   Plan      `json:"plan"`

	Packing Packing `json:"inclusions"`
	// Placement[i] is the ordinal of the acceptance that produced
	// Packing[i]. An original and its periodic images share an ordinal; the
	// original always comes first.
	Placement []int `json:"placement"`

	Volume   float64 `json:"volume"`  // original inclusions only
	Density  float64 `json:"density"` // Volume / box volume
	Attempts int     `json:"attempts"`
}

// IsOriginal reports whether Packing[i] is an original placement rather
// than a periodic image.
func (r *Result) IsOriginal(i int) bool {
	return i == 0 || r.Placement[i] != r.Placement[i-1]
}

// OriginalCount returns the number of accepted candidates.
func (r *Result) OriginalCount() int {
	if len(r.Placement) == 0 {
		return 0
	}
	return r.Placement[len(r.Placement)-1] + 1
}

// ImageCount returns the number of periodic images in the packing.
func (r *Result) ImageCount() int {
	return len(r.Packing) - r.OriginalCount()
}

// Originals returns the original inclusions, images excluded.
func (r *Result) Originals() Packing {
	out := make(Packing, 0, r.OriginalCount())
	for i, inc := range r.Packing {
		if r.IsOriginal(i) {
			out = append(out, inc)
		}
	}
	return out
}

// Option customises a Generator.
type Option func(*Generator)

// WithObserver adds a progress observer.
func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observers = append(g.observers, o) }
}

// WithIndex replaces the spatial index selected by Params.Index. The index
// must be empty.
func WithIndex(idx SpatialIndex) Option {
	return func(g *Generator) { g.index = idx }
}

// WithRunID sets the run identifier instead of a random one.
func WithRunID(id uuid.UUID) Option {
	return func(g *Generator) { g.runID = id }
}

// Generator runs periodic rejection sampling. A Generator serves a single
// run: it owns its random source and spatial index for that run.
type Generator struct {
	params Params
	dim    Dimension
	plan   Plan

	radius distuv.Uniform
	coord  distuv.Uniform

	index     SpatialIndex
	observers []Observer
	runID     uuid.UUID
	used      bool
}

// NewSource returns the deterministic random source used for a seed.
func NewSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(seed))
}

// NewGenerator validates p and prepares a run drawing from src.
func NewGenerator(p Params, src rand.Source, opts ...Option) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParameters)
	}
	dim, _ := DimensionOf(p.NDim)

	g := &Generator{
		params: p,
		dim:    dim,
		plan:   newPlan(p, dim),
		radius: distuv.Uniform{Min: p.MinRadius, Max: p.MaxRadius, Src: src},
		coord:  distuv.Uniform{Min: 0, Max: p.BoxSize, Src: src},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.runID == uuid.Nil {
		g.runID = uuid.New()
	}
	if g.index == nil {
		// Widest query half-width is 2*MaxRadius + ForcedDist.
		idx, err := NewIndex(p.Index, dim, 2*p.MaxRadius+p.ForcedDist)
		if err != nil {
			return nil, err
		}
		g.index = idx
	}
	return g, nil
}

// Generate seeds a source from p.Seed and runs a generator to completion.
func Generate(ctx context.Context, p Params, opts ...Option) (*Result, error) {
	g, err := NewGenerator(p, NewSource(p.Seed), opts...)
	if err != nil {
		return nil, err
	}
	return g.Run(ctx)
}

// Plan returns the expected values for this run.
func (g *Generator) Plan() Plan { return g.plan }

// Run samples until the original volume reaches MinDensity of the box. It
// only returns early on context cancellation or an exhausted budget, in
// which case the error is an *InfeasibleError carrying the partial result.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if g.used {
		return nil, errGeneratorUsed
	}
	g.used = true

	p := g.params
	monitoring.Logf("rve run %s: %s box, Volume = %g Average radius = %g, Average inclusion volume = %g, expected number of spheres is %g",
		g.runID, g.dim, g.plan.BoxVolume, g.plan.AverageRadius, g.plan.AverageVolume, g.plan.ExpectedCount)

	res := &Result{RunID: g.runID, Params: p, Plan: g.plan}
	n := g.dim.Axes()
	center := make(Point, n)
	lo, hi := make(Point, n), make(Point, n)
	misses := 0

	for res.Volume < g.plan.TargetVolume {
		if res.Attempts&ctxPollMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("rve run %s: %w", g.runID, err)
			}
		}
		if p.MaxAttempts > 0 && res.Attempts >= p.MaxAttempts {
			return nil, &InfeasibleError{Reason: "attempt budget exhausted", Misses: misses, Partial: res}
		}
		res.Attempts++

		r := g.radius.Rand()
		for i := range center {
			center[i] = g.coord.Rand()
		}

		accepted := !g.overlaps(r, center, lo, hi)
		var images []Point
		if accepted {
			images = g.images(r, center)
			if p.StrictImages {
				accepted = !g.anyOverlap(r, images, lo, hi)
			}
		}
		if !accepted {
			misses++
			if p.MaxMisses > 0 && misses >= p.MaxMisses {
				return nil, &InfeasibleError{Reason: "miss budget exhausted", Misses: misses, Partial: res}
			}
			continue
		}

		g.accept(res, r, center, images)
		g.notify(Progress{
			RunID:   g.runID,
			Count:   res.OriginalCount(),
			Images:  res.ImageCount(),
			Density: res.Density,
			Misses:  misses,
		})
		misses = 0
	}

	monitoring.Logf("rve run %s: %d inclusions (%d periodic images), density %.6f after %d attempts",
		g.runID, res.OriginalCount(), res.ImageCount(), res.Density, res.Attempts)
	return res, nil
}

// overlaps reports whether a sphere of radius r at c comes closer than
// ForcedDist to any indexed sphere. lo and hi are scratch buffers.
func (g *Generator) overlaps(r float64, c, lo, hi Point) bool {
	fd := g.params.ForcedDist
	maxDist := r + fd + g.params.MaxRadius
	for i := range c {
		lo[i] = c[i] - maxDist
		hi[i] = c[i] + maxDist
	}
	for _, nb := range g.index.QueryRange(lo, hi) {
		minDist := nb.Radius + r + fd
		if sqDist(nb.Center, c) < minDist*minDist {
			return true
		}
	}
	return false
}

func (g *Generator) anyOverlap(r float64, centers []Point, lo, hi Point) bool {
	for _, c := range centers {
		if g.overlaps(r, c, lo, hi) {
			return true
		}
	}
	return false
}

// images returns the periodic image centers for a sphere of radius r at c.
// For every mirror axis set, an image shifted by +BoxSize is created when the
// sphere pokes below 0 on all axes of the set, and one shifted by -BoxSize
// when it pokes above BoxSize on all of them. Corner regions may receive
// redundant images; they are kept because they take part in later overlap
// tests.
func (g *Generator) images(r float64, c Point) []Point {
	L := g.params.BoxSize
	var out []Point
	for _, axes := range g.dim.mirrorSets() {
		below, above := true, true
		for _, a := range axes {
			below = below && c[a] < r
			above = above && c[a] > L-r
		}
		if below {
			out = append(out, shifted(c, axes, L))
		}
		if above {
			out = append(out, shifted(c, axes, -L))
		}
	}
	return out
}

func shifted(c Point, axes axisSet, by float64) Point {
	s := c.Clone()
	for _, a := range axes {
		s[a] += by
	}
	return s
}

func (g *Generator) accept(res *Result, r float64, center Point, images []Point) {
	ordinal := res.OriginalCount()

	inc := NewInclusion(r, center)
	res.Packing = append(res.Packing, inc)
	res.Placement = append(res.Placement, ordinal)
	g.index.Insert(inc)

	res.Volume += g.dim.BallVolume(r)
	res.Density = res.Volume / g.plan.BoxVolume

	for _, c := range images {
		img := Inclusion{Radius: r, Center: c}
		res.Packing = append(res.Packing, img)
		res.Placement = append(res.Placement, ordinal)
		g.index.Insert(img)
	}
}

func (g *Generator) notify(p Progress) {
	for _, o := range g.observers {
		o.Observe(p)
	}
}
