package rve

import (
	"fmt"
	"math"
)

// SpatialIndex accelerates the neighbourhood queries of the overlap test.
type SpatialIndex interface {
	// Insert stores a sphere. Stored spheres are never removed.
	Insert(inc Inclusion)

	// QueryRange returns every stored sphere whose center lies inside the
	// axis-aligned box [min, max], bounds inclusive. Order is unspecified.
	QueryRange(min, max Point) []Inclusion

	// Len returns the number of stored spheres.
	Len() int
}

// IndexKind selects a SpatialIndex implementation.
type IndexKind string

const (
	IndexGrid   IndexKind = "grid"
	IndexKDTree IndexKind = "kdtree"
)

// NewIndex builds an empty index of the given kind. cellSize is only used by
// the grid index.
func NewIndex(kind IndexKind, dim Dimension, cellSize float64) (SpatialIndex, error) {
	switch kind {
	case "", IndexGrid:
		if cellSize <= 0 || math.IsInf(cellSize, 0) || math.IsNaN(cellSize) {
			return nil, fmt.Errorf("%w: grid cell size %g", ErrInvalidParameters, cellSize)
		}
		return NewGridIndex(dim, cellSize), nil
	case IndexKDTree:
		return NewKDIndex(dim), nil
	}
	return nil, fmt.Errorf("%w: unknown index kind %q", ErrInvalidParameters, kind)
}

// GridIndex is a uniform hash grid. Cell size should be at least the largest
// query half-width so a query touches a handful of cells per axis.
type GridIndex struct {
	CellSize float64
	Grid     map[int64][]int // Cell ID → indices into items

	dims  int
	items []Inclusion
}

// NewGridIndex creates an empty grid index.
func NewGridIndex(dim Dimension, cellSize float64) *GridIndex {
	return &GridIndex{
		CellSize: cellSize,
		Grid:     make(map[int64][]int),
		dims:     dim.Axes(),
	}
}

// Insert implements SpatialIndex.
func (g *GridIndex) Insert(inc Inclusion) {
	var cell [3]int64
	for i := 0; i < g.dims; i++ {
		cell[i] = g.cellCoord(inc.Center[i])
	}
	id := cellID(cell[:g.dims])
	g.Grid[id] = append(g.Grid[id], len(g.items))
	g.items = append(g.items, inc)
}

// QueryRange implements SpatialIndex.
func (g *GridIndex) QueryRange(min, max Point) []Inclusion {
	var lo, hi, cur [3]int64
	for i := 0; i < g.dims; i++ {
		lo[i] = g.cellCoord(min[i])
		hi[i] = g.cellCoord(max[i])
		if hi[i] < lo[i] {
			return nil
		}
	}
	cur = lo

	var found []Inclusion
	for {
		for _, idx := range g.Grid[cellID(cur[:g.dims])] {
			if inBox(g.items[idx].Center, min, max) {
				found = append(found, g.items[idx])
			}
		}

		// Advance the cell odometer, last axis fastest.
		axis := g.dims - 1
		for ; axis >= 0; axis-- {
			if cur[axis] < hi[axis] {
				cur[axis]++
				break
			}
			cur[axis] = lo[axis]
		}
		if axis < 0 {
			return found
		}
	}
}

// Len implements SpatialIndex.
func (g *GridIndex) Len() int { return len(g.items) }

func (g *GridIndex) cellCoord(x float64) int64 {
	return int64(math.Floor(x / g.CellSize))
}

// cellID folds signed cell coordinates into a single key: each coordinate is
// zigzag encoded, then the results are combined with Szudzik's pairing
// function left to right.
func cellID(cell []int64) int64 {
	id := zigzag(cell[0])
	for _, c := range cell[1:] {
		id = szudzik(id, zigzag(c))
	}
	return id
}

// zigzag maps signed integers onto non-negative ones.
func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}

func szudzik(a, b int64) int64 {
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func inBox(c, min, max Point) bool {
	for i := range c {
		if c[i] < min[i] || c[i] > max[i] {
			return false
		}
	}
	return true
}
