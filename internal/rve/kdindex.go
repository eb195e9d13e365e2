package rve

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDIndex is an incrementally built k-d tree. It needs no cell size, which
// makes it the better choice for wide radius ranges.
type KDIndex struct {
	tree *kdtree.Tree
	dims int
}

// NewKDIndex creates an empty k-d tree index.
func NewKDIndex(dim Dimension) *KDIndex {
	return &KDIndex{tree: &kdtree.Tree{}, dims: dim.Axes()}
}

// Insert implements SpatialIndex.
func (k *KDIndex) Insert(inc Inclusion) {
	k.tree.Insert(kdSphere(inc), false)
}

// QueryRange implements SpatialIndex.
func (k *KDIndex) QueryRange(min, max Point) []Inclusion {
	// Points equal to a splitting plane may sit in the left subtree, which
	// the traversal only enters when the lower bound is strictly below the
	// plane. Lower the bound by one ulp and filter exactly below.
	lower := make(Point, k.dims)
	for i := range lower {
		lower[i] = math.Nextafter(min[i], math.Inf(-1))
	}
	b := &kdtree.Bounding{
		Min: kdSphere{Center: lower},
		Max: kdSphere{Center: max},
	}

	var found []Inclusion
	k.tree.DoBounded(b, func(c kdtree.Comparable, _ *kdtree.Bounding, _ int) bool {
		if s := c.(kdSphere); inBox(s.Center, min, max) {
			found = append(found, Inclusion(s))
		}
		return false
	})
	return found
}

// Len implements SpatialIndex.
func (k *KDIndex) Len() int { return k.tree.Count }

// kdSphere adapts an Inclusion to kdtree.Comparable. Ordering and distance
// use the center only.
type kdSphere Inclusion

func (s kdSphere) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return s.Center[d] - c.(kdSphere).Center[d]
}

func (s kdSphere) Dims() int { return len(s.Center) }

func (s kdSphere) Distance(c kdtree.Comparable) float64 {
	return sqDist(s.Center, c.(kdSphere).Center)
}

func sqDist(a, b Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
