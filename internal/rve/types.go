package rve

import (
	"fmt"
	"math"
)

// Point is a position in R^ndim. Its length is the dimensionality.
type Point []float64

// Clone returns a copy of p that shares no storage with it.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	c := make(Point, len(p))
	copy(c, p)
	return c
}

// Inclusion is a sphere (circle in 2D) embedded in the RVE domain.
// Inclusions are values: the center is copied on construction and never
// modified afterwards.
type Inclusion struct {
	Radius float64 `json:"radius"`
	Center Point   `json:"center"`
}

// NewInclusion returns an Inclusion owning a copy of center.
func NewInclusion(radius float64, center Point) Inclusion {
	return Inclusion{Radius: radius, Center: center.Clone()}
}

// Dims returns the dimensionality of the inclusion's center.
func (inc Inclusion) Dims() int { return len(inc.Center) }

// Packing is an ordered list of inclusions in generation order, periodic
// images included.
type Packing []Inclusion

// Dimension is the closed set of supported domain dimensionalities.
type Dimension int

const (
	Dim2 Dimension = 2
	Dim3 Dimension = 3
)

// DimensionOf maps an integer dimensionality onto a Dimension.
func DimensionOf(ndim int) (Dimension, error) {
	switch Dimension(ndim) {
	case Dim2, Dim3:
		return Dimension(ndim), nil
	}
	return 0, fmt.Errorf("%w: ndim=%d (want 2 or 3)", ErrInvalidDimension, ndim)
}

// Axes returns the number of coordinate axes.
func (d Dimension) Axes() int { return int(d) }

// BallVolume is the volume (area in 2D) of a ball of radius r.
func (d Dimension) BallVolume(r float64) float64 {
	switch d {
	case Dim2:
		return math.Pi * r * r
	case Dim3:
		return 4. / 3. * math.Pi * r * r * r
	}
	panic(fmt.Sprintf("rve: unsupported dimension %d", int(d)))
}

// BoxVolume is the volume of the cube [0, boxSize]^d.
func (d Dimension) BoxVolume(boxSize float64) float64 {
	return math.Pow(boxSize, float64(d))
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dD", int(d))
}

// axisSet is a proper non-empty subset of the coordinate axes along which a
// periodic image is mirrored.
type axisSet []int

// Mirror subsets in generation order. The full axis set is deliberately
// absent: only proper subsets produce images.
var (
	mirrorSets2D = []axisSet{{1}, {0}}
	mirrorSets3D = []axisSet{{2}, {1}, {1, 2}, {0}, {0, 2}, {0, 1}}
)

// mirrorSets returns the 2^d - 2 axis subsets used for periodic images.
func (d Dimension) mirrorSets() []axisSet {
	switch d {
	case Dim2:
		return mirrorSets2D
	case Dim3:
		return mirrorSets3D
	}
	return nil
}
