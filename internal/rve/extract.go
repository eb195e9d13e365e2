package rve

import "fmt"

// Extract returns, in input order, the inclusions whose sphere touches or
// intersects the cube [corner, corner+boxSize]. A sphere is kept when the
// squared distance from its center to the nearest point of the cube is at
// most its squared radius.
func Extract(corner Point, boxSize float64, inclusions []Inclusion) ([]Inclusion, error) {
	if boxSize < 0 {
		return nil, fmt.Errorf("%w: box size must be non-negative, got %g", ErrInvalidParameters, boxSize)
	}

	var out []Inclusion
	for i, inc := range inclusions {
		if len(inc.Center) != len(corner) {
			return nil, fmt.Errorf("%w: inclusion %d has %d coordinates, corner has %d",
				ErrDimensionMismatch, i, len(inc.Center), len(corner))
		}
		if boxDistSq(inc.Center, corner, boxSize) <= inc.Radius*inc.Radius {
			out = append(out, inc)
		}
	}
	return out, nil
}

// boxDistSq is the squared distance from c to the cube [corner, corner+size].
func boxDistSq(c, corner Point, size float64) float64 {
	var dmin float64
	for i := range corner {
		if c[i] < corner[i] {
			d := c[i] - corner[i]
			dmin += d * d
		} else if c[i] > corner[i]+size {
			d := c[i] - corner[i] - size
			dmin += d * d
		}
	}
	return dmin
}
