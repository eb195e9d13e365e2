package rve

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// relTol absorbs rounding between the squared-distance acceptance test and
// the Euclidean distances computed here.
const relTol = 1e-9

// Violation is a pair of inclusions closer than the required clearance.
type Violation struct {
	I, J     int     // indices into Result.Packing, I < J
	Distance float64 // center distance
	Required float64 // r_i + r_j + ForcedDist
}

// Verify checks the clearance between inclusions from different placements.
//
// The sampler only tests a candidate's original position, so by
// construction the clearance holds for every pair whose later member is an
// original. Images may still crowd a sphere that did not cross the boundary
// itself; those pairs are only checked when strict is set, which is the
// guarantee a run with Params.StrictImages provides.
func Verify(res *Result, strict bool) []Violation {
	fd := res.Params.ForcedDist
	maxR := 0.0
	for _, inc := range res.Packing {
		maxR = max(maxR, inc.Radius)
	}
	reach := 2*maxR + fd

	// Sweep along the first axis; only pairs within reach can violate.
	order := make([]int, len(res.Packing))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(res.Packing[a].Center[0], res.Packing[b].Center[0])
	})

	var out []Violation
	for a, ia := range order {
		for _, ib := range order[a+1:] {
			if res.Packing[ib].Center[0]-res.Packing[ia].Center[0] > reach {
				break
			}
			i, j := min(ia, ib), max(ia, ib)
			if res.Placement[i] == res.Placement[j] {
				continue
			}
			if !strict && !res.IsOriginal(j) {
				continue
			}
			required := res.Packing[i].Radius + res.Packing[j].Radius + fd
			d := floats.Distance(res.Packing[i].Center, res.Packing[j].Center, 2)
			if d < required-relTol*max(1, required) {
				out = append(out, Violation{I: i, J: j, Distance: d, Required: required})
			}
		}
	}
	slices.SortFunc(out, func(a, b Violation) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	return out
}

// MissingImage names a boundary crossing without its periodic image.
type MissingImage struct {
	Index int     // index of the original in Result.Packing
	Axis  int     // crossed axis
	Shift float64 // expected offset of the image along Axis
}

// CheckPeriodicImages returns every face crossing of an original inclusion
// that lacks the single-axis periodic image on the opposite side.
func CheckPeriodicImages(res *Result) []MissingImage {
	L := res.Params.BoxSize
	var out []MissingImage
	for i, inc := range res.Packing {
		if !res.IsOriginal(i) {
			continue
		}
		for axis := range inc.Center {
			if inc.Center[axis] < inc.Radius && !hasImage(res, i, axis, L) {
				out = append(out, MissingImage{Index: i, Axis: axis, Shift: L})
			}
			if inc.Center[axis] > L-inc.Radius && !hasImage(res, i, axis, -L) {
				out = append(out, MissingImage{Index: i, Axis: axis, Shift: -L})
			}
		}
	}
	return out
}

func hasImage(res *Result, orig, axis int, shift float64) bool {
	want := shifted(res.Packing[orig].Center, axisSet{axis}, shift)
	for k := orig + 1; k < len(res.Packing) && res.Placement[k] == res.Placement[orig]; k++ {
		if floats.Equal(res.Packing[k].Center, want) {
			return true
		}
	}
	return false
}
