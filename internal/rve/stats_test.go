package rve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	res := &Result{
		Params: Params{MinDensity: 0.1, BoxSize: 10, NDim: 2},
		Plan:   Plan{BoxVolume: 100},
		Packing: Packing{
			NewInclusion(1, Point{0.5, 5}),
			NewInclusion(1, Point{10.5, 5}),
			NewInclusion(2, Point{5, 5}),
			NewInclusion(3, Point{8, 2}),
		},
		Placement: []int{0, 0, 1, 2},
		Attempts:  6,
	}
	res.Volume = Dim2.BallVolume(1) + Dim2.BallVolume(2) + Dim2.BallVolume(3)
	res.Density = res.Volume / 100

	s := Summarize(res)
	assert.Equal(t, 3, s.Originals)
	assert.Equal(t, 1, s.Images)
	assert.Equal(t, 0.1, s.TargetDensity)
	assert.InDelta(t, 14*math.Pi/100, s.Density, 1e-12)
	assert.InDelta(t, 0.03, s.NumberDensity, 1e-12)
	assert.InDelta(t, 2.0, s.RadiusMean, 1e-12)
	assert.InDelta(t, 1.0, s.RadiusStdDev, 1e-12)
	assert.Equal(t, 1.0, s.RadiusMin)
	assert.Equal(t, 3.0, s.RadiusMax)
	assert.InDelta(t, 0.5, s.AcceptRate, 1e-12)
}

func TestSummarize_Degenerate(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(&Result{}))

	one := &Result{
		Plan:      Plan{BoxVolume: 8},
		Packing:   Packing{NewInclusion(0.5, Point{1, 1, 1})},
		Placement: []int{0},
		Attempts:  1,
	}
	s := Summarize(one)
	assert.Equal(t, 0.0, s.RadiusStdDev)
	assert.Equal(t, 0.5, s.RadiusMean)
	assert.Equal(t, 1.0, s.AcceptRate)
}
