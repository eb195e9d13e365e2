package rve

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a finished packing.
type Summary struct {
	Originals     int     `json:"originals"`
	Images        int     `json:"images"`
	Density       float64 `json:"density"`        // achieved volume fraction
	TargetDensity float64 `json:"target_density"` // requested volume fraction
	NumberDensity float64 `json:"number_density"` // originals per unit box volume
	RadiusMean    float64 `json:"radius_mean"`
	RadiusStdDev  float64 `json:"radius_std_dev"`
	RadiusMin     float64 `json:"radius_min"`
	RadiusMax     float64 `json:"radius_max"`
	Attempts      int     `json:"attempts"`
	AcceptRate    float64 `json:"accept_rate"`
}

// Summarize computes statistics over the original inclusions of res.
func Summarize(res *Result) Summary {
	originals := res.Originals()
	s := Summary{
		Originals:     len(originals),
		Images:        res.ImageCount(),
		Density:       res.Density,
		TargetDensity: res.Params.MinDensity,
		Attempts:      res.Attempts,
	}
	if res.Plan.BoxVolume > 0 {
		s.NumberDensity = float64(s.Originals) / res.Plan.BoxVolume
	}
	if res.Attempts > 0 {
		s.AcceptRate = float64(s.Originals) / float64(res.Attempts)
	}
	if len(originals) == 0 {
		return s
	}

	radii := make([]float64, len(originals))
	for i, inc := range originals {
		radii[i] = inc.Radius
	}
	s.RadiusMean, s.RadiusStdDev = stat.MeanStdDev(radii, nil)
	if len(radii) < 2 {
		s.RadiusStdDev = 0
	}
	s.RadiusMin, s.RadiusMax = floats.Min(radii), floats.Max(radii)
	return s
}
