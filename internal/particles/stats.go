package particles

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Population summarizes the particles sharing one mass factor.
type Population struct {
	MassFactor float64 `json:"mass_factor"`
	Count      int     `json:"count"`
	MeanSpeed  float64 `json:"mean_speed"`
	// RightFraction is the share of the population right of the midline.
	RightFraction float64 `json:"right_fraction"`
	Centroid      r2.Vec  `json:"centroid"`
}

// Stats is a point-in-time summary of a particle set.
type Stats struct {
	Regime      Regime       `json:"regime"`
	Count       int          `json:"count"`
	MeanSpeed   float64      `json:"mean_speed"`
	Populations []Population `json:"populations"`
}

// Summarize computes speed and mixing statistics for the set.
// Populations are ordered by ascending mass factor.
func Summarize(set *Set) Stats {
	st := Stats{Regime: set.Regime, Count: len(set.Particles)}
	if len(set.Particles) == 0 {
		return st
	}

	speeds := make([]float64, len(set.Particles))
	groups := make(map[float64][]int)
	for i, p := range set.Particles {
		speeds[i] = p.Speed()
		groups[p.MassFactor] = append(groups[p.MassFactor], i)
	}
	st.MeanSpeed = stat.Mean(speeds, nil)

	mid := set.Bounds.Width / 2
	for mf, idx := range groups {
		groupSpeeds := make([]float64, len(idx))
		right := make([]float64, len(idx))
		var centroid r2.Vec
		for j, i := range idx {
			p := set.Particles[i]
			groupSpeeds[j] = speeds[i]
			if p.X > mid {
				right[j] = 1
			}
			centroid = r2.Add(centroid, r2.Vec{X: p.X, Y: p.Y})
		}
		n := float64(len(idx))
		st.Populations = append(st.Populations, Population{
			MassFactor:    mf,
			Count:         len(idx),
			MeanSpeed:     stat.Mean(groupSpeeds, nil),
			RightFraction: floats.Sum(right) / n,
			Centroid:      r2.Scale(1/n, centroid),
		})
	}
	sort.Slice(st.Populations, func(i, j int) bool {
		return st.Populations[i].MassFactor < st.Populations[j].MassFactor
	})
	return st
}
