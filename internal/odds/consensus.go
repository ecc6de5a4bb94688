package odds

import (
	"math"
	"sort"

	"nba-ev-scanner/internal/mathutil"
)

// ConsensusParams holds the heuristic thresholds of the robust consensus.
// The defaults are hand-tuned and kept configurable on purpose.
type ConsensusParams struct {
	// SmallSampleMax is the sample size at or below which the plain median
	// is returned without outlier inference.
	SmallSampleMax int
	// MADFloor is the MAD below which samples are treated as unanimous and
	// averaged directly.
	MADFloor float64
	// OutlierZ is the modified Z-score beyond which a sample is flagged.
	OutlierZ float64
	// OutlierWeight is the down-weighting factor applied to flagged samples.
	OutlierWeight float64
	// HardTrimFraction is the outlier share above which soft down-weighting
	// is abandoned for winsorization/trimming.
	HardTrimFraction float64
}

// DefaultConsensusParams returns the thresholds the scanner ships with.
func DefaultConsensusParams() ConsensusParams {
	return ConsensusParams{
		SmallSampleMax:   3,
		MADFloor:         0.001,
		OutlierZ:         2.5,
		OutlierWeight:    0.1,
		HardTrimFraction: 0.4,
	}
}

// ConsensusResult is the robust fair-probability estimate for one side of one
// market, together with how many books contributed and how much they disagreed.
type ConsensusResult struct {
	FairProb   float64
	BookCount  int
	Dispersion float64
}

// Consensus computes a robust weight-adjusted mean of fair-probability samples.
//
// Ladder:
//  1. n <= SmallSampleMax: plain median (too few points for outlier inference).
//  2. MAD below MADFloor: weighted mean (books agree).
//  3. Modified Z-score beyond OutlierZ: down-weight by OutlierWeight, not drop.
//  4. Outlier share above HardTrimFraction: winsorize small samples (pull the
//     two extremes 25% toward their neighbors) or trim a tail fraction.
//  5. Weighted mean of whatever survived.
//
// The result always lies within [min(values), max(values)].
func Consensus(values, weights []float64, trim float64, params ConsensusParams) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if len(weights) != len(values) {
		m := len(values)
		if len(weights) < m {
			m = len(weights)
		}
		values = values[:m]
		weights = weights[:m]
		if m == 0 {
			return 0, false
		}
	}

	n := len(values)
	if n <= params.SmallSampleMax {
		return mathutil.Median(values), true
	}

	median := mathutil.Median(values)
	mad := mathutil.MAD(values)
	if mad < params.MADFloor {
		return weightedMean(values, weights)
	}

	adjusted := make([]float64, n)
	copy(adjusted, weights)
	outliers := 0
	for i, v := range values {
		z := 0.6745 * (v - median) / mad
		if math.Abs(z) > params.OutlierZ {
			outliers++
			adjusted[i] = weights[i] * params.OutlierWeight
		}
	}

	if float64(outliers) > float64(n)*params.HardTrimFraction {
		return hardTrimmedMean(values, weights, trim)
	}

	return weightedMean(values, adjusted)
}

// Dispersion summarizes cross-book disagreement for the blend-weight decision:
// IQR for four or more samples, half the sorted range for exactly three, and a
// conservative default below that.
func Dispersion(values []float64) float64 {
	switch {
	case len(values) >= 4:
		return math.Max(1e-6, mathutil.IQR(values))
	case len(values) == 3:
		sorted := make([]float64, 3)
		copy(sorted, values)
		sort.Float64s(sorted)
		return math.Max(1e-6, (sorted[2]-sorted[0])*0.5)
	default:
		return 0.20
	}
}

type weightedSample struct {
	value  float64
	weight float64
}

func hardTrimmedMean(values, weights []float64, trim float64) (float64, bool) {
	n := len(values)
	pairs := make([]weightedSample, n)
	for i := range values {
		pairs[i] = weightedSample{values[i], weights[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	if n <= 6 {
		// Winsorize: pull the extremes 25% toward their neighbors.
		if n >= 4 {
			pairs[0].value = pairs[0].value*0.75 + pairs[1].value*0.25
			pairs[n-1].value = pairs[n-1].value*0.75 + pairs[n-2].value*0.25
		}
	} else {
		k := int(float64(n) * trim)
		if n-2*k > 0 {
			pairs = pairs[k : n-k]
		}
	}

	var num, den float64
	for _, p := range pairs {
		num += p.value * p.weight
		den += p.weight
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func weightedMean(values, weights []float64) (float64, bool) {
	var num, den float64
	for i, v := range values {
		num += v * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
