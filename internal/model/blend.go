package model

import (
	"math"

	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/mathutil"
	"nba-ev-scanner/internal/quotes"
)

// Thresholds governing when the stat model distrusts its own sample.
const (
	minRotationMinutes = 10.0 // games below this are garbage-time noise
	varianceWindow     = 10
	longWindow         = 30
	highCVThreshold    = 0.6
	midCVThreshold     = 0.4
	minQualifyingGames = 3
)

// VarianceStats summarizes a player's recent production for one stat.
type VarianceStats struct {
	Mean   float64
	StdDev float64
	CV     float64 // minutes-adjusted coefficient of variation
	Games  int
}

// ComputeVarianceStats measures production over the most recent rotation
// games. The CV is inflated by minutes volatility so an erratic role shows
// up as an erratic stat even when the per-game totals happen to agree.
func ComputeVarianceStats(logs []feed.GameLog, statKey string) VarianceStats {
	var values, minutes []float64
	for _, g := range logs {
		if g.Minutes <= minRotationMinutes {
			continue
		}
		values = append(values, g.Stat(statKey))
		minutes = append(minutes, g.Minutes)
		if len(values) >= varianceWindow {
			break
		}
	}

	st := VarianceStats{Games: len(values)}
	if len(values) == 0 {
		return st
	}
	st.Mean = mathutil.Mean(values)
	st.StdDev = mathutil.StdDev(values)
	if st.Mean > 0 {
		st.CV = st.StdDev / st.Mean
	}

	minMean := mathutil.Mean(minutes)
	if minMean > 0 {
		minCV := mathutil.StdDev(minutes) / minMean
		st.CV *= 1 + minCV*0.5
	}
	return st
}

// RollingMean blends a short recent-form window with a longer baseline.
func RollingMean(logs []feed.GameLog, statKey string) float64 {
	var short, long []float64
	for _, g := range logs {
		if g.Minutes <= minRotationMinutes {
			continue
		}
		v := g.Stat(statKey)
		if len(short) < varianceWindow {
			short = append(short, v)
		}
		if len(long) < longWindow {
			long = append(long, v)
		}
	}
	if len(short) == 0 {
		return 0
	}
	return 0.5*mathutil.Mean(short) + 0.5*mathutil.Mean(long)
}

// BlendInput carries the market view and the stat sample for one prop side.
type BlendInput struct {
	MarketProb   float64 // consensus fair probability for the bet side
	MarketMin    float64 // lowest single-book fair probability
	MarketMax    float64 // highest single-book fair probability
	MarketMedian float64
	Dispersion   float64 // cross-book IQR of fair probabilities
	Line         float64
	Side         string // quotes.SideOver or quotes.SideUnder
	StatKey      string
	Logs         []feed.GameLog
}

// BlendResult is the reconciled probability and its diagnostics.
type BlendResult struct {
	TrueProb     float64
	ModelProb    float64
	Alpha        float64 // weight on the market view
	CV           float64
	HighVariance bool
	ModelUsed    bool
}

// BlendTrueProb reconciles the market consensus with the stat model.
//
// The market carries most of the weight: alpha floats between 0.75 and 0.90
// driven by cross-book dispersion, and pins to the top of that range when the
// player's recent sample is too volatile to trust. The blended probability is
// kept inside the envelope of observed book probabilities (plus a small
// margin) and within a fixed band of the market median, so the model can tilt
// a price but never overrule the market outright.
func BlendTrueProb(in BlendInput) BlendResult {
	res := BlendResult{TrueProb: in.MarketProb, ModelProb: in.MarketProb, Alpha: 1.0}

	st := ComputeVarianceStats(in.Logs, in.StatKey)
	res.CV = st.CV
	if st.Games < minQualifyingGames {
		return res
	}
	res.ModelUsed = true

	var overProb float64
	if st.CV > highCVThreshold {
		res.HighVariance = true
		overProb = NegBinProbOver(st.Mean, st.StdDev*st.StdDev, in.Line)
	} else {
		mean := RollingMean(in.Logs, in.StatKey)
		overProb = PoissonProbOver(mean, in.Line)
	}

	modelProb := overProb
	if in.Side == quotes.SideUnder {
		modelProb = 1 - overProb
	}
	if res.HighVariance {
		// An erratic sample makes the tail estimate itself shaky, so the
		// bet side's probability is shaved no matter which side it is.
		penalty := math.Min(0.15, st.CV*0.1)
		modelProb *= 1 - penalty
	}
	modelProb = mathutil.Clamp(modelProb, 0.01, 0.99)
	res.ModelProb = modelProb

	switch {
	case st.CV > highCVThreshold:
		res.Alpha = 0.90
	case st.CV > midCVThreshold:
		res.Alpha = 0.85
	default:
		res.Alpha = math.Max(0.75, math.Min(0.90, 0.90-in.Dispersion/0.35))
	}

	blended := res.Alpha*in.MarketProb + (1-res.Alpha)*modelProb
	blended = mathutil.Clamp(blended, in.MarketMin-0.05, in.MarketMax+0.05)
	blended = mathutil.Clamp(blended, in.MarketMedian-0.10, in.MarketMedian+0.10)
	res.TrueProb = mathutil.Clamp(blended, 0.01, 0.99)
	return res
}
