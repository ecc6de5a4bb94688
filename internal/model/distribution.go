package model

import (
	"math"

	"nba-ev-scanner/internal/mathutil"
)

// logFactorial computes ln(x!) exactly for small x and by Stirling's series
// for large x, keeping the Poisson PMF stable far into the tail.
func logFactorial(x int) float64 {
	if x <= 1 {
		return 0
	}
	if x > 170 {
		fx := float64(x)
		return fx*math.Log(fx) - fx + 0.5*math.Log(2*math.Pi*fx)
	}
	sum := 0.0
	for i := 2; i <= x; i++ {
		sum += math.Log(float64(i))
	}
	return sum
}

// poissonCDF returns P(X <= k) for X ~ Poisson(mean), accumulated in log space.
func poissonCDF(mean float64, k int) float64 {
	if k < 0 {
		return 0
	}
	total := 0.0
	for i := 0; i <= k; i++ {
		logPMF := float64(i)*math.Log(mean) - mean - logFactorial(i)
		total += math.Exp(logPMF)
	}
	return math.Min(1, total)
}

// PoissonProbOver returns P(X > line) for X ~ Poisson(mean). Half-point lines
// resolve exactly; a non-positive mean yields zero.
func PoissonProbOver(mean, line float64) float64 {
	if mean <= 0 {
		return 0
	}
	return 1 - poissonCDF(mean, int(math.Floor(line)))
}

// PoissonProbUnder returns P(X < line). A non-positive mean yields one.
func PoissonProbUnder(mean, line float64) float64 {
	return 1 - PoissonProbOver(mean, line)
}

// NegBinProbOver returns P(X > line) under a negative binomial fitted by
// moments to (mean, variance). Under-dispersed inputs collapse to Poisson.
// Large r uses a normal approximation with continuity correction; small r
// falls back to Poisson, where the NB mass function gains little.
func NegBinProbOver(mean, variance, line float64) float64 {
	if mean <= 0 {
		return 0
	}
	if variance <= mean*1.1 {
		return PoissonProbOver(mean, line)
	}

	p := mean / variance
	r := mean * mean / (variance - mean)
	if r > 30 {
		nbMean := r * (1 - p) / p
		nbVar := r * (1 - p) / (p * p)
		z := (math.Floor(line) + 0.5 - nbMean) / math.Sqrt(nbVar)
		return mathutil.Clamp(1-mathutil.NormalCDF(z), 0, 1)
	}
	return PoissonProbOver(mean, line)
}
