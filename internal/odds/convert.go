package odds

import "math"

// probEpsilon keeps probabilities away from 0 and 1 before price conversion.
const probEpsilon = 1e-6

// AmericanToImplied converts American odds to implied probability
// Example: -150 → 0.6 (60%), +150 → 0.4 (40%)
// A zero price is malformed and yields the neutral 0.5.
func AmericanToImplied(price int) float64 {
	if price == 0 {
		return 0.5
	}
	if price >= 100 {
		// Underdog: probability = 100 / (price + 100)
		return 100.0 / (float64(price) + 100.0)
	}
	// Favorite: probability = |price| / (|price| + 100)
	return math.Abs(float64(price)) / (math.Abs(float64(price)) + 100.0)
}

// AmericanToDecimal converts American odds to decimal odds.
// A zero price is malformed and yields even money (1.0).
func AmericanToDecimal(price int) float64 {
	if price == 0 {
		return 1.0
	}
	if price >= 100 {
		return 1 + float64(price)/100.0
	}
	return 1 + 100.0/math.Abs(float64(price))
}

// ImpliedToAmerican converts a probability back to an American price.
// The probability is clamped to (ε, 1-ε) so the conversion never divides by zero.
func ImpliedToAmerican(p float64) int {
	p = math.Max(probEpsilon, math.Min(1-probEpsilon, p))
	if p >= 0.5 {
		return int(math.Round(-100 * p / (1 - p)))
	}
	return int(math.Round(100 * (1 - p) / p))
}

// PriceBetterForBettor reports whether price a pays the bettor better than
// price b. Within the same sign class the comparison is by payout; a positive
// price always beats a negative one.
func PriceBetterForBettor(a, b int) bool {
	if a >= 0 && b >= 0 {
		return a > b
	}
	if a <= 0 && b <= 0 {
		return abs(a) < abs(b)
	}
	return a > b
}

// CentsDiff computes the signed cents-equivalent gap between a reference price
// and a competing price. Same-sign pairs compare directly; a cross-sign pair
// sums the distance each price sits from even money.
func CentsDiff(ref, other int) int {
	if ref >= 0 && other >= 0 {
		return ref - other
	}
	if ref <= 0 && other <= 0 {
		return abs(other) - abs(ref)
	}
	d := 0
	if ref > 0 {
		d += ref
	}
	if other < 0 {
		d += abs(other)
	}
	return d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
