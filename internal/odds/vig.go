package odds

// FairPair removes the vig/juice from a two-way market
// Returns the true probabilities that sum to 1.0
//
// Method: Multiplicative vig removal (proportional)
// trueProbA = impliedA / (impliedA + impliedB)
// trueProbB = impliedB / (impliedA + impliedB)
func FairPair(impliedA, impliedB float64) (float64, float64, bool) {
	if impliedA <= 0 || impliedB <= 0 {
		return 0, 0, false
	}
	total := impliedA + impliedB
	if total <= 0 {
		return 0, 0, false
	}
	return impliedA / total, impliedB / total, true
}

// FairPairFromAmerican converts a two-sided American price pair to vig-free
// probabilities. Zero prices are rejected rather than mapped to the neutral
// default, since a missing side makes the pair unusable.
func FairPairFromAmerican(priceA, priceB int) (float64, float64, bool) {
	if priceA == 0 || priceB == 0 {
		return 0, 0, false
	}
	return FairPair(AmericanToImplied(priceA), AmericanToImplied(priceB))
}
