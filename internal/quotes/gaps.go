package quotes

import "nba-ev-scanner/internal/odds"

// LineShop summarizes how a reference price compares with competitor prices
// for the same side of the same proposition.
type LineShop struct {
	BestGapCents int
	AvgGapCents  float64
	Compared     int
	Beaten       int // competitors the reference pays better than
}

// ShopLine measures the reference book's price advantage in cents. Only
// competitors the reference beats contribute to the gaps; a reference that
// beats nobody shops at zero.
func ShopLine(refPrice int, competitorPrices []int) LineShop {
	shop := LineShop{Compared: len(competitorPrices)}
	sum := 0
	for _, p := range competitorPrices {
		if !odds.PriceBetterForBettor(refPrice, p) {
			continue
		}
		d := odds.CentsDiff(refPrice, p)
		if d <= 0 {
			continue
		}
		shop.Beaten++
		sum += d
		if d > shop.BestGapCents {
			shop.BestGapCents = d
		}
	}
	if shop.Beaten > 0 {
		shop.AvgGapCents = float64(sum) / float64(shop.Beaten)
	}
	return shop
}

// Passes reports whether the shop clears the preset's minimum gap demands.
func (s LineShop) Passes(minGap, minAvgGap int) bool {
	if s.BestGapCents < minGap {
		return false
	}
	return s.AvgGapCents >= float64(minAvgGap)
}
