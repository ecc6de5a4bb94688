package odds

import (
	"math"
	"testing"
)

func TestAmericanToImplied(t *testing.T) {
	tests := []struct {
		name  string
		price int
		want  float64
	}{
		{"even favorite", -100, 0.5},
		{"even underdog", 100, 0.5},
		{"heavy favorite", -150, 0.6},
		{"underdog", 150, 0.4},
		{"long shot", 400, 0.2},
		{"big favorite", -400, 0.8},
		{"malformed zero", 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmericanToImplied(tt.price)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AmericanToImplied(%d) = %f, want %f", tt.price, got, tt.want)
			}
		})
	}
}

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		price int
		want  float64
	}{
		{100, 2.0},
		{-100, 2.0},
		{150, 2.5},
		{-150, 1.0 + 100.0/150.0},
		{-200, 1.5},
		{0, 1.0},
	}

	for _, tt := range tests {
		got := AmericanToDecimal(tt.price)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AmericanToDecimal(%d) = %f, want %f", tt.price, got, tt.want)
		}
	}
}

func TestImpliedToAmericanRoundTrip(t *testing.T) {
	for _, price := range []int{-300, -150, -110, 110, 150, 300} {
		p := AmericanToImplied(price)
		if got := ImpliedToAmerican(p); got != price {
			t.Errorf("round trip %d → %f → %d", price, p, got)
		}
	}
}

func TestImpliedToAmericanExtremes(t *testing.T) {
	if got := ImpliedToAmerican(0); got <= 0 {
		t.Errorf("ImpliedToAmerican(0) should clamp to a long underdog price, got %d", got)
	}
	if got := ImpliedToAmerican(1); got >= 0 {
		t.Errorf("ImpliedToAmerican(1) should clamp to a heavy favorite price, got %d", got)
	}
}

func TestPriceBetterForBettor(t *testing.T) {
	tests := []struct {
		a, b int
		want bool
	}{
		{150, 140, true},
		{140, 150, false},
		{-140, -150, true},
		{-150, -140, false},
		{110, -110, true},
		{-110, 110, false},
		{100, 100, false},
	}

	for _, tt := range tests {
		if got := PriceBetterForBettor(tt.a, tt.b); got != tt.want {
			t.Errorf("PriceBetterForBettor(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCentsDiff(t *testing.T) {
	tests := []struct {
		name       string
		ref, other int
		want       int
	}{
		{"both positive", 150, 140, 10},
		{"both negative", -140, -150, 10},
		{"both negative worse", -160, -150, -10},
		{"cross sign", 110, -110, 220},
		{"equal", -110, -110, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CentsDiff(tt.ref, tt.other); got != tt.want {
				t.Errorf("CentsDiff(%d, %d) = %d, want %d", tt.ref, tt.other, got, tt.want)
			}
		})
	}
}

func TestFairPair(t *testing.T) {
	a, b, ok := FairPair(0.55, 0.55)
	if !ok {
		t.Fatal("FairPair rejected a valid pair")
	}
	if math.Abs(a-0.5) > 1e-9 || math.Abs(b-0.5) > 1e-9 {
		t.Errorf("symmetric juice should split evenly, got %f / %f", a, b)
	}
	if math.Abs(a+b-1.0) > 1e-9 {
		t.Errorf("fair pair must sum to 1, got %f", a+b)
	}

	if _, _, ok := FairPair(0, 0.5); ok {
		t.Error("FairPair should reject non-positive probability")
	}
}

func TestFairPairFromAmerican(t *testing.T) {
	// Standard -110/-110 market: both sides fair at 50%.
	a, b, ok := FairPairFromAmerican(-110, -110)
	if !ok || math.Abs(a-0.5) > 1e-9 || math.Abs(b-0.5) > 1e-9 {
		t.Errorf("FairPairFromAmerican(-110, -110) = %f, %f, %v", a, b, ok)
	}

	if _, _, ok := FairPairFromAmerican(0, -110); ok {
		t.Error("zero price should be rejected")
	}
}
