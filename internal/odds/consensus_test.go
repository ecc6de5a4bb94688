package odds

import (
	"math"
	"testing"
)

func flatWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestConsensusSmallSampleUsesMedian(t *testing.T) {
	values := []float64{0.50, 0.52, 0.90}
	got, ok := Consensus(values, flatWeights(3), 0.15, DefaultConsensusParams())
	if !ok {
		t.Fatal("consensus failed")
	}
	// Three samples are too few for outlier inference; the wild 0.90 must not
	// drag the estimate past the median.
	if math.Abs(got-0.52) > 1e-9 {
		t.Errorf("small-sample consensus = %f, want median 0.52", got)
	}
}

func TestConsensusAgreementUsesWeightedMean(t *testing.T) {
	values := []float64{0.55, 0.55, 0.55, 0.55}
	got, ok := Consensus(values, flatWeights(4), 0.15, DefaultConsensusParams())
	if !ok || math.Abs(got-0.55) > 1e-9 {
		t.Errorf("unanimous consensus = %f, want 0.55", got)
	}
}

func TestConsensusDownweightsOutlier(t *testing.T) {
	values := []float64{0.52, 0.53, 0.54, 0.53, 0.90}
	got, ok := Consensus(values, flatWeights(5), 0.15, DefaultConsensusParams())
	if !ok {
		t.Fatal("consensus failed")
	}
	plain := (0.52 + 0.53 + 0.54 + 0.53 + 0.90) / 5
	if got >= plain {
		t.Errorf("outlier not down-weighted: consensus %f >= plain mean %f", got, plain)
	}
	if got < 0.52 || got > 0.60 {
		t.Errorf("consensus %f strayed outside the plausible cluster", got)
	}
}

func TestConsensusRespectsWeights(t *testing.T) {
	values := []float64{0.50, 0.60, 0.50, 0.60}
	weights := []float64{3, 1, 3, 1}
	got, ok := Consensus(values, weights, 0.15, DefaultConsensusParams())
	if !ok {
		t.Fatal("consensus failed")
	}
	if got >= 0.55 {
		t.Errorf("weighted consensus %f should lean toward the heavier 0.50 books", got)
	}
}

func TestConsensusEmpty(t *testing.T) {
	if _, ok := Consensus(nil, nil, 0.15, DefaultConsensusParams()); ok {
		t.Error("empty input should not produce a consensus")
	}
}

func TestConsensusWithinRange(t *testing.T) {
	values := []float64{0.40, 0.45, 0.50, 0.55, 0.60, 0.95}
	got, ok := Consensus(values, flatWeights(6), 0.15, DefaultConsensusParams())
	if !ok {
		t.Fatal("consensus failed")
	}
	if got < 0.40 || got > 0.95 {
		t.Errorf("consensus %f escaped the sample range", got)
	}
}

func TestDispersion(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		check  func(float64) bool
	}{
		{"four samples use IQR", []float64{0.50, 0.52, 0.54, 0.56}, func(d float64) bool { return d > 0 && d < 0.10 }},
		{"three samples use half range", []float64{0.50, 0.55, 0.60}, func(d float64) bool { return math.Abs(d-0.05) < 1e-9 }},
		{"two samples default", []float64{0.50, 0.60}, func(d float64) bool { return d == 0.20 }},
		{"tight cluster floors at epsilon", []float64{0.55, 0.55, 0.55, 0.55}, func(d float64) bool { return d > 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := Dispersion(tt.values); !tt.check(d) {
				t.Errorf("Dispersion(%v) = %f", tt.values, d)
			}
		})
	}
}
