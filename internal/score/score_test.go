package score

import (
	"math"
	"testing"
)

func TestValence(t *testing.T) {
	tests := []struct {
		name       string
		label      Label
		confidence float64
		want       float64
	}{
		{"negative zero confidence", LabelNegative, 0, 0.5},
		{"negative full confidence", LabelNegative, 1, 0},
		{"negative mid confidence", LabelNegative, 0.5, 0.25},
		{"neutral zero confidence", LabelNeutral, 0, 0.4},
		{"neutral full confidence", LabelNeutral, 1, 0.6},
		{"positive zero confidence", LabelPositive, 0, 0.5},
		{"positive full confidence", LabelPositive, 1, 1},
		{"positive 0.8 confidence", LabelPositive, 0.8, 0.9},
		{"unknown label treated as neutral floor", Label("MIXED"), 0.9, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Valence(tt.label, tt.confidence)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Valence(%s, %v) = %v, want %v", tt.label, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestValenceBranchRanges(t *testing.T) {
	ranges := []struct {
		label    Label
		min, max float64
	}{
		{LabelNegative, 0, 0.5},
		{LabelNeutral, 0.4, 0.6},
		{LabelPositive, 0.5, 1.0},
	}

	for _, r := range ranges {
		for c := 0.0; c <= 1.0; c += 0.05 {
			v := Valence(r.label, c)
			if v < r.min-1e-9 || v > r.max+1e-9 {
				t.Errorf("Valence(%s, %v) = %v, outside [%v, %v]", r.label, c, v, r.min, r.max)
			}
		}
	}
}

func TestValenceMonotonicInConfidence(t *testing.T) {
	// Within each branch, valence moves monotonically with confidence:
	// away from 0.5 for negative, upward for neutral and positive.
	for _, label := range []Label{LabelNegative, LabelNeutral, LabelPositive} {
		prev := Valence(label, 0)
		for c := 0.05; c <= 1.0; c += 0.05 {
			v := Valence(label, c)
			if label == LabelNegative {
				if v > prev {
					t.Fatalf("Valence(%s) not decreasing at confidence %v: %v > %v", label, c, v, prev)
				}
			} else if v < prev {
				t.Fatalf("Valence(%s) not increasing at confidence %v: %v < %v", label, c, v, prev)
			}
			prev = v
		}
	}
}

func TestFuseWeightsSumToOne(t *testing.T) {
	sum := WeightValence + WeightDanceability + WeightEnergy
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("fusion weights sum to %v, want 1.0", sum)
	}
}

func TestFuse(t *testing.T) {
	tests := []struct {
		name    string
		v, d, e float64
		want    float64
	}{
		{"all zero", 0, 0, 0, 0},
		{"all one", 1, 1, 1, 1},
		{"round trip scenario", 0.9, 0.6, 0.5, 0.73},
		{"equal inputs pass through", 0.5, 0.5, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fuse(tt.v, tt.d, tt.e)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Fuse(%v, %v, %v) = %v, want %v", tt.v, tt.d, tt.e, got, tt.want)
			}
		})
	}
}

func TestFuseMonotonic(t *testing.T) {
	base := Fuse(0.3, 0.3, 0.3)
	if Fuse(0.4, 0.3, 0.3) <= base {
		t.Error("Fuse not increasing in valence")
	}
	if Fuse(0.3, 0.4, 0.3) <= base {
		t.Error("Fuse not increasing in danceability")
	}
	if Fuse(0.3, 0.3, 0.4) <= base {
		t.Error("Fuse not increasing in energy")
	}
}
