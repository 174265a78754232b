package backtest

import (
	"math"
	"testing"
)

func TestBrier(t *testing.T) {
	samples := []CalibrationSample{
		{Prob: 1.0, Won: true},
		{Prob: 0.0, Won: false},
	}
	if got := Brier(samples); got != 0 {
		t.Fatalf("perfect predictions should score 0, got %v", got)
	}

	samples = []CalibrationSample{
		{Prob: 0.7, Won: true},
		{Prob: 0.6, Won: false},
	}
	// (0.09 + 0.36) / 2
	if got := Brier(samples); math.Abs(got-0.225) > 1e-12 {
		t.Fatalf("expected 0.225, got %v", got)
	}

	if got := Brier(nil); got != 0 {
		t.Fatalf("empty samples should score 0, got %v", got)
	}
}

func TestLogLoss(t *testing.T) {
	samples := []CalibrationSample{
		{Prob: 0.5, Won: true},
		{Prob: 0.5, Won: false},
	}
	if got := LogLoss(samples); math.Abs(got-math.Log(2)) > 1e-12 {
		t.Fatalf("expected ln(2), got %v", got)
	}

	// Confident wrong prediction stays finite through the clamp
	extreme := []CalibrationSample{{Prob: 1.0, Won: false}}
	got := LogLoss(extreme)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("log loss must stay finite at extreme probabilities, got %v", got)
	}
	if got < math.Log(1e5) {
		t.Fatalf("confident miss should be heavily penalized, got %v", got)
	}
}

func TestReliabilityBins(t *testing.T) {
	samples := []CalibrationSample{
		{Prob: 0.52, Won: true},
		{Prob: 0.54, Won: false},
		{Prob: 0.71, Won: true},
		// Below the first bin, folded into it
		{Prob: 0.45, Won: false},
	}

	bins := Reliability(samples)
	if len(bins) != reliabilityBinCount {
		t.Fatalf("expected %d bins, got %d", reliabilityBinCount, len(bins))
	}
	if bins[0].Low != 0.50 || math.Abs(bins[0].High-0.55) > 1e-12 {
		t.Fatalf("wrong first bin bounds: [%.2f, %.2f)", bins[0].Low, bins[0].High)
	}

	if bins[0].Count != 3 {
		t.Fatalf("expected 3 samples in the first bin, got %d", bins[0].Count)
	}
	if math.Abs(bins[0].ActualWinRate-1.0/3.0) > 1e-12 {
		t.Fatalf("wrong win rate in the first bin: %v", bins[0].ActualWinRate)
	}

	// 0.71 lands in [0.70, 0.75)
	if bins[4].Count != 1 || bins[4].MeanPredicted != 0.71 {
		t.Fatalf("expected 0.71 in the fifth bin, got %+v", bins[4])
	}
}

func TestClampProb(t *testing.T) {
	if clampProb(0) != probClamp {
		t.Fatalf("zero should clamp up")
	}
	if clampProb(1) != 1-probClamp {
		t.Fatalf("one should clamp down")
	}
	if clampProb(0.6) != 0.6 {
		t.Fatalf("interior probabilities must pass through")
	}
}
