package backtest

import "math"

// probClamp keeps predicted probabilities away from {0, 1} so log loss
// stays finite.
const probClamp = 1e-6

// reliabilityBinWidth is the fixed width of each calibration bin. Bets
// are always placed at model probability >= 0.5 against the chosen
// side's market, so bins span [0.50, 1.00).
const (
	reliabilityBinStart = 0.50
	reliabilityBinWidth = 0.05
	reliabilityBinCount = 10
)

// ReliabilityBin aggregates predictions falling in one probability band
type ReliabilityBin struct {
	Low           float64 `json:"low"`
	High          float64 `json:"high"`
	Count         int     `json:"count"`
	MeanPredicted float64 `json:"mean_predicted"`
	ActualWinRate float64 `json:"actual_win_rate"`
}

// CalibrationSample pairs a predicted probability with the realized
// binary outcome.
type CalibrationSample struct {
	Prob float64
	Won  bool
}

// Brier returns the mean squared error of predictions against outcomes
func Brier(samples []CalibrationSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		outcome := 0.0
		if s.Won {
			outcome = 1.0
		}
		diff := s.Prob - outcome
		sum += diff * diff
	}
	return sum / float64(len(samples))
}

// LogLoss returns the mean negative log likelihood, with probabilities
// clamped to [probClamp, 1-probClamp].
func LogLoss(samples []CalibrationSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		p := clampProb(s.Prob)
		if s.Won {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1.0 - p)
		}
	}
	return sum / float64(len(samples))
}

// Reliability buckets samples into fixed-width probability bins and
// reports mean predicted probability against the actual win rate per
// bin. Samples below the first bin are folded into it so nothing is
// silently dropped.
func Reliability(samples []CalibrationSample) []ReliabilityBin {
	bins := make([]ReliabilityBin, reliabilityBinCount)
	probSums := make([]float64, reliabilityBinCount)
	winCounts := make([]int, reliabilityBinCount)

	for i := range bins {
		bins[i].Low = reliabilityBinStart + float64(i)*reliabilityBinWidth
		bins[i].High = bins[i].Low + reliabilityBinWidth
	}

	for _, s := range samples {
		idx := int((s.Prob - reliabilityBinStart) / reliabilityBinWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= reliabilityBinCount {
			idx = reliabilityBinCount - 1
		}
		bins[idx].Count++
		probSums[idx] += s.Prob
		if s.Won {
			winCounts[idx]++
		}
	}

	for i := range bins {
		if bins[i].Count == 0 {
			continue
		}
		bins[i].MeanPredicted = probSums[i] / float64(bins[i].Count)
		bins[i].ActualWinRate = float64(winCounts[i]) / float64(bins[i].Count)
	}
	return bins
}

func clampProb(p float64) float64 {
	if p < probClamp {
		return probClamp
	}
	if p > 1.0-probClamp {
		return 1.0 - probClamp
	}
	return p
}
