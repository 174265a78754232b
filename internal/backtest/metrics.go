package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/yourusername/courtside/internal/models"
)

// Metrics represents simulation performance metrics
type Metrics struct {
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	InitialBankroll   float64          `json:"initial_bankroll"`
	FinalBankroll     float64          `json:"final_bankroll"`
	TotalStaked       float64          `json:"total_staked"`
	SettledStaked     float64          `json:"settled_staked"`
	NetProfit         float64          `json:"net_profit"`
	ROI               float64          `json:"roi"`
	TotalBets         int              `json:"total_bets"`
	WinningBets       int              `json:"winning_bets"`
	LosingBets        int              `json:"losing_bets"`
	VoidBets          int              `json:"void_bets"`
	PendingBets       int              `json:"pending_bets"`
	PendingStaked     float64          `json:"pending_staked"`
	WinRate           float64          `json:"win_rate"`
	AverageEdge       float64          `json:"average_edge"`
	AverageOdds       float64          `json:"average_odds"`
	ProfitFactor      float64          `json:"profit_factor"`
	MaxDrawdown       float64          `json:"max_drawdown"`
	MaxDrawdownAmount float64          `json:"max_drawdown_amount"`
	Brier             float64          `json:"brier"`
	LogLoss           float64          `json:"log_loss"`
	Reliability       []ReliabilityBin `json:"reliability"`
	CLVBeatRate       float64          `json:"clv_beat_rate"`
	CLVTracked        int              `json:"clv_tracked"`
}

// CalculateMetrics aggregates performance metrics from simulation state.
// Win rate, ROI and calibration cover settled non-void bets only, using
// the model probability recorded at placement. Pending and void bets
// are counted separately; TotalStaked remains the gross exposure across
// every placed bet.
func CalculateMetrics(state *SimState, cfg SimConfig) Metrics {
	metrics := Metrics{
		StartDate:       cfg.StartDate,
		EndDate:         cfg.EndDate,
		InitialBankroll: cfg.InitialBankroll,
		FinalBankroll:   cfg.InitialBankroll,
	}

	if state == nil {
		metrics.Reliability = Reliability(nil)
		return metrics
	}
	metrics.FinalBankroll = state.CurrentBankroll
	metrics.MaxDrawdown = state.EquityCurve.MaxDrawdown()
	metrics.MaxDrawdownAmount = state.EquityCurve.MaxDrawdownAmount()

	var samples []CalibrationSample
	var edgeSum, oddsSum, grossProfit, grossLoss float64
	var decided, clvBeats, clvTracked int

	for _, bet := range state.Bets {
		metrics.TotalBets++
		metrics.TotalStaked += bet.Stake

		if beat, ok := bet.BeatClosing(); ok {
			clvTracked++
			if beat {
				clvBeats++
			}
		}

		if !bet.IsSettled() {
			metrics.PendingBets++
			metrics.PendingStaked += bet.Stake
			continue
		}
		if bet.Outcome == models.BetOutcomeVoid {
			metrics.VoidBets++
			continue
		}

		decided++
		metrics.SettledStaked += bet.Stake
		edgeSum += bet.Edge
		oddsSum += bet.Odds
		if bet.ProfitLoss != nil {
			metrics.NetProfit += *bet.ProfitLoss
			if *bet.ProfitLoss > 0 {
				grossProfit += *bet.ProfitLoss
			} else {
				grossLoss += math.Abs(*bet.ProfitLoss)
			}
		}

		won := bet.Outcome == models.BetOutcomeWon
		if won {
			metrics.WinningBets++
		} else {
			metrics.LosingBets++
		}
		samples = append(samples, CalibrationSample{Prob: bet.ModelProb, Won: won})
	}

	if decided > 0 {
		metrics.WinRate = float64(metrics.WinningBets) / float64(decided)
		metrics.AverageEdge = edgeSum / float64(decided)
		metrics.AverageOdds = oddsSum / float64(decided)
	}
	if metrics.SettledStaked > 0 {
		metrics.ROI = metrics.NetProfit / metrics.SettledStaked
	}
	if grossLoss > 0 {
		metrics.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		// No losing bets; cap so the value stays JSON-encodable
		metrics.ProfitFactor = 999
	}

	metrics.Brier = Brier(samples)
	metrics.LogLoss = LogLoss(samples)
	metrics.Reliability = Reliability(samples)

	metrics.CLVTracked = clvTracked
	if clvTracked > 0 {
		metrics.CLVBeatRate = float64(clvBeats) / float64(clvTracked)
	}

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}
