package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats simulation metrics for terminal output
func GenerateConsoleReport(metrics Metrics) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Window: %s to %s\n", metrics.StartDate.Format("2006-01-02"), metrics.EndDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Bankroll: %.2f -> %.2f\n", metrics.InitialBankroll, metrics.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Total Bets: %d (%d won, %d lost, %d void)\n", metrics.TotalBets, metrics.WinningBets, metrics.LosingBets, metrics.VoidBets))
	if metrics.PendingBets > 0 {
		builder.WriteString(fmt.Sprintf("Pending: %d bets, %.2f staked (excluded from ROI)\n", metrics.PendingBets, metrics.PendingStaked))
	}
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", metrics.WinRate*100))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", metrics.ROI*100))
	builder.WriteString(fmt.Sprintf("Average Edge: %.4f\n", metrics.AverageEdge))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", metrics.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f (%.2f%%)\n", metrics.MaxDrawdownAmount, metrics.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Brier Score: %.4f\n", metrics.Brier))
	builder.WriteString(fmt.Sprintf("Log Loss: %.4f\n", metrics.LogLoss))
	if metrics.CLVTracked > 0 {
		builder.WriteString(fmt.Sprintf("CLV Beat Rate: %.2f%% (%d tracked)\n", metrics.CLVBeatRate*100, metrics.CLVTracked))
	}

	builder.WriteString("\nReliability\n")
	builder.WriteString("bin        predicted  actual     count\n")
	for _, bin := range metrics.Reliability {
		if bin.Count == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("%.2f-%.2f  %.4f     %.4f     %d\n",
			bin.Low, bin.High, bin.MeanPredicted, bin.ActualWinRate, bin.Count))
	}
	return builder.String()
}

// WriteReports writes the metrics summary, reliability table, and
// equity curve as CSV files under outputPath.
func WriteReports(metrics Metrics, state *SimState, outputPath string) error {
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output path: %w", err)
	}

	summary := "metric,value\n" +
		fmt.Sprintf("initial_bankroll,%.2f\n", metrics.InitialBankroll) +
		fmt.Sprintf("final_bankroll,%.2f\n", metrics.FinalBankroll) +
		fmt.Sprintf("total_bets,%d\n", metrics.TotalBets) +
		fmt.Sprintf("pending_bets,%d\n", metrics.PendingBets) +
		fmt.Sprintf("pending_staked,%.2f\n", metrics.PendingStaked) +
		fmt.Sprintf("win_rate,%.4f\n", metrics.WinRate) +
		fmt.Sprintf("roi,%.4f\n", metrics.ROI) +
		fmt.Sprintf("average_edge,%.4f\n", metrics.AverageEdge) +
		fmt.Sprintf("profit_factor,%.4f\n", metrics.ProfitFactor) +
		fmt.Sprintf("max_drawdown,%.4f\n", metrics.MaxDrawdown) +
		fmt.Sprintf("max_drawdown_amount,%.2f\n", metrics.MaxDrawdownAmount) +
		fmt.Sprintf("brier,%.4f\n", metrics.Brier) +
		fmt.Sprintf("log_loss,%.4f\n", metrics.LogLoss) +
		fmt.Sprintf("clv_beat_rate,%.4f\n", metrics.CLVBeatRate)
	if err := os.WriteFile(filepath.Join(outputPath, "summary.csv"), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	var reliability strings.Builder
	reliability.WriteString("low,high,mean_predicted,actual_win_rate,count\n")
	for _, bin := range metrics.Reliability {
		reliability.WriteString(fmt.Sprintf("%.2f,%.2f,%.4f,%.4f,%d\n",
			bin.Low, bin.High, bin.MeanPredicted, bin.ActualWinRate, bin.Count))
	}
	if err := os.WriteFile(filepath.Join(outputPath, "reliability.csv"), []byte(reliability.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write reliability table: %w", err)
	}

	if state != nil {
		if err := os.WriteFile(filepath.Join(outputPath, "equity.csv"), []byte(state.EquityCurve.ToCSV()), 0o644); err != nil {
			return fmt.Errorf("failed to write equity curve: %w", err)
		}
	}

	return nil
}
