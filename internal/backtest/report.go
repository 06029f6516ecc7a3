package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GenerateConsoleReport formats a backtest result for terminal output
func GenerateConsoleReport(result *Result) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Range: %s to %s (label %s, threshold %.1f)\n",
		result.StartDate, result.EndDate, result.Label, result.Threshold))
	builder.WriteString(fmt.Sprintf("Games: %d total, %d evaluated, %d skipped, %d below qualification\n",
		result.TotalGames, result.Evaluated, result.SkippedTotal(), result.NotQualified))
	builder.WriteString(fmt.Sprintf("Picks: %d\n", len(result.Picks)))
	builder.WriteString(fmt.Sprintf("Overall: win rate %.1f%%, ROI %+.2f%% (%d-%d-%d)\n",
		result.Overall.WinRate*100, result.Overall.ROI*100,
		result.Overall.Wins, result.Overall.Losses, result.Overall.Pushes))

	builder.WriteString("Calibration:\n")
	for _, bucket := range result.Buckets {
		builder.WriteString(fmt.Sprintf("  %-12s n=%-4d win rate %5.1f%%  ROI %+6.2f%%\n",
			bucket.Label, bucket.Stats.Count, bucket.Stats.WinRate*100, bucket.Stats.ROI*100))
	}

	if len(result.Skipped) > 0 {
		builder.WriteString("Skipped:\n")
		reasons := make([]string, 0, len(result.Skipped))
		for reason := range result.Skipped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			builder.WriteString(fmt.Sprintf("  %s: %d\n", reason, result.Skipped[reason]))
		}
	}

	return builder.String()
}

// ExportToJSON writes the full result, picks included, to a JSON file
func ExportToJSON(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result: %w", err)
	}

	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport exports per-bucket statistics for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("bucket,count,wins,losses,pushes,win_rate,roi\n")
	for _, bucket := range result.Buckets {
		builder.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%.4f,%.4f\n",
			bucket.Label, bucket.Stats.Count, bucket.Stats.Wins, bucket.Stats.Losses,
			bucket.Stats.Pushes, bucket.Stats.WinRate, bucket.Stats.ROI))
	}
	builder.WriteString(fmt.Sprintf("overall,%d,%d,%d,%d,%.4f,%.4f\n",
		result.Overall.Count, result.Overall.Wins, result.Overall.Losses,
		result.Overall.Pushes, result.Overall.WinRate, result.Overall.ROI))

	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
