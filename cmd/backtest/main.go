// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		threshold  = flag.Float64("threshold", 0, "Override edge threshold in points")
		label      = flag.String("label", "", "Override decision snapshot label (open, t-60, t-30, close)")
		provider   = flag.String("provider", "", "Override line provider")
		output     = flag.String("output", "", "Override output path for the JSON report")
		csvExport  = flag.Bool("csv", false, "Also write a CSV calibration export next to the JSON report")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel)

	btConfig := buildBacktestConfig(cfg, *startDate, *endDate, *threshold, *label, *provider, *output, appLog)

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.Fatalf("Failed to initialize repositories: %v", err)
	}

	runner := buildRunner(cfg, btConfig, repos, appLog)

	metrics.InitRegistry()

	appLog.WithFields(logrus.Fields{
		"start":     btConfig.StartDate.Format("2006-01-02"),
		"end":       btConfig.EndDate.Format("2006-01-02"),
		"threshold": btConfig.EdgeThreshold,
		"label":     btConfig.DecisionLabel,
	}).Info("Starting backtest")

	runStart := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		metrics.RecordBacktestRun("error", time.Since(runStart).Seconds(), 0)
		appLog.Fatalf("Backtest failed: %v", err)
	}
	metrics.RecordBacktestRun("ok", time.Since(runStart).Seconds(), result.Overall.WinRate)

	fmt.Println(backtest.GenerateConsoleReport(result))

	if btConfig.OutputPath != "" {
		if err := backtest.ExportToJSON(result, btConfig.OutputPath); err != nil {
			appLog.Fatalf("Failed to write JSON report: %v", err)
		}
		appLog.WithField("path", btConfig.OutputPath).Info("JSON report written")

		if *csvExport {
			csvPath := strings.TrimSuffix(btConfig.OutputPath, ".json") + ".csv"
			if err := backtest.GenerateCSVExport(result, csvPath); err != nil {
				appLog.Fatalf("Failed to write CSV export: %v", err)
			}
			appLog.WithField("path", csvPath).Info("CSV export written")
		}
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildBacktestConfig(cfg *config.Config, startOverride, endOverride string, threshold float64, label, provider, output string, appLog *logrus.Logger) backtest.Config {
	btConfig, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		appLog.Fatalf("Invalid backtest config: %v", err)
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			appLog.Fatalf("Invalid start date: %v", err)
		}
		btConfig.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			appLog.Fatalf("Invalid end date: %v", err)
		}
		btConfig.EndDate = parsed
	}
	if threshold > 0 {
		btConfig.EdgeThreshold = threshold
	}
	if label != "" {
		btConfig.DecisionLabel = models.SnapshotLabel(label)
	}
	if provider != "" {
		btConfig.Provider = provider
	}
	if btConfig.Provider == "" {
		btConfig.Provider = cfg.Feed.DefaultProvider
	}
	if output != "" {
		btConfig.OutputPath = output
	}
	if err := btConfig.Validate(); err != nil {
		appLog.Fatalf("Invalid backtest config: %v", err)
	}
	return btConfig
}

func buildRunner(cfg *config.Config, btConfig backtest.Config, repos *repository.Repositories, appLog *logrus.Logger) *backtest.Runner {
	lookup := projector.NewRatingLookup(repos.Rating, time.Duration(cfg.Engine.RatingCacheTTLSec)*time.Second)

	proj := projector.NewProjector(projector.Config{
		RatingScale:      cfg.Engine.RatingScale,
		HomeFieldPoints:  cfg.Engine.HomeFieldPoints,
		RestPointsPerDay: cfg.Engine.RestPointsPerDay,
		RestCapPoints:    cfg.Engine.RestCapPoints,
		TravelCapPoints:  cfg.Engine.TravelCapPoints,
	})

	qualifier := edge.NewQualifier(edge.QualifierConfig{
		MinEdgeThreshold: btConfig.EdgeThreshold,
		SpreadBandMin:    cfg.Engine.SpreadBandMin,
		SpreadBandMax:    cfg.Engine.SpreadBandMax,
	})
	calc := edge.NewCalculator(cfg.Engine.EdgeCapPoints, qualifier)

	runner, err := backtest.NewRunner(btConfig, repos.Game, repos.Snapshot, lookup, proj, calc, appLog)
	if err != nil {
		appLog.Fatalf("Failed to create runner: %v", err)
	}
	return runner
}
