// Package main provides the entry point for the long-running worker daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/grading"
	"github.com/yourusername/line-edge/internal/health"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/scheduler"
	"github.com/yourusername/line-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Line edge worker starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	metrics.InitRegistry()

	// Shared collaborators
	lookup := projector.NewRatingLookup(repos.Rating, time.Duration(cfg.Engine.RatingCacheTTLSec)*time.Second)
	proj := projector.NewProjector(projector.Config{
		RatingScale:      cfg.Engine.RatingScale,
		HomeFieldPoints:  cfg.Engine.HomeFieldPoints,
		RestPointsPerDay: cfg.Engine.RestPointsPerDay,
		RestCapPoints:    cfg.Engine.RestCapPoints,
		TravelCapPoints:  cfg.Engine.TravelCapPoints,
	})
	qualifier := edge.NewQualifier(edge.QualifierConfig{
		MinEdgeThreshold: cfg.Engine.MinEdgeThreshold,
		SpreadBandMin:    cfg.Engine.SpreadBandMin,
		SpreadBandMax:    cfg.Engine.SpreadBandMax,
	})
	calc := edge.NewCalculator(cfg.Engine.EdgeCapPoints, qualifier)

	// Feed source
	feedLogger := log.New(os.Stdout, "feed: ", log.LstdFlags)
	factory := datasource.NewFactory(cfg, feedLogger)
	httpClient := factory.NewHTTPClient()
	defer httpClient.Close()

	source, err := factory.NewFeedSource(datasource.OddsFeedSourceType, httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create feed source")
	}

	// Services
	normalizer := service.NewFeedNormalizer(appLog)
	ingestionSvc := service.NewIngestionService(source, repos.Game, repos.Snapshot, repos.Rating, lookup, normalizer, appLog)
	edgeSvc := service.NewEdgeService(
		repos.Game, repos.Snapshot, repos.Edge, repos.Bet,
		lookup, proj, calc,
		cfg.Feed.DefaultProvider, models.SnapshotLabel(cfg.Engine.DecisionLabel),
		appLog,
	)
	gradingSvc := service.NewGradingService(repos.Game, repos.Snapshot, repos.Bet, repos.CLV, grading.NewGrader(), appLog)

	// Optional line movement stream
	var stream *datasource.StreamClient
	if cfg.Worker.StreamEnabled && cfg.Feed.StreamURL != "" {
		stream = datasource.NewStreamClient(cfg.Feed.StreamURL, cfg.Feed.APIKey, feedLogger)
		stream.AddHandler(ingestionSvc.HandleLineMove)
		if err := stream.Connect(ctx); err != nil {
			appLog.WithError(err).Warn("Stream connection failed; continuing with polling only")
		} else {
			defer stream.Close()
			appLog.Info("Line movement stream connected")
		}
	}

	// Recurring jobs
	sched := scheduler.NewScheduler(ingestionSvc, edgeSvc, gradingSvc, appLog)
	if err := sched.ScheduleIngestion(cfg.Worker.IngestSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule ingestion")
	}
	if err := sched.ScheduleScan(cfg.Worker.ScanSchedule, 72*time.Hour); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule scanning")
	}
	if err := sched.ScheduleGrading(cfg.Worker.GradingSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule grading")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Health and metrics endpoint
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLog,
		DB:          db,
	}
	if stream != nil {
		healthCfg.Stream = stream
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"ingest_schedule":  cfg.Worker.IngestSchedule,
		"scan_schedule":    cfg.Worker.ScanSchedule,
		"grading_schedule": cfg.Worker.GradingSchedule,
		"stream_enabled":   cfg.Worker.StreamEnabled,
		"next_run":         sched.GetNextRun(),
	}).Info("Worker is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	appLog.Info("Line edge worker shut down successfully")
}
