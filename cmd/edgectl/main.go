// Package main provides the edgectl CLI for one-off scans, grading sweeps and
// feed ingestion.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/grading"
	"github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ratingsCmd)

	scanCmd.Flags().IntVar(&scanHorizonHours, "horizon", 72, "Scan horizon in hours")
	ingestCmd.Flags().IntVar(&ingestDays, "days", 7, "Days ahead to ingest")
	ratingsCmd.Flags().IntVar(&ratingsSeason, "season", time.Now().Year(), "Season to ingest ratings for")
}

var rootCmd = &cobra.Command{
	Use:   "edgectl",
	Short: "Run edge detection, grading and ingestion sweeps",
	Long:  `edgectl runs one-off sweeps of the edge pipeline: feed ingestion, edge scanning over upcoming games, and settlement of pending bets.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return fmt.Errorf("failed to set up: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var scanHorizonHours int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Compute edges for upcoming games and open bets for qualifying ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		svc := buildEdgeService()
		summary, err := svc.ScanUpcoming(ctx, time.Duration(scanHorizonHours)*time.Hour)
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %d games: %d edges, %d qualified, %d bets opened, %d skipped\n",
			summary.GamesScanned, summary.EdgesComputed, summary.Qualified, summary.BetsCreated, summary.Skipped)
		return nil
	},
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Settle pending bets whose games have gone final",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		svc := service.NewGradingService(repos.Game, repos.Snapshot, repos.Bet, repos.CLV, grading.NewGrader(), appLog)
		summary, err := svc.GradePending(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Graded %d of %d pending bets (%d not final, %d already graded, %d errors)\n",
			summary.Graded, summary.Pending, summary.NotFinal, summary.AlreadyGraded, summary.Errors)
		return nil
	},
}

var ingestDays int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull games and line snapshots from the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		svc, err := buildIngestionService()
		if err != nil {
			return err
		}

		startDate := time.Now().Add(-24 * time.Hour)
		endDate := time.Now().Add(time.Duration(ingestDays) * 24 * time.Hour)

		ingestionMetrics, err := svc.IngestGames(ctx, startDate, endDate)
		if err != nil {
			return err
		}

		fmt.Println(ingestionMetrics.String())
		return nil
	},
}

var ratingsSeason int

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Pull team power ratings from the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		svc, err := buildIngestionService()
		if err != nil {
			return err
		}

		stored, err := svc.IngestRatings(ctx, ratingsSeason)
		if err != nil {
			return err
		}

		fmt.Printf("Stored %d ratings for season %d\n", stored, ratingsSeason)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	metrics.InitRegistry()

	return nil
}

func buildEdgeService() *service.EdgeService {
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

	return service.NewEdgeService(
		repos.Game, repos.Snapshot, repos.Edge, repos.Bet,
		lookup, proj, calc,
		cfg.Feed.DefaultProvider, models.SnapshotLabel(cfg.Engine.DecisionLabel),
		appLog,
	)
}

func buildIngestionService() (*service.IngestionService, error) {
	factory := datasource.NewFactory(cfg, log.New(os.Stdout, "feed: ", log.LstdFlags))
	httpClient := factory.NewHTTPClient()

	source, err := factory.NewFeedSource(datasource.OddsFeedSourceType, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed source: %w", err)
	}

	lookup := projector.NewRatingLookup(repos.Rating, time.Duration(cfg.Engine.RatingCacheTTLSec)*time.Second)
	normalizer := service.NewFeedNormalizer(appLog)

	return service.NewIngestionService(source, repos.Game, repos.Snapshot, repos.Rating, lookup, normalizer, appLog), nil
}
