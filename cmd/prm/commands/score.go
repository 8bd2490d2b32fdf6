package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zinye/prm/backend/internal/activity"
	"github.com/zinye/prm/backend/internal/metrics"
	"github.com/zinye/prm/backend/internal/partner"
	"github.com/zinye/prm/backend/pkg/config"
	"github.com/zinye/prm/backend/pkg/database"
	"github.com/zinye/prm/backend/pkg/logger"
	"github.com/zinye/prm/backend/pkg/redis"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [partner_id]",
	Short: "Recalculate partner scores",
	Long: `Recalculates and persists partner scores over the default
12-month activity window.

Pass a partner ID to recalculate one partner, or --all for every
active partner.

Example:
  go run ./cmd/prm score PRT-0042
  go run ./cmd/prm score --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

var scoreAll bool

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "recalculate every active partner")
}

func runScore(cmd *cobra.Command, args []string) error {
	if !scoreAll && len(args) == 0 {
		return fmt.Errorf("pass a partner ID or --all")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	partnerRepo := partner.NewRepository(db.Pool)
	activityRepo := activity.NewRepository(db.Pool)

	engine := metrics.NewEngine(
		metrics.NewCollector(partnerRepo, activityRepo, log),
		metrics.NewTrendAggregator(),
		metrics.NewScoreCalculator(cfg.Scoring),
		partnerRepo,
		redis.NewCache(redisClient, "prm"),
		cfg.Scoring.SnapshotCacheTTL,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if scoreAll {
		return recalculateAll(ctx, engine, partnerRepo)
	}

	partnerID := args[0]
	score, err := engine.RecalculatePartnerScore(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("recalculate partner %s: %w", partnerID, err)
	}

	fmt.Printf("✅ Partner %s score: %.2f\n", partnerID, score)
	return nil
}

func recalculateAll(ctx context.Context, engine *metrics.Engine, partnerRepo *partner.Repository) error {
	partnerIDs, err := partnerRepo.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active partners: %w", err)
	}

	fmt.Printf("Recalculating %d active partners...\n", len(partnerIDs))

	failed := 0
	for _, partnerID := range partnerIDs {
		score, err := engine.RecalculatePartnerScore(ctx, partnerID)
		if err != nil {
			failed++
			fmt.Printf("  ❌ %s: %v\n", partnerID, err)
			continue
		}
		fmt.Printf("  ✅ %s: %.2f\n", partnerID, score)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d partners failed", failed, len(partnerIDs))
	}

	fmt.Println("\n✅ All partners recalculated")
	return nil
}
