package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zinye/prm/backend/internal/activity"
	"github.com/zinye/prm/backend/internal/metrics"
	"github.com/zinye/prm/backend/internal/partner"
	"github.com/zinye/prm/backend/internal/scheduler"
	"github.com/zinye/prm/backend/internal/scheduler/jobs"
	"github.com/zinye/prm/backend/pkg/config"
	"github.com/zinye/prm/backend/pkg/database"
	"github.com/zinye/prm/backend/pkg/logger"
	"github.com/zinye/prm/backend/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- partner_score_recalculation: nightly bulk score recalculation
  over every active partner (SCHEDULER_RECALC_CRON)

Subcommands:
  start   - Start the scheduler daemon
  list    - List registered jobs
  run     - Run a job immediately

Example:
  go run ./cmd/prm scheduler start
  go run ./cmd/prm scheduler run partner_score_recalculation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== PRM Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job %s...\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	// RunJob is asynchronous; wait for interrupt so the run can finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

// initScheduler builds the scheduler with all jobs registered. The returned
// cleanup closes the shared connections.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}

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

	sched := scheduler.New(log)

	recalcJob := jobs.NewRecalculateJob(engine, partnerRepo, log, cfg.Scheduler.RecalcCron, cfg.Scheduler.RecalcWorkers)
	if err := sched.AddJob(recalcJob); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register recalculation job: %w", err)
	}

	return sched, cleanup, nil
}
