package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/pkg/logger"
)

// RecalculateJob recalculates scores for all active partners nightly.
// Partners are processed by a small worker pool; one partner failing
// does not stop the run.
type RecalculateJob struct {
	engine      contracts.Engine
	partnerRepo contracts.PartnerRepository
	logger      *logger.Logger
	schedule    string
	workers     int
}

// NewRecalculateJob creates a new bulk recalculation job
func NewRecalculateJob(engine contracts.Engine, partnerRepo contracts.PartnerRepository, log *logger.Logger, schedule string, workers int) *RecalculateJob {
	if workers < 1 {
		workers = 1
	}
	return &RecalculateJob{
		engine:      engine,
		partnerRepo: partnerRepo,
		logger:      log,
		schedule:    schedule,
		workers:     workers,
	}
}

// Name returns the job name
func (j *RecalculateJob) Name() string {
	return "partner_score_recalculation"
}

// Schedule returns the cron schedule expression
func (j *RecalculateJob) Schedule() string {
	return j.schedule
}

// Run recalculates every active partner's score
func (j *RecalculateJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled partner score recalculation")

	partnerIDs, err := j.partnerRepo.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active partners: %w", err)
	}

	if len(partnerIDs) == 0 {
		j.logger.Info("No active partners to recalculate")
		return nil
	}

	idCh := make(chan string, len(partnerIDs))
	for _, id := range partnerIDs {
		idCh <- id
	}
	close(idCh)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)

	for w := 0; w < j.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for partnerID := range idCh {
				if ctx.Err() != nil {
					return
				}

				score, err := j.engine.RecalculatePartnerScore(ctx, partnerID)
				if err != nil {
					mu.Lock()
					failures++
					mu.Unlock()

					j.logger.WithError(err).WithField("partner_id", partnerID).Warn("Partner recalculation failed")
					continue
				}

				j.logger.WithFields(map[string]interface{}{
					"partner_id":    partnerID,
					"partner_score": score,
				}).Debug("Partner score recalculated")
			}
		}()
	}

	wg.Wait()

	j.logger.WithFields(map[string]interface{}{
		"total":    len(partnerIDs),
		"failed":   failures,
		"workers":  j.workers,
	}).Info("Partner score recalculation completed")

	if failures > 0 {
		return fmt.Errorf("recalculation failed for %d of %d partners", failures, len(partnerIDs))
	}

	return nil
}
