package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/pkg/logger"
)

// ErrMismatch is returned by Run when verification finds boards that disagree
// with synchronous scoring.
var ErrMismatch = errors.New("board verification failed")

// Run executes a full probe: health check, job generation and submission,
// waiting for the pipeline and board verification.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	c := newClient(config)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service not healthy at %s: %w", config.BaseURL, err)
	}

	jobs, err := generateJobs(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("failed to generate jobs: %w", err)
	}
	if config.OutputFile != "" {
		if err := saveJobs(jobs, config.OutputFile); err != nil {
			logger.Get().Warn(ctx, "failed to save jobs", logger.Error(err))
		}
	}

	baseline, err := settledJobs(ctx, c)
	if err != nil {
		return stats, err
	}
	if err := submitJobs(ctx, config, c, jobs, stats); err != nil {
		return stats, fmt.Errorf("failed to submit jobs: %w", err)
	}
	if err := waitForProcessing(ctx, config, c, baseline+int64(stats.JobsAccepted)); err != nil {
		return stats, err
	}

	if err := verifyBoards(ctx, config, c, jobs, stats); err != nil {
		return stats, fmt.Errorf("failed to verify boards: %w", err)
	}
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d mismatches", ErrMismatch, stats.Mismatches)
	}
	return stats, nil
}

// settledJobs returns how many jobs the service has finished, successfully
// or not.
func settledJobs(ctx context.Context, c *client) (int64, error) {
	s, err := c.stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read stats: %w", err)
	}
	processed, _ := s["jobsProcessed"].(float64)
	failed, _ := s["jobsFailed"].(float64)
	return int64(processed) + int64(failed), nil
}

// waitForProcessing polls /stats until target jobs are settled or the
// configured wait elapses. Timing out is logged, not fatal: verification
// reports whatever is missing.
func waitForProcessing(ctx context.Context, config *Config, c *client, target int64) error {
	deadline := time.Now().Add(config.Wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		settled, err := settledJobs(ctx, c)
		if err != nil {
			return err
		}
		if settled >= target {
			return nil
		}
		if time.Now().After(deadline) {
			logger.Get().Warn(ctx, "timed out waiting for jobs",
				logger.Any("settled", settled),
				logger.Any("target", target),
			)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// saveJobs writes the generated jobs to a JSON file for replay.
func saveJobs(jobs []model.Job, filename string) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal jobs: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Summary logs the run statistics.
func Summary(ctx context.Context, stats *Stats) {
	rate := 0.0
	if stats.JobsSubmitted > 0 {
		rate = float64(stats.JobsAccepted) / float64(stats.JobsSubmitted) * percentageMultiplier
	}
	logger.Get().Info(ctx, "probe summary",
		logger.Int("generated", stats.JobsGenerated),
		logger.Int("submitted", stats.JobsSubmitted),
		logger.Int("accepted", stats.JobsAccepted),
		logger.Int("duplicate", stats.JobsDuplicate),
		logger.Int("rejected", stats.JobsRejected),
		logger.Int("failed", stats.JobsFailed),
		logger.Float64("acceptRate", rate),
		logger.Int("boards", stats.BoardsRetrieved),
		logger.Int("entries", stats.EntriesChecked),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
	)
}
