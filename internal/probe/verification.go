package probe

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/pkg/logger"
)

// userJobs groups the generated jobs by user, preserving first-seen order.
type userJobs struct {
	order []string
	jobs  map[string][]model.Job
}

func groupByUser(jobs []model.Job) userJobs {
	g := userJobs{jobs: make(map[string][]model.Job)}
	for _, j := range jobs {
		if _, ok := g.jobs[j.UserID]; !ok {
			g.order = append(g.order, j.UserID)
		}
		g.jobs[j.UserID] = append(g.jobs[j.UserID], j)
	}
	return g
}

// expectedBest returns the highest score any of the user's jobs should
// produce.
func expectedBest(jobs []model.Job) float64 {
	best := math.Inf(-1)
	for _, j := range jobs {
		best = math.Max(best, recommend.Score(j.Profile, j.Server, j.Strategy).FinalScore)
	}
	return best
}

// checkBoardOrder reports the first ordering problem in a board.
func checkBoardOrder(userID string, entries []repository.Entry) error {
	for i, e := range entries {
		if e.UserID != userID {
			return fmt.Errorf("entry %d belongs to %q", i, e.UserID)
		}
		if e.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d", i, e.Rank)
		}
		if i > 0 && e.Score > entries[i-1].Score {
			return fmt.Errorf("entry %d score %.2f above previous %.2f", i, e.Score, entries[i-1].Score)
		}
	}
	return nil
}

// verifyBoards fetches each user's board and checks it against synchronous
// scoring of the same jobs.
func verifyBoards(ctx context.Context, config *Config, c *client, jobs []model.Job, stats *Stats) error {
	log := logger.Get().Named("probe.verify")
	groups := groupByUser(jobs)
	log.Info(ctx, "verifying boards", logger.Int("users", len(groups.order)))

	for _, userID := range groups.order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled during verification: %w", err)
		}
		mismatches, err := verifyUser(ctx, config, c, userID, groups.jobs[userID], stats)
		if err != nil {
			return err
		}
		if mismatches > 0 {
			log.Warn(ctx, "board mismatch", logger.String("userID", userID), logger.Int("mismatches", mismatches))
		}
	}

	log.Info(ctx, "verification finished",
		logger.Int("boards", stats.BoardsRetrieved),
		logger.Int("entries", stats.EntriesChecked),
		logger.Int("mismatches", stats.Mismatches),
	)
	return nil
}

func verifyUser(ctx context.Context, config *Config, c *client, userID string, jobs []model.Job, stats *Stats) (int, error) {
	log := logger.Get().Named("probe.verify")
	entries, err := c.board(ctx, userID, config.TopN)
	if err != nil {
		return 0, fmt.Errorf("board %s: %w", userID, err)
	}
	stats.BoardsRetrieved++

	mismatches := 0
	miss := func(msg string, fields ...logger.Field) {
		mismatches++
		stats.Mismatches++
		if config.Verbose {
			log.Debug(ctx, msg, append(fields, logger.String("userID", userID))...)
		}
	}

	if err := checkBoardOrder(userID, entries); err != nil {
		miss("board order", logger.Error(err))
	}
	if len(entries) == 0 {
		miss("empty board")
		return mismatches, nil
	}
	if best := expectedBest(jobs); math.Abs(entries[0].Score-best) > scoreTolerance {
		miss("top score", logger.Float64("got", entries[0].Score), logger.Float64("want", best))
	}

	byServer := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		byServer[j.Server.ID] = j
	}
	for _, e := range entries {
		stats.EntriesChecked++
		job, ok := byServer[e.ServerID]
		if !ok {
			miss("unknown server", logger.String("serverID", e.ServerID))
			continue
		}
		res, err := c.score(ctx, job.Profile, job.Server, job.Strategy)
		if err != nil {
			return mismatches, fmt.Errorf("score %s/%s: %w", userID, e.ServerID, err)
		}
		if math.Abs(res.FinalScore-e.Score) > scoreTolerance {
			miss("entry score", logger.String("serverID", e.ServerID),
				logger.Float64("board", e.Score), logger.Float64("sync", res.FinalScore))
		}
	}

	top, err := c.boardRank(ctx, userID, entries[0].ServerID)
	if err != nil {
		return mismatches, fmt.Errorf("rank %s/%s: %w", userID, entries[0].ServerID, err)
	}
	if top.Rank != 1 {
		miss("top rank", logger.Int("rank", top.Rank))
	}
	return mismatches, nil
}
