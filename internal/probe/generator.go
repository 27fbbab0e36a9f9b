package probe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/types"
	"github.com/okian/affinity/pkg/logger"
)

var (
	patterns   = []recommend.Pattern{"morning", "evening", "evening_weekend", "weekend", "consistent", "varied", ""}
	tags       = []string{"morning", "afternoon", "evening", "night", "weekend"}
	days       = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	games      = []string{"cs2", "valorant", "dota2"}
	levels     = []types.SkillLevel{"beginner", "intermediate", "advanced", "expert", ""}
	strategies = recommend.Strategies
)

// generator builds synthetic jobs from a seeded source so runs can be
// replayed.
type generator struct {
	rng *rand.Rand
	now time.Time
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: time.Now().UTC()}
}

// generateJobs creates ServersPerUser jobs for each of Users synthetic users.
// Each user keeps one profile and one strategy across its jobs.
func generateJobs(ctx context.Context, config *Config, stats *Stats) ([]model.Job, error) {
	logger.Get().Info(ctx, "generating jobs",
		logger.Int("users", config.Users),
		logger.Int("serversPerUser", config.ServersPerUser),
	)

	g := newGenerator(config.Seed)
	jobs := make([]model.Job, 0, config.Users*config.ServersPerUser)
	for u := 0; u < config.Users; u++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during job generation: %w", err)
		}
		userID := "user-" + uuid.NewString()
		profile := g.profile(userID)
		strategy := strategies[g.rng.IntN(len(strategies))]
		for s := 0; s < config.ServersPerUser; s++ {
			jobs = append(jobs, model.Job{
				JobID:       uuid.NewString(),
				UserID:      userID,
				Strategy:    strategy,
				Profile:     profile,
				Server:      g.server(),
				SubmittedAt: g.now,
			})
		}
	}

	stats.JobsGenerated = len(jobs)
	logger.Get().Info(ctx, "generated jobs", logger.Int("count", len(jobs)))
	return jobs, nil
}

func (g *generator) profile(userID string) recommend.Profile {
	p := recommend.Profile{
		UserID:          userID,
		ActivityPattern: patterns[g.rng.IntN(len(patterns))],
		PeakDays:        types.NewSet(g.pick(days, 3)...),
		SkillByGame:     map[string]types.SkillLevel{},
	}
	for i, n := 0, g.rng.IntN(5); i < n; i++ {
		p.PeakHours = append(p.PeakHours, g.rng.IntN(24))
	}
	for _, game := range g.pick(games, 2) {
		p.SkillByGame[game] = levels[g.rng.IntN(len(levels))]
	}
	return p
}

func (g *generator) server() recommend.Server {
	s := recommend.Server{
		ID:                 "srv-" + uuid.NewString(),
		GameID:             games[g.rng.IntN(len(games))],
		ActivityTags:       types.NewSet(g.pick(tags, 3)...),
		MemberCount:        g.rng.IntN(1000),
		ActiveChannelCount: g.rng.IntN(6),
		AgeInDays:          g.rng.IntN(400),
		SkillLevel:         levels[g.rng.IntN(len(levels))],
	}
	s.Signals.ContentBased = g.signal()
	s.Signals.Collaborative = g.signal()
	s.Signals.Social = g.signal()
	return s
}

// signal returns nil a quarter of the time, otherwise a score in [0, 100].
func (g *generator) signal() *float64 {
	if g.rng.IntN(4) == 0 {
		return nil
	}
	v := float64(g.rng.IntN(10001)) / 100
	return &v
}

// pick returns up to n distinct items.
func (g *generator) pick(from []string, n int) []string {
	k := g.rng.IntN(n + 1)
	idx := g.rng.Perm(len(from))[:min(k, len(from))]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
