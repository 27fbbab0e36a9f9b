// Package scoring binds the pure engines to a configured weight set and
// default strategy and gives them a context-aware surface for the service.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMatchWeights sets the weight set used when a call does not supply one.
func WithMatchWeights(w matchmaking.Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithDefaultStrategy sets the strategy used when a call names none.
// Unknown names fall back to hybrid.
func WithDefaultStrategy(s recommend.Strategy) Option {
	return func(e *Engine) {
		e.defaultStrategy = recommend.Resolve(s)
	}
}

// Engine scores compatibility and recommendations. It holds configuration by
// value and is safe for concurrent use.
type Engine struct {
	weights         matchmaking.Weights
	defaultStrategy recommend.Strategy
}

// NewEngine creates an engine with default weights and the hybrid strategy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:         matchmaking.DefaultWeights(),
		defaultStrategy: recommend.StrategyHybrid,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the configured weight set.
func (e *Engine) Weights() matchmaking.Weights { return e.weights }

// DefaultStrategy returns the configured default strategy.
func (e *Engine) DefaultStrategy() recommend.Strategy { return e.defaultStrategy }

// StrategyFor resolves the strategy for a call. Empty means the default.
func (e *Engine) StrategyFor(s recommend.Strategy) recommend.Strategy {
	if s == "" {
		return e.defaultStrategy
	}
	return recommend.Resolve(s)
}

func (e *Engine) weightsFor(override *matchmaking.Weights) matchmaking.Weights {
	if override != nil {
		return *override
	}
	return e.weights
}

// Compatibility scores one team. A nil override uses the configured weights.
func (e *Engine) Compatibility(ctx context.Context, team matchmaking.Team, request matchmaking.Request, override *matchmaking.Weights) (matchmaking.Result, error) {
	if err := ctx.Err(); err != nil {
		return matchmaking.Result{}, fmt.Errorf("compatibility: %w", err)
	}
	return matchmaking.CalculateDetailedCompatibility(team, request, e.weightsFor(override)), nil
}

// RankTeams scores and orders teams for one request.
func (e *Engine) RankTeams(ctx context.Context, request matchmaking.Request, teams []matchmaking.Team, override *matchmaking.Weights) ([]matchmaking.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank teams: %w", err)
	}
	return matchmaking.RankTeams(request, teams, e.weightsFor(override)), nil
}

// Recommend scores one server for a user.
func (e *Engine) Recommend(ctx context.Context, profile recommend.Profile, server recommend.Server, strategy recommend.Strategy) (recommend.Result, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Result{}, fmt.Errorf("recommend: %w", err)
	}
	return recommend.Score(profile, server, e.StrategyFor(strategy)), nil
}

// RankServers scores and orders servers for a user.
func (e *Engine) RankServers(ctx context.Context, profile recommend.Profile, servers []recommend.Server, strategy recommend.Strategy) ([]recommend.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank servers: %w", err)
	}
	return recommend.RankServers(profile, servers, e.StrategyFor(strategy)), nil
}

// ScoreJob scores the server of a recommendation job.
func (e *Engine) ScoreJob(ctx context.Context, job model.Job) (recommend.Result, error) { //nolint:gocritic // hugeParam: jobs travel by value
	res, err := e.Recommend(ctx, job.Profile, job.Server, job.Strategy)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	return res, nil
}
