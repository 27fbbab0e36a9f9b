// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/okian/affinity/internal/adapters/repository"
	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
	"github.com/okian/affinity/internal/domain/skillcalc"
	"github.com/okian/affinity/internal/validation"
)

const (
	defaultMaxRankLimit = 100
	defaultBoardLimit   = 10
	maxBodyBytes        = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CompatibilityDependencies
	RecommendationDependencies
	BoardDependencies
	ToolDependencies
}

// Entry mirrors the read shape returned by board queries.
type Entry = repository.Entry

// Option configures a Server.
type Option func(*Server)

// WithMaxRankLimit caps the limit accepted by board queries.
func WithMaxRankLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRankLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxRankLimit int

	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
	compatibilityHandler  *CompatibilityHandler
	recommendationHandler *RecommendationHandler
	boardHandler          *BoardHandler
	toolHandler           *ToolHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxRankLimit: defaultMaxRankLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.compatibilityHandler = NewCompatibilityHandler(deps)
	s.recommendationHandler = NewRecommendationHandler(deps)
	s.boardHandler = NewBoardHandler(deps, s.maxRankLimit)
	s.toolHandler = NewToolHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /v1/compatibility", MetricsMiddleware(s.compatibilityHandler.HandleScore, "compatibility"))
	mux.HandleFunc("POST /v1/compatibility/rank", MetricsMiddleware(s.compatibilityHandler.HandleRank, "compatibility_rank"))

	mux.HandleFunc("POST /v1/recommendations/score", MetricsMiddleware(s.recommendationHandler.HandleScore, "recommendations_score"))
	mux.HandleFunc("POST /v1/recommendations/rank", MetricsMiddleware(s.recommendationHandler.HandleRank, "recommendations_rank"))
	mux.HandleFunc("POST /v1/recommendations/jobs", MetricsMiddleware(s.recommendationHandler.HandleSubmitJob, "recommendations_jobs"))

	mux.HandleFunc("GET /v1/recommendations/boards/{user_id}", MetricsMiddleware(s.boardHandler.HandleTopN, "boards"))
	mux.HandleFunc("GET /v1/recommendations/boards/{user_id}/{server_id}", MetricsMiddleware(s.boardHandler.HandleRank, "boards_rank"))

	mux.HandleFunc("POST /v1/similarity", MetricsMiddleware(s.toolHandler.HandleSimilarity, "similarity"))
	mux.HandleFunc("POST /v1/skill/estimate", MetricsMiddleware(s.toolHandler.HandleSkillEstimate, "skill_estimate"))
}

// CompatibilityDependencies scores teams against a player's request.
type CompatibilityDependencies interface {
	Compatibility(ctx context.Context, team matchmaking.Team, request matchmaking.Request, weights *matchmaking.Weights) (matchmaking.Result, error)
	RankTeams(ctx context.Context, request matchmaking.Request, teams []matchmaking.Team, weights *matchmaking.Weights) ([]matchmaking.Result, error)
}

// RecommendationDependencies scores servers and accepts async jobs.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, profile recommend.Profile, server recommend.Server, strategy recommend.Strategy) (recommend.Result, error)
	RankServers(ctx context.Context, profile recommend.Profile, servers []recommend.Server, strategy recommend.Strategy) ([]recommend.Result, error)

	// SubmitJob queues a job. accepted is false on backpressure.
	SubmitJob(ctx context.Context, job model.Job) (accepted, duplicate bool, jobID string)
}

// BoardDependencies reads recommendation boards.
type BoardDependencies interface {
	Board(ctx context.Context, userID string, n int) ([]Entry, error)
	BoardRank(ctx context.Context, userID, serverID string) (Entry, error)
}

// ToolDependencies exposes the standalone helpers.
type ToolDependencies interface {
	Similarity(ctx context.Context, a, b []string) float64
	SkillEstimate(ctx context.Context, playtimeHours, achievementPercent float64) skillcalc.Estimate
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, fmt.Errorf("%s: %w", op, err))
}

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return false
	}
	return true
}
