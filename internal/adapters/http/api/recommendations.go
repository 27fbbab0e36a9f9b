package api

import (
	"net/http"

	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
)

type recommendRequest struct {
	Profile  recommend.Profile  `json:"profile"`
	Server   recommend.Server   `json:"server"`
	Strategy recommend.Strategy `json:"strategy,omitempty"`
}

type rankServersRequest struct {
	Profile  recommend.Profile  `json:"profile"`
	Servers  []recommend.Server `json:"servers" validate:"required,min=1,max=1000,serverids,dive"`
	Strategy recommend.Strategy `json:"strategy,omitempty"`
}

type jobResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id"`
}

// RecommendationHandler handles server recommendation requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

// HandleScore handles POST /v1/recommendations/score requests.
func (h *RecommendationHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations_score"
	var req recommendRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	res, err := h.deps.Recommend(r.Context(), req.Profile, req.Server, req.Strategy)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRank handles POST /v1/recommendations/rank requests.
func (h *RecommendationHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations_rank"
	var req rankServersRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	results, err := h.deps.RankServers(r.Context(), req.Profile, req.Servers, req.Strategy)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleSubmitJob handles POST /v1/recommendations/jobs requests. Accepted
// jobs answer 202, repeated job ids 200 and a full queue 429.
func (h *RecommendationHandler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations_jobs"
	var job model.Job
	if !decodeBody(w, r, op, &job) {
		return
	}

	accepted, duplicate, jobID := h.deps.SubmitJob(r.Context(), job)
	switch {
	case !accepted:
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind(op, ErrBackpressure, nil))
	case duplicate:
		writeJSON(w, http.StatusOK, jobResponse{Status: "duplicate", Duplicate: true, JobID: jobID})
	default:
		writeJSON(w, http.StatusAccepted, jobResponse{Status: "accepted", JobID: jobID})
	}
}
