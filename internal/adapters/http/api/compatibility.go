package api

import (
	"net/http"

	"github.com/okian/affinity/internal/domain/matchmaking"
)

type compatibilityRequest struct {
	Team    matchmaking.Team     `json:"team"`
	Request matchmaking.Request  `json:"request"`
	Weights *matchmaking.Weights `json:"weights,omitempty" validate:"omitempty"`
}

type rankTeamsRequest struct {
	Request matchmaking.Request  `json:"request"`
	Teams   []matchmaking.Team   `json:"teams" validate:"required,min=1,max=1000"`
	Weights *matchmaking.Weights `json:"weights,omitempty" validate:"omitempty"`
}

// CompatibilityHandler handles team compatibility requests.
type CompatibilityHandler struct {
	deps CompatibilityDependencies
}

// NewCompatibilityHandler creates a new compatibility handler.
func NewCompatibilityHandler(deps CompatibilityDependencies) *CompatibilityHandler {
	return &CompatibilityHandler{deps: deps}
}

// HandleScore handles POST /v1/compatibility requests.
func (h *CompatibilityHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.compatibility"
	var req compatibilityRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	res, err := h.deps.Compatibility(r.Context(), req.Team, req.Request, req.Weights)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRank handles POST /v1/compatibility/rank requests.
func (h *CompatibilityHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.compatibility_rank"
	var req rankTeamsRequest
	if !decodeBody(w, r, op, &req) {
		return
	}
	results, err := h.deps.RankTeams(r.Context(), req.Request, req.Teams, req.Weights)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
