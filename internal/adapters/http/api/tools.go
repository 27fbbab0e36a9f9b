package api

import (
	"net/http"
)

type similarityRequest struct {
	A []string `json:"a"`
	B []string `json:"b"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

type skillEstimateRequest struct {
	PlaytimeHours      float64 `json:"playtime_hours" validate:"gte=0"`
	AchievementPercent float64 `json:"achievement_percent" validate:"gte=0,lte=100"`
}

// ToolHandler serves the standalone similarity and skill helpers.
type ToolHandler struct {
	deps ToolDependencies
}

// NewToolHandler creates a new tool handler.
func NewToolHandler(deps ToolDependencies) *ToolHandler {
	return &ToolHandler{deps: deps}
}

// HandleSimilarity handles POST /v1/similarity requests.
func (h *ToolHandler) HandleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if !decodeBody(w, r, "api.similarity", &req) {
		return
	}
	writeJSON(w, http.StatusOK, similarityResponse{Similarity: h.deps.Similarity(r.Context(), req.A, req.B)})
}

// HandleSkillEstimate handles POST /v1/skill/estimate requests.
func (h *ToolHandler) HandleSkillEstimate(w http.ResponseWriter, r *http.Request) {
	var req skillEstimateRequest
	if !decodeBody(w, r, "api.skill_estimate", &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SkillEstimate(r.Context(), req.PlaytimeHours, req.AchievementPercent))
}
