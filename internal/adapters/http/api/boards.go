package api

import (
	"errors"
	"net/http"
	"strconv"
)

// BoardHandler serves per-user recommendation boards.
type BoardHandler struct {
	deps     BoardDependencies
	maxLimit int
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps BoardDependencies, maxLimit int) *BoardHandler {
	return &BoardHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTopN handles GET /v1/recommendations/boards/{user_id}?limit=N requests.
// A missing limit returns the top 10.
func (h *BoardHandler) HandleTopN(w http.ResponseWriter, r *http.Request) {
	const op = "api.boards"
	userID := r.PathValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}

	n := defaultBoardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrapKind(op, ErrBadRequest, errors.New("limit exceeds "+strconv.Itoa(h.maxLimit))))
		return
	}

	entries, err := h.deps.Board(r.Context(), userID, n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRank handles GET /v1/recommendations/boards/{user_id}/{server_id} requests.
func (h *BoardHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.boards_rank"
	userID, serverID := r.PathValue("user_id"), r.PathValue("server_id")
	if userID == "" || serverID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, nil))
		return
	}
	entry, err := h.deps.BoardRank(r.Context(), userID, serverID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
