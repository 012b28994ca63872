package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/runlog"
)

// RunHandler handles run log requests.
type RunHandler struct {
	runStore runlog.Store
	logger   logger.Logger
}

// NewRunHandler creates a new run log handler.
func NewRunHandler(runStore runlog.Store, log logger.Logger) *RunHandler {
	return &RunHandler{
		runStore: runStore,
		logger:   log,
	}
}

// List handles listing run records, newest first.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	runs, err := h.runStore.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Items:  runs,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles retrieving a single run record by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run ID: must be a valid UUID")
		return
	}

	run, err := h.runStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, runlog.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
