package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/script"
)

// ScriptHandler handles stored script management requests.
type ScriptHandler struct {
	scriptStore script.Store
	logger      logger.Logger
}

// NewScriptHandler creates a new script handler.
func NewScriptHandler(scriptStore script.Store, log logger.Logger) *ScriptHandler {
	return &ScriptHandler{
		scriptStore: scriptStore,
		logger:      log,
	}
}

// CreateScriptRequest represents a script creation request.
type CreateScriptRequest struct {
	Key      string          `json:"key"`
	Type     string          `json:"type"`
	DSL      script.Document `json:"dsl"`
	Defaults script.Document `json:"defaults"`
	Enabled  *bool           `json:"enabled,omitempty"`
}

// UpdateScriptRequest represents a script update request.
type UpdateScriptRequest struct {
	Type     *string          `json:"type,omitempty"`
	DSL      *script.Document `json:"dsl,omitempty"`
	Defaults *script.Document `json:"defaults,omitempty"`
	Enabled  *bool            `json:"enabled,omitempty"`
}

// Create handles creating a new stored script.
func (h *ScriptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateScriptRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	s := &script.Script{
		Key:      req.Key,
		Type:     req.Type,
		DSL:      req.DSL,
		Defaults: req.Defaults,
		Enabled:  enabled,
	}

	if err := h.scriptStore.Create(r.Context(), s); err != nil {
		if errors.Is(err, script.ErrInvalidScriptKey) || errors.Is(err, script.ErrInvalidScriptType) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to create script", map[string]interface{}{
			"error": err.Error(),
			"key":   req.Key,
		})
		respondError(w, http.StatusInternalServerError, "failed to create script")
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

// Get handles retrieving a stored script by key.
func (h *ScriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	s, err := h.scriptStore.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, script.ErrScriptNotFound) {
			respondError(w, http.StatusNotFound, "script not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get script", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		respondError(w, http.StatusInternalServerError, "failed to get script")
		return
	}

	respondJSON(w, http.StatusOK, s)
}

// Update handles updating a stored script.
func (h *ScriptHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req UpdateScriptRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []script.UpdateSetter
	if req.Type != nil {
		setters = append(setters, script.SetType(*req.Type))
	}
	if req.DSL != nil {
		setters = append(setters, script.SetDSL(*req.DSL))
	}
	if req.Defaults != nil {
		setters = append(setters, script.SetDefaults(*req.Defaults))
	}
	if req.Enabled != nil {
		setters = append(setters, script.SetEnabled(*req.Enabled))
	}

	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.scriptStore.Update(r.Context(), key, setters...); err != nil {
		if errors.Is(err, script.ErrScriptNotFound) {
			respondError(w, http.StatusNotFound, "script not found")
			return
		}
		if errors.Is(err, script.ErrInvalidScriptType) || errors.Is(err, script.ErrInvalidScriptKey) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(r.Context(), "failed to update script", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		respondError(w, http.StatusInternalServerError, "failed to update script")
		return
	}

	updated, err := h.scriptStore.GetByKey(r.Context(), key)
	if err != nil {
		h.logger.Error(r.Context(), "failed to get updated script", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		respondError(w, http.StatusInternalServerError, "failed to get updated script")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles deleting a stored script.
func (h *ScriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if err := h.scriptStore.Delete(r.Context(), key); err != nil {
		if errors.Is(err, script.ErrScriptNotFound) {
			respondError(w, http.StatusNotFound, "script not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete script", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		respondError(w, http.StatusInternalServerError, "failed to delete script")
		return
	}

	respondSuccess(w, "script deleted successfully")
}

// List handles listing stored scripts.
func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	scripts, err := h.scriptStore.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list scripts", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list scripts")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Items:  scripts,
		Limit:  limit,
		Offset: offset,
	})
}
