package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hairizuan-noorazman/browser-automation/actions"
	"github.com/hairizuan-noorazman/browser-automation/capability"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/script"
)

// CapabilityHandler handles browser capability requests.
type CapabilityHandler struct {
	service *capability.Service
	logger  logger.Logger
}

// NewCapabilityHandler creates a new capability handler.
func NewCapabilityHandler(service *capability.Service, log logger.Logger) *CapabilityHandler {
	return &CapabilityHandler{
		service: service,
		logger:  log,
	}
}

// Screenshot handles screenshot capture requests.
func (h *CapabilityHandler) Screenshot(w http.ResponseWriter, r *http.Request) {
	var req capability.ScreenshotRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Screenshot(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "screenshot", err)
		return
	}
	h.writeResult(w, res)
}

// PDF handles PDF rendering requests.
func (h *CapabilityHandler) PDF(w http.ResponseWriter, r *http.Request) {
	var req capability.PDFRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.PDF(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "pdf", err)
		return
	}
	h.writeResult(w, res)
}

// Scrape handles page scraping requests.
func (h *CapabilityHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req capability.ScrapeRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Scrape(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "scrape", err)
		return
	}
	h.writeResult(w, res)
}

// HTML handles raw page HTML requests.
func (h *CapabilityHandler) HTML(w http.ResponseWriter, r *http.Request) {
	var req capability.HTMLRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.HTML(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "html", err)
		return
	}
	h.writeResult(w, res)
}

// ElementExists handles element presence checks.
func (h *CapabilityHandler) ElementExists(w http.ResponseWriter, r *http.Request) {
	var req capability.ElementExistsRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.ElementExists(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "element-exists", err)
		return
	}
	h.writeResult(w, res)
}

// Actions handles action step execution requests.
func (h *CapabilityHandler) Actions(w http.ResponseWriter, r *http.Request) {
	var req capability.ActionsRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Actions(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "actions", err)
		return
	}
	h.writeResult(w, res)
}

// Cookies handles cookie inspection requests.
func (h *CapabilityHandler) Cookies(w http.ResponseWriter, r *http.Request) {
	var req capability.CookiesRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Cookies(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "cookies", err)
		return
	}
	h.writeResult(w, res)
}

// Exec handles stored script execution requests.
func (h *CapabilityHandler) Exec(w http.ResponseWriter, r *http.Request) {
	var req capability.ExecRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Exec(r.Context(), req)
	if err != nil {
		h.respondCapabilityError(w, r, "exec", err)
		return
	}
	h.writeResult(w, res)
}

// writeResult renders a capability result: either a JSON document or a binary
// attachment with its content type.
func (h *CapabilityHandler) writeResult(w http.ResponseWriter, res *capability.Result) {
	if res.JSON != nil {
		respondJSON(w, http.StatusOK, res.JSON)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	if res.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Body)
}

// respondCapabilityError maps capability errors to HTTP status codes.
// Validation failures are 400, missing scripts 404, disabled scripts 403,
// everything else 500 with the underlying failure in details.
func (h *CapabilityHandler) respondCapabilityError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	switch {
	case errors.Is(err, capability.ErrInvalidRequest),
		errors.Is(err, capability.ErrUnsupportedCapability),
		errors.Is(err, capability.ErrNoScriptStore),
		errors.Is(err, actions.ErrMissingStepType),
		errors.Is(err, actions.ErrUnsupportedStepKind),
		errors.Is(err, actions.ErrInvalidStep),
		errors.Is(err, actions.ErrUnknownVariable),
		errors.Is(err, script.ErrInvalidScriptKey),
		errors.Is(err, script.ErrInvalidScriptType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, script.ErrScriptNotFound):
		respondError(w, http.StatusNotFound, "script not found")
	case errors.Is(err, script.ErrScriptDisabled):
		respondError(w, http.StatusForbidden, "script is disabled")
	default:
		h.logger.Error(r.Context(), "capability request failed", map[string]interface{}{
			"error": err.Error(),
			"kind":  kind,
		})
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   fmt.Sprintf("%s request failed", kind),
			Details: err.Error(),
		})
	}
}
