// Package capability implements the browser operations the service exposes:
// screenshot, pdf, scrape, html, element-exists, actions, cookies and exec.
// Each method is directly callable with a typed request and returns a Result,
// independent of how the request arrived.
package capability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-automation/browser"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/runlog"
	"github.com/hairizuan-noorazman/browser-automation/script"
	"github.com/hairizuan-noorazman/browser-automation/storage"
	"github.com/hairizuan-noorazman/browser-automation/webhook"
)

var (
	// ErrInvalidRequest is wrapped around request validation failures.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedCapability is returned when a dispatch names an unknown
	// capability type.
	ErrUnsupportedCapability = errors.New("unsupported capability type")

	// ErrNoScriptStore is returned when exec-by-key is used without a
	// configured script store.
	ErrNoScriptStore = errors.New("no script store configured")
)

// Engine hands out isolated pages. Satisfied by *browser.Engine.
type Engine interface {
	NewPage(ctx context.Context) (browser.Page, error)
}

// Result is the outcome of one capability call: either binary content with a
// content type and suggested filename, or a JSON document.
type Result struct {
	ContentType string
	Filename    string
	Body        []byte
	JSON        map[string]interface{}
	AssetPath   string
}

// Service executes capability requests against the shared browser engine.
// The script store, blob storage and run log are optional.
type Service struct {
	engine   Engine
	scripts  script.Store
	webhooks *webhook.Client
	storage  storage.BlobStorage
	runs     runlog.Store
	logger   logger.Logger
}

// NewService creates the capability service.
func NewService(engine Engine, scripts script.Store, webhooks *webhook.Client,
	blobs storage.BlobStorage, runs runlog.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		engine:   engine,
		scripts:  scripts,
		webhooks: webhooks,
		storage:  blobs,
		runs:     runs,
		logger:   log,
	}
}

// Dispatch routes a loosely-typed payload to the capability named by kind.
// Used by the exec path after script assembly.
func (s *Service) Dispatch(ctx context.Context, kind string, payload map[string]interface{}) (*Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not serializable: %v", ErrInvalidRequest, err)
	}

	switch kind {
	case script.TypeScreenshot:
		var req ScreenshotRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.Screenshot(ctx, req)

	case script.TypePDF:
		var req PDFRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.PDF(ctx, req)

	case script.TypeScrape:
		var req ScrapeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.Scrape(ctx, req)

	case script.TypeActions:
		var req ActionsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return s.Actions(ctx, req)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCapability, kind)
	}
}

// Exec resolves a stored script by key, assembles its payload and dispatches
// it. With no script store configured, a caller-supplied type plus payload is
// dispatched directly.
func (s *Service) Exec(ctx context.Context, req ExecRequest) (*Result, error) {
	if s.scripts == nil {
		if req.Type != "" {
			payload := req.Payload
			if payload == nil {
				payload = map[string]interface{}{}
			}
			return s.Dispatch(ctx, req.Type, payload)
		}
		return nil, ErrNoScriptStore
	}

	if req.Key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidRequest)
	}

	stored, err := s.scripts.GetByKey(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if !stored.Enabled {
		return nil, script.ErrScriptDisabled
	}

	// Copied so the payload injection never mutates the caller's map.
	params := make(map[string]interface{}, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	if req.Payload != nil {
		params["payload"] = req.Payload
	}

	final := script.Assemble(stored, params)

	s.logger.Info(ctx, "executing stored script", map[string]interface{}{
		"key":  stored.Key,
		"type": stored.Type,
	})

	return s.Dispatch(ctx, stored.Type, final)
}

// base64Result wraps body as the JSON base64 envelope.
func base64Result(contentType string, body []byte) *Result {
	return &Result{
		JSON: map[string]interface{}{
			"ok":     true,
			"type":   contentType,
			"length": len(body),
			"base64": base64.StdEncoding.EncodeToString(body),
		},
	}
}

// saveArtifact uploads body to blob storage under a generated path. Errors
// fail the request since the caller explicitly asked for persistence.
func (s *Service) saveArtifact(ctx context.Context, kind, ext string, body []byte) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("%w: artifact storage is not configured", ErrInvalidRequest)
	}

	path := fmt.Sprintf("captures/%s/%s.%s", kind, uuid.New().String(), ext)
	if err := s.storage.Upload(ctx, path, bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	return path, nil
}

// record writes a run log entry. Best-effort: failures are logged, never
// surfaced.
func (s *Service) record(ctx context.Context, kind, url string, start time.Time, assetPath string, runErr error) {
	if s.runs == nil {
		return
	}

	run := &runlog.Run{
		Kind:       kind,
		URL:        url,
		Status:     runlog.StatusSucceeded,
		DurationMs: time.Since(start).Milliseconds(),
		AssetPath:  assetPath,
	}
	if runErr != nil {
		run.Status = runlog.StatusFailed
		run.Error = runErr.Error()
	}

	if err := s.runs.Create(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn(ctx, "failed to record run", map[string]interface{}{
			"error": err.Error(),
			"kind":  kind,
		})
	}
}
