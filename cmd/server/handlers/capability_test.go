package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hairizuan-noorazman/browser-automation/capability"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/script"
	"github.com/hairizuan-noorazman/browser-automation/testutil"
)

// setupCapabilityHandler wires the handler against a real script store and no
// browser engine. Validation and script lookup failures surface before the
// engine is ever touched, which is exactly what these tests exercise.
func setupCapabilityHandler(t *testing.T) (*CapabilityHandler, script.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t, &script.Script{})
	store := script.NewMySQLStore(db, logger.NewTestLogger())
	svc := capability.NewService(nil, store, nil, nil, nil, logger.NewTestLogger())
	return NewCapabilityHandler(svc, logger.NewTestLogger()), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestCapabilityHandlerValidation(t *testing.T) {
	h, _ := setupCapabilityHandler(t)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		body       interface{}
		wantStatus int
	}{
		{
			name:       "screenshot without url",
			handler:    h.Screenshot,
			body:       map[string]interface{}{"fullPage": true},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "pdf without url",
			handler:    h.PDF,
			body:       map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "actions without steps",
			handler:    h.Actions,
			body:       map[string]interface{}{"url": "https://example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "element-exists without selector",
			handler:    h.ElementExists,
			body:       map[string]interface{}{"url": "https://example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exec without key",
			handler:    h.Exec,
			body:       map[string]interface{}{"params": map[string]interface{}{}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exec with unknown key",
			handler:    h.Exec,
			body:       map[string]interface{}{"key": "no-such-script"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, tc.handler, tc.body)
			if w.Code != tc.wantStatus {
				t.Errorf("status code = %d, want %d, body: %s", w.Code, tc.wantStatus, w.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not an error document: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestCapabilityHandlerMalformedBody(t *testing.T) {
	h, _ := setupCapabilityHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Screenshot(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCapabilityHandlerDisabledScript(t *testing.T) {
	h, store := setupCapabilityHandler(t)

	s := &script.Script{
		Key:  "nightly-capture",
		Type: script.TypeScreenshot,
		DSL:  script.Document{"url": "https://example.com"},
	}
	if err := store.Create(context.Background(), s); err != nil {
		t.Fatalf("failed to create script: %v", err)
	}
	if err := store.Update(context.Background(), "nightly-capture", script.SetEnabled(false)); err != nil {
		t.Fatalf("failed to disable script: %v", err)
	}

	w := postJSON(t, h.Exec, map[string]interface{}{"key": "nightly-capture"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status code = %d, want %d, body: %s", w.Code, http.StatusForbidden, w.Body.String())
	}
}

func TestCapabilityHandlerExecWithoutStore(t *testing.T) {
	svc := capability.NewService(nil, nil, nil, nil, nil, logger.NewTestLogger())
	h := NewCapabilityHandler(svc, logger.NewTestLogger())

	w := postJSON(t, h.Exec, map[string]interface{}{"key": "anything"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d, body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestWriteResult(t *testing.T) {
	t.Parallel()
	h := NewCapabilityHandler(nil, logger.NewTestLogger())

	t.Run("json document", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.writeResult(w, &capability.Result{
			JSON: map[string]interface{}{"ok": true},
		})

		if w.Code != http.StatusOK {
			t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
	})

	t.Run("binary attachment", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.writeResult(w, &capability.Result{
			ContentType: "image/png",
			Filename:    "screenshot.png",
			Body:        []byte("png-bytes"),
		})

		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q, want image/png", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="screenshot.png"` {
			t.Errorf("content disposition = %q", cd)
		}
		if w.Body.String() != "png-bytes" {
			t.Errorf("body = %q, want png-bytes", w.Body.String())
		}
	})
}
