package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"github.com/hairizuan-noorazman/browser-automation/script"
	"github.com/hairizuan-noorazman/browser-automation/testutil"
)

func setupScriptRouter(t *testing.T) *mux.Router {
	t.Helper()
	db := testutil.SetupTestDB(t, &script.Script{})
	store := script.NewMySQLStore(db, logger.NewTestLogger())
	h := NewScriptHandler(store, logger.NewTestLogger())

	router := mux.NewRouter()
	router.HandleFunc("/scripts", h.Create).Methods("POST")
	router.HandleFunc("/scripts", h.List).Methods("GET")
	router.HandleFunc("/scripts/{key}", h.Get).Methods("GET")
	router.HandleFunc("/scripts/{key}", h.Update).Methods("PUT")
	router.HandleFunc("/scripts/{key}", h.Delete).Methods("DELETE")
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScriptHandlerCreate(t *testing.T) {
	router := setupScriptRouter(t)

	w := doRequest(t, router, http.MethodPost, "/scripts", map[string]interface{}{
		"key":  "checkout-flow",
		"type": "actions",
		"dsl": map[string]interface{}{
			"url":     "https://shop.example.com",
			"actions": []interface{}{map[string]interface{}{"type": "click", "selector": "#buy"}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status code = %d, want %d, body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created script.Script
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Key != "checkout-flow" {
		t.Errorf("key = %q, want checkout-flow", created.Key)
	}
	if !created.Enabled {
		t.Error("script should be enabled by default")
	}
}

func TestScriptHandlerCreateInvalid(t *testing.T) {
	router := setupScriptRouter(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "missing key",
			body: map[string]interface{}{"type": "screenshot"},
		},
		{
			name: "unknown type",
			body: map[string]interface{}{"key": "k", "type": "levitate"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/scripts", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestScriptHandlerGet(t *testing.T) {
	router := setupScriptRouter(t)

	doRequest(t, router, http.MethodPost, "/scripts", map[string]interface{}{
		"key":  "daily-report",
		"type": "pdf",
		"dsl":  map[string]interface{}{"url": "https://example.com/report"},
	})

	w := doRequest(t, router, http.MethodGet, "/scripts/daily-report", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusOK)
	}

	var got script.Script
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Type != script.TypePDF {
		t.Errorf("type = %q, want %q", got.Type, script.TypePDF)
	}

	w = doRequest(t, router, http.MethodGet, "/scripts/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestScriptHandlerUpdate(t *testing.T) {
	router := setupScriptRouter(t)

	doRequest(t, router, http.MethodPost, "/scripts", map[string]interface{}{
		"key":  "landing-shot",
		"type": "screenshot",
		"dsl":  map[string]interface{}{"url": "https://example.com"},
	})

	w := doRequest(t, router, http.MethodPut, "/scripts/landing-shot", map[string]interface{}{
		"enabled": false,
		"defaults": map[string]interface{}{
			"fullPage": true,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var updated script.Script
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if updated.Enabled {
		t.Error("script should be disabled after update")
	}
	if updated.Defaults["fullPage"] != true {
		t.Errorf("defaults not applied: %v", updated.Defaults)
	}

	// No setters in the body is a client error.
	w = doRequest(t, router, http.MethodPut, "/scripts/landing-shot", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doRequest(t, router, http.MethodPut, "/scripts/missing", map[string]interface{}{"enabled": true})
	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestScriptHandlerDelete(t *testing.T) {
	router := setupScriptRouter(t)

	doRequest(t, router, http.MethodPost, "/scripts", map[string]interface{}{
		"key":  "one-off",
		"type": "scrape",
		"dsl":  map[string]interface{}{"url": "https://example.com"},
	})

	w := doRequest(t, router, http.MethodDelete, "/scripts/one-off", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusOK)
	}

	w = doRequest(t, router, http.MethodGet, "/scripts/one-off", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted script still retrievable, status = %d", w.Code)
	}

	w = doRequest(t, router, http.MethodDelete, "/scripts/one-off", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestScriptHandlerList(t *testing.T) {
	router := setupScriptRouter(t)

	for _, key := range []string{"a-script", "b-script", "c-script"} {
		w := doRequest(t, router, http.MethodPost, "/scripts", map[string]interface{}{
			"key":  key,
			"type": "scrape",
			"dsl":  map[string]interface{}{"url": "https://example.com"},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("failed to seed script %s: %s", key, w.Body.String())
		}
	}

	w := doRequest(t, router, http.MethodGet, "/scripts?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", w.Code, http.StatusOK)
	}

	var resp ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	items, ok := resp.Items.([]interface{})
	if !ok {
		t.Fatalf("items is not an array: %T", resp.Items)
	}
	if len(items) != 2 {
		t.Errorf("items length = %d, want 2", len(items))
	}
	if resp.Limit != 2 {
		t.Errorf("limit = %d, want 2", resp.Limit)
	}
}
