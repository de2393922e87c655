package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubModel はReadinessCheckerのスタブです。
type stubModel struct {
	loaded bool
}

func (s stubModel) Loaded() bool { return s.loaded }

func setupRouter(model ReadinessChecker) *gin.Engine {
	r := gin.New()
	h := NewHealth(model)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	return r
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		model          ReadinessChecker
		expectedStatus int
		expectedBody   map[string]string
	}{
		{
			name:           "model loaded",
			model:          stubModel{loaded: true},
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]string{"status": "ok", "model": "loaded"},
		},
		{
			name:           "model not loaded",
			model:          stubModel{loaded: false},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]string{"status": "unavailable", "model": "not_loaded"},
		},
		{
			name:           "nil model",
			model:          nil,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]string{"status": "unavailable", "model": "not_loaded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(tt.model)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			for k, v := range tt.expectedBody {
				if response[k] != v {
					t.Errorf("expected %s %q, got %q", k, v, response[k])
				}
			}

			// Check Cache-Control header
			if w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		loaded         bool
		expectedStatus int
	}{
		{loaded: true, expectedStatus: http.StatusOK},
		{loaded: false, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		router := setupRouter(stubModel{loaded: tt.loaded})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodHead, "/healthz", nil)

		router.ServeHTTP(w, req)

		if w.Code != tt.expectedStatus {
			t.Errorf("loaded=%v: expected status %d, got %d", tt.loaded, tt.expectedStatus, w.Code)
		}
		// HEAD should have no body
		if w.Body.Len() != 0 {
			t.Errorf("expected empty body for HEAD request, got %d bytes", w.Body.Len())
		}
	}
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	router := setupRouter(stubModel{loaded: false})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
	}
}
