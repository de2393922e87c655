package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"deepfake_backend/internal/feature/detection/domain/entity"
	"deepfake_backend/internal/feature/detection/transport/handler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubModel struct{ loaded bool }

func (s stubModel) Loaded() bool { return s.loaded }

type stubUsecase struct{}

func (stubUsecase) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	return nil, nil
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()

	r := NewRouter(handler.NewDetectionHandler(stubUsecase{}), stubModel{loaded: true})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodOptions, "/healthz", http.StatusNoContent},
		// file フィールドなし
		{http.MethodPost, "/v1/detect", http.StatusBadRequest},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.method, tt.path)
	}
}
