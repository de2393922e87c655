package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepfake_backend/internal/feature/detection/domain"
	"deepfake_backend/internal/feature/detection/domain/entity"
	"deepfake_backend/internal/feature/detection/transport/handler"
)

// mockDetectionUsecase はDetectionUsecaseインターフェースのモック実装です。
type mockDetectionUsecase struct {
	ClassifyFunc func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
}

func (m *mockDetectionUsecase) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	return m.ClassifyFunc(ctx, imageData)
}

// createMultipartRequest はテスト用のマルチパートリクエストを生成するヘルパー関数です。
func createMultipartRequest(t *testing.T, fieldName, fileName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/v1/detect", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestDetectionHandler_Detect(t *testing.T) {
	gin.SetMode(gin.TestMode)

	content := []byte("fake-image")
	encoded := base64.StdEncoding.EncodeToString(content)
	box := entity.BoundingBox{Top: 10, Left: 10, Height: 80, Width: 80}

	tests := []struct {
		name           string
		setupRequest   func(t *testing.T) *http.Request
		mockFunc       func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: real",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "face.jpg", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				assert.Equal(t, content, imageData)
				return &entity.ClassificationResult{Label: entity.LabelReal, Confidence: 0.75, BBox: box, Color: entity.ColorGreen}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: fmt.Sprintf(`{"label":"Real","confidence":0.75,"bbox":{"top":10,"left":10,"height":80,"width":80},"color":"green","image":%q}`,
				encoded),
		},
		{
			name: "success: fake confidence above one is returned as is",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "face.png", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return &entity.ClassificationResult{Label: entity.LabelFake, Confidence: 1.125, BBox: box, Color: entity.ColorRed}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: fmt.Sprintf(`{"label":"Fake","confidence":1.125,"bbox":{"top":10,"left":10,"height":80,"width":80},"color":"red","image":%q}`,
				encoded),
		},
		{
			name: "error: no file field",
			setupRequest: func(t *testing.T) *http.Request {
				req, _ := http.NewRequest(http.MethodPost, "/v1/detect", io.NopCloser(bytes.NewReader(nil)))
				return req
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"画像ファイルが必要です"}`,
		},
		{
			name: "error: wrong field name",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "image", "face.jpg", content)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"画像ファイルが必要です"}`,
		},
		{
			name: "error: decode failure",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "notes.txt", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return nil, fmt.Errorf("%w: unknown format", domain.ErrDecode)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"対応していない画像形式です"}`,
		},
		{
			name: "error: shape failure",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "empty.png", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return nil, domain.ErrShape
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"画像が破損しています"}`,
		},
		{
			name: "error: too large",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "huge.png", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return nil, domain.ErrImageTooLarge
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   `{"error":"画像サイズが大きすぎます"}`,
		},
		{
			name: "error: model not loaded",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "face.jpg", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return nil, fmt.Errorf("forward pass failed: %w", domain.ErrModelNotLoaded)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"画像判定に失敗しました"}`,
		},
		{
			name: "error: unexpected failure",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, "file", "face.jpg", content)
			},
			mockFunc: func(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
				return nil, errors.New("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"画像判定に失敗しました"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockDetectionUsecase{ClassifyFunc: tt.mockFunc}
			h := handler.NewDetectionHandler(mockUC)

			router := gin.New()
			router.POST("/v1/detect", h.Detect)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.setupRequest(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
