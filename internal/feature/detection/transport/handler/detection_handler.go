// Package handler はdetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"deepfake_backend/internal/api"
	"deepfake_backend/internal/feature/detection/domain"
	"deepfake_backend/internal/feature/detection/domain/entity"
	"deepfake_backend/internal/feature/detection/usecase"
)

// FormField はアップロード画像のフォームフィールド名です。
const FormField = "file"

// DetectionUsecase は画像判定のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
}

// DetectionHandler は画像判定のHTTPリクエストを処理します。
type DetectionHandler struct {
	uc DetectionUsecase
}

// NewDetectionHandler はDetectionHandlerの新しいインスタンスを生成します。
func NewDetectionHandler(uc DetectionUsecase) *DetectionHandler {
	return &DetectionHandler{uc: uc}
}

// Detect は画像をアップロードして Real/Fake を判定します。
//
// エンドポイント: POST /v1/detect
// Content-Type: multipart/form-data
// フィールド: file（画像ファイル、最大10MB）
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile(FormField)
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		slog.Warn("画像サイズが上限を超過", "size", file.Size, "remote_addr", c.ClientIP())
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "画像サイズが大きすぎます"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	result, err := h.uc.Classify(c.Request.Context(), imageData)
	if err != nil {
		status, msg := errorStatus(err)
		slog.Error("画像判定に失敗", "error", err, "filename", file.Filename, "status", status)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	slog.Info("画像判定完了", "filename", file.Filename, "label", result.Label, "confidence", result.Confidence)
	c.JSON(http.StatusOK, api.ClassificationResponse{
		Label:      string(result.Label),
		Confidence: result.Confidence,
		BBox: api.BoundingBoxResponse{
			Top:    result.BBox.Top,
			Left:   result.BBox.Left,
			Height: result.BBox.Height,
			Width:  result.BBox.Width,
		},
		Color: string(result.Color),
		Image: base64.StdEncoding.EncodeToString(imageData),
	})
}

// errorStatus はドメインエラーをHTTPステータスとユーザー向けメッセージに変換します。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDecode):
		return http.StatusBadRequest, "対応していない画像形式です"
	case errors.Is(err, domain.ErrShape):
		return http.StatusBadRequest, "画像が破損しています"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "画像サイズが大きすぎます"
	default:
		return http.StatusInternalServerError, "画像判定に失敗しました"
	}
}
