// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepfake_backend/internal/api"
)

// ReadinessChecker はモデルが推論可能な状態かを返します。
type ReadinessChecker interface {
	Loaded() bool
}

// NewHealth はサービスヘルスチェック用の /healthz ハンドラーを返します。
// モデルパラメータが未ロードの場合は 503 を返し、キャッシュを防止します。
func NewHealth(model ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		ready := model != nil && model.Loaded()
		status := http.StatusOK
		body := api.HealthResponse{Status: "ok", Model: "loaded"}
		if !ready {
			status = http.StatusServiceUnavailable
			body = api.HealthResponse{Status: "unavailable", Model: "not_loaded"}
		}

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(status)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(status, body)
		}
	}
}
