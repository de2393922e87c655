package router

import (
	"github.com/gin-gonic/gin"

	detectionhandler "deepfake_backend/internal/feature/detection/transport/handler"
	"deepfake_backend/internal/feature/detection/usecase"
	"deepfake_backend/internal/platform/http/handler"
)

// NewRouter はルーティングを設定したgin.Engineを生成します。
func NewRouter(detection *detectionhandler.DetectionHandler, model handler.ReadinessChecker) *gin.Engine {
	r := gin.Default()
	// multipart のメモリ上限をアップロード上限に合わせる
	r.MaxMultipartMemory = usecase.MaxImageSize

	// 導通確認用（モデル未ロード時は503）
	health := handler.NewHealth(model)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	v1 := r.Group("/v1")
	{
		// 画像の真贋判定
		v1.POST("/detect", detection.Detect)
	}

	return r
}
