package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"deepfake_backend/internal/app/di"
	"deepfake_backend/internal/app/router"
	"deepfake_backend/internal/feature/detection/transport/handler"
	"deepfake_backend/internal/platform/config"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 学習済み重みのロード（失敗時は起動しない）
	model, version, err := di.NewModel(cfg.WeightsPath)
	if err != nil {
		log.Fatalf("[FATAL] failed to load weights from %s: %v", cfg.WeightsPath, err)
	}

	// Usecase（Redisが使える場合はキャッシュでラップ）
	uc, closeCache := di.NewDetectionUsecase(context.Background(), cfg, model, version)
	defer closeCache()

	// Handler
	detectionH := handler.NewDetectionHandler(uc)

	// ルータ生成
	r := router.NewRouter(detectionH, model)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
