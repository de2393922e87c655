// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"deepfake_backend/internal/feature/detection/adapters/mesonet"
	"deepfake_backend/internal/feature/detection/domain"
	"deepfake_backend/internal/feature/detection/transport/handler"
	"deepfake_backend/internal/feature/detection/usecase"
	"deepfake_backend/internal/platform/cache"
	"deepfake_backend/internal/platform/config"
	infraredis "deepfake_backend/internal/platform/redis"
)

// NewModel creates a Meso4 model with parameters loaded from path.
// It returns the model together with a short digest of the bytes the loader consumed,
// which identifies the weights in cache keys.
func NewModel(path string) (*mesonet.Meso4, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrParameterLoad, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	r := io.TeeReader(f, h)

	m := mesonet.NewMeso4()
	if err := m.LoadParametersFrom(r); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	// デコーダが読み残した末尾もダイジェストに含める
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", domain.ErrParameterLoad, path, err)
	}

	digest := hex.EncodeToString(h.Sum(nil))[:12]
	slog.Info("モデルパラメータをロードしました", "path", path, "version", digest)
	return m, digest, nil
}

// NewDetectionUsecase wires the detection usecase around a loaded model.
// When caching is enabled and Redis is reachable, results are cached in Redis.
// Otherwise, it falls back to the uncached usecase.
// The returned function releases the Redis connection, if any.
func NewDetectionUsecase(ctx context.Context, cfg config.Config, model usecase.ScorePredictor, version string) (handler.DetectionUsecase, func()) {
	uc := usecase.NewDetectionUsecase(model)
	if !cfg.CacheEnabled || cfg.RedisHost == "" {
		return uc, func() {}
	}

	rdb, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return uc, func() {}
	}
	return newCachedUsecase(rdb, cfg, uc, version), func() {
		if err := rdb.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}
}

func newCachedUsecase(rdb *redisv9.Client, cfg config.Config, inner cache.Classifier, version string) *cache.CachingClassifier {
	return cache.NewCachingClassifier(rdb, cfg.CacheTTL, inner, "classify", version)
}
