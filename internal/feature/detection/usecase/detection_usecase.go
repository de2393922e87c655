// Package usecase はdetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"gorgonia.org/tensor"

	"deepfake_backend/internal/feature/detection/domain"
	"deepfake_backend/internal/feature/detection/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// RealThreshold を「超えた」スコアを Real と判定します（同値は Fake）。
	RealThreshold = 0.5
	// FakeConfidenceOffset は Fake 判定時にスコアへ加算する値です。
	// 正規化しないため信頼度は 1.0 を超えることがあります（既知の不具合、互換のため維持）。
	FakeConfidenceOffset = 0.7
)

// DisplayBox は結果表示用の固定矩形です。画像内容とは無関係なプレースホルダーです。
var DisplayBox = entity.BoundingBox{Top: 10, Left: 10, Height: 80, Width: 80}

// ScorePredictor は正規化済み画像テンソルから真正スコアを計算するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ScorePredictor interface {
	// Forward は (1, 256, 256, 3) のテンソルから [0, 1] のスコアを返します。
	Forward(input *tensor.Dense) (float32, error)
}

// detectionUsecase は画像の真贋判定を提供します。
type detectionUsecase struct {
	predictor ScorePredictor
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
func NewDetectionUsecase(p ScorePredictor) *detectionUsecase {
	return &detectionUsecase{predictor: p}
}

// Classify は画像バイト列を判定し、ラベル・信頼度・表示用メタデータを返します。
func (u *detectionUsecase) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrImageTooLarge, len(imageData), MaxImageSize)
	}

	input, err := Preprocess(imageData)
	if err != nil {
		return nil, err
	}

	score, err := u.predictor.Forward(input)
	if err != nil {
		return nil, fmt.Errorf("forward pass failed: %w", err)
	}

	result := Decide(score)
	slog.DebugContext(ctx, "判定完了", "score", score, "label", result.Label, "confidence", result.Confidence)
	return &result, nil
}

// Decide はスコアから判定結果を組み立てます。
func Decide(score float32) entity.ClassificationResult {
	if score > RealThreshold {
		return entity.ClassificationResult{
			Label:      entity.LabelReal,
			Confidence: score,
			BBox:       DisplayBox,
			Color:      entity.ColorGreen,
		}
	}
	return entity.ClassificationResult{
		Label:      entity.LabelFake,
		Confidence: score + FakeConfidenceOffset,
		BBox:       DisplayBox,
		Color:      entity.ColorRed,
	}
}
