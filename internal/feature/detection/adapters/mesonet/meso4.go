package mesonet

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"gorgonia.org/tensor"

	"deepfake_backend/internal/feature/detection/domain"
	"deepfake_backend/internal/feature/detection/usecase"
)

// InputShape は Forward が受け付けるテンソル形状です（バッチ軸付き NHWC）。
var InputShape = tensor.Shape{1, InputHeight, InputWidth, InputChannels}

// Meso4 は固定トポロジーの二値分類器です。
// パラメータは一度だけロードされ、その後は複数の goroutine から読み取り専用で共有されます。
type Meso4 struct {
	params atomic.Pointer[Parameters]
}

// Meso4がScorePredictorを実装していることをコンパイル時に検証します。
var _ usecase.ScorePredictor = (*Meso4)(nil)

// NewMeso4 はパラメータ未ロードのMeso4を生成します。
func NewMeso4() *Meso4 {
	return &Meso4{}
}

// LoadParameters は指定パスの重みアーティファクトを読み込みます。
// 失敗時は domain.ErrParameterLoad をラップしたエラーを返します。
func (m *Meso4) LoadParameters(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrParameterLoad, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("重みファイルのクローズに失敗", "path", path, "error", err)
		}
	}()

	if err := m.LoadParametersFrom(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("モデルパラメータをロードしました", "path", path)
	return nil
}

// LoadParametersFrom は r から重みアーティファクトをデコードしてパラメータとして設定します。
// 失敗時は domain.ErrParameterLoad をラップしたエラーを返します。
func (m *Meso4) LoadParametersFrom(r io.Reader) error {
	a, err := DecodeArtifact(r)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrParameterLoad, err)
	}
	return m.SetArtifact(a)
}

// SetArtifact はデコード済みアーティファクトを検証してパラメータとして設定します。
// 2回目以降の呼び出しはエラーになります。
func (m *Meso4) SetArtifact(a *Artifact) error {
	p, err := a.Parameters()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrParameterLoad, err)
	}
	if !m.params.CompareAndSwap(nil, p) {
		return fmt.Errorf("%w: parameters are already loaded", domain.ErrParameterLoad)
	}
	return nil
}

// Loaded はパラメータがロード済みかどうかを返します。
func (m *Meso4) Loaded() bool {
	return m.params.Load() != nil
}

// Forward は (1, 256, 256, 3) の正規化済みテンソルから [0, 1] のスコアを計算します。
// 副作用はなく、同じ入力とパラメータに対して常に同じ値を返します。
func (m *Meso4) Forward(input *tensor.Dense) (float32, error) {
	p := m.params.Load()
	if p == nil {
		return 0, domain.ErrModelNotLoaded
	}
	if input == nil {
		return 0, fmt.Errorf("%w: nil input tensor", domain.ErrShape)
	}
	if input.Dtype() != tensor.Float32 {
		return 0, fmt.Errorf("%w: dtype %v, want float32", domain.ErrShape, input.Dtype())
	}
	if !input.Shape().Eq(InputShape) {
		return 0, fmt.Errorf("%w: tensor shape %v, want %v", domain.ErrShape, input.Shape(), InputShape)
	}
	data, ok := input.Data().([]float32)
	if !ok || len(data) != InputShape.TotalSize() {
		return 0, fmt.Errorf("%w: tensor backing does not hold %d float32 values", domain.ErrShape, InputShape.TotalSize())
	}

	fm := featureMap{h: InputHeight, w: InputWidth, c: InputChannels, data: data}
	for i, b := range blocks {
		fm = conv2DReLU(fm, p.convs[i])
		batchNorm(fm, p.norms[i])
		fm = maxPoolSame(fm, b.pool)
	}

	// Flatten は NHWC の並びそのまま。Dropout は推論時は恒等写像なので省略。
	hidden := dense(fm.data, p.hidden)
	leakyReLU(hidden, LeakySlope)
	logit := dense(hidden, p.output)[0]

	return sigmoid(logit), nil
}
