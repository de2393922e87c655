// Package mesonet はMeso4畳み込みネットワークの推論実装を提供します。
//
// トポロジーは学習済み重み（Keras の Meso4_DF）と互換性を保つため固定です。
// 入力は NHWC (1, 256, 256, 3) の float32 テンソルで、出力は [0, 1] のスコアです。
package mesonet

import "fmt"

const (
	// InputHeight, InputWidth, InputChannels は入力画像の固定サイズです。
	InputHeight   = 256
	InputWidth    = 256
	InputChannels = 3

	// HiddenUnits は全結合隠れ層のユニット数です。
	HiddenUnits = 16
	// LeakySlope は LeakyReLU の負側の傾きです。
	LeakySlope = 0.1
	// BatchNormEpsilon は Keras BatchNormalization のデフォルト epsilon です。
	BatchNormEpsilon = 1e-3
)

// blockSpec は畳み込みブロック1つ分の構成です。
type blockSpec struct {
	kernel  int // 正方カーネルの一辺
	filters int // 出力チャネル数
	pool    int // max pooling の窓サイズ（ストライドも同じ）
}

// blocks は4つの畳み込みブロックです。
// 4番目だけ pool=4 なのは意図的で、flatten 後の特徴量数がこれで決まります。
var blocks = [4]blockSpec{
	{kernel: 3, filters: 8, pool: 2},
	{kernel: 5, filters: 8, pool: 2},
	{kernel: 5, filters: 16, pool: 2},
	{kernel: 5, filters: 16, pool: 4},
}

// FlattenSize は最終ブロック出力を平坦化した特徴量数を返します（1024）。
func FlattenSize() int {
	h, w := InputHeight, InputWidth
	for _, b := range blocks {
		h = ceilDiv(h, b.pool)
		w = ceilDiv(w, b.pool)
	}
	return h * w * blocks[len(blocks)-1].filters
}

// Keras が自動採番するレイヤー名です。
func convLayerName(i int) string { return fmt.Sprintf("conv2d_%d", i+1) }
func normLayerName(i int) string { return fmt.Sprintf("batch_normalization_%d", i+1) }

const (
	hiddenLayerName = "dense_1"
	outputLayerName = "dense_2"
)

// LayerShapes は重みアーティファクトに必要な全テンソルの形状を返します。
// キーはレイヤー名、値はテンソル名から形状へのマップです。
func LayerShapes() map[string]map[string][]int {
	shapes := make(map[string]map[string][]int, 2*len(blocks)+2)
	in := InputChannels
	for i, b := range blocks {
		shapes[convLayerName(i)] = map[string][]int{
			"kernel": {b.kernel, b.kernel, in, b.filters},
			"bias":   {b.filters},
		}
		shapes[normLayerName(i)] = map[string][]int{
			"gamma":           {b.filters},
			"beta":            {b.filters},
			"moving_mean":     {b.filters},
			"moving_variance": {b.filters},
		}
		in = b.filters
	}
	shapes[hiddenLayerName] = map[string][]int{
		"kernel": {FlattenSize(), HiddenUnits},
		"bias":   {HiddenUnits},
	}
	shapes[outputLayerName] = map[string][]int{
		"kernel": {HiddenUnits, 1},
		"bias":   {1},
	}
	return shapes
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
