// Package mesonettest はテスト用の重みアーティファクトを生成します。
package mesonettest

import (
	"maps"
	"math"
	"math/rand"
	"slices"

	"deepfake_backend/internal/feature/detection/adapters/mesonet"
)

// ConstantArtifact は入力に関係なく score を出力するアーティファクトを返します。
// 畳み込み・全結合の重みをすべて0にし、出力層のバイアスに logit(score) を置きます。
// score は (0, 1) の範囲で指定してください。
func ConstantArtifact(score float64) *mesonet.Artifact {
	logit := float32(math.Log(score / (1 - score)))
	return build(func(layer, name string, _ int) float32 {
		switch {
		case name == "gamma", name == "moving_variance":
			return 1
		case layer == "dense_2" && name == "bias":
			return logit
		default:
			return 0
		}
	})
}

// RandomArtifact は seed から決定的に生成したランダムな重みのアーティファクトを返します。
func RandomArtifact(seed int64) *mesonet.Artifact {
	rng := rand.New(rand.NewSource(seed))
	return build(func(_, name string, _ int) float32 {
		switch name {
		case "gamma":
			return 0.5 + rng.Float32()
		case "moving_variance":
			return 0.1 + rng.Float32()
		case "beta", "moving_mean", "bias":
			return rng.Float32() - 0.5
		default:
			return (rng.Float32() - 0.5) * 0.2
		}
	})
}

// Mutate は layer/name テンソルの形状を差し替えます（不正なアーティファクトの生成用）。
func Mutate(a *mesonet.Artifact, layer, name string, shape []int) *mesonet.Artifact {
	n := 1
	for _, d := range shape {
		n *= d
	}
	a.Layers[layer][name] = mesonet.Array{Shape: shape, Data: make([]float32, n)}
	return a
}

func build(fill func(layer, name string, i int) float32) *mesonet.Artifact {
	a := &mesonet.Artifact{
		Format: mesonet.ArtifactFormat,
		Layers: map[string]map[string]mesonet.Array{},
	}
	shapes := mesonet.LayerShapes()
	// 乱数の割り当てを決定的にするため名前順に走査する
	for _, layer := range slices.Sorted(maps.Keys(shapes)) {
		a.Layers[layer] = map[string]mesonet.Array{}
		for _, name := range slices.Sorted(maps.Keys(shapes[layer])) {
			shape := shapes[layer][name]
			n := 1
			for _, d := range shape {
				n *= d
			}
			data := make([]float32, n)
			for i := range data {
				data[i] = fill(layer, name, i)
			}
			a.Layers[layer][name] = mesonet.Array{Shape: shape, Data: data}
		}
	}
	return a
}
