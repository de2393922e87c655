package mesonet

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
)

// ArtifactFormat は対応する重みアーティファクトのフォーマット識別子です。
const ArtifactFormat = "meso4/v1"

// Array は形状付きのフラットな float32 配列です（row-major）。
type Array struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// Artifact は重みアーティファクトのJSON表現です。
// Layers はレイヤー名 -> テンソル名 -> 配列で、名前とレイアウトは Keras に合わせています。
type Artifact struct {
	Format string                      `json:"format"`
	Layers map[string]map[string]Array `json:"layers"`
}

// Parameters はロード済みの不変な学習パラメータです。
type Parameters struct {
	convs  [len(blocks)]convLayer
	norms  [len(blocks)]normLayer
	hidden denseLayer
	output denseLayer
}

// DecodeArtifact はJSONの重みアーティファクトを読み込みます。
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}

// Encode はアーティファクトをJSONで書き出します。
func (a *Artifact) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(a)
}

// Parameters はアーティファクトをトポロジーと照合し、推論用パラメータを構築します。
func (a *Artifact) Parameters() (*Parameters, error) {
	if a.Format != ArtifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q (want %q)", a.Format, ArtifactFormat)
	}
	shapes := LayerShapes()
	p := &Parameters{}

	for i, b := range blocks {
		name := convLayerName(i)
		kernel, err := a.array(name, "kernel", shapes[name]["kernel"])
		if err != nil {
			return nil, err
		}
		bias, err := a.array(name, "bias", shapes[name]["bias"])
		if err != nil {
			return nil, err
		}
		p.convs[i] = convLayer{
			size:   b.kernel,
			in:     shapes[name]["kernel"][2],
			out:    b.filters,
			kernel: kernel,
			bias:   bias,
		}

		norm, err := a.normLayer(normLayerName(i), shapes)
		if err != nil {
			return nil, err
		}
		p.norms[i] = norm
	}

	var err error
	if p.hidden, err = a.denseLayer(hiddenLayerName, shapes); err != nil {
		return nil, err
	}
	if p.output, err = a.denseLayer(outputLayerName, shapes); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *Artifact) normLayer(name string, shapes map[string]map[string][]int) (normLayer, error) {
	t := make(map[string][]float32, 4)
	for _, key := range []string{"gamma", "beta", "moving_mean", "moving_variance"} {
		v, err := a.array(name, key, shapes[name][key])
		if err != nil {
			return normLayer{}, err
		}
		t[key] = v
	}

	n := len(t["gamma"])
	l := normLayer{scale: make([]float32, n), shift: make([]float32, n)}
	for ch := 0; ch < n; ch++ {
		variance := t["moving_variance"][ch]
		if variance < 0 {
			return normLayer{}, fmt.Errorf("%s/moving_variance[%d] is negative: %v", name, ch, variance)
		}
		scale := t["gamma"][ch] / float32(math.Sqrt(float64(variance)+BatchNormEpsilon))
		l.scale[ch] = scale
		l.shift[ch] = t["beta"][ch] - t["moving_mean"][ch]*scale
	}
	return l, nil
}

func (a *Artifact) denseLayer(name string, shapes map[string]map[string][]int) (denseLayer, error) {
	kernel, err := a.array(name, "kernel", shapes[name]["kernel"])
	if err != nil {
		return denseLayer{}, err
	}
	bias, err := a.array(name, "bias", shapes[name]["bias"])
	if err != nil {
		return denseLayer{}, err
	}
	return denseLayer{
		in:     shapes[name]["kernel"][0],
		out:    shapes[name]["kernel"][1],
		kernel: kernel,
		bias:   bias,
	}, nil
}

// array は指定テンソルを取り出し、形状と要素数を検証したコピーを返します。
func (a *Artifact) array(layer, name string, want []int) ([]float32, error) {
	tensors, ok := a.Layers[layer]
	if !ok {
		return nil, fmt.Errorf("missing layer %q", layer)
	}
	arr, ok := tensors[name]
	if !ok {
		return nil, fmt.Errorf("missing tensor %s/%s", layer, name)
	}
	if !slices.Equal(arr.Shape, want) {
		return nil, fmt.Errorf("tensor %s/%s has shape %v, want %v", layer, name, arr.Shape, want)
	}
	n := 1
	for _, d := range want {
		n *= d
	}
	if len(arr.Data) != n {
		return nil, fmt.Errorf("tensor %s/%s has %d values, want %d", layer, name, len(arr.Data), n)
	}
	for i, v := range arr.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("tensor %s/%s[%d] is not finite", layer, name, i)
		}
	}
	return slices.Clone(arr.Data), nil
}
