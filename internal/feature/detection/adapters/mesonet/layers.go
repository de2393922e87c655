package mesonet

import (
	"math"
)

// featureMap は単一バッチの NHWC 活性化です。index = (y*w+x)*c + ch
type featureMap struct {
	h, w, c int
	data    []float32
}

type convLayer struct {
	size    int // カーネル一辺
	in, out int
	kernel  []float32 // HWIO
	bias    []float32
}

// normLayer は推論用に畳み込んだバッチ正規化です。
// y = x*scale + shift, scale = gamma/sqrt(var+eps), shift = beta - mean*scale
type normLayer struct {
	scale []float32
	shift []float32
}

type denseLayer struct {
	in, out int
	kernel  []float32 // (in, out)
	bias    []float32
}

// conv2DReLU はストライド1・same パディングの2次元畳み込みに ReLU を適用します。
func conv2DReLU(in featureMap, l convLayer) featureMap {
	pad := (l.size - 1) / 2
	out := featureMap{h: in.h, w: in.w, c: l.out, data: make([]float32, in.h*in.w*l.out)}

	for y := 0; y < in.h; y++ {
		for x := 0; x < in.w; x++ {
			o := (y*in.w + x) * l.out
			acc := out.data[o : o+l.out]
			copy(acc, l.bias)

			for ky := 0; ky < l.size; ky++ {
				iy := y + ky - pad
				if iy < 0 || iy >= in.h {
					continue
				}
				for kx := 0; kx < l.size; kx++ {
					ix := x + kx - pad
					if ix < 0 || ix >= in.w {
						continue
					}
					src := in.data[(iy*in.w+ix)*in.c : (iy*in.w+ix+1)*in.c]
					kBase := (ky*l.size + kx) * l.in * l.out
					for ic, v := range src {
						if v == 0 {
							continue
						}
						row := l.kernel[kBase+ic*l.out : kBase+(ic+1)*l.out]
						for oc, k := range row {
							acc[oc] += v * k
						}
					}
				}
			}

			for oc := range acc {
				if acc[oc] < 0 {
					acc[oc] = 0
				}
			}
		}
	}
	return out
}

// batchNorm はチャネルごとの正規化をその場で適用します。
func batchNorm(fm featureMap, l normLayer) {
	for i := 0; i < len(fm.data); i += fm.c {
		px := fm.data[i : i+fm.c]
		for ch := range px {
			px[ch] = px[ch]*l.scale[ch] + l.shift[ch]
		}
	}
}

// maxPoolSame は窓サイズ=ストライドの same パディング max pooling です。
// 出力サイズは ceil(in/pool)。パディング領域は比較対象に含めません。
func maxPoolSame(in featureMap, pool int) featureMap {
	outH, outW := ceilDiv(in.h, pool), ceilDiv(in.w, pool)
	padTop := max((outH-1)*pool+pool-in.h, 0) / 2
	padLeft := max((outW-1)*pool+pool-in.w, 0) / 2

	out := featureMap{h: outH, w: outW, c: in.c, data: make([]float32, outH*outW*in.c)}
	for oy := 0; oy < outH; oy++ {
		y0 := max(oy*pool-padTop, 0)
		y1 := min(oy*pool-padTop+pool, in.h)
		for ox := 0; ox < outW; ox++ {
			x0 := max(ox*pool-padLeft, 0)
			x1 := min(ox*pool-padLeft+pool, in.w)

			dst := out.data[(oy*outW+ox)*in.c : (oy*outW+ox+1)*in.c]
			for ch := range dst {
				dst[ch] = float32(math.Inf(-1))
			}
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					src := in.data[(y*in.w+x)*in.c : (y*in.w+x+1)*in.c]
					for ch, v := range src {
						if v > dst[ch] {
							dst[ch] = v
						}
					}
				}
			}
		}
	}
	return out
}

func dense(in []float32, l denseLayer) []float32 {
	out := make([]float32, l.out)
	copy(out, l.bias)
	for i, v := range in {
		if v == 0 {
			continue
		}
		row := l.kernel[i*l.out : (i+1)*l.out]
		for j, k := range row {
			out[j] += v * k
		}
	}
	return out
}

func leakyReLU(v []float32, slope float32) {
	for i := range v {
		if v[i] < 0 {
			v[i] *= slope
		}
	}
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}
