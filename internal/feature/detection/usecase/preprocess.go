package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gorgonia.org/tensor"

	"deepfake_backend/internal/feature/detection/domain"
)

const (
	// TargetSize はネットワーク入力の一辺（ピクセル）です。
	TargetSize = 256
	// Channels はRGBのチャネル数です。
	Channels = 3
)

// Preprocess は画像バイト列を (1, 256, 256, 3) の float32 テンソルに変換します。
//
//  1. デコード（JPEG/PNG/GIF/BMP/TIFF/WebP）
//  2. 最近傍補間（各出力画素の中心に最も近い入力画素を採る）で 256x256 にリサイズ
//  3. RGB 各チャネルを 255 で割って [0, 1] に正規化
//  4. 先頭にバッチ軸を追加
func Preprocess(raw []byte) (*tensor.Dense, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", domain.ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: decoded %s image is %dx%d", domain.ErrShape, format, b.Dx(), b.Dy())
	}

	resized := image.NewRGBA(image.Rect(0, 0, TargetSize, TargetSize))
	draw.NearestNeighbor.Scale(resized, resized.Bounds(), opaque(img), b, draw.Src, nil)

	data := make([]float32, TargetSize*TargetSize*Channels)
	for i := 0; i < TargetSize*TargetSize; i++ {
		p := resized.Pix[i*4 : i*4+4]
		data[i*Channels] = float32(p[0]) / 255.0
		data[i*Channels+1] = float32(p[1]) / 255.0
		data[i*Channels+2] = float32(p[2]) / 255.0
	}

	return tensor.New(
		tensor.WithShape(1, TargetSize, TargetSize, Channels),
		tensor.WithBacking(data),
	), nil
}

// opaque は非乗算のRGB値を保ったままアルファを捨てた画像を返します。
// 透明画素でも格納されている色がそのまま残ります。
func opaque(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return out
}
