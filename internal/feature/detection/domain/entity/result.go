// Package entity はdetectionフィーチャーのドメインモデルを定義します。
package entity

// Label は判定ラベルです。
type Label string

const (
	LabelReal Label = "Real"
	LabelFake Label = "Fake"
)

// Color は判定結果の表示色です。
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
)

// BoundingBox は表示用の矩形です。
// 現状は固定のプレースホルダー値であり、画像から検出した領域ではありません。
type BoundingBox struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// ClassificationResult は1枚の画像に対する判定結果を表します。
type ClassificationResult struct {
	Label      Label       `json:"label"`
	Confidence float32     `json:"confidence"` // Fake の場合は 1.0 を超えることがある
	BBox       BoundingBox `json:"bbox"`
	Color      Color       `json:"color"`
}
