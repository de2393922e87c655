// Package api はHTTPレスポンスのボディ型を定義します。
package api

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// BoundingBoxResponse は表示用矩形です。
type BoundingBoxResponse struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// ClassificationResponse は POST /v1/detect の成功レスポンスです。
type ClassificationResponse struct {
	Label      string              `json:"label"`
	Confidence float32             `json:"confidence"`
	BBox       BoundingBoxResponse `json:"bbox"`
	Color      string              `json:"color"`
	Image      string              `json:"image,omitempty"` // アップロード画像の base64
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}
