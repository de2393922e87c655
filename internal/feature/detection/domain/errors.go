// Package domain defines domain-level errors for the detection feature.
package domain

import "errors"

// Domain errors for image classification.
// Callers match them with errors.Is; lower layers wrap them with context.
var (
	// ErrParameterLoad indicates that the weight artifact is missing, malformed,
	// or does not match the declared network topology.
	// This is a startup-time failure: the service must not serve requests without weights.
	ErrParameterLoad = errors.New("failed to load model parameters")

	// ErrModelNotLoaded is returned when a forward pass is requested before parameters are loaded.
	ErrModelNotLoaded = errors.New("model parameters are not loaded")

	// ErrDecode indicates that the uploaded bytes are empty or not a supported image encoding.
	ErrDecode = errors.New("failed to decode image")

	// ErrShape indicates that a decoded image or input tensor has an unusable shape.
	ErrShape = errors.New("invalid image shape")

	// ErrImageTooLarge indicates that the upload exceeds the accepted size.
	ErrImageTooLarge = errors.New("image size exceeds maximum")
)
