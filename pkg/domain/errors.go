package domain

import "errors"

// ErrEmptyGesture is reported when a session completes without any ink on the surface.
var ErrEmptyGesture = errors.New("empty gesture")

// ErrNotReady is returned when an operation needs the prediction service before it signalled readiness.
var ErrNotReady = errors.New("prediction service not ready")

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("controller closed")

// ErrInvalidDimensions is returned when a surface is resized to a non-positive size.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// ErrOutOfBounds is returned when a point lies outside the canvas.
var ErrOutOfBounds = errors.New("point outside canvas")

// ErrInvalidBrushWidth is returned when a brush width exceeds MaxBrushWidth.
var ErrInvalidBrushWidth = errors.New("invalid brush width")

// ErrCropTooLarge is reported when a session's crop reaches past the backing
// store by more than the brush margin.
var ErrCropTooLarge = errors.New("crop larger than backing store")
