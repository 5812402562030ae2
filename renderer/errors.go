package renderer

import "errors"

var (
	ErrNoTracers         = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined   = errors.New("renderer: no scene defined")
	ErrSceneNotCompiled  = errors.New("renderer: scene has not been compiled")
	ErrCameraNotDefined  = errors.New("renderer: no camera defined")
	ErrInvalidFrameSize  = errors.New("renderer: frame dimensions must be positive")
	ErrInterrupted       = errors.New("renderer: interrupted while rendering")
	ErrRendererClosed    = errors.New("renderer: renderer has been closed")
	ErrDepthBufferLength = errors.New("renderer: depth buffer does not match frame dimensions")
)
