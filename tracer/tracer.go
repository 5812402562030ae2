package tracer

import (
	"errors"
	"time"
)

var (
	ErrAlreadySetup       = errors.New("tracer: tracer already set up")
	ErrNotSetup           = errors.New("tracer: tracer has not been set up")
	ErrClosed             = errors.New("tracer: tracer is closed")
	ErrSceneNotDefined    = errors.New("tracer: no scene defined")
	ErrCameraNotDefined   = errors.New("tracer: no camera defined")
	ErrInvalidDepthBuffer = errors.New("tracer: depth buffer does not match frame dimensions")
)

type ChangeType uint8

const (
	SetScene ChangeType = iota
	UpdateCamera
)

func (ct ChangeType) String() string {
	switch ct {
	case SetScene:
		return "SetScene"
	case UpdateCamera:
		return "UpdateCamera"
	}
	return "Unknown"
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering this block
	RenderTime time.Duration

	// Primary rays cast for the block and how many of them hit the scene.
	Rays uint64
	Hits uint64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracers computation speed estimate compared to a
	// baseline (single cpu core) implementation.
	SpeedEstimate() float32

	// Setup the tracer. Each traced pixel stores the distance to the closest
	// hit in depthBuffer or +Inf if the primary ray misses the scene.
	Setup(frameW, frameH uint32, depthBuffer []float32) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Retrieve last block statistics.
	Stats() *Stats
}
