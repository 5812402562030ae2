package renderer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/tracer"
)

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats

	// Get the depth buffer for the last rendered frame. Pixels are stored
	// in row-major order starting from the top-left corner.
	DepthBuffer() []float32
}

// A headless renderer that splits each frame into row blocks and traces them
// in parallel using a pool of cpu tracers.
type defaultRenderer struct {
	logger log.Logger

	scene     *scene.Scene
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer
	options   Options

	// Render target shared by all tracers.
	depthBuffer []float32

	// Block heights assigned to each tracer for the last frame.
	blockAssignments []uint32

	// Channels for receiving block completion and error notifications.
	doneChan chan uint32
	errChan  chan error

	stats  FrameStats
	closed bool
}

// Create a new renderer for a compiled scene using the specified block
// scheduler.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	switch {
	case sc == nil:
		return nil, ErrSceneNotDefined
	case sc.Hierarchy() == nil:
		return nil, ErrSceneNotCompiled
	case sc.Camera == nil:
		return nil, ErrCameraNotDefined
	case opts.FrameW == 0 || opts.FrameH == 0:
		return nil, ErrInvalidFrameSize
	}

	numTracers := opts.NumTracers
	if numTracers <= 0 {
		numTracers = runtime.NumCPU()
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		scene:       sc,
		scheduler:   scheduler,
		options:     opts,
		depthBuffer: make([]float32, opts.FrameW*opts.FrameH),
		doneChan:    make(chan uint32, numTracers),
		errChan:     make(chan error, numTracers),
	}

	for idx := 0; idx < numTracers; idx++ {
		tr := tracer.NewCPUTracer(fmt.Sprintf("cpu-%d", idx))
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.depthBuffer); err != nil {
			tr.Close()
			r.Close()
			return nil, err
		}
		tr.AppendChange(tracer.SetScene, sc)
		r.tracers = append(r.tracers, tr)
	}

	r.logger.Infof("attached %d cpu tracers; frame size %dx%d", len(r.tracers), opts.FrameW, opts.FrameH)
	return r, nil
}

// Render frame using the current scene camera.
func (r *defaultRenderer) Render() error {
	if r.closed {
		return ErrRendererClosed
	}
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}
	if r.scene.Camera == nil {
		return ErrCameraNotDefined
	}

	start := time.Now()
	for _, tr := range r.tracers {
		tr.AppendChange(tracer.UpdateCamera, r.scene.Camera)
		if err := tr.ApplyPendingChanges(); err != nil {
			return err
		}
	}

	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		blockH := r.blockAssignments[idx]
		if blockH == 0 {
			continue
		}

		tr.Enqueue(tracer.BlockRequest{
			BlockY:   blockY,
			BlockH:   blockH,
			DoneChan: r.doneChan,
			ErrChan:  r.errChan,
		})
		blockY += blockH
		pending++
	}

	// Wait for every enqueued block so that no stale notifications leak
	// into the next frame.
	var firstErr error
	for ; pending > 0; pending-- {
		select {
		case <-r.doneChan:
		case err := <-r.errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	r.collectStats(time.Since(start))
	r.logger.Debugf("rendered frame in %s", r.stats.RenderTime)
	return nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, tr := range r.tracers {
		tr.Close()
	}
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) DepthBuffer() []float32 {
	return r.depthBuffer
}

func (r *defaultRenderer) collectStats(renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		stat := TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       r.blockAssignments[idx],
			FramePercent: 100.0 * float32(r.blockAssignments[idx]) / float32(r.options.FrameH),
		}

		// Idle tracers keep the stats of the last block they processed
		if stat.BlockH != 0 {
			trStats := tr.Stats()
			stat.RenderTime = trStats.RenderTime
			stat.Rays = trStats.Rays
			stat.Hits = trStats.Hits
		}

		r.stats.Tracers[idx] = stat
		r.stats.Rays += stat.Rays
		r.stats.Hits += stat.Hits
	}
}
