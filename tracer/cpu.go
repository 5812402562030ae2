package tracer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/achilleasa/hitmiss/log"
	"github.com/achilleasa/hitmiss/scene"
)

type change struct {
	kind  ChangeType
	value interface{}
}

// A tracer that casts primary rays against a compiled scene on the CPU.
type cpuTracer struct {
	sync.Mutex
	wg sync.WaitGroup

	logger log.Logger

	// The tracer's id.
	id string

	// The scene to be rendered and a private copy of the camera.
	scene  *scene.Scene
	camera scene.Camera

	// Changes waiting for ApplyPendingChanges.
	pendingChanges []change

	// The output frame dimensions and the shared render target.
	frameW      uint32
	frameH      uint32
	depthBuffer []float32

	stats Stats

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}
	closed    bool
}

// Create a new cpu tracer. The tracer needs a scene and camera, supplied via
// AppendChange, before it can process any blocks.
func NewCPUTracer(id string) Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan BlockRequest),
		closeChan:    make(chan struct{}),
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Each cpu tracer runs on a single goroutine and serves as the baseline.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return 1.0
}

// Shutdown tracer and wait for its worker to exit.
func (tr *cpuTracer) Close() {
	tr.Lock()
	if tr.closed {
		tr.Unlock()
		return
	}
	tr.closed = true
	close(tr.closeChan)
	tr.Unlock()

	tr.wg.Wait()
}

// Attach tracer to render target and start processing incoming block requests.
func (tr *cpuTracer) Setup(frameW, frameH uint32, depthBuffer []float32) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.closed {
		return ErrClosed
	}
	if tr.depthBuffer != nil {
		return ErrAlreadySetup
	}
	if frameW == 0 || frameH == 0 || len(depthBuffer) != int(frameW*frameH) {
		return ErrInvalidDepthBuffer
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.depthBuffer = depthBuffer

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				// Render block and reply with our completion status
				if err := tr.process(blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}
				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				return
			}
		}
	}()

	// Wait for worker goroutine to start
	<-readyChan
	return nil
}

// Enqueue block request. Requests sent to a closed tracer fail with ErrClosed.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	tr.Lock()
	ready := tr.depthBuffer != nil
	tr.Unlock()
	if !ready {
		blockReq.ErrChan <- ErrNotSetup
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	case <-tr.closeChan:
		blockReq.ErrChan <- ErrClosed
	}
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) AppendChange(kind ChangeType, value interface{}) {
	tr.Lock()
	defer tr.Unlock()
	tr.pendingChanges = append(tr.pendingChanges, change{kind: kind, value: value})
}

// Apply all pending changes from the update buffer.
func (tr *cpuTracer) ApplyPendingChanges() error {
	tr.Lock()
	defer tr.Unlock()

	for _, c := range tr.pendingChanges {
		switch c.kind {
		case SetScene:
			sc, ok := c.value.(*scene.Scene)
			if !ok || sc == nil {
				tr.pendingChanges = nil
				return fmt.Errorf("tracer: %s expects a *scene.Scene; got %T", c.kind, c.value)
			}
			tr.scene = sc
		case UpdateCamera:
			cam, ok := c.value.(*scene.Camera)
			if !ok || cam == nil {
				tr.pendingChanges = nil
				return fmt.Errorf("tracer: %s expects a *scene.Camera; got %T", c.kind, c.value)
			}
			tr.camera = *cam
		default:
			tr.pendingChanges = nil
			return fmt.Errorf("tracer: unsupported change type %d", c.kind)
		}
		tr.logger.Debugf("applied change %s", c.kind)
	}

	tr.pendingChanges = nil
	return nil
}

// Retrieve last block statistics.
func (tr *cpuTracer) Stats() *Stats {
	tr.Lock()
	defer tr.Unlock()
	stats := tr.stats
	return &stats
}

// Trace the rows of a block request and store the closest hit distance for
// each pixel in the depth buffer.
func (tr *cpuTracer) process(blockReq BlockRequest) error {
	tr.Lock()
	sc := tr.scene
	cam := tr.camera
	tr.Unlock()

	if sc == nil {
		return ErrSceneNotDefined
	}
	if cam.FOV == 0 {
		return ErrCameraNotDefined
	}
	if blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return fmt.Errorf("tracer: block rows [%d, %d) exceed frame height %d", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, tr.frameH)
	}

	start := time.Now()
	maxDist := float32(math.Inf(1))
	var rays, hits uint64
	invW := 1.0 / float32(tr.frameW)
	invH := 1.0 / float32(tr.frameH)
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		v := (float32(y) + 0.5) * invH
		row := tr.depthBuffer[y*tr.frameW : (y+1)*tr.frameW]
		for x := range row {
			u := (float32(x) + 0.5) * invW
			hit, ok, err := sc.Hit(cam.Position, cam.Ray(u, v), 0, maxDist)
			if err != nil {
				return err
			}

			rays++
			if !ok {
				row[x] = maxDist
				continue
			}
			hits++
			row[x] = hit.Distance
		}
	}

	elapsed := time.Since(start)
	tr.Lock()
	tr.stats = Stats{
		BlockH:     blockReq.BlockH,
		RenderTime: elapsed,
		Rays:       rays,
		Hits:       hits,
	}
	tr.Unlock()

	tr.logger.Debugf("traced rows [%d, %d) in %s", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, elapsed)
	return nil
}
