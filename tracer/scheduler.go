package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame rows proportionally to each tracer's
// speed estimate.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
	}
	assignBySpeed(sch.blockAssignment, tracers, frameH)
	return sch.blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// This function returns the block height assignment for each tracer in the
// input list. When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
		assignBySpeed(sch.blockAssignment, tracers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics
	rates := make([]float64, len(tracers))
	var total float64
	for idx, tr := range tracers {
		stats := tr.Stats()
		if stats.RenderTime <= 0 {
			// No usable feedback; start over from the speed estimates
			assignBySpeed(sch.blockAssignment, tracers, frameH)
			return sch.blockAssignment
		}
		rates[idx] = float64(stats.BlockH) / float64(stats.RenderTime)
		total += rates[idx]
	}
	if total == 0 {
		assignBySpeed(sch.blockAssignment, tracers, frameH)
		return sch.blockAssignment
	}

	scaler := float64(frameH) / total
	for idx := range tracers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(rates[idx]*scaler)))
	}
	balance(sch.blockAssignment, frameH)

	return sch.blockAssignment
}

// Distribute frame rows proportionally to the tracer speed estimates.
func assignBySpeed(blockAssignment []uint32, tracers []Tracer, frameH uint32) {
	var total float64
	for _, tr := range tracers {
		total += float64(tr.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, tr := range tracers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
	}
	balance(blockAssignment, frameH)
}

// Make the assigned rows add up to the frame height. Missing rows are
// appended to the first tracer; excess rows are taken from the largest
// blocks. If there are more tracers than rows some tracers get empty blocks.
func balance(blockAssignment []uint32, frameH uint32) {
	if len(blockAssignment) == 0 {
		return
	}

	var scheduledRows uint32
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows < frameH {
		blockAssignment[0] += frameH - scheduledRows
		return
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows > blockAssignment[largest] {
				largest = idx
			}
		}
		blockAssignment[largest]--
	}
}
