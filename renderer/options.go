package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of cpu tracers. If set to 0, one tracer per CPU is used.
	NumTracers int
}
