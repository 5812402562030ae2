// Package config loads render view settings from gcfg (INI-style) files.
package config

import (
	"fmt"
	"strings"

	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/scene"
	"github.com/achilleasa/hitmiss/types"
	"gopkg.in/gcfg.v1"
)

// Supported block scheduler names.
const (
	NaiveScheduler   = "naive"
	PerfectScheduler = "perfect"
)

const ExampleViewFile = `# Render view settings. Every key is optional; missing keys keep their
# default value.

[camera]
# Camera position, look-at target and up vector as x,y,z triplets. When the
# camera section is omitted the camera stored in the scene file is used or,
# failing that, a camera framing the whole scene.
eye  = 0,0,10
look = 0,0,0
up   = 0,1,0

# Vertical field of view in degrees.
fov = 45

[frame]
width  = 512
height = 512

[bvh]
# Margin added to every side of the hierarchy boxes. Defaults to the float32
# machine epsilon.
# epsilon = 1.1920929e-07

[tracer]
# Number of tracer goroutines; 0 selects one per CPU.
workers = 0

# Block scheduling strategy: naive | perfect
scheduler = perfect
`

// Camera view settings.
type CameraConfig struct {
	Eye  types.Vec3
	Look types.Vec3
	Up   types.Vec3
	FOV  float32
}

// Output frame settings.
type FrameConfig struct {
	Width  int
	Height int
}

// Hierarchy build settings.
type BvhConfig struct {
	Epsilon float32
}

// Tracer pool settings.
type TracerConfig struct {
	Workers   int
	Scheduler string
}

// View holds the settings for rendering a scene.
type View struct {
	Camera CameraConfig
	Frame  FrameConfig
	Bvh    BvhConfig
	Tracer TracerConfig

	// Set if the loaded file contained a [camera] section.
	hasCamera bool
}

// DefaultView returns the settings used when no view file is supplied.
func DefaultView() *View {
	return &View{
		Camera: CameraConfig{
			Eye:  types.XYZ(0, 0, 10),
			Look: types.XYZ(0, 0, 0),
			Up:   types.XYZ(0, 1, 0),
			FOV:  45,
		},
		Frame: FrameConfig{
			Width:  512,
			Height: 512,
		},
		Bvh: BvhConfig{
			Epsilon: bvh.DefaultEpsilon,
		},
		Tracer: TracerConfig{
			Workers:   0,
			Scheduler: PerfectScheduler,
		},
	}
}

// ReadView loads a view file on top of the default settings.
func ReadView(fname string) (*View, error) {
	v := DefaultView()
	if err := gcfg.ReadFileInto(v, fname); err != nil {
		return nil, fmt.Errorf("config: %s: %w", fname, err)
	}
	return v.finish()
}

// ParseView loads view settings from a string on top of the default settings.
func ParseView(text string) (*View, error) {
	v := DefaultView()
	if err := gcfg.ReadStringInto(v, text); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return v.finish()
}

func (v *View) finish() (*View, error) {
	// gcfg leaves fields untouched if their section is missing so compare
	// against the defaults to detect an explicit camera.
	v.hasCamera = v.Camera != DefaultView().Camera
	v.Tracer.Scheduler = strings.ToLower(strings.TrimSpace(v.Tracer.Scheduler))
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the view settings and reports the first offending key.
func (v *View) Validate() error {
	switch {
	case v.Camera.FOV <= 0 || v.Camera.FOV >= 180:
		return fmt.Errorf("config: camera.fov must be in range (0, 180); got %g", v.Camera.FOV)
	case v.Camera.Eye == v.Camera.Look:
		return fmt.Errorf("config: camera.eye and camera.look must differ; both are %v", v.Camera.Eye)
	case v.Camera.Up.Len() == 0:
		return fmt.Errorf("config: camera.up must not be a zero vector")
	case v.Camera.Look.Sub(v.Camera.Eye).Cross(v.Camera.Up).Len() == 0:
		return fmt.Errorf("config: camera.up must not be parallel to the view direction")
	case v.Frame.Width <= 0:
		return fmt.Errorf("config: frame.width must be positive; got %d", v.Frame.Width)
	case v.Frame.Height <= 0:
		return fmt.Errorf("config: frame.height must be positive; got %d", v.Frame.Height)
	case v.Bvh.Epsilon < 0:
		return fmt.Errorf("config: bvh.epsilon must not be negative; got %g", v.Bvh.Epsilon)
	case v.Tracer.Workers < 0:
		return fmt.Errorf("config: tracer.workers must not be negative; got %d", v.Tracer.Workers)
	case v.Tracer.Scheduler != NaiveScheduler && v.Tracer.Scheduler != PerfectScheduler:
		return fmt.Errorf("config: tracer.scheduler must be one of [%s | %s]; '%s' is not recognized", NaiveScheduler, PerfectScheduler, v.Tracer.Scheduler)
	}
	return nil
}

// HasCamera returns true if the camera settings were explicitly provided.
func (v *View) HasCamera() bool {
	return v.hasCamera
}

// NewCamera creates a scene camera from the camera settings using the frame
// aspect ratio.
func (v *View) NewCamera() *scene.Camera {
	cam := scene.NewCamera(v.Camera.FOV)
	cam.Position = v.Camera.Eye
	cam.LookAt = v.Camera.Look
	cam.Up = v.Camera.Up
	cam.SetupProjection(float32(v.Frame.Width) / float32(v.Frame.Height))
	return cam
}

// BvhOptions returns the hierarchy build options for the view.
func (v *View) BvhOptions() []bvh.Option {
	return []bvh.Option{bvh.WithEpsilon(v.Bvh.Epsilon)}
}
