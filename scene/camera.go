package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/hitmiss/types"
)

// Stores the ray directions at the four corners of the camera frustrum in
// TL, TR, BL, BR order. It is used as a shortcut for generating per pixel
// rays via bilinear interpolation of the corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Pending rotation in radians. Applied and reset by Update.
	Pitch float32
	Yaw   float32

	Frustrum Frustrum

	// Vertical field of view in degrees.
	FOV float32

	// Frame width divided by frame height.
	Aspect float32

	// Adjust the frustrum so that Y is inverted
	InvertY bool
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   1,
	}
}

// Setup camera aspect ratio and refresh the frustrum.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.Update()
}

// Apply any pending pitch/yaw and recalculate the frustrum corner rays.
func (c *Camera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up)
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()

		// Update direction
		dir = orientQuat.Rotate(dir)
		c.LookAt = c.Position.Add(dir)
		c.Pitch, c.Yaw = 0, 0
	}

	c.updateFrustrum(dir)
}

// Get the normalized direction of the ray passing through the frame at
// (u, v). Both coordinates are in [0, 1] with (0, 0) at the top-left corner.
func (c *Camera) Ray(u, v float32) types.Vec3 {
	top := c.Frustrum[0].Lerp(c.Frustrum[1], u)
	bottom := c.Frustrum[2].Lerp(c.Frustrum[3], u)
	return top.Lerp(bottom, v).Normalize()
}

// Generate a ray vector for each corner of the camera frustrum from the
// camera basis vectors and the half extents of the image plane at unit
// distance.
func (c *Camera) updateFrustrum(dir types.Vec3) {
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)

	halfHeight := float32(math.Tan(float64(c.FOV) * math.Pi / 360))
	halfWidth := halfHeight * c.Aspect

	var yUp float32 = 1.0
	if c.InvertY {
		yUp = -1.0
	}

	dx := right.Mul(halfWidth)
	dy := up.Mul(halfHeight * yUp)

	c.Frustrum[0] = dir.Sub(dx).Add(dy)
	c.Frustrum[1] = dir.Add(dx).Add(dy)
	c.Frustrum[2] = dir.Sub(dx).Sub(dy)
	c.Frustrum[3] = dir.Add(dx).Sub(dy)
}
