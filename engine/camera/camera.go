package camera

import (
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	pose precision.Pose
	fov  float64
}

// Camera holds the authoritative local camera pose. The position lives in
// offset-local space and stays near the origin; all large translation is
// absorbed by the world offset. The basis vectors feed the ray-generation
// uniforms directly, so no view matrix is ever built.
type Camera interface {
	// Pose returns the current local pose.
	//
	// Returns:
	//   - precision.Pose: the position and rotation
	Pose() precision.Pose

	// SetPose replaces the local pose, normalizing the rotation.
	//
	// Parameters:
	//   - p: the new pose
	SetPose(p precision.Pose)

	// Position returns the local position.
	//
	// Returns:
	//   - common.Vec3: the position in offset-local space
	Position() common.Vec3

	// SetPosition replaces the local position.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p common.Vec3)

	// Rotation returns the orientation quaternion.
	//
	// Returns:
	//   - common.Quat: the orientation
	Rotation() common.Quat

	// SetRotation replaces the orientation, normalizing it.
	//
	// Parameters:
	//   - q: the new orientation
	SetRotation(q common.Quat)

	// Basis returns the camera frame derived from the rotation. Identity
	// rotation looks down +Z with +Y up.
	//
	// Returns:
	//   - common.Vec3: the right vector
	//   - common.Vec3: the up vector
	//   - common.Vec3: the forward vector
	Basis() (right, up, forward common.Vec3)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float64: the field of view
	Fov() float64

	// SetFov sets the vertical field of view in radians, clamped to a sane
	// open interval.
	//
	// Parameters:
	//   - fov: the new field of view
	SetFov(fov float64)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the local origin looking down +Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:   &sync.Mutex{},
		pose: precision.Pose{Rotation: common.QuatIdentity()},
		fov:  1.2,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Pose() precision.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) SetPose(p precision.Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.Rotation = p.Rotation.Normalized()
	c.pose = p
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose.Position
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose.Position = p
}

func (c *cameraImpl) Rotation() common.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose.Rotation
}

func (c *cameraImpl) SetRotation(q common.Quat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose.Rotation = q.Normalized()
}

func (c *cameraImpl) Basis() (right, up, forward common.Vec3) {
	c.mu.Lock()
	q := c.pose.Rotation
	c.mu.Unlock()
	right = q.Rotate(common.Vec3{X: 1})
	up = q.Rotate(common.Vec3{Y: 1})
	forward = q.Rotate(common.Vec3{Z: 1})
	return right, up, forward
}

func (c *cameraImpl) Fov() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, 0.05, 3.0)
}
