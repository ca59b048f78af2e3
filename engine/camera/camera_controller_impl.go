package camera

import (
	"math"
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

const (
	// defaultTargetDistance seeds speed scaling before any valid probe result.
	defaultTargetDistance = 3.5

	// minTrustedDistance and maxTrustedDistance bound the probe trust range;
	// measurements outside it are discarded.
	minTrustedDistance = 1e-7
	maxTrustedDistance = 1000.0

	// distanceBlend is the per-measurement weight of the running average.
	distanceBlend = 0.25

	// pitchLimit keeps the look direction off the poles.
	pitchLimit = math.Pi/2 - 1e-3
)

// cameraControllerImpl is the implementation of the CameraController interface.
type cameraControllerImpl struct {
	mu *sync.Mutex

	cam  Camera
	mode Mode

	yaw   float64
	pitch float64

	pivot  common.Vec3
	radius float64

	baseSpeed float64
	zoomStep  float64

	distance    float64
	hasDistance bool
}

// NewCameraController creates a controller driving the given camera. It starts
// in fly mode with its yaw/pitch derived from the camera's current rotation.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerBuilderOption) CameraController {
	c := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		cam:       cam,
		mode:      ModeFly,
		radius:    defaultTargetDistance,
		baseSpeed: 1.0,
		zoomStep:  0.15,
		distance:  defaultTargetDistance,
	}
	for _, option := range options {
		option(c)
	}
	c.syncFromCameraLocked()
	return c
}

func (c *cameraControllerImpl) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *cameraControllerImpl) SetMode(mode Mode, space precision.PrecisionSpace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == c.mode {
		return
	}

	// Fold the local position into the offset so the switch does not leave a
	// residual local offset behind.
	space.AbsorbCamera(c.cam.Position())
	c.cam.SetPosition(common.Vec3{})

	c.mode = mode
	c.syncFromCameraLocked()
	if mode == ModeOrbit {
		// Pivot one target distance ahead; the camera stays where it is.
		_, _, forward := c.cam.Basis()
		c.radius = c.distance
		c.pivot = forward.Scale(c.radius)
		c.applyOrbitPoseLocked()
	}
}

func (c *cameraControllerImpl) Look(yawDelta, pitchDelta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += yawDelta
	c.pitch = common.Clamp(c.pitch+pitchDelta, -pitchLimit, pitchLimit)

	if c.mode == ModeOrbit {
		c.applyOrbitPoseLocked()
		return
	}
	c.cam.SetRotation(c.rotationLocked())
}

func (c *cameraControllerImpl) Move(forward, rightward, upward, dt float64, space precision.PrecisionSpace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeFly || dt <= 0 {
		return
	}
	r, u, f := c.cam.Basis()
	delta := f.Scale(forward).Add(r.Scale(rightward)).Add(u.Scale(upward)).Scale(c.speedLocked() * dt)
	space.Move(delta.X, delta.Y, delta.Z)
}

func (c *cameraControllerImpl) Zoom(delta float64, space precision.PrecisionSpace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeOrbit {
		c.radius = common.Clamp(c.radius*math.Exp(-delta*c.zoomStep), minTrustedDistance, maxTrustedDistance)
		c.applyOrbitPoseLocked()
		return
	}
	_, _, f := c.cam.Basis()
	d := f.Scale(delta * c.zoomStep * c.distance)
	space.Move(d.X, d.Y, d.Z)
}

func (c *cameraControllerImpl) SetMeasuredDistance(d float64) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < minTrustedDistance || d >= maxTrustedDistance {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasDistance {
		c.distance = d
		c.hasDistance = true
		return
	}
	c.distance = c.distance*(1-distanceBlend) + d*distanceBlend
}

func (c *cameraControllerImpl) TargetDistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *cameraControllerImpl) SetTargetDistance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if math.IsNaN(d) || math.IsInf(d, 0) || d < minTrustedDistance || d >= maxTrustedDistance {
		c.distance = defaultTargetDistance
		c.hasDistance = false
		return
	}
	c.distance = d
	c.hasDistance = true
}

func (c *cameraControllerImpl) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speedLocked()
}

func (c *cameraControllerImpl) Pivot() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pivot
}

func (c *cameraControllerImpl) SyncFromCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncFromCameraLocked()
	if c.mode == ModeOrbit {
		_, _, forward := c.cam.Basis()
		c.pivot = c.cam.Position().Add(forward.Scale(c.radius))
	}
}

// speedLocked must be called with the mutex held.
func (c *cameraControllerImpl) speedLocked() float64 {
	return c.baseSpeed * c.distance
}

// rotationLocked builds the orientation from yaw and pitch. Positive yaw turns
// toward +X, positive pitch tilts the forward vector toward +Y.
func (c *cameraControllerImpl) rotationLocked() common.Quat {
	yawQ := common.QuatFromAxisAngle(common.Vec3{Y: 1}, c.yaw)
	pitchQ := common.QuatFromAxisAngle(common.Vec3{X: 1}, -c.pitch)
	return yawQ.Mul(pitchQ).Normalized()
}

// applyOrbitPoseLocked repositions the camera on the orbit sphere looking at
// the pivot. Must be called with the mutex held.
func (c *cameraControllerImpl) applyOrbitPoseLocked() {
	rot := c.rotationLocked()
	forward := rot.Rotate(common.Vec3{Z: 1})
	c.cam.SetPose(precision.Pose{
		Position: c.pivot.Sub(forward.Scale(c.radius)),
		Rotation: rot,
	})
}

// syncFromCameraLocked re-derives yaw/pitch from the camera rotation,
// discarding any roll. Must be called with the mutex held.
func (c *cameraControllerImpl) syncFromCameraLocked() {
	_, _, forward := c.cam.Basis()
	c.pitch = math.Asin(common.Clamp(forward.Y, -1, 1))
	c.yaw = math.Atan2(forward.X, forward.Z)
}
