package camera

// CameraControllerBuilderOption is a functional option for configuring a
// CameraController.
type CameraControllerBuilderOption func(*cameraControllerImpl)

// WithMode sets the initial navigation mode. Defaults to fly.
//
// Parameters:
//   - mode: the initial mode
//
// Returns:
//   - CameraControllerBuilderOption: the option to apply
func WithMode(mode Mode) CameraControllerBuilderOption {
	return func(c *cameraControllerImpl) {
		c.mode = mode
	}
}

// WithBaseSpeed sets the movement speed multiplier applied on top of the
// distance scaling. Defaults to 1.
//
// Parameters:
//   - speed: the multiplier, must be > 0
//
// Returns:
//   - CameraControllerBuilderOption: the option to apply
func WithBaseSpeed(speed float64) CameraControllerBuilderOption {
	return func(c *cameraControllerImpl) {
		if speed > 0 {
			c.baseSpeed = speed
		}
	}
}

// WithZoomStep sets the per-scroll-tick zoom factor. Defaults to 0.15.
//
// Parameters:
//   - step: the zoom step, must be > 0
//
// Returns:
//   - CameraControllerBuilderOption: the option to apply
func WithZoomStep(step float64) CameraControllerBuilderOption {
	return func(c *cameraControllerImpl) {
		if step > 0 {
			c.zoomStep = step
		}
	}
}

// WithOrbitRadius sets the initial orbit radius. Defaults to the default
// target distance.
//
// Parameters:
//   - radius: the radius, must be > 0
//
// Returns:
//   - CameraControllerBuilderOption: the option to apply
func WithOrbitRadius(radius float64) CameraControllerBuilderOption {
	return func(c *cameraControllerImpl) {
		if radius > 0 {
			c.radius = radius
		}
	}
}
