package light

// RigBuilderOption is a functional option for configuring a Rig.
type RigBuilderOption func(*rigImpl)

// WithCapacity sets the maximum light count, which must match the shader's
// fixed light-array size. Defaults to 8.
//
// Parameters:
//   - capacity: the maximum number of lights, must be > 0
//
// Returns:
//   - RigBuilderOption: the option to apply
func WithCapacity(capacity int) RigBuilderOption {
	return func(r *rigImpl) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

// WithLights seeds the rig with lights, truncating at capacity.
//
// Parameters:
//   - lights: the initial lights
//
// Returns:
//   - RigBuilderOption: the option to apply
func WithLights(lights ...Light) RigBuilderOption {
	return func(r *rigImpl) {
		for _, l := range lights {
			if len(r.lights) >= r.capacity {
				break
			}
			r.lights = append(r.lights, l)
		}
	}
}
