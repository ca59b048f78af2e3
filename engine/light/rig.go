package light

import (
	"fmt"
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// rigImpl is the implementation of the Rig interface.
type rigImpl struct {
	mu *sync.Mutex

	capacity int
	lights   []Light
}

// Rig is the bounded light collection uploaded to the shader's fixed-size
// light array. It resolves every light into camera-local space against the
// current world offset before writing the uniform set, so the GPU only ever
// sees small float32-safe coordinates.
type Rig interface {
	// Add appends a light.
	//
	// Parameters:
	//   - l: the light to add
	//
	// Returns:
	//   - error: if the rig is at capacity
	Add(l Light) error

	// Remove deletes the light at index, preserving the order of the rest.
	//
	// Parameters:
	//   - index: the light index
	Remove(index int)

	// Lights returns the current lights in order.
	//
	// Returns:
	//   - []Light: a copy of the light slice
	Lights() []Light

	// Count returns the number of lights in the rig.
	//
	// Returns:
	//   - int: the light count
	Count() int

	// ToggleAttachment flips one light between world-anchored and
	// camera-attached, converting its position through the precision space so
	// the light does not visually move.
	//
	// Parameters:
	//   - index: the light index
	//   - space: the precision space used for the conversion
	//   - cam: the current camera pose
	//
	// Returns:
	//   - error: if the index is out of range
	ToggleAttachment(index int, space precision.PrecisionSpace, cam precision.Pose) error

	// Apply resolves every light into camera-local space and writes the
	// position and color arrays into the uniform set. Slots past the light
	// count get zero intensity.
	//
	// Parameters:
	//   - set: the uniform set to write
	//   - offset: the current world offset
	//   - cam: the current camera pose
	//
	// Returns:
	//   - error: if a uniform write is rejected
	Apply(set uniform.Set, offset precision.DoubleFloat3, cam precision.Pose) error
}

var _ Rig = &rigImpl{}

// NewRig creates a light Rig.
//
// Parameters:
//   - options: functional options to configure the rig
//
// Returns:
//   - Rig: the newly created rig
func NewRig(options ...RigBuilderOption) Rig {
	r := &rigImpl{
		mu:       &sync.Mutex{},
		capacity: 8,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *rigImpl) Add(l Light) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lights) >= r.capacity {
		return fmt.Errorf("light rig is full (%d lights)", r.capacity)
	}
	r.lights = append(r.lights, l)
	return nil
}

func (r *rigImpl) Remove(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.lights) {
		return
	}
	r.lights = append(r.lights[:index], r.lights[index+1:]...)
}

func (r *rigImpl) Lights() []Light {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Light, len(r.lights))
	copy(out, r.lights)
	return out
}

func (r *rigImpl) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lights)
}

func (r *rigImpl) ToggleAttachment(index int, space precision.PrecisionSpace, cam precision.Pose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.lights) {
		return fmt.Errorf("light index %d out of range [0,%d)", index, len(r.lights))
	}
	l := r.lights[index]
	switch l.Attachment() {
	case AttachmentWorld:
		// World position loses the offset and camera frame on the way in.
		converted := space.ResolveRealWorldPosition(l.Position(), cam, false)
		l.SetAttachment(AttachmentCamera, converted)
	case AttachmentCamera:
		converted := space.ResolveRealWorldPosition(l.Position(), cam, true)
		l.SetAttachment(AttachmentWorld, converted)
	}
	return nil
}

func (r *rigImpl) Apply(set uniform.Set, offset precision.DoubleFloat3, cam precision.Pose) error {
	r.mu.Lock()
	lights := make([]Light, len(r.lights))
	copy(lights, r.lights)
	r.mu.Unlock()

	origin := offset.Value()
	for i := 0; i < r.capacity; i++ {
		pos := uniform.Vec4(0, 0, 0, 0)
		col := uniform.Vec4(0, 0, 0, 0)
		if i < len(lights) && lights[i].Enabled() {
			l := lights[i]
			var local [3]float64
			var anchored float64
			switch l.Attachment() {
			case AttachmentCamera:
				p := cam.Position.Add(cam.Rotation.Rotate(l.Position()))
				local = [3]float64{p.X, p.Y, p.Z}
				anchored = 0
			default:
				p := l.Position().Sub(origin)
				local = [3]float64{p.X, p.Y, p.Z}
				anchored = 1
			}
			c := l.Color()
			pos = uniform.Vec4(local[0], local[1], local[2], anchored)
			col = uniform.Vec4(c[0], c[1], c[2], l.Intensity())
		}
		if err := set.WriteElement("uLightPositions", i, pos); err != nil {
			return err
		}
		if err := set.WriteElement("uLightColors", i, col); err != nil {
			return err
		}
	}
	return nil
}
