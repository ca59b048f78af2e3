package light

import "github.com/gamazama/GMT-fractals-sub005/common"

// AttachmentMode controls which space a light's position lives in.
type AttachmentMode int

const (
	// AttachmentWorld anchors the light at an absolute virtual-space position;
	// it stays put while the camera moves.
	AttachmentWorld AttachmentMode = iota

	// AttachmentCamera attaches the light to the camera (headlamp): its
	// position is an offset in the camera's frame and follows every move.
	AttachmentCamera
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	attachment AttachmentMode
	position   common.Vec3
	color      [3]float64
	intensity  float64
	enabled    bool
}

// Light is one light source contributing to the lit render variant. Position
// semantics depend on the attachment mode: absolute virtual-space coordinates
// when world-anchored, camera-frame offsets when camera-attached.
type Light interface {
	// Attachment returns which space the position lives in.
	//
	// Returns:
	//   - AttachmentMode: the current attachment mode
	Attachment() AttachmentMode

	// Position returns the light position in its attachment space.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// Color returns the light's RGB color.
	//
	// Returns:
	//   - [3]float64: the color, each component in [0,1]
	Color() [3]float64

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float64: the intensity
	Intensity() float64

	// Enabled reports whether the light contributes to shading.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetPosition moves the light within its current attachment space.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p common.Vec3)

	// SetAttachment switches the attachment mode AND replaces the position
	// with one already converted to the new space. Callers convert through the
	// precision space first, so toggling never visually moves the light.
	//
	// Parameters:
	//   - mode: the new attachment mode
	//   - converted: the position expressed in the new space
	SetAttachment(mode AttachmentMode, converted common.Vec3)

	// SetColor replaces the RGB color.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c [3]float64)

	// SetIntensity replaces the intensity multiplier.
	//
	// Parameters:
	//   - v: the new intensity
	SetIntensity(v float64)

	// SetEnabled toggles the light's contribution.
	//
	// Parameters:
	//   - enabled: whether the light contributes to shading
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a Light. Defaults: world-anchored, white, intensity 1,
// enabled.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		attachment: AttachmentWorld,
		color:      [3]float64{1, 1, 1},
		intensity:  1,
		enabled:    true,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *lightImpl) Attachment() AttachmentMode {
	return l.attachment
}

func (l *lightImpl) Position() common.Vec3 {
	return l.position
}

func (l *lightImpl) Color() [3]float64 {
	return l.color
}

func (l *lightImpl) Intensity() float64 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(p common.Vec3) {
	l.position = p
}

func (l *lightImpl) SetAttachment(mode AttachmentMode, converted common.Vec3) {
	l.attachment = mode
	l.position = converted
}

func (l *lightImpl) SetColor(c [3]float64) {
	l.color = c
}

func (l *lightImpl) SetIntensity(v float64) {
	l.intensity = v
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
