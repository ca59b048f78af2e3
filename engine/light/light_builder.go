package light

import "github.com/gamazama/GMT-fractals-sub005/common"

// LightBuilderOption is a functional option for configuring a Light.
type LightBuilderOption func(*lightImpl)

// WithAttachment sets the attachment mode.
//
// Parameters:
//   - mode: the attachment mode
//
// Returns:
//   - LightBuilderOption: the option to apply
func WithAttachment(mode AttachmentMode) LightBuilderOption {
	return func(l *lightImpl) {
		l.attachment = mode
	}
}

// WithPosition sets the position in the light's attachment space.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: the option to apply
func WithPosition(p common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithColor sets the RGB color.
//
// Parameters:
//   - c: the color, each component in [0,1]
//
// Returns:
//   - LightBuilderOption: the option to apply
func WithColor(c [3]float64) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity sets the intensity multiplier.
//
// Parameters:
//   - v: the intensity
//
// Returns:
//   - LightBuilderOption: the option to apply
func WithIntensity(v float64) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = v
	}
}

// WithEnabled sets whether the light contributes to shading.
//
// Parameters:
//   - enabled: the enabled flag
//
// Returns:
//   - LightBuilderOption: the option to apply
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
