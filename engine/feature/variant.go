package feature

// Variant identifies which shader build a composition targets. Each variant
// gets its own assembled source string even when most feature code is shared.
type Variant int

const (
	// VariantMain is the full lit image.
	VariantMain Variant = iota

	// VariantPhysics is the distance-only probe shader, with no lighting. It
	// drives camera-speed scaling and picking.
	VariantPhysics

	// VariantHistogram is the auxiliary analysis shader.
	VariantHistogram
)

// String returns the variant's name for logging and entry-point selection.
//
// Returns:
//   - string: the variant name
func (v Variant) String() string {
	switch v {
	case VariantMain:
		return "main"
	case VariantPhysics:
		return "physics"
	case VariantHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// RenderMode selects which of the two live GPU programs a composition is for.
// The mode is independent of the variant: both modes build all three variants.
type RenderMode int

const (
	// RenderModeDirect targets interactive frame rates with bounded sample counts.
	RenderModeDirect RenderMode = iota

	// RenderModePathTracing targets convergence quality and accumulates many
	// more samples before visually stabilizing.
	RenderModePathTracing
)

// String returns the mode's name.
//
// Returns:
//   - string: the mode name
func (m RenderMode) String() string {
	if m == RenderModePathTracing {
		return "pathtracing"
	}
	return "direct"
}
