package events

import (
	"time"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// Event is the closed set of messages collaborators send to the engine and
// the engine reports back out. The marker method keeps the union sealed so a
// consumer switch can be exhaustive.
type Event interface {
	isEvent()
}

// UniformWrite requests one uniform value write. Accumulation resets unless
// NoReset marks the control as purely cosmetic.
type UniformWrite struct {
	Key     string
	Value   uniform.Value
	NoReset bool
}

// ConfigPatch merges a partial feature config into the active one and may
// trigger a debounced recompilation.
type ConfigPatch struct {
	Patch feature.Config
}

// GradientChange rebuilds a gradient lookup texture layer. Always resets
// accumulation.
type GradientChange struct {
	// Stops are the color stops to bake.
	Stops []gradient.Stop

	// Layer selects which gradient layer to rebuild.
	Layer int
}

// OffsetShift accumulates per-frame drift into the world offset. Resets
// accumulation when the delta is non-negligible.
type OffsetShift struct {
	DX, DY, DZ float64
}

// OffsetSet replaces the world offset with an exact split value.
type OffsetSet struct {
	Offset precision.DoubleFloat3
}

// CameraAbsorb folds the camera's local position into the world offset and
// zeroes the local position, keeping the view identical across a navigation
// mode switch.
type CameraAbsorb struct {
	LocalPosition common.Vec3
}

// CameraSnap forces a non-interpolated pose sync next frame.
type CameraSnap struct{}

// CameraTeleport installs an authoritative camera relocation, used by
// undo/redo, presets and sharing links.
type CameraTeleport struct {
	Snapshot precision.CameraSnapshot
}

// ResetAccumulation unconditionally restarts accumulation.
type ResetAccumulation struct{}

// ShaderFailure reports a composition or GPU link failure. The previously
// active program stays bound; there is no automatic retry.
type ShaderFailure struct {
	Mode feature.RenderMode
	Err  error
}

// CompileReport reports a finished recompilation and how long it took. Only
// emitted when the duration exceeds the visibility threshold.
type CompileReport struct {
	Mode     feature.RenderMode
	Duration time.Duration
}

func (UniformWrite) isEvent()      {}
func (ConfigPatch) isEvent()       {}
func (GradientChange) isEvent()    {}
func (OffsetShift) isEvent()       {}
func (OffsetSet) isEvent()         {}
func (CameraAbsorb) isEvent()      {}
func (CameraSnap) isEvent()        {}
func (CameraTeleport) isEvent()    {}
func (ResetAccumulation) isEvent() {}
func (ShaderFailure) isEvent()     {}
func (CompileReport) isEvent()     {}
