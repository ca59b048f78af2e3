package fractal

import "github.com/gamazama/GMT-fractals-sub005/engine/uniform"

// MaxLights is the fixed light-array capacity in the uniform buffer. The
// LIGHT_COUNT define bounds the shader loop; slots past the active count are
// never read.
const MaxLights = 8

// Schema declares every GPU-visible parameter of the fractal renderer. It is
// the single source of truth for the uniform buffer: the composer emits its
// WGSL struct and the engine writes values through a set created from it.
//
// Returns:
//   - uniform.Schema: the renderer's uniform schema
func Schema() uniform.Schema {
	return uniform.NewSchema(uniform.WithDefinitions(
		// Camera basis and position, all in offset-relative local space.
		uniform.Definition{Name: "uCameraPos", Type: uniform.TypeVec3, Default: uniform.Vec3(0, 0, -3)},
		uniform.Definition{Name: "uCameraRight", Type: uniform.TypeVec3, Default: uniform.Vec3(1, 0, 0)},
		uniform.Definition{Name: "uCameraUp", Type: uniform.TypeVec3, Default: uniform.Vec3(0, 1, 0)},
		uniform.Definition{Name: "uCameraForward", Type: uniform.TypeVec3, Default: uniform.Vec3(0, 0, 1)},

		// High part of the split world offset; the low residual never leaves
		// the CPU.
		uniform.Definition{Name: "uOffsetHigh", Type: uniform.TypeVec3, Default: uniform.Vec3(0, 0, 0)},

		uniform.Definition{Name: "uResolution", Type: uniform.TypeVec2, Default: uniform.Vec2(1280, 720)},
		uniform.Definition{Name: "uJitter", Type: uniform.TypeVec2, Default: uniform.Vec2(0, 0)},

		// Tile window for bucketed export: rays sample the sub-rectangle
		// uTileOrigin + uv * uTileScale of the full image. Identity during
		// interactive rendering.
		uniform.Definition{Name: "uTileOrigin", Type: uniform.TypeVec2, Default: uniform.Vec2(0, 0)},
		uniform.Definition{Name: "uTileScale", Type: uniform.TypeVec2, Default: uniform.Vec2(1, 1)},
		uniform.Definition{Name: "uSampleIndex", Type: uniform.TypeUInt, Default: uniform.UInt(0)},
		uniform.Definition{Name: "uFov", Type: uniform.TypeFloat, Default: uniform.Float(1.2)},
		uniform.Definition{Name: "uTime", Type: uniform.TypeFloat, Default: uniform.Float(0)},

		// Formula parameters.
		uniform.Definition{Name: "uPower", Type: uniform.TypeFloat, Default: uniform.Float(8)},
		uniform.Definition{Name: "uBailout", Type: uniform.TypeFloat, Default: uniform.Float(4)},
		uniform.Definition{Name: "uJuliaC", Type: uniform.TypeVec3, Default: uniform.Vec3(0.2, 0.45, -0.1)},
		uniform.Definition{Name: "uBoxScale", Type: uniform.TypeFloat, Default: uniform.Float(2.5)},

		// Raymarch tuning.
		uniform.Definition{Name: "uDetail", Type: uniform.TypeFloat, Default: uniform.Float(0.0005)},
		uniform.Definition{Name: "uMaxDistance", Type: uniform.TypeFloat, Default: uniform.Float(1000)},

		// Lighting: xyz = position or direction, w = 1 for world-anchored,
		// 0 for camera-attached (headlamp).
		uniform.Definition{Name: "uLightPositions", Type: uniform.TypeVec4, ArraySize: MaxLights, Default: uniform.Vec4(0, 0, 0, 0)},
		// rgb = color, a = intensity.
		uniform.Definition{Name: "uLightColors", Type: uniform.TypeVec4, ArraySize: MaxLights, Default: uniform.Vec4(1, 1, 1, 0)},
		uniform.Definition{Name: "uAmbient", Type: uniform.TypeFloat, Default: uniform.Float(0.08)},

		// Shadows.
		uniform.Definition{Name: "uShadowSoftness", Type: uniform.TypeFloat, Default: uniform.Float(8)},

		// Coloring.
		uniform.Definition{Name: "uColorScale", Type: uniform.TypeFloat, Default: uniform.Float(1)},
		uniform.Definition{Name: "uColorOffset", Type: uniform.TypeFloat, Default: uniform.Float(0)},

		// Fog: rgb = color, a = density.
		uniform.Definition{Name: "uFog", Type: uniform.TypeVec4, Default: uniform.Vec4(0.01, 0.01, 0.02, 0)},
	))
}
