package preset

import (
	"encoding/json"
	"fmt"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

// DefaultTargetDistance seeds camera-speed scaling when a preset does not
// carry a measured distance. Matches the probe fallback.
const DefaultTargetDistance = 3.5

// axisJSON persists one split axis exactly: the float32 high part and the
// float64 residual are stored separately so reloading reproduces the same
// partition bit for bit.
type axisJSON struct {
	High float32 `json:"high"`
	Low  float64 `json:"low"`
}

type offsetJSON struct {
	X axisJSON `json:"x"`
	Y axisJSON `json:"y"`
	Z axisJSON `json:"z"`
}

type paramJSON struct {
	Kind   string      `json:"kind"`
	Number float64     `json:"number,omitempty"`
	Bool   bool        `json:"bool,omitempty"`
	Vec    *[3]float64 `json:"vec,omitempty"`
	Enum   string      `json:"enum,omitempty"`
}

type stopJSON struct {
	Position float64    `json:"position"`
	Color    [3]float64 `json:"color"`
}

// document is the persisted preset layout. Every field is optional on the way
// in; absent keys fall back to declared defaults on load.
type document struct {
	SceneOffset    *offsetJSON                     `json:"sceneOffset,omitempty"`
	CameraPos      *[3]float64                     `json:"cameraPos,omitempty"`
	CameraRot      *[4]float64                     `json:"cameraRot,omitempty"`
	TargetDistance *float64                        `json:"targetDistance,omitempty"`
	Mode           *string                         `json:"mode,omitempty"`
	Features       map[string]map[string]paramJSON `json:"features,omitempty"`
	Gradient       []stopJSON                      `json:"gradient,omitempty"`
}

// Preset is the in-memory form of a persisted scene: the exact camera
// snapshot, the feature config, and the gradient stops.
type Preset struct {
	Camera   precision.CameraSnapshot
	Config   feature.Config
	Gradient []gradient.Stop
}

// Encode serializes a preset to indented JSON. The split offset is stored
// part-for-part, so a CameraSnapshot round-trips without precision loss.
//
// Parameters:
//   - p: the preset to serialize
//
// Returns:
//   - []byte: the JSON document
//   - error: if marshalling fails
func Encode(p Preset) ([]byte, error) {
	doc := document{
		SceneOffset: &offsetJSON{
			X: axisJSON{High: p.Camera.WorldOffset.X.High, Low: p.Camera.WorldOffset.X.Low},
			Y: axisJSON{High: p.Camera.WorldOffset.Y.High, Low: p.Camera.WorldOffset.Y.Low},
			Z: axisJSON{High: p.Camera.WorldOffset.Z.High, Low: p.Camera.WorldOffset.Z.Low},
		},
		CameraPos:      &[3]float64{p.Camera.LocalPosition.X, p.Camera.LocalPosition.Y, p.Camera.LocalPosition.Z},
		CameraRot:      &[4]float64{p.Camera.Rotation.W, p.Camera.Rotation.X, p.Camera.Rotation.Y, p.Camera.Rotation.Z},
		TargetDistance: &p.Camera.LastMeasuredDistance,
	}

	mode := p.Config.Mode.String()
	doc.Mode = &mode
	if len(p.Config.Params) > 0 {
		doc.Features = map[string]map[string]paramJSON{}
		for id, tree := range p.Config.Params {
			enc := map[string]paramJSON{}
			for k, v := range tree {
				enc[k] = encodeParam(v)
			}
			doc.Features[id] = enc
		}
	}
	for _, s := range p.Gradient {
		doc.Gradient = append(doc.Gradient, stopJSON{Position: s.Position, Color: s.Color})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a preset document, filling every missing key from defaults:
// the camera falls back to the origin snapshot with the default target
// distance, and feature parameters fall back to the registry's declared
// defaults before the document's values are merged on top.
//
// Parameters:
//   - data: the JSON document
//   - registry: the feature registry supplying parameter defaults
//
// Returns:
//   - Preset: the decoded preset
//   - error: if the document is not valid JSON
func Decode(data []byte, registry feature.Registry) (Preset, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}

	p := Preset{
		Camera: precision.CameraSnapshot{
			Rotation:             common.QuatIdentity(),
			LastMeasuredDistance: DefaultTargetDistance,
		},
		Config: registry.DefaultConfig(),
	}

	if doc.SceneOffset != nil {
		p.Camera.WorldOffset = precision.DoubleFloat3{
			X: precision.DoubleFloat{High: doc.SceneOffset.X.High, Low: doc.SceneOffset.X.Low},
			Y: precision.DoubleFloat{High: doc.SceneOffset.Y.High, Low: doc.SceneOffset.Y.Low},
			Z: precision.DoubleFloat{High: doc.SceneOffset.Z.High, Low: doc.SceneOffset.Z.Low},
		}
	}
	if doc.CameraPos != nil {
		p.Camera.LocalPosition = common.Vec3{X: doc.CameraPos[0], Y: doc.CameraPos[1], Z: doc.CameraPos[2]}
	}
	if doc.CameraRot != nil {
		p.Camera.Rotation = common.Quat{W: doc.CameraRot[0], X: doc.CameraRot[1], Y: doc.CameraRot[2], Z: doc.CameraRot[3]}.Normalized()
	}
	if doc.TargetDistance != nil {
		p.Camera.LastMeasuredDistance = *doc.TargetDistance
	}
	if doc.Mode != nil && *doc.Mode == feature.RenderModePathTracing.String() {
		p.Config.SetMode(feature.RenderModePathTracing)
	}

	for id, tree := range doc.Features {
		def, known := registry.Get(id)
		for k, pv := range tree {
			v, ok := decodeParam(pv)
			if !ok {
				continue
			}
			// For known features, a persisted value of the wrong kind is
			// discarded in favor of the declared default.
			if known {
				if spec, found := paramSpec(def, k); found && spec.Kind != v.Kind() {
					continue
				}
			}
			p.Config.Set(id, k, v)
		}
	}

	for _, s := range doc.Gradient {
		p.Gradient = append(p.Gradient, gradient.Stop{Position: s.Position, Color: s.Color})
	}
	return p, nil
}

func paramSpec(def feature.Definition, key string) (feature.ParamSpec, bool) {
	for _, spec := range def.Params {
		if spec.Key == key {
			return spec, true
		}
	}
	return feature.ParamSpec{}, false
}

func encodeParam(v feature.ParamValue) paramJSON {
	switch v.Kind() {
	case feature.ParamFloat:
		return paramJSON{Kind: "float", Number: v.Float()}
	case feature.ParamInt:
		return paramJSON{Kind: "int", Number: float64(v.Int())}
	case feature.ParamBool:
		return paramJSON{Kind: "bool", Bool: v.Bool()}
	case feature.ParamVec3:
		vec := v.Vec3()
		return paramJSON{Kind: "vec3", Vec: &vec}
	case feature.ParamColor:
		vec := v.Vec3()
		return paramJSON{Kind: "color", Vec: &vec}
	case feature.ParamEnum:
		return paramJSON{Kind: "enum", Enum: v.Enum()}
	default:
		return paramJSON{}
	}
}

func decodeParam(p paramJSON) (feature.ParamValue, bool) {
	switch p.Kind {
	case "float":
		return feature.FloatValue(p.Number), true
	case "int":
		return feature.IntValue(int(p.Number)), true
	case "bool":
		return feature.BoolValue(p.Bool), true
	case "vec3":
		if p.Vec == nil {
			return feature.ParamValue{}, false
		}
		return feature.Vec3Value(p.Vec[0], p.Vec[1], p.Vec[2]), true
	case "color":
		if p.Vec == nil {
			return feature.ParamValue{}, false
		}
		return feature.ColorValue(p.Vec[0], p.Vec[1], p.Vec[2]), true
	case "enum":
		return feature.EnumValue(p.Enum), true
	default:
		return feature.ParamValue{}, false
	}
}
