package gradient

import (
	"sort"

	"github.com/gamazama/GMT-fractals-sub005/common"
)

// Width is the texel count of a baked gradient lookup table.
const Width = 256

// Stop is one color stop: a position in [0,1] and an RGB color in [0,1].
type Stop struct {
	Position float64
	Color    [3]float64
}

// Bake renders color stops into a Width x 1 RGBA8 lookup texture, linearly
// interpolating between adjacent stops and clamping outside the first and
// last. No stops bake to opaque white so a missing gradient is visible rather
// than black-on-black.
//
// Parameters:
//   - stops: the color stops, in any order
//
// Returns:
//   - common.TextureStagingData: the baked LUT, ready for GPU upload
func Bake(stops []Stop) common.TextureStagingData {
	return BakeLayers([][]Stop{stops})
}

// BakeLayers renders a stack of gradients into one Width x len(layers) RGBA8
// lookup texture, one row per layer. Layer 0 is the surface palette; higher
// rows are addressed by features that declare their own row index.
//
// Parameters:
//   - layers: one stop list per row, in any order within each row
//
// Returns:
//   - common.TextureStagingData: the baked LUT, ready for GPU upload
func BakeLayers(layers [][]Stop) common.TextureStagingData {
	height := len(layers)
	if height == 0 {
		height = 1
		layers = [][]Stop{nil}
	}
	pixels := make([]byte, Width*height*4)

	for row, stops := range layers {
		sorted := make([]Stop, len(stops))
		copy(sorted, stops)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Position < sorted[j].Position
		})

		for i := 0; i < Width; i++ {
			t := float64(i) / float64(Width-1)
			c := sample(sorted, t)
			o := (row*Width + i) * 4
			pixels[o] = toByte(c[0])
			pixels[o+1] = toByte(c[1])
			pixels[o+2] = toByte(c[2])
			pixels[o+3] = 255
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: Width, Height: uint32(height)}
}

func sample(sorted []Stop, t float64) [3]float64 {
	if len(sorted) == 0 {
		return [3]float64{1, 1, 1}
	}
	if t <= sorted[0].Position {
		return sorted[0].Color
	}
	last := sorted[len(sorted)-1]
	if t >= last.Position {
		return last.Color
	}
	for i := 1; i < len(sorted); i++ {
		if t > sorted[i].Position {
			continue
		}
		a, b := sorted[i-1], sorted[i]
		span := b.Position - a.Position
		if span <= 0 {
			return b.Color
		}
		f := (t - a.Position) / span
		return [3]float64{
			a.Color[0] + (b.Color[0]-a.Color[0])*f,
			a.Color[1] + (b.Color[1]-a.Color[1])*f,
			a.Color[2] + (b.Color[2]-a.Color[2])*f,
		}
	}
	return last.Color
}

func toByte(v float64) byte {
	return byte(common.Clamp(v, 0, 1)*255 + 0.5)
}
