package gradient

import "testing"

func TestBakeDimensions(t *testing.T) {
	tex := Bake([]Stop{{Position: 0, Color: [3]float64{1, 0, 0}}})
	if tex.Width != Width || tex.Height != 1 {
		t.Errorf("texture = %dx%d, want %dx1", tex.Width, tex.Height, Width)
	}
	if len(tex.Pixels) != Width*4 {
		t.Errorf("pixel bytes = %d, want %d", len(tex.Pixels), Width*4)
	}
}

func TestBakeEmptyIsWhite(t *testing.T) {
	tex := Bake(nil)
	for i := 0; i < Width; i++ {
		o := i * 4
		if tex.Pixels[o] != 255 || tex.Pixels[o+1] != 255 || tex.Pixels[o+2] != 255 || tex.Pixels[o+3] != 255 {
			t.Fatalf("texel %d = %v, want opaque white", i, tex.Pixels[o:o+4])
		}
	}
}

func TestBakeInterpolatesBetweenStops(t *testing.T) {
	tex := Bake([]Stop{
		{Position: 0, Color: [3]float64{0, 0, 0}},
		{Position: 1, Color: [3]float64{1, 1, 1}},
	})
	// Endpoints are exact.
	if tex.Pixels[0] != 0 {
		t.Errorf("first texel red = %d, want 0", tex.Pixels[0])
	}
	if tex.Pixels[(Width-1)*4] != 255 {
		t.Errorf("last texel red = %d, want 255", tex.Pixels[(Width-1)*4])
	}
	// The midpoint lands near 50% gray.
	mid := tex.Pixels[(Width/2)*4]
	if mid < 126 || mid > 130 {
		t.Errorf("mid texel red = %d, want near 128", mid)
	}
	// Alpha stays opaque throughout.
	for i := 0; i < Width; i++ {
		if tex.Pixels[i*4+3] != 255 {
			t.Fatalf("texel %d alpha = %d, want 255", i, tex.Pixels[i*4+3])
		}
	}
}

func TestBakeClampsOutsideStops(t *testing.T) {
	tex := Bake([]Stop{
		{Position: 0.4, Color: [3]float64{1, 0, 0}},
		{Position: 0.6, Color: [3]float64{0, 0, 1}},
	})
	if tex.Pixels[0] != 255 || tex.Pixels[2] != 0 {
		t.Error("texels before the first stop should clamp to its color")
	}
	last := (Width - 1) * 4
	if tex.Pixels[last] != 0 || tex.Pixels[last+2] != 255 {
		t.Error("texels after the last stop should clamp to its color")
	}
}

func TestBakeLayersOneRowPerLayer(t *testing.T) {
	tex := BakeLayers([][]Stop{
		{{Position: 0, Color: [3]float64{1, 0, 0}}},
		{{Position: 0, Color: [3]float64{0, 1, 0}}},
	})
	if tex.Width != Width || tex.Height != 2 {
		t.Fatalf("texture = %dx%d, want %dx2", tex.Width, tex.Height, Width)
	}
	if tex.Pixels[0] != 255 || tex.Pixels[1] != 0 {
		t.Error("row 0 does not carry the first layer")
	}
	row1 := Width * 4
	if tex.Pixels[row1] != 0 || tex.Pixels[row1+1] != 255 {
		t.Error("row 1 does not carry the second layer")
	}
}

func TestBakeLayersEmptyBakesOneRow(t *testing.T) {
	tex := BakeLayers(nil)
	if tex.Height != 1 || len(tex.Pixels) != Width*4 {
		t.Errorf("texture = %dx%d, want %dx1", tex.Width, tex.Height, Width)
	}
}

func TestBakeSortsStops(t *testing.T) {
	a := Bake([]Stop{
		{Position: 1, Color: [3]float64{1, 1, 1}},
		{Position: 0, Color: [3]float64{0, 0, 0}},
	})
	b := Bake([]Stop{
		{Position: 0, Color: [3]float64{0, 0, 0}},
		{Position: 1, Color: [3]float64{1, 1, 1}},
	})
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatal("stop order changed the baked result")
		}
	}
}
