package precision

import (
	"math"
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/common"
)

func TestSplitRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    float64
	}{
		{"zero", 0},
		{"small", 0.125},
		{"negative", -3.75},
		{"large", 123456789.123456789},
		{"deep zoom", 1.0000000001},
		{"tiny", 1e-18},
		{"huge", 1e12 + 0.333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Split(tt.v)
			if got := d.Value(); got != tt.v {
				t.Errorf("Split(%v).Value() = %v, want exact round trip", tt.v, got)
			}
		})
	}
}

func TestNormalizeBounds(t *testing.T) {
	d := DoubleFloat{High: 2, Low: 1.7}
	want := d.Value()
	d.normalize()
	if math.Abs(d.Low) > 0.5 {
		t.Errorf("after normalize |Low| = %v, want <= 0.5", math.Abs(d.Low))
	}
	if got := d.Value(); math.Abs(got-want) > 1e-12 {
		t.Errorf("normalize changed value: got %v, want %v", got, want)
	}
}

func TestMoveAccumulation(t *testing.T) {
	var d DoubleFloat3
	for i := 0; i < 3; i++ {
		d.Move(0.3, 0, 0)
	}
	// Three steps of 0.3 overflow past 0.5 once: high carries to 1 and the
	// low part holds the (slightly inexact) residual near -0.1.
	if d.X.High != 1 {
		t.Errorf("X.High = %v, want 1", d.X.High)
	}
	if math.Abs(d.X.Low-(-0.1)) > 1e-9 {
		t.Errorf("X.Low = %v, want approximately -0.1", d.X.Low)
	}
	if got := d.X.Value(); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("X.Value() = %v, want 0.9", got)
	}
}

func TestMoveKeepsLowBounded(t *testing.T) {
	var d DoubleFloat3
	for i := 0; i < 10000; i++ {
		d.Move(0.037, -0.021, 0.013)
	}
	low := d.Low()
	for axis, v := range map[string]float64{"x": low.X, "y": low.Y, "z": low.Z} {
		if math.Abs(v) > 0.5 {
			t.Errorf("low %s = %v after sustained drift, want |low| <= 0.5", axis, v)
		}
	}
	want := common.Vec3{X: 370, Y: -210, Z: 130}
	got := d.Value()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
		t.Errorf("accumulated value = %+v, want %+v", got, want)
	}
}

func TestSplitVecValue(t *testing.T) {
	v := common.Vec3{X: 1.5, Y: -2.25, Z: 1e9 + 0.0000001}
	d := SplitVec(v)
	got := d.Value()
	if got != v {
		t.Errorf("SplitVec(%+v).Value() = %+v, want exact round trip", v, got)
	}
	high := d.High()
	if high[0] != float32(v.X) || high[1] != float32(v.Y) || high[2] != float32(v.Z) {
		t.Errorf("High() = %v, want nearest float32 per axis", high)
	}
}
