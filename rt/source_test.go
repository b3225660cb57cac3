package rt

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

func containsDir(dirs []types.Vec3, want types.Vec3) bool {
	for _, d := range dirs {
		if d.Sub(want).Len() < 1e-5 {
			return true
		}
	}
	return false
}

func TestOmniSourceSampling(t *testing.T) {
	src := OmniSource(types.Vec3{})

	for _, det := range []int{1, 2, 4} {
		dirs := src.emitDirections(det)

		// The fixed-step grid always contains the six principal axes.
		axes := []types.Vec3{
			{1, 0, 0}, {-1, 0, 0},
			{0, 1, 0}, {0, -1, 0},
			{0, 0, 1}, {0, 0, -1},
		}
		for _, axis := range axes {
			if !containsDir(dirs, axis) {
				t.Fatalf("detalization %d: expected sampled directions to contain %v", det, axis)
			}
		}

		for i, d := range dirs {
			if math32.Abs(d.Len()-1) > 1e-4 {
				t.Fatalf("detalization %d: direction %d is not unit length: %v", det, i, d)
			}
		}
	}

	// Higher detalization must subdivide the cone into more root tasks.
	if len(src.emitDirections(4)) <= len(src.emitDirections(1)) {
		t.Fatal("expected higher detalization to produce more directions")
	}
}

func TestNarrowSourceSampling(t *testing.T) {
	src := Source{
		Position:  types.Vec3{},
		Direction: types.Vec3{1, 0, 0},
		Aperture:  math32.Pi / 8,
	}

	dirs := src.emitDirections(2)
	if !containsDir(dirs, types.Vec3{1, 0, 0}) {
		t.Fatal("expected the cone axis to be sampled")
	}
	for i, d := range dirs {
		if d.Dot(types.Vec3{1, 0, 0}) < math32.Cos(src.Aperture+1e-4) {
			t.Fatalf("direction %d lies outside the emission cone: %v", i, d)
		}
	}
}
