package rt

import (
	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

const geomEps float32 = 1e-5

// Radius of a cone of the given half-angle at the given distance.
func coneRadius(halfAngle, dist float32) float32 {
	return math32.Tan(halfAngle) * dist
}

// Möller–Trumbore ray/triangle intersection. Returns the ray parameter
// and true when the ray hits the triangle interior in front of the origin.
func intersectRayTriangle(origin, dir types.Vec3, v0, v1, v2 types.Vec3) (float32, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -geomEps && det < geomEps {
		return 0, false
	}
	invDet := 1.0 / det

	tv := origin.Sub(v0)
	u := tv.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := tv.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * invDet
	if t <= geomEps {
		return 0, false
	}
	return t, true
}

// Fraction of the view cone covered by a triangle of the given area hit at
// the given distance, clamped to [0,1]. The triangle is modelled as a disc
// of equal area; the ratio of the squared angular radii approximates the
// solid-angle coverage.
func coneCoverage(area, dist, halfAngle float32) float32 {
	if halfAngle < geomEps || dist < geomEps {
		return 1
	}
	angular := math32.Atan(math32.Sqrt(area/math32.Pi) / dist)
	f := (angular / halfAngle) * (angular / halfAngle)
	if f > 1 {
		return 1
	}
	return f
}
