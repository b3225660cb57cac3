package types

// Signed-distance classification of a point against a plane.
type PlaneSide int8

const (
	PlaneBack PlaneSide = iota - 1
	PlaneOn
	PlaneFront
)

// A plane in normal/offset form: Normal·p + D = 0.
type Plane struct {
	Normal Vec3
	D      float32
}

// Construct the plane containing a triangle. The plane normal follows the
// counter-clockwise winding of the vertices.
func PlaneFromPoints(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{
		Normal: n,
		D:      -n.Dot(a),
	}
}

// Signed distance from the plane to a point. Positive values lie on the
// side the normal points to.
func (p Plane) Dist(v Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Classify a point against the plane with the supplied tolerance.
func (p Plane) Side(v Vec3, eps float32) PlaneSide {
	d := p.Dist(v)
	switch {
	case d > eps:
		return PlaneFront
	case d < -eps:
		return PlaneBack
	default:
		return PlaneOn
	}
}
