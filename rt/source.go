package rt

import (
	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

// A sound source emitting a cone of ray bundles. Aperture is the
// half-angle of the emission cone around Direction; math32.Pi covers the
// full sphere.
type Source struct {
	Position  types.Vec3
	Direction types.Vec3
	Aperture  float32
}

// Create an omnidirectional source at the given position.
func OmniSource(position types.Vec3) Source {
	return Source{
		Position:  position,
		Direction: types.Vec3{0, 0, 1},
		Aperture:  math32.Pi,
	}
}

// Sample the emission cone with a fixed-step latitude/longitude grid keyed
// off the detalization parameter: elevation rings every aperture/(2*d)
// radians with 4*d azimuth steps per ring, poles emitted once. The grid
// always contains the cone axis and, for an omnidirectional source, the
// six principal axis directions.
func (s Source) emitDirections(detalization int) []types.Vec3 {
	if detalization < 1 {
		detalization = 1
	}

	axis := s.Direction.Normalize()
	if axis.Len() < 0.5 {
		axis = types.Vec3{0, 0, 1}
	}
	u, v := orthoBasis(axis)

	rings := 2 * detalization
	elevStep := s.Aperture / float32(rings)
	azSteps := 4 * detalization

	dirs := make([]types.Vec3, 0, rings*azSteps+2)
	dirs = append(dirs, axis)

	for k := 1; k <= rings; k++ {
		elev := float32(k) * elevStep
		if elev > math32.Pi-1e-4 {
			// Antipodal pole collapses to a single direction.
			dirs = append(dirs, axis.Mul(-1))
			continue
		}

		sinE, cosE := math32.Sincos(elev)
		for a := 0; a < azSteps; a++ {
			sinA, cosA := math32.Sincos(2 * math32.Pi * float32(a) / float32(azSteps))
			dir := axis.Mul(cosE).
				Add(u.Mul(sinE * cosA)).
				Add(v.Mul(sinE * sinA))
			dirs = append(dirs, dir.Normalize())
		}
	}

	return dirs
}

// Half-angle assigned to each root view so neighbouring bundles tile the
// emission cone without large gaps.
func (s Source) rootHalfAngle(detalization int) float32 {
	if detalization < 1 {
		detalization = 1
	}
	return s.Aperture / float32(4*detalization)
}

// Build an orthonormal basis perpendicular to a unit axis.
func orthoBasis(axis types.Vec3) (types.Vec3, types.Vec3) {
	ref := types.Vec3{1, 0, 0}
	if math32.Abs(axis[0]) > 0.9 {
		ref = types.Vec3{0, 1, 0}
	}
	u := axis.Cross(ref).Normalize()
	return u, axis.Cross(u).Normalize()
}
