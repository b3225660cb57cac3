package rt

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

// Propagation speed used to convert path distance to sample delay, in
// meters per second.
const SpeedOfSound float32 = 340.29

// A view is a propagating bundle of rays: a cone around Dir originating
// at Origin, carrying the residual Energy of the bundle. Views form an
// implicit tree; splitting and reflecting a view produces up to two child
// views each.
type View struct {
	Origin types.Vec3
	Dir    types.Vec3

	// Cone half-angle in radians.
	HalfAngle float32

	// Residual energy; views below the engine threshold are discarded.
	Energy float32

	// Number of surface bounces since the source.
	ReflectIdx int

	// Path length accumulated since the source, in meters.
	Distance float32

	// Face the view most recently interacted with, skipped during the
	// next scan so a split or reflection cannot re-hit it. -1 when the
	// view left the source directly.
	LastFaceID int32

	// Set on source-level tasks for progress accounting.
	root bool
}

// Bounding volume of the view: the AABB of the propagation segment
// inflated by the cone radius at its far end.
func (v *View) bounds(maxRange float32) types.AABB {
	far := v.Origin.Add(v.Dir.Mul(maxRange))
	radius := coneRadius(v.HalfAngle, maxRange)

	bbox := types.NewAABB()
	bbox.Extend(v.Origin)
	bbox.Extend(far)
	bbox.Min = bbox.Min.Sub(types.Vec3{radius, radius, radius})
	bbox.Max = bbox.Max.Add(types.Vec3{radius, radius, radius})
	return bbox
}
