package types

import "math"

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an empty AABB ready for extension.
func NewAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Extend the box to include a point.
func (b *AABB) Extend(v Vec3) {
	b.Min = MinVec3(b.Min, v)
	b.Max = MaxVec3(b.Max, v)
}

// Extend the box to include another box.
func (b *AABB) ExtendBox(b2 AABB) {
	b.Min = MinVec3(b.Min, b2.Min)
	b.Max = MaxVec3(b.Max, b2.Max)
}

// Check whether two boxes overlap.
func (b AABB) Overlaps(b2 AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] > b2.Max[axis] || b.Max[axis] < b2.Min[axis] {
			return false
		}
	}
	return true
}

// Check whether the box contains a point.
func (b AABB) Contains(v Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if v[axis] < b.Min[axis] || v[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Slab test for a ray against the box. Returns false when the ray misses
// or the intersection lies behind the origin.
func (b AABB) IntersectsRay(origin, dir Vec3) bool {
	tMin := float32(0)
	tMax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if dir[axis] > -floatCmpEpsilon && dir[axis] < floatCmpEpsilon {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return false
			}
			continue
		}

		inv := 1.0 / dir[axis]
		t0 := (b.Min[axis] - origin[axis]) * inv
		t1 := (b.Max[axis] - origin[axis]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}

	return true
}
