package bsp

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

// Index references a triangle or node inside the context arenas. The
// intrusive next links of the source data structure are expressed as
// indices so the arena can be grown without invalidating references.
type Index int32

const nilIndex Index = -1

// Tolerance for point/plane colocation tests during tree construction.
const planeEps float32 = 1e-5

// A triangle owned by the context arena. Synthesized triangles produced
// by plane splits inherit Normal, Color, ObjectID and FaceID from their
// parent; vertex normals are interpolated along the cut edges.
type Triangle struct {
	V [3]types.Vec3
	N [3]types.Vec3

	// Flat face normal following the vertex winding.
	Normal types.Vec3

	// Color/energy tag assigned when the owning object was added; the
	// tracer bakes the per-surface energy retention into it.
	Color types.Vec3

	ObjectID int32
	FaceID   int32

	next Index
}

// The plane containing the triangle.
func (t *Triangle) Plane() types.Plane {
	return types.Plane{
		Normal: t.Normal,
		D:      -t.Normal.Dot(t.V[0]),
	}
}

// Surface area.
func (t *Triangle) Area() float32 {
	return t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0])).Len() * 0.5
}

// Centroid of the three vertices.
func (t *Triangle) Centroid() types.Vec3 {
	return t.V[0].Add(t.V[1]).Add(t.V[2]).Mul(1.0 / 3.0)
}

// Axis-aligned bounding box of the vertices.
func (t *Triangle) BBox() types.AABB {
	bbox := types.NewAABB()
	bbox.Extend(t.V[0])
	bbox.Extend(t.V[1])
	bbox.Extend(t.V[2])
	return bbox
}

// Flip reverses the winding, the face normal and the vertex normals.
func (t *Triangle) Flip() {
	t.V[0], t.V[2] = t.V[2], t.V[0]
	t.N[0], t.N[2] = t.N[2], t.N[0]
	for i := 0; i < 3; i++ {
		t.N[i] = t.N[i].Mul(-1)
	}
	t.Normal = t.Normal.Mul(-1)
}
