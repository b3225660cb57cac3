package scene

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

// A triangle references vertex and normal storage by index. FaceID
// identifies the original surface so that views reflected off a split
// triangle are not counted twice against the same face.
type Triangle struct {
	Vertices [3]int32
	Normals  [3]int32
	FaceID   int32
}

// An object is a named triangle soup with its own vertex/normal storage
// and a placement transform.
type Object struct {
	Name      string
	Vertices  []types.Vec3
	Normals   []types.Vec3
	Triangles []Triangle
	Transform types.Mat4
}

// Compute the bounding box of the object's transformed vertices.
func (o *Object) BBox() types.AABB {
	bbox := types.NewAABB()
	for _, v := range o.Vertices {
		bbox.Extend(o.Transform.MulPoint(v))
	}
	return bbox
}

// A scene is an ordered collection of objects. The object index doubles
// as the object id used for material lookups during propagation.
type Scene struct {
	Objects []*Object
}

// Append an object and return its object id.
func (s *Scene) AddObject(obj *Object) int32 {
	s.Objects = append(s.Objects, obj)
	return int32(len(s.Objects) - 1)
}

// Total triangle count across all objects.
func (s *Scene) TriangleCount() int {
	var count int
	for _, obj := range s.Objects {
		count += len(obj.Triangles)
	}
	return count
}
