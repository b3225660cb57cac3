package bsp

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/scene"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

func addTestTriangle(obj *scene.Object, a, b, c types.Vec3, faceID int32) {
	base := int32(len(obj.Vertices))
	obj.Vertices = append(obj.Vertices, a, b, c)

	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	nBase := int32(len(obj.Normals))
	obj.Normals = append(obj.Normals, n, n, n)

	obj.Triangles = append(obj.Triangles, scene.Triangle{
		Vertices: [3]int32{base, base + 1, base + 2},
		Normals:  [3]int32{nBase, nBase + 1, nBase + 2},
		FaceID:   faceID,
	})
}

// Two axis-aligned quads facing +z plus one quad crossing both of their
// planes, so the build is forced to split triangles.
func crossingObject() *scene.Object {
	obj := &scene.Object{Name: "crossing", Transform: types.Ident4()}

	quad := func(z float32, faceID int32) {
		a := types.Vec3{-1, -1, z}
		b := types.Vec3{1, -1, z}
		c := types.Vec3{1, 1, z}
		d := types.Vec3{-1, 1, z}
		addTestTriangle(obj, a, b, c, faceID)
		addTestTriangle(obj, a, c, d, faceID)
	}
	quad(1, 0)
	quad(2, 1)

	// Quad spanning z in [0.5, 2.5] crosses both planes.
	a := types.Vec3{0, -1, 0.5}
	b := types.Vec3{0, 1, 0.5}
	c := types.Vec3{0, 1, 2.5}
	d := types.Vec3{0, -1, 2.5}
	addTestTriangle(obj, a, b, c, 2)
	addTestTriangle(obj, a, c, d, 2)

	return obj
}

func arenaArea(c *Context) float32 {
	var total float32
	for i := range c.tris {
		total += c.tris[i].Area()
	}
	return total
}

func TestBuildTreeConservesArea(t *testing.T) {
	obj := crossingObject()
	c := NewContext(0)
	if err := c.AddObject(obj, 0, types.Ident4(), types.Vec3{1, 1, 1}); err != nil {
		t.Fatal(err)
	}

	before := arenaArea(c)
	srcCount := c.NumTriangles()

	if err := c.BuildTree(); err != nil {
		t.Fatal(err)
	}

	if c.NumTriangles() <= srcCount {
		t.Fatalf("expected splits to grow the arena beyond %d triangles; got %d", srcCount, c.NumTriangles())
	}

	after := arenaArea(c)
	if math32.Abs(after-before) > before*1e-4 {
		t.Fatalf("expected total area %f to be conserved; got %f", before, after)
	}

	// Every emitted triangle must land on exactly one on-list.
	var emitted int
	c.Traverse(types.Vec3{0, 0, -5}, func(tri *Triangle) bool {
		emitted++
		return true
	})
	if emitted != c.NumTriangles() {
		t.Fatalf("expected traversal to emit %d triangles; emitted %d", c.NumTriangles(), emitted)
	}
}

// Walk the built tree checking on-list/side invariants node by node.
func checkNode(t *testing.T, c *Context, nodeIdx Index) {
	t.Helper()
	n := &c.nodes[nodeIdx]

	for ti := n.on; ti != nilIndex; ti = c.tris[ti].next {
		for i := 0; i < 3; i++ {
			if d := math32.Abs(n.plane.Dist(c.tris[ti].V[i])); d > planeEps {
				t.Fatalf("on-list vertex %v lies %f from the node plane", c.tris[ti].V[i], d)
			}
		}
	}

	checkSide := func(child Index, wantBack bool) {
		if child == nilIndex {
			return
		}
		stack := []Index{child}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sub := &c.nodes[idx]
			for ti := sub.on; ti != nilIndex; ti = c.tris[ti].next {
				for i := 0; i < 3; i++ {
					d := n.plane.Dist(c.tris[ti].V[i])
					if wantBack && d > planeEps {
						t.Fatalf("in-subtree vertex %v lies %f in front of the parent plane", c.tris[ti].V[i], d)
					}
					if !wantBack && d < -planeEps {
						t.Fatalf("out-subtree vertex %v lies %f behind the parent plane", c.tris[ti].V[i], d)
					}
				}

				// Cut vertices may touch the plane; the centroid must
				// lie strictly on the subtree's side.
				cd := n.plane.Dist(c.tris[ti].Centroid())
				if wantBack && cd > 0 {
					t.Fatalf("in-subtree centroid lies %f in front of the parent plane", cd)
				}
				if !wantBack && cd < 0 {
					t.Fatalf("out-subtree centroid lies %f behind the parent plane", cd)
				}
			}
			if sub.in != nilIndex {
				stack = append(stack, sub.in)
			}
			if sub.out != nilIndex {
				stack = append(stack, sub.out)
			}
		}
	}
	checkSide(n.in, true)
	checkSide(n.out, false)

	if n.in != nilIndex {
		checkNode(t, c, n.in)
	}
	if n.out != nilIndex {
		checkNode(t, c, n.out)
	}
}

func TestBuildTreeSoundness(t *testing.T) {
	obj := crossingObject()
	c := NewContext(0)
	if err := c.AddObject(obj, 0, types.Ident4(), types.Vec3{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := c.BuildTree(); err != nil {
		t.Fatal(err)
	}
	if c.root == nilIndex {
		t.Fatal("expected a non-nil root for a non-empty context")
	}
	checkNode(t, c, c.root)
}

func TestBuildMeshDepthOrder(t *testing.T) {
	obj := &scene.Object{Name: "screens", Transform: types.Ident4()}
	addTestTriangle(obj, types.Vec3{-1, -1, 1}, types.Vec3{1, -1, 1}, types.Vec3{0, 1, 1}, 0)
	addTestTriangle(obj, types.Vec3{-1, -1, 2}, types.Vec3{1, -1, 2}, types.Vec3{0, 1, 2}, 1)

	c := NewContext(0)
	if err := c.AddObject(obj, 0, types.Ident4(), types.Vec3{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := c.BuildTree(); err != nil {
		t.Fatal(err)
	}

	mesh := c.BuildMesh(types.Vec3{0, 0, 0})
	if len(mesh) != 2 {
		t.Fatalf("expected 2 emitted triangles; got %d", len(mesh))
	}
	if mesh[0].V[0][2] != 1 || mesh[1].V[0][2] != 2 {
		t.Fatalf("expected near plane (z=1) before far plane (z=2); got z=%f then z=%f",
			mesh[0].V[0][2], mesh[1].V[0][2])
	}

	// Emitted triangles must face the viewpoint after flipping.
	for i, tri := range mesh {
		if tri.Plane().Dist(types.Vec3{0, 0, 0}) < -planeEps {
			t.Fatalf("emitted triangle %d faces away from the viewpoint", i)
		}
	}

	// The reverse viewpoint reverses the emission order.
	mesh = c.BuildMesh(types.Vec3{0, 0, 5})
	if mesh[0].V[0][2] != 2 || mesh[1].V[0][2] != 1 {
		t.Fatalf("expected far viewpoint to emit z=2 first; got z=%f then z=%f",
			mesh[0].V[0][2], mesh[1].V[0][2])
	}
}

func TestEmptyContext(t *testing.T) {
	c := NewContext(0)
	if err := c.BuildTree(); err != nil {
		t.Fatal(err)
	}
	if c.root != nilIndex {
		t.Fatal("expected nil root for an empty context")
	}
	if mesh := c.BuildMesh(types.Vec3{}); len(mesh) != 0 {
		t.Fatalf("expected empty mesh; got %d triangles", len(mesh))
	}
}

func TestTriangleBudget(t *testing.T) {
	obj := crossingObject()
	c := NewContext(3)
	err := c.AddObject(obj, 0, types.Ident4(), types.Vec3{1, 1, 1})
	if err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory; got %v", err)
	}
}
