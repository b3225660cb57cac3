package bsp

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

type traverseFrame struct {
	node Index
	emit bool
}

// Traverse walks the tree front-to-back relative to the viewpoint, calling
// visit for every triangle in depth order. Returning false stops the walk.
// The walk uses an explicit stack so arbitrarily deep trees cannot exhaust
// the goroutine stack.
func (c *Context) Traverse(viewpoint types.Vec3, visit func(t *Triangle) bool) {
	if c.root == nilIndex {
		return
	}

	stack := make([]traverseFrame, 0, 64)
	stack = append(stack, traverseFrame{node: c.root})

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.node == nilIndex {
			continue
		}

		n := &c.nodes[frame.node]
		if frame.emit {
			for t := n.on; t != nilIndex; t = c.tris[t].next {
				if !visit(&c.tris[t]) {
					return
				}
			}
			continue
		}

		// The subtree on the viewpoint's side of the plane is nearer
		// and must be emitted first.
		near, far := n.out, n.in
		if n.plane.Side(viewpoint, planeEps) == types.PlaneBack {
			near, far = n.in, n.out
		}

		stack = append(stack,
			traverseFrame{node: far},
			traverseFrame{node: frame.node, emit: true},
			traverseFrame{node: near},
		)
	}
}

// BuildMesh emits a depth-ordered copy of the scene triangles for the
// given viewpoint. Triangles whose plane faces away from the viewpoint are
// flipped so the emitted stream is consistently front-facing.
func (c *Context) BuildMesh(viewpoint types.Vec3) []Triangle {
	out := make([]Triangle, 0, len(c.tris))
	c.Traverse(viewpoint, func(t *Triangle) bool {
		tri := *t
		tri.next = nilIndex
		if t.Plane().Dist(viewpoint) < 0 {
			tri.Flip()
		}
		out = append(out, tri)
		return true
	})
	return out
}
