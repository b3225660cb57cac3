package bsp

import (
	"time"

	"github.com/lsp-plugins/lsp-dsp-units-sub001/log"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/scene"
	"github.com/lsp-plugins/lsp-dsp-units-sub001/types"
)

// A tree node partitions its triangle list by a plane. Triangles lying on
// the plane within planeEps stay on the node; everything else moves to the
// in (behind the plane) or out (in front) subtree.
type node struct {
	plane types.Plane
	in    Index
	out   Index
	on    Index
}

// Context owns the triangle and node arenas and the tree built from them.
// A context is built once and is read-only during traversal; it is not
// safe for concurrent mutation.
type Context struct {
	logger log.Logger

	tris  []Triangle
	nodes []node
	root  Index

	// Head of the unpartitioned triangle list before BuildTree runs.
	pending Index

	// Maximum number of arena triangles including split products;
	// 0 disables the budget.
	maxTriangles int

	built bool
}

// Create a new partition context. maxTriangles bounds arena growth
// (split products included); exceeding it fails with ErrOutOfMemory.
func NewContext(maxTriangles int) *Context {
	return &Context{
		logger:       log.New("bsp"),
		root:         nilIndex,
		pending:      nilIndex,
		maxTriangles: maxTriangles,
	}
}

// Number of triangles currently held by the arena.
func (c *Context) NumTriangles() int {
	return len(c.tris)
}

// Number of tree nodes. Zero until BuildTree runs.
func (c *Context) NumNodes() int {
	return len(c.nodes)
}

func (c *Context) allocTriangle() (Index, error) {
	if c.maxTriangles > 0 && len(c.tris) >= c.maxTriangles {
		return nilIndex, ErrOutOfMemory
	}
	c.tris = append(c.tris, Triangle{next: nilIndex})
	return Index(len(c.tris) - 1), nil
}

func (c *Context) allocNode() Index {
	c.nodes = append(c.nodes, node{in: nilIndex, out: nilIndex, on: nilIndex})
	return Index(len(c.nodes) - 1)
}

// Append an object's triangles to the context, transformed into scene
// space with recomputed flat normals. Degenerate (zero area) triangles
// are dropped. The color tag is attached to every produced triangle.
func (c *Context) AddObject(obj *scene.Object, objectID int32, transform types.Mat4, color types.Vec3) error {
	for _, src := range obj.Triangles {
		idx, err := c.allocTriangle()
		if err != nil {
			return err
		}

		t := &c.tris[idx]
		for i := 0; i < 3; i++ {
			t.V[i] = transform.MulPoint(obj.Vertices[src.Vertices[i]])
			t.N[i] = transform.MulDir(obj.Normals[src.Normals[i]]).Normalize()
		}

		t.Normal = t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0]))
		if t.Normal.Len() < planeEps {
			// Degenerate; return the slot to the arena.
			c.tris = c.tris[:len(c.tris)-1]
			continue
		}
		t.Normal = t.Normal.Normalize()

		t.Color = color
		t.ObjectID = objectID
		t.FaceID = src.FaceID

		t.next = c.pending
		c.pending = idx
	}

	return nil
}

type buildTask struct {
	node Index
	list Index
}

// Build the partition tree, consuming the pending triangle list. The
// split plane of each node is taken from the first triangle of its list;
// remaining triangles are classified against it and crossing triangles
// are split along the plane. An empty context yields a nil root.
func (c *Context) BuildTree() error {
	if c.built {
		return ErrCorrupted
	}
	c.built = true

	if c.pending == nilIndex {
		return nil
	}

	start := time.Now()
	c.root = c.allocNode()
	stack := []buildTask{{node: c.root, list: c.pending}}
	c.pending = nilIndex

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if task.list == nilIndex {
			// Child tasks are only queued for non-empty subsets.
			return ErrCorrupted
		}

		first := task.list
		rest := c.tris[first].next
		plane := c.tris[first].Plane()

		c.nodes[task.node].plane = plane
		c.tris[first].next = nilIndex
		c.nodes[task.node].on = first

		inHead, outHead := nilIndex, nilIndex
		for t := rest; t != nilIndex; {
			next := c.tris[t].next
			c.tris[t].next = nilIndex
			if err := c.classify(task.node, t, plane, &inHead, &outHead); err != nil {
				return err
			}
			t = next
		}

		if inHead != nilIndex {
			child := c.allocNode()
			c.nodes[task.node].in = child
			stack = append(stack, buildTask{node: child, list: inHead})
		}
		if outHead != nilIndex {
			child := c.allocNode()
			c.nodes[task.node].out = child
			stack = append(stack, buildTask{node: child, list: outHead})
		}
	}

	c.logger.Debugf("partitioned %d triangles into %d nodes in %d ms",
		len(c.tris), len(c.nodes), time.Since(start).Nanoseconds()/1e6)

	return nil
}

// Classify a triangle against the node's split plane and push it onto the
// on-list or one of the subset lists, splitting it when it crosses the
// plane.
func (c *Context) classify(nodeIdx, t Index, plane types.Plane, inHead, outHead *Index) error {
	var front, back int
	for i := 0; i < 3; i++ {
		switch plane.Side(c.tris[t].V[i], planeEps) {
		case types.PlaneFront:
			front++
		case types.PlaneBack:
			back++
		}
	}

	switch {
	case front == 0 && back == 0:
		c.tris[t].next = c.nodes[nodeIdx].on
		c.nodes[nodeIdx].on = t
		return nil
	case back == 0:
		c.tris[t].next = *outHead
		*outHead = t
		return nil
	case front == 0:
		c.tris[t].next = *inHead
		*inHead = t
		return nil
	default:
		return c.splitTriangle(t, plane, inHead, outHead)
	}
}
