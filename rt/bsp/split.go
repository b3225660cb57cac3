package bsp

import "github.com/lsp-plugins/lsp-dsp-units-sub001/types"

type splitCorner struct {
	v types.Vec3
	n types.Vec3
}

// Split a triangle that crosses the plane into per-side fans. The original
// winding is preserved by clipping the triangle as a polygon against both
// half-spaces, so every synthesized triangle keeps the parent's face
// normal. The parent's arena slot is reused for the first product.
func (c *Context) splitTriangle(t Index, plane types.Plane, inHead, outHead *Index) error {
	src := c.tris[t]

	var dist [3]float32
	var side [3]types.PlaneSide
	for i := 0; i < 3; i++ {
		dist[i] = plane.Dist(src.V[i])
		side[i] = plane.Side(src.V[i], planeEps)
	}

	var frontPoly, backPoly [4]splitCorner
	var frontLen, backLen int

	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		corner := splitCorner{v: src.V[i], n: src.N[i]}

		if side[i] != types.PlaneBack {
			frontPoly[frontLen] = corner
			frontLen++
		}
		if side[i] != types.PlaneFront {
			backPoly[backLen] = corner
			backLen++
		}

		// Strict edge crossing synthesizes a cut vertex shared by
		// both polygons.
		if (side[i] == types.PlaneFront && side[j] == types.PlaneBack) ||
			(side[i] == types.PlaneBack && side[j] == types.PlaneFront) {
			k := dist[i] / (dist[i] - dist[j])
			cut := splitCorner{
				v: src.V[i].Add(src.V[j].Sub(src.V[i]).Mul(k)),
				n: src.N[i].Add(src.N[j].Sub(src.N[i]).Mul(k)).Normalize(),
			}
			frontPoly[frontLen] = cut
			frontLen++
			backPoly[backLen] = cut
			backLen++
		}
	}

	// A crossing triangle must leave a valid polygon on each side; any
	// other outcome is a degenerate colocation the caller must see.
	if frontLen < 3 || backLen < 3 {
		return ErrUnknown
	}

	reuse := t
	var err error
	if reuse, err = c.emitFan(frontPoly[:frontLen], &src, reuse, outHead); err != nil {
		return err
	}
	if _, err = c.emitFan(backPoly[:backLen], &src, reuse, inHead); err != nil {
		return err
	}
	return nil
}

// Fan-triangulate a clipped polygon onto a subset list. The reuse slot is
// consumed by the first triangle when available; the remaining slots come
// from the arena. Returns the (possibly consumed) reuse slot.
func (c *Context) emitFan(poly []splitCorner, src *Triangle, reuse Index, head *Index) (Index, error) {
	for i := 1; i < len(poly)-1; i++ {
		idx := reuse
		if idx == nilIndex {
			var err error
			if idx, err = c.allocTriangle(); err != nil {
				return nilIndex, err
			}
		} else {
			reuse = nilIndex
		}

		tri := &c.tris[idx]
		tri.V[0], tri.N[0] = poly[0].v, poly[0].n
		tri.V[1], tri.N[1] = poly[i].v, poly[i].n
		tri.V[2], tri.N[2] = poly[i+1].v, poly[i+1].n
		tri.Normal = src.Normal
		tri.Color = src.Color
		tri.ObjectID = src.ObjectID
		tri.FaceID = src.FaceID

		tri.next = *head
		*head = idx
	}
	return reuse, nil
}
