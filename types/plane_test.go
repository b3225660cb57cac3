package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestPlaneFromPoints(t *testing.T) {
	p := PlaneFromPoints(Vec3{0, 0, 1}, Vec3{1, 0, 1}, Vec3{0, 1, 1})

	exp := Vec3{0, 0, 1}
	if p.Normal.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected plane normal %v; got %v", exp, p.Normal)
	}
	if math32.Abs(p.D+1) > 1e-5 {
		t.Fatalf("expected plane offset -1; got %f", p.D)
	}
}

func TestPlaneSide(t *testing.T) {
	p := PlaneFromPoints(Vec3{0, 0, 1}, Vec3{1, 0, 1}, Vec3{0, 1, 1})

	specs := []struct {
		point Vec3
		exp   PlaneSide
	}{
		{Vec3{0, 0, 2}, PlaneFront},
		{Vec3{5, -3, 0}, PlaneBack},
		{Vec3{7, 2, 1}, PlaneOn},
		{Vec3{0, 0, 1.000001}, PlaneOn},
	}

	for idx, spec := range specs {
		if got := p.Side(spec.point, 1e-5); got != spec.exp {
			t.Fatalf("spec %d: expected side %d for %v; got %d", idx, spec.exp, spec.point, got)
		}
	}
}

func TestVec3Reflect(t *testing.T) {
	in := Vec3{1, -1, 0}.Normalize()
	out := in.Reflect(Vec3{0, 1, 0})

	exp := Vec3{1, 1, 0}.Normalize()
	if out.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected reflection %v; got %v", exp, out)
	}
}

func TestAABBOverlaps(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{2, 2, 2}}
	b := AABB{Min: Vec3{1, 1, 1}, Max: Vec3{3, 3, 3}}
	c := AABB{Min: Vec3{2.5, 0, 0}, Max: Vec3{3, 1, 1}}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatal("expected a and c to be disjoint")
	}
}

func TestAABBIntersectsRay(t *testing.T) {
	box := AABB{Min: Vec3{-1, -1, 4}, Max: Vec3{1, 1, 6}}

	if !box.IntersectsRay(Vec3{0, 0, 0}, Vec3{0, 0, 1}) {
		t.Fatal("expected the ray to hit the box")
	}
	if box.IntersectsRay(Vec3{0, 0, 0}, Vec3{0, 0, -1}) {
		t.Fatal("expected the reversed ray to miss the box")
	}
	if box.IntersectsRay(Vec3{5, 5, 0}, Vec3{0, 0, 1}) {
		t.Fatal("expected the offset ray to miss the box")
	}

	// Origin inside the box.
	if !box.IntersectsRay(Vec3{0, 0, 5}, Vec3{1, 0, 0}) {
		t.Fatal("expected a ray from inside the box to hit it")
	}
}

func TestMat4Transforms(t *testing.T) {
	m := Translate4(Vec3{1, 2, 3})

	got := m.MulPoint(Vec3{1, 1, 1})
	exp := Vec3{2, 3, 4}
	if got.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected translated point %v; got %v", exp, got)
	}

	// Directions ignore translation.
	got = m.MulDir(Vec3{1, 1, 1})
	exp = Vec3{1, 1, 1}
	if got.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected direction %v; got %v", exp, got)
	}

	s := Scale4(Vec3{2, 2, 2})
	combined := m.Mul4(s)
	got = combined.MulPoint(Vec3{1, 0, 0})
	exp = Vec3{3, 2, 3}
	if got.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected combined transform to yield %v; got %v", exp, got)
	}
}
