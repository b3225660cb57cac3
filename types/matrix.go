package types

import "golang.org/x/image/math/f32"

// Row-major 4x4 matrix.
type Mat4 f32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Create a translation matrix.
func Translate4(offset Vec3) Mat4 {
	return Mat4{
		1, 0, 0, offset[0],
		0, 1, 0, offset[1],
		0, 0, 1, offset[2],
		0, 0, 0, 1,
	}
}

// Create a scale matrix.
func Scale4(factor Vec3) Mat4 {
	return Mat4{
		factor[0], 0, 0, 0,
		0, factor[1], 0, 0,
		0, 0, factor[2], 0,
		0, 0, 0, 1,
	}
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * m2[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// Transform a point by this matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// Transform a direction by this matrix ignoring translation. The result
// is not re-normalized.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}
