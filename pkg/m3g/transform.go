package m3g

import "github.com/chewxy/math32"

// Mul returns m × o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// TransformPoint applies m to p with w = 1 and divides by the resulting w.
func (m Matrix) TransformPoint(p [3]float32) [3]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row*4]*p[0] + m[row*4+1]*p[1] + m[row*4+2]*p[2] + m[row*4+3]
	}
	if out[3] != 0 && out[3] != 1 {
		return [3]float32{out[0] / out[3], out[1] / out[3], out[2] / out[3]}
	}
	return [3]float32{out[0], out[1], out[2]}
}

// Matrix returns T·R·S for the component transform. A zero axis gives
// no rotation.
func (c *ComponentTransform) Matrix() Matrix {
	t := IdentityMatrix()
	t[3], t[7], t[11] = c.Translation[0], c.Translation[1], c.Translation[2]

	s := IdentityMatrix()
	s[0], s[5], s[10] = c.Scale[0], c.Scale[1], c.Scale[2]

	return t.Mul(axisAngle(c.OrientationAxis, c.OrientationAngle)).Mul(s)
}

// axisAngle builds a rotation from an unnormalised axis and an angle in
// degrees, going through a unit quaternion.
func axisAngle(axis [3]float32, degrees float32) Matrix {
	length := math32.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if length < 1e-6 || degrees == 0 {
		return IdentityMatrix()
	}

	half := degrees * math32.Pi / 360
	sin := math32.Sin(half) / length
	x, y, z, w := axis[0]*sin, axis[1]*sin, axis[2]*sin, math32.Cos(half)

	xx, xy, xz, xw := x*x, x*y, x*z, x*w
	yy, yz, yw := y*y, y*z, y*w
	zz, zw := z*z, z*w

	return Matrix{
		1 - 2*(yy+zz), 2 * (xy - zw), 2 * (xz + yw), 0,
		2 * (xy + zw), 1 - 2*(xx+zz), 2 * (yz - xw), 0,
		2 * (xz - yw), 2 * (yz + xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// LocalMatrix returns the composite transform: the component transform
// followed by the general matrix, either of which may be absent.
func (t *Transformable) LocalMatrix() Matrix {
	m := IdentityMatrix()
	if t.Component != nil {
		m = t.Component.Matrix()
	}
	if t.General != nil {
		m = m.Mul(*t.General)
	}
	return m
}
