package vmath

import (
	"math"
)

// Quat is a rotation quaternion (W scalar part)
// Always kept unit-length by constructors; callers composing many rotations
// should renormalize periodically with QNormalize
type Quat struct {
	W, X, Y, Z float64
}

// QIdentity returns the no-rotation quaternion
func QIdentity() Quat {
	return Quat{W: 1}
}

// QFromAxisAngle builds a quaternion rotating angle radians around axis
func QFromAxisAngle(axis Vec3, angle float64) Quat {
	axis = V3Normalize(axis)
	half := angle * 0.5
	s := math.Sin(half)
	return Quat{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

func QMul(a, b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// QConj returns the inverse rotation for unit quaternions
func QConj(q Quat) Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

func QNormalize(q Quat) Quat {
	mag := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if mag == 0 {
		return QIdentity()
	}
	inv := 1.0 / mag
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// QRotate applies rotation q to vector v
// Uses the expanded sandwich product q*v*q^-1 without building intermediates
func QRotate(q Quat, v Vec3) Vec3 {
	// t = 2 * cross(q.xyz, v)
	tx := 2 * (q.Y*v.Z - q.Z*v.Y)
	ty := 2 * (q.Z*v.X - q.X*v.Z)
	tz := 2 * (q.X*v.Y - q.Y*v.X)

	// v' = v + w*t + cross(q.xyz, t)
	return Vec3{
		v.X + q.W*tx + q.Y*tz - q.Z*ty,
		v.Y + q.W*ty + q.Z*tx - q.X*tz,
		v.Z + q.W*tz + q.X*ty - q.Y*tx,
	}
}
