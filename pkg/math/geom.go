package math

import "math"

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// UnitAngle returns the angle between the unit vectors u and v. The
// half-chord form stays accurate for nearly parallel and nearly opposite
// inputs, where acos of the dot product loses precision.
func UnitAngle(u, v Vec3) float32 {
	if u.Dot(v) < 0 {
		return math.Pi - 2*asinf(0.5*u.Add(v).Length())
	}
	return 2 * asinf(0.5*v.Sub(u).Length())
}

// CoordinateSystem completes the unit vector n to an orthonormal basis
// (n, s, t).
func CoordinateSystem(n Vec3) (s, t Vec3) {
	if absf(n.X) > absf(n.Y) {
		invLen := 1 / float32(math.Sqrt(float64(n.X*n.X+n.Z*n.Z)))
		t = Vec3{n.Z * invLen, 0, -n.X * invLen}
	} else {
		invLen := 1 / float32(math.Sqrt(float64(n.Y*n.Y+n.Z*n.Z)))
		t = Vec3{0, n.Z * invLen, -n.Y * invLen}
	}
	s = t.Cross(n)
	return s, t
}

func asinf(x float32) float32 {
	return float32(math.Asin(float64(x)))
}

func absf(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
