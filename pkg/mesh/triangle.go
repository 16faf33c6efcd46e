package mesh

import (
	gomath "math"

	"github.com/Faultbox/lumen/pkg/math"
)

// Triangle holds the three vertex indices of one face.
type Triangle [3]uint32

// SurfaceArea returns the area of the triangle over the given positions.
func (t Triangle) SurfaceArea(positions []math.Vec3) float32 {
	v0 := positions[t[0]]
	e1 := positions[t[1]].Sub(v0)
	e2 := positions[t[2]].Sub(v0)
	return 0.5 * e1.Cross(e2).Length()
}

// Sample maps an area-uniform 2D sample in [0,1)^2 onto the triangle and
// returns the position together with the interpolated vertex normal, or the
// geometric normal when the mesh has none.
func (t Triangle) Sample(positions, normals []math.Vec3, sample math.Vec2) (math.Vec3, math.Vec3) {
	a := float32(gomath.Sqrt(float64(1 - sample.X)))
	b1 := 1 - a
	b2 := a * sample.Y
	b0 := 1 - b1 - b2

	p0 := positions[t[0]]
	p1 := positions[t[1]]
	p2 := positions[t[2]]
	p := p0.Scale(b0).Add(p1.Scale(b1)).Add(p2.Scale(b2))

	var n math.Vec3
	if normals != nil {
		n = normals[t[0]].Scale(b0).
			Add(normals[t[1]].Scale(b1)).
			Add(normals[t[2]].Scale(b2)).
			Normalize()
	} else {
		n = p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	}
	return p, n
}
