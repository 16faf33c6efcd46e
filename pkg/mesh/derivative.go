package mesh

import "github.com/Faultbox/lumen/pkg/math"

// NormalDerivative returns the derivative of the interpolated unit shading
// normal with respect to the local (u, v) parameters at the surface point p
// on triangle triIndex. When a tangent frame exists the derivative is
// remapped into the texture UV parameterization. Degenerate systems yield
// zero derivatives rather than errors.
func (m *Mesh) NormalDerivative(triIndex int, p math.Vec3, shadingFrame bool) (dndu, dndv math.Vec3) {
	if !shadingFrame || m.Normals == nil {
		return math.Vec3{}, math.Vec3{}
	}

	tri := m.Triangles[triIndex]
	p0 := m.Positions[tri[0]]
	p1 := m.Positions[tri[1]]
	p2 := m.Positions[tri[2]]

	// Recompute the barycentric coordinates from the geometric vertices.
	// The intersection's stored uv may have been overwritten with a
	// texture-parameterization value, so it cannot be reused here.
	rel := p.Sub(p0)
	du := p1.Sub(p0)
	dv := p2.Sub(p0)

	b1 := du.Dot(rel)
	b2 := dv.Dot(rel)
	a11 := du.Dot(du)
	a12 := du.Dot(dv)
	a22 := dv.Dot(dv)
	det := a11*a22 - a12*a12
	if det == 0 {
		return math.Vec3{}, math.Vec3{}
	}

	invDet := 1 / det
	u := (a22*b1 - a12*b2) * invDet
	v := (-a12*b1 + a11*b2) * invDet
	w := 1 - u - v

	n0 := m.Normals[tri[0]]
	n1 := m.Normals[tri[1]]
	n2 := m.Normals[tri[2]]

	// Derivative of normalize(u*n1 + v*n2 + w*n0) with respect to [u, v]:
	// d/du [f/|f|] = f'/|f| - f <f, f'> / |f|^3.
	blend := n1.Scale(u).Add(n2.Scale(v)).Add(n0.Scale(w))
	length := blend.Length()
	if length == 0 {
		return math.Vec3{}, math.Vec3{}
	}
	il := 1 / length
	n := blend.Scale(il)

	dndu = n1.Sub(n0).Scale(il)
	dndu = dndu.Sub(n.Scale(n.Dot(dndu)))
	dndv = n2.Sub(n0).Scale(il)
	dndv = dndv.Sub(n.Scale(n.Dot(dndv)))

	if m.Tangents != nil {
		uv0 := m.UVs[tri[0]]
		uv1 := m.UVs[tri[1]]
		uv2 := m.UVs[tri[2]]
		duv1 := uv1.Sub(uv0)
		duv2 := uv2.Sub(uv0)

		det = duv1.X*duv2.Y - duv1.Y*duv2.X
		if det == 0 {
			return math.Vec3{}, math.Vec3{}
		}
		invDet = 1 / det
		remapU := dndu.Scale(duv2.Y).Sub(dndv.Scale(duv1.Y)).Scale(invDet)
		remapV := dndv.Scale(duv1.X).Sub(dndu.Scale(duv2.X)).Scale(invDet)
		dndu, dndv = remapU, remapV
	}
	return dndu, dndv
}
