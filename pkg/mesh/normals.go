package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/pkg/math"
)

// ComputeNormals derives per-vertex normals and applies any pending flip
// request.
//
// In face-normal mode any stored normals are dropped; a pending flip
// reverses the winding order of every triangle instead, since there is no
// normal array to negate. In smooth mode existing normals are kept and only
// negated on flip; absent normals are derived by angle-weighted
// accumulation of unit face normals, which stays well behaved on sliver
// triangles (Thuermer and Wuethrich, JGT 1998).
func (m *Mesh) ComputeNormals() {
	invalid := 0
	switch {
	case m.faceNormals:
		m.Normals = nil
		if m.flipNormals {
			for i := range m.Triangles {
				t := &m.Triangles[i]
				t[0], t[1] = t[1], t[0]
			}
		}

	case m.Normals != nil:
		if m.flipNormals {
			for i := range m.Normals {
				m.Normals[i] = m.Normals[i].Scale(-1)
			}
		}

	default:
		m.Normals = make([]math.Vec3, len(m.Positions))
		for _, tri := range m.Triangles {
			var n math.Vec3
			for i := 0; i < 3; i++ {
				v0 := m.Positions[tri[i]]
				v1 := m.Positions[tri[(i+1)%3]]
				v2 := m.Positions[tri[(i+2)%3]]
				sideA := v1.Sub(v0)
				sideB := v2.Sub(v0)
				if i == 0 {
					n = sideA.Cross(sideB)
					length := n.Length()
					if length == 0 {
						break
					}
					n = n.Scale(1 / length)
				}
				angle := math.UnitAngle(sideA.Normalize(), sideB.Normalize())
				m.Normals[tri[i]] = m.Normals[tri[i]].Add(n.Scale(angle))
			}
		}
		for i := range m.Normals {
			length := m.Normals[i].Length()
			if m.flipNormals {
				length = -length
			}
			if length != 0 {
				m.Normals[i] = m.Normals[i].Scale(1 / length)
			} else {
				// No triangle contributed a usable normal here.
				invalid++
				m.Normals[i] = math.Vec3{X: 1}
			}
		}
	}

	m.flipNormals = false

	if invalid > 0 {
		m.log.Warn("unable to generate vertex normals",
			zap.String("mesh", m.Name), zap.Int("count", invalid))
	}
}
