package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/pkg/math"
)

// ComputeUVTangents computes one tangent frame per triangle from the UV
// parameterization. The call is an idempotent no-op when frames already
// exist. Without texture coordinates it fails only when the attached
// surface state is anisotropic; otherwise tangents are simply not needed.
func (m *Mesh) ComputeUVTangents(surface Surface) error {
	if m.UVs == nil {
		if surface != nil && surface.Anisotropic() {
			return fmt.Errorf("%q: %w: anisotropic materials need valid texture coordinates on every attached shape",
				m.Name, ErrMissingUVs)
		}
		return nil
	}
	if m.Tangents != nil {
		return nil
	}

	degenerate := 0
	m.Tangents = make([]TangentFrame, len(m.Triangles))
	for i, tri := range m.Triangles {
		v0 := m.Positions[tri[0]]
		v1 := m.Positions[tri[1]]
		v2 := m.Positions[tri[2]]
		uv0 := m.UVs[tri[0]]
		uv1 := m.UVs[tri[1]]
		uv2 := m.UVs[tri[2]]

		dP1 := v1.Sub(v0)
		dP2 := v2.Sub(v0)
		dUV1 := uv1.Sub(uv0)
		dUV2 := uv2.Sub(uv0)

		n := dP1.Cross(dP2)
		length := n.Length()
		if length == 0 {
			degenerate++
			continue
		}

		det := dUV1.X*dUV2.Y - dUV1.Y*dUV2.X
		if det == 0 {
			// The parameterization is degenerate. Pick arbitrary tangents
			// perpendicular to the geometric normal.
			s, t := math.CoordinateSystem(n.Scale(1 / length))
			m.Tangents[i] = TangentFrame{DpDu: s, DpDv: t}
			degenerate++
			continue
		}

		invDet := 1 / det
		m.Tangents[i] = TangentFrame{
			DpDu: dP1.Scale(dUV2.Y).Sub(dP2.Scale(dUV1.Y)).Scale(invDet),
			DpDv: dP2.Scale(dUV1.X).Sub(dP1.Scale(dUV2.X)).Scale(invDet),
		}
	}

	if degenerate > 0 {
		m.log.Warn("mesh contains degenerate triangles",
			zap.String("mesh", m.Name), zap.Int("count", degenerate))
	}
	return nil
}
