package mesh

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/pkg/math"
)

const unassigned = ^uint32(0)

// vertexKey identifies an equality class of triangle corners. Comparison is
// exact, field by field; corners only merge when every attribute matches
// bit for bit.
type vertexKey struct {
	pos math.Vec3
	uv  math.Vec2
	col math.Vec3
}

// cornerRef is one (triangle, corner) occurrence of a vertexKey.
type cornerRef struct {
	tri       int
	corner    int
	clustered bool
}

// RebuildTopology reconstructs shared-vertex topology from per-face data.
// Corners with bit-identical (position, uv, color) tuples merge when their
// incident face normals lie within maxAngleDeg of the cluster seed's face
// normal. Existing normals and tangent frames are discarded and must be
// recomputed afterwards; the sampling table is invalidated.
//
// Clustering is a single greedy pass: each unclustered corner opens a new
// output vertex and absorbs the remaining corners of its equality class
// whose face normal matches the seed's. The comparison is always against
// the seed, never a cluster average; replacing this with a fixpoint scheme
// changes the output geometry.
func (m *Mesh) RebuildTopology(maxAngleDeg float32) error {
	dpThresh := float32(gomath.Cos(float64(math.Radians(maxAngleDeg))))

	m.Normals = nil
	m.Tangents = nil

	m.log.Info("rebuilding mesh topology",
		zap.String("mesh", m.Name),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("vertices", len(m.Positions)),
		zap.Float32("maxAngle", maxAngleDeg))

	hasUVs := m.UVs != nil
	hasColors := m.Colors != nil

	classes := make(map[vertexKey][]cornerRef, len(m.Positions))
	faceNormals := make([]math.Vec3, len(m.Triangles))
	newTriangles := make([]Triangle, len(m.Triangles))

	for i, tri := range m.Triangles {
		for j := 0; j < 3; j++ {
			key := vertexKey{pos: m.Positions[tri[j]]}
			if hasUVs {
				key.uv = m.UVs[tri[j]]
			}
			if hasColors {
				key.col = m.Colors[tri[j]]
			}
			classes[key] = append(classes[key], cornerRef{tri: i, corner: j})
		}
		v0 := m.Positions[tri[0]]
		v1 := m.Positions[tri[1]]
		v2 := m.Positions[tri[2]]
		faceNormals[i] = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		newTriangles[i] = Triangle{unassigned, unassigned, unassigned}
	}

	newPositions := make([]math.Vec3, 0, len(m.Positions))
	var newUVs []math.Vec2
	var newColors []math.Vec3
	if hasUVs {
		newUVs = make([]math.Vec2, 0, len(m.Positions))
	}
	if hasColors {
		newColors = make([]math.Vec3, 0, len(m.Positions))
	}

	// With vertex degree bounded by a constant this runs in O(n): every
	// class is small and each corner is visited a constant number of times.
	for key, refs := range classes {
		for i := range refs {
			if refs[i].clustered {
				continue
			}
			seed := faceNormals[refs[i].tri]

			vertexID := uint32(len(newPositions))
			newPositions = append(newPositions, key.pos)
			if hasUVs {
				newUVs = append(newUVs, key.uv)
			}
			if hasColors {
				newColors = append(newColors, key.col)
			}

			for j := i; j < len(refs); j++ {
				if refs[j].clustered {
					continue
				}
				n := faceNormals[refs[j].tri]
				if seed == n || seed.Dot(n) > dpThresh {
					newTriangles[refs[j].tri][refs[j].corner] = vertexID
					refs[j].clustered = true
				}
			}
		}
	}

	for i, tri := range newTriangles {
		for j := 0; j < 3; j++ {
			if tri[j] == unassigned {
				m.log.Error("corner missed during clustering",
					zap.String("mesh", m.Name),
					zap.Int("triangle", i), zap.Int("corner", j))
				return ErrIncompleteClustering
			}
		}
	}

	m.Triangles = newTriangles
	m.Positions = newPositions
	if hasUVs {
		m.UVs = newUVs
	}
	if hasColors {
		m.Colors = newColors
	}

	m.invalidateSamplingTable()

	m.log.Info("topology rebuilt",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.Positions)))
	return nil
}
