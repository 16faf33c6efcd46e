// Package mesh implements the triangle-mesh geometry core of an offline
// renderer: raw attribute buffers, differential-geometry quantities,
// topology reconstruction, and area-weighted position sampling.
package mesh

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/pkg/math"
)

// Geometry processing errors.
var (
	ErrNoTriangles          = errors.New("mesh has no triangles")
	ErrMissingUVs           = errors.New("texture coordinates are required to generate tangent vectors")
	ErrIncompleteClustering = errors.New("topology rebuild left unassigned triangle corners")
	ErrIndexRange           = errors.New("triangle references a vertex outside the mesh")
)

// Surface exposes the capability queries of the material state attached to
// a mesh. The geometry core consults these flags only to decide whether UV
// tangent frames are mandatory.
type Surface interface {
	Anisotropic() bool
	Glossy() bool
	UsesRayDifferentials() bool
	MediumBoundary() bool
}

// TangentFrame spans the uv-to-3D differential mapping of one triangle.
// Frames are stored per triangle rather than per vertex because the UV
// parameterization may be discontinuous across triangle boundaries.
type TangentFrame struct {
	DpDu, DpDv math.Vec3
}

// Mesh owns the per-vertex attribute buffers and the triangle index buffer.
// Buffers are allocated fully sized at construction or deserialization and
// mutated in place by normal and tangent computation; RebuildTopology is
// the only operation that replaces them wholesale. Once setup completes a
// mesh is effectively immutable, except for the lazily built sampling
// table.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Colors    []math.Vec3
	Tangents  []TangentFrame
	Triangles []Triangle

	faceNormals bool
	flipNormals bool
	aabb        math.AABB

	mu             sync.Mutex
	tableReady     atomic.Bool
	areaDist       *Distribution1D
	surfaceArea    float32
	invSurfaceArea float32

	log *zap.Logger
}

// Options selects the optional attributes and normal handling of a new
// mesh.
type Options struct {
	Normals     bool
	UVs         bool
	Colors      bool
	FaceNormals bool
	FlipNormals bool
}

// New allocates a mesh with every selected buffer fully sized.
func New(name string, triangleCount, vertexCount int, opts Options) *Mesh {
	m := &Mesh{
		Name:           name,
		Positions:      make([]math.Vec3, vertexCount),
		Triangles:      make([]Triangle, triangleCount),
		faceNormals:    opts.FaceNormals,
		flipNormals:    opts.FlipNormals,
		aabb:           math.NewAABB(),
		surfaceArea:    -1,
		invSurfaceArea: -1,
		log:            zap.NewNop(),
	}
	if opts.Normals {
		m.Normals = make([]math.Vec3, vertexCount)
	}
	if opts.UVs {
		m.UVs = make([]math.Vec2, vertexCount)
	}
	if opts.Colors {
		m.Colors = make([]math.Vec3, vertexCount)
	}
	return m
}

// SetLogger routes the mesh's aggregate warnings and progress messages to l.
// A mesh logs nowhere until one is set.
func (m *Mesh) SetLogger(l *zap.Logger) {
	if l != nil {
		m.log = l
	}
}

// HasNormals reports whether per-vertex normals are present.
func (m *Mesh) HasNormals() bool { return m.Normals != nil }

// HasUVs reports whether texture coordinates are present.
func (m *Mesh) HasUVs() bool { return m.UVs != nil }

// HasColors reports whether per-vertex colors are present.
func (m *Mesh) HasColors() bool { return m.Colors != nil }

// HasTangents reports whether per-triangle tangent frames are present.
func (m *Mesh) HasTangents() bool { return m.Tangents != nil }

// FaceNormalsMode reports whether the mesh renders with faceted normals.
func (m *Mesh) FaceNormalsMode() bool { return m.faceNormals }

// Bounds returns the axis-aligned bounding box, recomputing it from the
// positions when no valid box has been set.
func (m *Mesh) Bounds() math.AABB {
	if !m.aabb.Valid() {
		for _, p := range m.Positions {
			m.aabb.ExpandBy(p)
		}
	}
	return m.aabb
}

// Validate checks that every triangle references valid vertices.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Positions))
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx >= n {
				return fmt.Errorf("triangle %d: index %d >= %d vertices: %w",
					i, idx, n, ErrIndexRange)
			}
		}
	}
	return nil
}

// Configure finalizes a mesh after loading: it validates the bounding box,
// derives normals, and computes UV tangent frames when the attached surface
// state requires them for anisotropy, glossy transport, or texture-space
// ray differentials.
func (m *Mesh) Configure(surface Surface) error {
	m.Bounds()
	m.ComputeNormals()
	if surface == nil {
		return nil
	}
	m.log.Debug("configured mesh",
		zap.String("mesh", m.Name),
		zap.Bool("anisotropic", surface.Anisotropic()),
		zap.Bool("glossy", surface.Glossy()),
		zap.Bool("mediumBoundary", surface.MediumBoundary()))
	if surface.Anisotropic() || surface.Glossy() || surface.UsesRayDifferentials() {
		return m.ComputeUVTangents(surface)
	}
	return nil
}

// String returns a human-readable summary of the mesh.
func (m *Mesh) String() string {
	b := m.Bounds()
	return fmt.Sprintf(
		"Mesh[name=%q, triangles=%d, vertices=%d, faceNormals=%v, normals=%v, uvs=%v, tangents=%v, colors=%v, bounds=(%v)-(%v)]",
		m.Name, len(m.Triangles), len(m.Positions), m.faceNormals,
		m.HasNormals(), m.HasUVs(), m.HasTangents(), m.HasColors(),
		b.Min, b.Max)
}
