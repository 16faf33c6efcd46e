package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/lumen/pkg/math"
)

// testSurface is a stub for the material capability queries.
type testSurface struct {
	anisotropic bool
	glossy      bool
	rayDiffs    bool
	medium      bool
}

func (s testSurface) Anisotropic() bool          { return s.anisotropic }
func (s testSurface) Glossy() bool               { return s.glossy }
func (s testSurface) UsesRayDifferentials() bool { return s.rayDiffs }
func (s testSurface) MediumBoundary() bool       { return s.medium }

// equilateralMesh returns one flat equilateral triangle in the xy plane.
func equilateralMesh(opts Options) *Mesh {
	m := New("tri", 1, 3, opts)
	m.Positions[0] = math.Vec3{X: 0, Y: 0, Z: 0}
	m.Positions[1] = math.Vec3{X: 1, Y: 0, Z: 0}
	m.Positions[2] = math.Vec3{X: 0.5, Y: float32(gomath.Sqrt(3)) / 2, Z: 0}
	m.Triangles[0] = Triangle{0, 1, 2}
	return m
}

// quadMesh returns a unit square made of two coplanar triangles sharing an
// edge.
func quadMesh() *Mesh {
	m := New("quad", 2, 4, Options{})
	m.Positions[0] = math.Vec3{X: 0, Y: 0, Z: 0}
	m.Positions[1] = math.Vec3{X: 1, Y: 0, Z: 0}
	m.Positions[2] = math.Vec3{X: 1, Y: 1, Z: 0}
	m.Positions[3] = math.Vec3{X: 0, Y: 1, Z: 0}
	m.Triangles[0] = Triangle{0, 1, 2}
	m.Triangles[1] = Triangle{0, 2, 3}
	return m
}

func nearVec3(a, b math.Vec3, tol float32) bool {
	return a.Sub(b).Length() <= tol
}

func TestNewAllocation(t *testing.T) {
	m := New("m", 5, 9, Options{Normals: true, UVs: true})
	if len(m.Positions) != 9 || len(m.Triangles) != 5 {
		t.Fatalf("buffer sizes: %d positions, %d triangles", len(m.Positions), len(m.Triangles))
	}
	if !m.HasNormals() || !m.HasUVs() || m.HasColors() || m.HasTangents() {
		t.Error("attribute presence does not match options")
	}
}

func TestBoundsRecompute(t *testing.T) {
	m := quadMesh()
	b := m.Bounds()
	if !b.Valid() {
		t.Fatal("bounds should be valid after recompute")
	}
	if b.Min != (math.Vec3{X: 0, Y: 0, Z: 0}) || b.Max != (math.Vec3{X: 1, Y: 1, Z: 0}) {
		t.Errorf("bounds = %v-%v", b.Min, b.Max)
	}
}

func TestValidate(t *testing.T) {
	m := quadMesh()
	if err := m.Validate(); err != nil {
		t.Errorf("valid mesh rejected: %v", err)
	}
	m.Triangles[1][2] = 99
	if err := m.Validate(); err == nil {
		t.Error("out-of-range index accepted")
	}
}

func TestConfigureAnisotropicWithoutUVs(t *testing.T) {
	m := equilateralMesh(Options{})
	err := m.Configure(testSurface{anisotropic: true})
	if err == nil {
		t.Fatal("expected error for anisotropic surface without uvs")
	}
}

func TestConfigureComputesTangentsForGlossy(t *testing.T) {
	m := equilateralMesh(Options{UVs: true})
	m.UVs[0] = math.Vec2{X: 0, Y: 0}
	m.UVs[1] = math.Vec2{X: 1, Y: 0}
	m.UVs[2] = math.Vec2{X: 0.5, Y: 1}
	if err := m.Configure(testSurface{glossy: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !m.HasTangents() {
		t.Error("glossy surface should force tangent computation")
	}
	if !m.HasNormals() {
		t.Error("Configure should derive normals")
	}
}
