package mesh

import (
	"testing"

	"github.com/Faultbox/lumen/pkg/math"
)

// foldMesh returns two triangles sharing the edge p0-p1 with a 90 degree
// crease between their planes.
func foldMesh() *Mesh {
	m := New("fold", 2, 4, Options{})
	m.Positions[0] = math.Vec3{X: 0, Y: 0, Z: 0}
	m.Positions[1] = math.Vec3{X: 1, Y: 0, Z: 0}
	m.Positions[2] = math.Vec3{X: 0, Y: 1, Z: 0}  // in the xy plane
	m.Positions[3] = math.Vec3{X: 0, Y: 0, Z: -1} // in the xz plane
	m.Triangles[0] = Triangle{0, 1, 2}
	m.Triangles[1] = Triangle{0, 3, 1}
	return m
}

// facetedQuad returns the quad from quadMesh with every corner duplicated,
// the way a faceted exporter writes it.
func facetedQuad() *Mesh {
	shared := quadMesh()
	m := New("faceted", 2, 6, Options{})
	for i, tri := range shared.Triangles {
		for j := 0; j < 3; j++ {
			m.Positions[3*i+j] = shared.Positions[tri[j]]
			m.Triangles[i][j] = uint32(3*i + j)
		}
	}
	return m
}

func TestRebuildTopology_SmoothIdempotent(t *testing.T) {
	m := quadMesh()
	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	if got := len(m.Positions); got != 4 {
		t.Errorf("vertex count = %d, want 4 (already smooth)", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("rebuilt mesh invalid: %v", err)
	}
}

func TestRebuildTopology_MergesFacetedInput(t *testing.T) {
	m := facetedQuad()
	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	if got := len(m.Positions); got != 4 {
		t.Errorf("vertex count = %d, want 4 after merging duplicates", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("rebuilt mesh invalid: %v", err)
	}
}

func TestRebuildTopology_ZeroThresholdSplitsCrease(t *testing.T) {
	m := foldMesh()
	if err := m.RebuildTopology(0); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	// Only corners with exactly equal face normals merge at 0 degrees, so
	// both shared-edge vertices split.
	if got := len(m.Positions); got != 6 {
		t.Errorf("vertex count = %d, want 6 after splitting the crease", got)
	}
}

func TestRebuildTopology_ZeroThresholdKeepsCoplanar(t *testing.T) {
	m := facetedQuad()
	if err := m.RebuildTopology(0); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	// Coplanar triangles have bit-identical face normals, which merge even
	// at a zero threshold.
	if got := len(m.Positions); got != 4 {
		t.Errorf("vertex count = %d, want 4 for coplanar faces", got)
	}
}

func TestRebuildTopology_WideThresholdMergesCrease(t *testing.T) {
	m := foldMesh()
	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	if got := len(m.Positions); got != 4 {
		t.Errorf("vertex count = %d, want 4 at 180 degrees", got)
	}
}

func TestRebuildTopology_DistinctUVsPreventMerging(t *testing.T) {
	m := facetedQuad()
	m.UVs = make([]math.Vec2, 6)
	for i := range m.UVs {
		// Unique uv per corner: no corner shares an equality class.
		m.UVs[i] = math.Vec2{X: float32(i)}
	}
	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	if got := len(m.Positions); got != 6 {
		t.Errorf("vertex count = %d, want 6 with distinct uvs", got)
	}
	if got := len(m.UVs); got != 6 {
		t.Errorf("uv count = %d, want 6", got)
	}
}

func TestRebuildTopology_DropsDerivedAttributes(t *testing.T) {
	m := quadMesh()
	m.ComputeNormals()
	m.UVs = make([]math.Vec2, 4)
	if err := m.ComputeUVTangents(nil); err != nil {
		t.Fatalf("ComputeUVTangents: %v", err)
	}

	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}
	if m.HasNormals() {
		t.Error("normals must be dropped by a rebuild")
	}
	if m.HasTangents() {
		t.Error("tangents must be dropped by a rebuild")
	}
}

func TestRebuildTopology_InvalidatesSamplingTable(t *testing.T) {
	m := quadMesh()
	area, err := m.SurfaceArea()
	if err != nil {
		t.Fatalf("SurfaceArea: %v", err)
	}
	if area < 0.999 || area > 1.001 {
		t.Fatalf("unit quad area = %v", area)
	}

	if err := m.RebuildTopology(180); err != nil {
		t.Fatalf("RebuildTopology: %v", err)
	}

	// The table must build again from the rewritten buffers.
	area, err = m.SurfaceArea()
	if err != nil {
		t.Fatalf("SurfaceArea after rebuild: %v", err)
	}
	if area < 0.999 || area > 1.001 {
		t.Errorf("area after rebuild = %v, want 1", area)
	}
}
