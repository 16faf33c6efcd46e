package mesh

import (
	"fmt"

	"github.com/Faultbox/lumen/pkg/math"
)

// PositionSample is one area-uniform sample drawn from the mesh surface.
// PDF is measured with respect to surface area.
type PositionSample struct {
	Point  math.Vec3
	Normal math.Vec3
	PDF    float32
}

// prepareSamplingTable builds the area distribution at most once. Callers
// racing on the first sample serialize on the mutex; the ready flag lets
// everyone after the build skip the lock entirely.
func (m *Mesh) prepareSamplingTable() error {
	if len(m.Triangles) == 0 {
		return fmt.Errorf("%q: %w", m.Name, ErrNoTriangles)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tableReady.Load() {
		return nil
	}

	d := NewDistribution1D(len(m.Triangles))
	for _, tri := range m.Triangles {
		d.Append(tri.SurfaceArea(m.Positions))
	}
	m.surfaceArea = d.Normalize()
	m.invSurfaceArea = 1 / m.surfaceArea
	m.areaDist = d
	m.tableReady.Store(true)
	return nil
}

// invalidateSamplingTable resets the lazy build; only a full topology
// rebuild calls this, before any concurrent sampling begins.
func (m *Mesh) invalidateSamplingTable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tableReady.Store(false)
	m.areaDist = nil
	m.surfaceArea = -1
	m.invSurfaceArea = -1
}

// SurfaceArea returns the total mesh area, building the sampling table on
// first use.
func (m *Mesh) SurfaceArea() (float32, error) {
	if !m.tableReady.Load() {
		if err := m.prepareSamplingTable(); err != nil {
			return 0, err
		}
	}
	return m.surfaceArea, nil
}

// SamplePosition draws an area-uniform position on the mesh from a 2D
// sample in [0,1)^2. One coordinate selects the triangle through the area
// distribution; its leftover entropy is remapped and reused inside the
// triangle so no additional random number is needed.
func (m *Mesh) SamplePosition(sample math.Vec2) (PositionSample, error) {
	if !m.tableReady.Load() {
		if err := m.prepareSamplingTable(); err != nil {
			return PositionSample{}, err
		}
	}
	index, remapped := m.areaDist.SampleReuse(sample.Y)
	p, n := m.Triangles[index].Sample(m.Positions, m.Normals, math.Vec2{X: sample.X, Y: remapped})
	return PositionSample{Point: p, Normal: n, PDF: m.invSurfaceArea}, nil
}

// PDFPosition returns the constant area-measure density of SamplePosition.
func (m *Mesh) PDFPosition() (float32, error) {
	if !m.tableReady.Load() {
		if err := m.prepareSamplingTable(); err != nil {
			return 0, err
		}
	}
	return m.invSurfaceArea, nil
}
