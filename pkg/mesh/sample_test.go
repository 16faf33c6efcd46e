package mesh

import (
	"errors"
	gomath "math"
	"math/rand"
	"sync"
	"testing"

	"github.com/Faultbox/lumen/pkg/math"
)

func TestDistribution1D(t *testing.T) {
	d := NewDistribution1D(2)
	d.Append(1)
	d.Append(3)
	if got := d.Count(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}

	sum := d.Normalize()
	if sum != 4 {
		t.Errorf("Normalize sum = %v, want 4", sum)
	}

	idx, remapped := d.SampleReuse(0)
	if idx != 0 {
		t.Errorf("SampleReuse(0) index = %d, want 0", idx)
	}
	if remapped != 0 {
		t.Errorf("SampleReuse(0) remapped = %v, want 0", remapped)
	}

	idx, remapped = d.SampleReuse(0.5)
	if idx != 1 {
		t.Errorf("SampleReuse(0.5) index = %d, want 1", idx)
	}
	want := float32(0.5-0.25) / 0.75
	if diff := remapped - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("SampleReuse(0.5) remapped = %v, want %v", remapped, want)
	}
}

func TestSurfaceArea(t *testing.T) {
	m := quadMesh()
	area, err := m.SurfaceArea()
	if err != nil {
		t.Fatalf("SurfaceArea: %v", err)
	}
	if area < 0.9999 || area > 1.0001 {
		t.Errorf("unit quad area = %v, want 1", area)
	}
}

func TestSamplePosition_EmptyMesh(t *testing.T) {
	m := New("empty", 0, 0, Options{})
	_, err := m.SamplePosition(math.Vec2{X: 0.5, Y: 0.5})
	if !errors.Is(err, ErrNoTriangles) {
		t.Errorf("err = %v, want ErrNoTriangles", err)
	}
	if _, err := m.SurfaceArea(); !errors.Is(err, ErrNoTriangles) {
		t.Errorf("SurfaceArea err = %v, want ErrNoTriangles", err)
	}
}

// twoTriangleMesh returns two disjoint triangles; the second is scaled so
// its area is ratio times the first's. Points with X > 5 belong to the
// second triangle.
func twoTriangleMesh(ratio float32) *Mesh {
	scale := float32(gomath.Sqrt(float64(ratio)))
	m := New("pair", 2, 6, Options{})
	m.Positions[0] = math.Vec3{X: 0, Y: 0, Z: 0}
	m.Positions[1] = math.Vec3{X: 1, Y: 0, Z: 0}
	m.Positions[2] = math.Vec3{X: 0, Y: 1, Z: 0}
	m.Positions[3] = math.Vec3{X: 10, Y: 0, Z: 0}
	m.Positions[4] = math.Vec3{X: 10 + scale, Y: 0, Z: 0}
	m.Positions[5] = math.Vec3{X: 10, Y: scale, Z: 0}
	m.Triangles[0] = Triangle{0, 1, 2}
	m.Triangles[1] = Triangle{3, 4, 5}
	return m
}

func TestSamplePosition_CongruentTriangles(t *testing.T) {
	m := twoTriangleMesh(1)
	area, err := m.SurfaceArea()
	if err != nil {
		t.Fatalf("SurfaceArea: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	const draws = 20000
	var second int
	for i := 0; i < draws; i++ {
		ps, err := m.SamplePosition(math.Vec2{X: rng.Float32(), Y: rng.Float32()})
		if err != nil {
			t.Fatalf("SamplePosition: %v", err)
		}
		if ps.PDF != 1/area {
			t.Fatalf("pdf = %v, want %v", ps.PDF, 1/area)
		}
		if ps.Point.X > 5 {
			second++
		}
	}

	freq := float64(second) / draws
	if freq < 0.47 || freq > 0.53 {
		t.Errorf("second-triangle frequency = %v, want ~0.5", freq)
	}
}

func TestSamplePosition_AreaWeighted(t *testing.T) {
	m := twoTriangleMesh(4) // second triangle has 4x the area
	rng := rand.New(rand.NewSource(7))
	const draws = 20000
	var second int
	for i := 0; i < draws; i++ {
		ps, err := m.SamplePosition(math.Vec2{X: rng.Float32(), Y: rng.Float32()})
		if err != nil {
			t.Fatalf("SamplePosition: %v", err)
		}
		if ps.Point.X > 5 {
			second++
		}
	}

	freq := float64(second) / draws
	if freq < 0.77 || freq > 0.83 {
		t.Errorf("larger-triangle frequency = %v, want ~0.8", freq)
	}
}

func TestSamplePosition_PointsOnSurface(t *testing.T) {
	m := equilateralMesh(Options{})
	m.ComputeNormals()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		ps, err := m.SamplePosition(math.Vec2{X: rng.Float32(), Y: rng.Float32()})
		if err != nil {
			t.Fatalf("SamplePosition: %v", err)
		}
		if ps.Point.Z != 0 {
			t.Fatalf("sampled point off the triangle plane: %v", ps.Point)
		}
		if !nearVec3(ps.Normal, math.Vec3{X: 0, Y: 0, Z: 1}, 1e-5) {
			t.Fatalf("interpolated normal = %v, want +z", ps.Normal)
		}
	}
}

func TestSamplePosition_GeometricNormalWithoutVertexNormals(t *testing.T) {
	m := equilateralMesh(Options{})
	ps, err := m.SamplePosition(math.Vec2{X: 0.3, Y: 0.6})
	if err != nil {
		t.Fatalf("SamplePosition: %v", err)
	}
	if !nearVec3(ps.Normal, math.Vec3{X: 0, Y: 0, Z: 1}, 1e-5) {
		t.Errorf("geometric normal = %v, want +z", ps.Normal)
	}
}

func TestSamplePosition_ConcurrentFirstUse(t *testing.T) {
	m := quadMesh()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(g)))
			for i := 0; i < 500; i++ {
				ps, err := m.SamplePosition(math.Vec2{X: rng.Float32(), Y: rng.Float32()})
				if err != nil {
					errs[g] = err
					return
				}
				if ps.PDF != 1 {
					errs[g] = errors.New("pdf mismatch under concurrency")
					return
				}
			}
		}(g)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestPDFPosition(t *testing.T) {
	m := quadMesh()
	pdf, err := m.PDFPosition()
	if err != nil {
		t.Fatalf("PDFPosition: %v", err)
	}
	if pdf < 0.999 || pdf > 1.001 {
		t.Errorf("pdf = %v, want 1 on the unit quad", pdf)
	}
}
