package math

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// NewAABB returns a degenerate box that any ExpandBy call will overwrite.
func NewAABB() AABB {
	const inf = float32(3.4028235e38)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Valid reports whether the box encloses at least one point.
func (b AABB) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// ExpandBy grows the box to include p.
func (b *AABB) ExpandBy(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// SurfaceArea returns the total area of the box's six faces.
func (b AABB) SurfaceArea() float32 {
	d := b.Max.Sub(b.Min)
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

// Reset returns the box to the degenerate empty state.
func (b *AABB) Reset() {
	*b = NewAABB()
}
