package clustering

import "math"

// Bounds is an axis-aligned box over grid indices, inclusive on both ends.
// Build one from a point with PointBounds; the zero value is the single
// point at the origin.
type Bounds struct {
	MinX, MinY, MinZ uint32
	MaxX, MaxY, MaxZ uint32
}

// PointBounds returns the box containing only (x, y, z).
func PointBounds(x, y, z uint32) Bounds {
	return Bounds{MinX: x, MinY: y, MinZ: z, MaxX: x, MaxY: y, MaxZ: z}
}

// Contains reports whether (x, y, z) lies inside the box.
func (b Bounds) Contains(x, y, z uint32) bool {
	return b.MinX <= x && x <= b.MaxX &&
		b.MinY <= y && y <= b.MaxY &&
		b.MinZ <= z && z <= b.MaxZ
}

// IncludePoint extends the box to cover (x, y, z).
func (b *Bounds) IncludePoint(x, y, z uint32) {
	b.MinX = min(b.MinX, x)
	b.MinY = min(b.MinY, y)
	b.MinZ = min(b.MinZ, z)
	b.MaxX = max(b.MaxX, x)
	b.MaxY = max(b.MaxY, y)
	b.MaxZ = max(b.MaxZ, z)
}

// Buffered returns the box grown by the gap tolerances on every side.
// Minimums clamp at zero and maximums saturate at math.MaxUint32.
func (b Bounds) Buffered(dx, dy, dz uint32) Bounds {
	return Bounds{
		MinX: subClamp(b.MinX, dx),
		MinY: subClamp(b.MinY, dy),
		MinZ: subClamp(b.MinZ, dz),
		MaxX: addSaturate(b.MaxX, dx),
		MaxY: addSaturate(b.MaxY, dy),
		MaxZ: addSaturate(b.MaxZ, dz),
	}
}

// Merged returns the smallest box covering both b and other.
func (b Bounds) Merged(other Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MinZ: min(b.MinZ, other.MinZ),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
		MaxZ: max(b.MaxZ, other.MaxZ),
	}
}

// subClamp returns a-b, or 0 when b >= a.
func subClamp(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return 0
}

func addSaturate(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

// absDiff returns |a-b| without wrapping.
func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
