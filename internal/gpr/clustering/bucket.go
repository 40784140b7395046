package clustering

// MinBucketSize is the smallest bucket edge length DeriveBucketSize returns.
const MinBucketSize = 10

// estimatedVoxelsPerBucket sizes a new bucket's voxel slice.
const estimatedVoxelsPerBucket = 16

// BucketKey identifies a cube of index space: each coordinate divided by
// the bucket edge length.
type BucketKey struct {
	X, Y, Z uint32
}

// KeyFor returns the key of the bucket of edge length size holding (x, y, z).
func KeyFor(x, y, z, size uint32) BucketKey {
	return BucketKey{X: x / size, Y: y / size, Z: z / size}
}

// Right returns the key one bucket along +x.
func (k BucketKey) Right() BucketKey {
	return BucketKey{X: k.X + 1, Y: k.Y, Z: k.Z}
}

// Top returns the key one bucket along +y.
func (k BucketKey) Top() BucketKey {
	return BucketKey{X: k.X, Y: k.Y + 1, Z: k.Z}
}

// TopRight returns the key one bucket along the +x+y diagonal.
func (k BucketKey) TopRight() BucketKey {
	return BucketKey{X: k.X + 1, Y: k.Y + 1, Z: k.Z}
}

// MinX is the lowest x index covered by the bucket.
func (k BucketKey) MinX(size uint32) uint32 { return k.X * size }

// MinY is the lowest y index covered by the bucket.
func (k BucketKey) MinY(size uint32) uint32 { return k.Y * size }

// Bucket holds the voxels of one cluster that fall inside a single key,
// plus the tight bounds of just those voxels.
type Bucket struct {
	key    BucketKey
	bounds Bounds
	voxels []Voxel
}

func newBucket(v Voxel, size uint32) *Bucket {
	voxels := make([]Voxel, 1, estimatedVoxelsPerBucket)
	voxels[0] = v
	return &Bucket{
		key:    KeyFor(v.X, v.Y, v.Z, size),
		bounds: PointBounds(v.X, v.Y, v.Z),
		voxels: voxels,
	}
}

// Key returns the bucket key.
func (b *Bucket) Key() BucketKey { return b.key }

// Bounds returns the tight box of the bucket's voxels.
func (b *Bucket) Bounds() Bounds { return b.bounds }

// Voxels returns the bucket's voxels. Callers must not modify the slice.
func (b *Bucket) Voxels() []Voxel { return b.voxels }

// Len returns the number of voxels in the bucket.
func (b *Bucket) Len() int { return len(b.voxels) }

// IsAdjacent reports whether some voxel in this bucket lies within the gap
// tolerances of v. Only this bucket's voxels are scanned.
func (b *Bucket) IsAdjacent(v Voxel, gx, gy, gz uint32) bool {
	if !b.bounds.Buffered(gx, gy, gz).Contains(v.X, v.Y, v.Z) {
		return false
	}
	for _, p := range b.voxels {
		if p.within(v, gx, gy, gz) {
			return true
		}
	}
	return false
}

func (b *Bucket) addPoint(v Voxel) {
	b.voxels = append(b.voxels, v)
	b.bounds.IncludePoint(v.X, v.Y, v.Z)
}

// merge absorbs other's voxels. Both buckets must share a key.
func (b *Bucket) merge(other *Bucket) {
	b.voxels = append(b.voxels, other.voxels...)
	b.bounds = b.bounds.Merged(other.bounds)
}

func (b *Bucket) clone() *Bucket {
	voxels := make([]Voxel, len(b.voxels))
	copy(voxels, b.voxels)
	return &Bucket{key: b.key, bounds: b.bounds, voxels: voxels}
}
