package clustering

// Cluster is one connected component: a set of buckets, at most one per
// key, and the union of their bounds.
type Cluster struct {
	bucketSize uint32
	buckets    []*Bucket
	index      map[BucketKey]int
	bounds     Bounds
}

func newCluster(v Voxel, bucketSize uint32) *Cluster {
	b := newBucket(v, bucketSize)
	return &Cluster{
		bucketSize: bucketSize,
		buckets:    []*Bucket{b},
		index:      map[BucketKey]int{b.key: 0},
		bounds:     PointBounds(v.X, v.Y, v.Z),
	}
}

// IsAdjacent reports whether v is within the gap tolerances of any voxel
// in the cluster. The buffered cluster bounds reject most far voxels
// before any bucket is scanned.
func (c *Cluster) IsAdjacent(v Voxel, gx, gy, gz uint32) bool {
	if !c.bounds.Buffered(gx, gy, gz).Contains(v.X, v.Y, v.Z) {
		return false
	}
	for _, b := range c.buckets {
		if b.IsAdjacent(v, gx, gy, gz) {
			return true
		}
	}
	return false
}

func (c *Cluster) addPoint(v Voxel) {
	c.bounds.IncludePoint(v.X, v.Y, v.Z)
	key := KeyFor(v.X, v.Y, v.Z, c.bucketSize)
	if i, ok := c.index[key]; ok {
		c.buckets[i].addPoint(v)
		return
	}
	c.index[key] = len(c.buckets)
	c.buckets = append(c.buckets, newBucket(v, c.bucketSize))
}

// mergeClusters folds every bucket of clusters into one new cluster. The
// inputs give up their buckets and must not be used afterwards.
func mergeClusters(clusters []*Cluster) *Cluster {
	if len(clusters) == 0 {
		return nil
	}
	r := &Cluster{
		bucketSize: clusters[0].bucketSize,
		index:      make(map[BucketKey]int),
	}
	for _, c := range clusters {
		for _, b := range c.buckets {
			r.upsertBucket(b)
		}
	}
	r.updateBounds()
	return r
}

// upsertBucket adds b, or merges it into the bucket already holding its
// key. Bounds must be refreshed with updateBounds afterwards.
func (c *Cluster) upsertBucket(b *Bucket) {
	if i, ok := c.index[b.key]; ok {
		c.buckets[i].merge(b)
		return
	}
	c.index[b.key] = len(c.buckets)
	c.buckets = append(c.buckets, b)
}

func (c *Cluster) updateBounds() {
	if len(c.buckets) == 0 {
		return
	}
	bounds := c.buckets[0].bounds
	for _, b := range c.buckets[1:] {
		bounds = bounds.Merged(b.bounds)
	}
	c.bounds = bounds
}

// Volume returns the number of voxels in the cluster.
func (c *Cluster) Volume() int {
	n := 0
	for _, b := range c.buckets {
		n += len(b.voxels)
	}
	return n
}

// Bounds returns the union of the member buckets' bounds.
func (c *Cluster) Bounds() Bounds { return c.bounds }

// BucketSize returns the bucket edge length the cluster was built with.
func (c *Cluster) BucketSize() uint32 { return c.bucketSize }

// Buckets returns the member buckets in insertion order. Callers must not
// modify the slice.
func (c *Cluster) Buckets() []*Bucket { return c.buckets }

// Bucket returns the member bucket with the given key, if any.
func (c *Cluster) Bucket(key BucketKey) (*Bucket, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.buckets[i], true
}

// EachVoxel calls fn for every voxel in the cluster.
func (c *Cluster) EachVoxel(fn func(Voxel)) {
	for _, b := range c.buckets {
		for _, v := range b.voxels {
			fn(v)
		}
	}
}

func (c *Cluster) clone() *Cluster {
	r := &Cluster{
		bucketSize: c.bucketSize,
		buckets:    make([]*Bucket, len(c.buckets)),
		index:      make(map[BucketKey]int, len(c.index)),
		bounds:     c.bounds,
	}
	for i, b := range c.buckets {
		r.buckets[i] = b.clone()
		r.index[b.key] = i
	}
	return r
}
