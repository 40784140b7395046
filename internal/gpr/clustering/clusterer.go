package clustering

// DefaultGap is the default per-axis adjacency tolerance in grid indices.
const DefaultGap = 5

// estimatedActiveClusters sizes the active cluster slice.
const estimatedActiveClusters = 100

// Clusterer partitions a stream of voxels into connected components.
// Two voxels are connected when they are within (xGap, yGap, zGap) of each
// other on every axis, transitively. It is not safe for concurrent use.
type Clusterer struct {
	active     []*Cluster
	xGap       uint32
	yGap       uint32
	zGap       uint32
	bucketSize uint32

	// matches is scratch space reused across AddPoint calls.
	matches []int
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithBucketSize fixes the bucket edge length. Zero keeps the size derived
// from the gap tolerances.
func WithBucketSize(size uint32) Option {
	return func(c *Clusterer) {
		if size > 0 {
			c.bucketSize = size
		}
	}
}

// DeriveBucketSize picks a bucket edge length comparable to the gap
// tolerances: twice the largest gap, but never below MinBucketSize.
func DeriveBucketSize(xGap, yGap, zGap uint32) uint32 {
	g := max(xGap, yGap, zGap)
	if g > (1<<31)-1 {
		return g
	}
	return max(MinBucketSize, 2*g)
}

// NewClusterer creates a Clusterer with the given gap tolerances.
func NewClusterer(xGap, yGap, zGap uint32, opts ...Option) *Clusterer {
	c := &Clusterer{
		active:     make([]*Cluster, 0, estimatedActiveClusters),
		xGap:       xGap,
		yGap:       yGap,
		zGap:       zGap,
		bucketSize: DeriveBucketSize(xGap, yGap, zGap),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gaps returns the adjacency tolerances.
func (c *Clusterer) Gaps() (x, y, z uint32) { return c.xGap, c.yGap, c.zGap }

// BucketSize returns the bucket edge length in use.
func (c *Clusterer) BucketSize() uint32 { return c.bucketSize }

// AddPoint assigns one voxel. A voxel touching no cluster starts a new one,
// touching one joins it, and touching several merges them all in a single
// step before the voxel is added.
func (c *Clusterer) AddPoint(x, y, z uint32, amplitude int16) {
	p := Voxel{X: x, Y: y, Z: z, Amplitude: amplitude}

	c.matches = c.matches[:0]
	for i, cl := range c.active {
		if cl.IsAdjacent(p, c.xGap, c.yGap, c.zGap) {
			c.matches = append(c.matches, i)
		}
	}

	switch len(c.matches) {
	case 0:
		c.active = append(c.active, newCluster(p, c.bucketSize))
	case 1:
		c.active[c.matches[0]].addPoint(p)
	default:
		toMerge := make([]*Cluster, 0, len(c.matches))
		// Remove highest index first so swap-removal never moves a
		// cluster that is still waiting to be removed.
		for j := len(c.matches) - 1; j >= 0; j-- {
			i := c.matches[j]
			toMerge = append(toMerge, c.active[i])
			last := len(c.active) - 1
			c.active[i] = c.active[last]
			c.active[last] = nil
			c.active = c.active[:last]
		}
		merged := mergeClusters(toMerge)
		merged.addPoint(p)
		c.active = append(c.active, merged)
	}
}

// Clusters returns a deep copy of the current clusters. Further AddPoint
// calls do not affect the returned snapshot.
func (c *Clusterer) Clusters() []*Cluster {
	out := make([]*Cluster, len(c.active))
	for i, cl := range c.active {
		out[i] = cl.clone()
	}
	return out
}

// Len returns the number of active clusters.
func (c *Clusterer) Len() int { return len(c.active) }

// Volume returns the number of voxels added so far.
func (c *Clusterer) Volume() int {
	n := 0
	for _, cl := range c.active {
		n += cl.Volume()
	}
	return n
}
