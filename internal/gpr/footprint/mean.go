package footprint

import "github.com/banshee-data/gpr.report/internal/gpr/clustering"

// MeanAmplitude averages the amplitude of every voxel of c whose depth lies
// in layer. The sum is accumulated in 64 bits and the quotient truncates
// toward zero. ok is false when no voxel is in the band.
func MeanAmplitude(c *clustering.Cluster, layer Layer) (mean int16, ok bool) {
	var sum, n int64
	c.EachVoxel(func(v clustering.Voxel) {
		if layer.Contains(v.Z) {
			sum += int64(v.Amplitude)
			n++
		}
	})
	if n == 0 {
		return 0, false
	}
	return int16(sum / n), true
}
