package footprint

import (
	"log"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
	"github.com/banshee-data/gpr.report/internal/monitoring"
)

// identityPositions places every index pair at (longitudinal, transverse).
type identityPositions struct{}

func (identityPositions) Position(l, t uint32) (orb.Point, bool) {
	return orb.Point{float64(l), float64(t)}, true
}

// buildCluster clusters voxels with unit gaps and requires a single result.
func buildCluster(t *testing.T, bucketSize uint32, voxels []clustering.Voxel) *clustering.Cluster {
	t.Helper()
	c := clustering.NewClusterer(1, 1, 1, clustering.WithBucketSize(bucketSize))
	for _, v := range voxels {
		c.AddPoint(v.X, v.Y, v.Z, v.Amplitude)
	}
	clusters := c.Clusters()
	require.Len(t, clusters, 1)
	return clusters[0]
}

// plane returns voxels filling [x0,x1] x [y0,y1] at depth z.
func plane(x0, x1, y0, y1, z uint32, amplitude int16) []clustering.Voxel {
	var out []clustering.Voxel
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			out = append(out, clustering.Voxel{X: x, Y: y, Z: z, Amplitude: amplitude})
		}
	}
	return out
}

// quietLogs mutes the package logger for the duration of the test.
func quietLogs(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })
}
