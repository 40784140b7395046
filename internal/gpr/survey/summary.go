package survey

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
)

// Summary describes the cluster volume distribution of a run.
type Summary struct {
	Clusters     int     `json:"clusters"`
	KeptClusters int     `json:"kept_clusters"`
	Voxels       int     `json:"voxels"`
	MeanVolume   float64 `json:"mean_volume"`
	MedianVolume float64 `json:"median_volume"`
	P95Volume    float64 `json:"p95_volume"`
	MaxVolume    int     `json:"max_volume"`
}

// Summarize computes volume statistics over clusters. KeptClusters counts
// clusters with volume >= sizeThreshold.
func Summarize(clusters []*clustering.Cluster, sizeThreshold int) Summary {
	s := Summary{Clusters: len(clusters)}
	if len(clusters) == 0 {
		return s
	}

	volumes := make([]float64, len(clusters))
	for i, c := range clusters {
		v := c.Volume()
		volumes[i] = float64(v)
		s.Voxels += v
		s.MaxVolume = max(s.MaxVolume, v)
		if v >= sizeThreshold {
			s.KeptClusters++
		}
	}
	sort.Float64s(volumes)

	s.MeanVolume = stat.Mean(volumes, nil)
	s.MedianVolume = stat.Quantile(0.5, stat.Empirical, volumes, nil)
	s.P95Volume = stat.Quantile(0.95, stat.Empirical, volumes, nil)
	return s
}
