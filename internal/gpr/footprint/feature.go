package footprint

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// Feature is the output record for one (cluster, band) pair.
type Feature struct {
	// ClusterIndex is the position of the source cluster in the slice
	// passed to Extractor.Extract.
	ClusterIndex  int
	Volume        int
	DepthBand     string
	MeanAmplitude int16
	Footprint     orb.MultiPolygon
}

// WKT renders the footprint as well-known text.
func (f Feature) WKT() string {
	return wkt.MarshalString(f.Footprint)
}

// Area is the planar area of the footprint in projected units. Overlapping
// polygons are counted once each.
func (f Feature) Area() float64 {
	return planar.Area(f.Footprint)
}
