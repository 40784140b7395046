package survey

import (
	"context"
	"log"
	"testing"

	"github.com/paulmach/orb"

	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
	"github.com/banshee-data/gpr.report/internal/monitoring"
)

func quietLogs(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })
}

// gridSource lays out rows for every (l, t) in [0,nl) x [0,nt). hot
// decides the amplitude at each voxel; everything else is 0.
func gridSource(nl, nt uint32, hot func(l, t, z uint32) int16) SliceSource {
	var rows SliceSource
	for l := uint32(0); l < nl; l++ {
		for tr := uint32(0); tr < nt; tr++ {
			amps := make([]int16, 10)
			for i := range amps {
				amps[i] = hot(l, tr, 50+uint32(i))
			}
			rows = append(rows, Row{
				Longitudinal: l,
				Transverse:   tr,
				Position:     orb.Point{float64(l), float64(tr)},
				HasPosition:  true,
				FirstDepth:   50,
				Amplitudes:   amps,
			})
		}
	}
	return rows
}

var testLayers = []footprint.Layer{
	{MinDepth: 51, MaxDepth: 53, Label: "0-50mm"},
	{MinDepth: 54, MaxDepth: 57, Label: "50-100mm"},
}

func testParams() Params {
	p := DefaultParams()
	p.XGap, p.YGap, p.ZGap = 1, 1, 1
	p.SizeThreshold = 1
	p.Layers = testLayers
	return p
}

// failingSource fails the test if it is ever read.
type failingSource struct{ t *testing.T }

func (s failingSource) ForEachRow(context.Context, func(Row) error) error {
	s.t.Fatal("rows read despite invalid parameters")
	return nil
}
