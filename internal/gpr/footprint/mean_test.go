package footprint

import (
	"math"
	"testing"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
)

func TestMeanAmplitude(t *testing.T) {
	band := Layer{MinDepth: 10, MaxDepth: 12, Label: "band"}

	tests := []struct {
		name   string
		amps   []int16
		want   int16
		wantOK bool
	}{
		{"symmetric", []int16{-100, 0, 100}, 0, true},
		{"single", []int16{1234}, 1234, true},
		{"truncates toward zero", []int16{-3, -4}, -3, true},
		{"no overflow", []int16{math.MaxInt16, math.MaxInt16, math.MaxInt16}, math.MaxInt16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var voxels []clustering.Voxel
			for i, a := range tt.amps {
				voxels = append(voxels, clustering.Voxel{X: uint32(i), Y: 0, Z: 11, Amplitude: a})
			}
			c := buildCluster(t, 10, voxels)
			got, ok := MeanAmplitude(c, band)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MeanAmplitude = %d,%v, want %d,%v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMeanAmplitude_IgnoresOtherBands(t *testing.T) {
	c := buildCluster(t, 10, []clustering.Voxel{
		{X: 0, Y: 0, Z: 10, Amplitude: 100},
		{X: 0, Y: 0, Z: 11, Amplitude: 300},
		{X: 0, Y: 0, Z: 12, Amplitude: -500},
	})
	if got, ok := MeanAmplitude(c, Layer{MinDepth: 10, MaxDepth: 11, Label: "a"}); !ok || got != 200 {
		t.Errorf("mean over 10-11 = %d,%v, want 200,true", got, ok)
	}
	if _, ok := MeanAmplitude(c, Layer{MinDepth: 20, MaxDepth: 30, Label: "b"}); ok {
		t.Error("expected no voxels in 20-30")
	}
}
