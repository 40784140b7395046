package survey

import (
	"fmt"

	"github.com/banshee-data/gpr.report/internal/config"
	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
)

// Params are the effective settings of one run, after defaults.
type Params struct {
	AmplitudeThreshold int16             `json:"amplitude_threshold"`
	SizeThreshold      int               `json:"size_threshold"`
	XGap               uint32            `json:"x_gap"`
	YGap               uint32            `json:"y_gap"`
	ZGap               uint32            `json:"z_gap"`
	BucketSize         uint32            `json:"bucket_size"`
	Footprint          string            `json:"footprint"`
	Concavity          float64           `json:"concavity"`
	SimplifyTolerance  float64           `json:"simplify_tolerance"`
	Workers            int               `json:"workers"`
	Layers             []footprint.Layer `json:"layers"`
}

// DefaultParams returns the settings used when no config is given.
func DefaultParams() Params {
	return ParamsFromConfig(config.EmptyRunConfig())
}

// ParamsFromConfig resolves cfg into Params. Unset layers become
// footprint.DefaultLayers and an unset bucket size is derived from the gaps.
func ParamsFromConfig(cfg *config.RunConfig) Params {
	p := Params{
		AmplitudeThreshold: cfg.GetAmplitudeThreshold(),
		SizeThreshold:      cfg.GetSizeThreshold(),
		XGap:               cfg.GetXGap(),
		YGap:               cfg.GetYGap(),
		ZGap:               cfg.GetZGap(),
		BucketSize:         cfg.GetBucketSize(),
		Footprint:          cfg.GetFootprint(),
		Concavity:          cfg.GetConcavity(),
		SimplifyTolerance:  cfg.GetSimplifyTolerance(),
		Workers:            cfg.GetWorkers(),
	}
	if p.BucketSize == 0 {
		p.BucketSize = clustering.DeriveBucketSize(p.XGap, p.YGap, p.ZGap)
	}
	if layers := cfg.GetLayers(); layers != nil {
		p.Layers = make([]footprint.Layer, len(layers))
		for i, l := range layers {
			p.Layers[i] = footprint.Layer{MinDepth: uint32(l.MinDepth), MaxDepth: uint32(l.MaxDepth), Label: l.Label}
		}
	} else {
		p.Layers = footprint.DefaultLayers()
	}
	return p
}

// Validate reports configuration errors that must stop a run before any
// row is read.
func (p Params) Validate() error {
	if err := footprint.ValidateLayers(p.Layers); err != nil {
		return err
	}
	if _, err := p.Strategy(); err != nil {
		return err
	}
	if p.SizeThreshold < 0 {
		return fmt.Errorf("size threshold must be non-negative, got %d", p.SizeThreshold)
	}
	return nil
}

// Strategy returns the configured footprint strategy.
func (p Params) Strategy() (footprint.Strategy, error) {
	return footprint.StrategyByName(p.Footprint, p.Concavity, p.SimplifyTolerance)
}
