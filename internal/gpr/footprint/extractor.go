package footprint

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
	"github.com/banshee-data/gpr.report/internal/monitoring"
)

// progressEvery is how many clusters are dispatched between progress logs.
const progressEvery = 100

// Extractor evaluates every surviving (cluster, band) pair. Pairs are
// independent, so they run on a bounded worker pool; the output order is
// cluster order then band order regardless of scheduling.
type Extractor struct {
	Positions PositionLookup
	// Strategy defaults to StitchedConvex.
	Strategy Strategy
	// SizeThreshold is the minimum cluster volume that produces features.
	SizeThreshold int
	// Workers bounds concurrency. Zero or negative uses GOMAXPROCS.
	Workers int
}

// FilterBySize returns the clusters whose volume is at least minVolume.
func FilterBySize(clusters []*clustering.Cluster, minVolume int) []*clustering.Cluster {
	out := make([]*clustering.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Volume() >= minVolume {
			out = append(out, c)
		}
	}
	return out
}

type pairResult struct {
	feature Feature
	ok      bool
}

// Extract returns one Feature per (cluster, band) pair where the cluster
// meets SizeThreshold and the strategy produced geometry. Layer validation
// happens before any work starts. The first strategy error other than
// ErrNoGeometry, or cancellation of ctx, aborts the batch.
func (e *Extractor) Extract(ctx context.Context, clusters []*clustering.Cluster, layers []Layer) ([]Feature, error) {
	if err := ValidateLayers(layers); err != nil {
		return nil, err
	}
	if e.Positions == nil {
		return nil, errors.New("extractor has no position lookup")
	}
	strategy := e.Strategy
	if strategy == nil {
		strategy = StitchedConvex{}
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var kept []int
	for i, c := range clusters {
		if c.Volume() >= e.SizeThreshold {
			kept = append(kept, i)
		}
	}
	monitoring.Logf("footprint: %d of %d clusters meet size threshold %d", len(kept), len(clusters), e.SizeThreshold)

	results := make([]pairResult, len(kept)*len(layers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	progress := monitoring.NewProgress("footprint: clusters dispatched", progressEvery)
	for n, ci := range kept {
		progress.Tick()
		c := clusters[ci]
		for li, layer := range layers {
			slot := &results[n*len(layers)+li]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				mp, err := strategy.Footprint(c, layer, e.Positions)
				if errors.Is(err, ErrNoGeometry) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("cluster %d layer %q: %w", ci, layer.Label, err)
				}
				mean, _ := MeanAmplitude(c, layer)
				*slot = pairResult{
					feature: Feature{
						ClusterIndex:  ci,
						Volume:        c.Volume(),
						DepthBand:     layer.Label,
						MeanAmplitude: mean,
						Footprint:     mp,
					},
					ok: true,
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	progress.Done()

	features := make([]Feature, 0, len(results))
	for _, r := range results {
		if r.ok {
			features = append(features, r.feature)
		}
	}
	return features, nil
}
