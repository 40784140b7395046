package survey

import (
	"context"
	"fmt"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
	"github.com/banshee-data/gpr.report/internal/monitoring"
)

// rowProgressEvery is how many rows are read between progress logs.
const rowProgressEvery = 5000

// Result is everything a run produced.
type Result struct {
	Params          Params
	Clusters        []*clustering.Cluster
	Positions       *footprint.PositionGrid
	Features        []footprint.Feature
	Summary         Summary
	RowsRead        int
	VoxelsClustered int
}

// Run clusters every sample of src above the amplitude threshold whose
// depth lies within the configured bands, then extracts features for the
// clusters that meet the size threshold. Params are validated before the
// first row is read.
func Run(ctx context.Context, src RowSource, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	lo, hi, err := footprint.DepthRange(params.Layers)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	strategy, err := params.Strategy()
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	clusterer := clustering.NewClusterer(params.XGap, params.YGap, params.ZGap,
		clustering.WithBucketSize(params.BucketSize))
	positions := footprint.NewPositionGrid()
	res := &Result{Params: params, Positions: positions}

	progress := monitoring.NewProgress("survey: rows read", rowProgressEvery)
	err = src.ForEachRow(ctx, func(r Row) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress.Tick()
		if r.HasPosition {
			positions.Set(r.Longitudinal, r.Transverse, r.Position)
		}
		first, last, ok := r.DepthRange()
		if !ok || last < lo || first > hi {
			return nil
		}
		// z++ past end would wrap when end is math.MaxUint32.
		for z, end := max(first, lo), min(last, hi); ; z++ {
			if amp := r.Amplitude(z); amp > params.AmplitudeThreshold {
				clusterer.AddPoint(r.Longitudinal, r.Transverse, z, amp)
				res.VoxelsClustered++
			}
			if z == end {
				break
			}
		}
		return nil
	})
	res.RowsRead = progress.Count()
	if err != nil {
		return nil, fmt.Errorf("reading rows (after %d): %w", res.RowsRead, err)
	}
	progress.Done()
	monitoring.Logf("survey: %d voxels above %d formed %d clusters",
		res.VoxelsClustered, params.AmplitudeThreshold, clusterer.Len())

	res.Clusters = clusterer.Clusters()
	res.Summary = Summarize(res.Clusters, params.SizeThreshold)

	ext := &footprint.Extractor{
		Positions:     positions,
		Strategy:      strategy,
		SizeThreshold: params.SizeThreshold,
		Workers:       params.Workers,
	}
	res.Features, err = ext.Extract(ctx, res.Clusters, params.Layers)
	if err != nil {
		return nil, fmt.Errorf("extracting features: %w", err)
	}
	monitoring.Logf("survey: %d features from %d clusters", len(res.Features), res.Summary.KeptClusters)
	return res, nil
}
