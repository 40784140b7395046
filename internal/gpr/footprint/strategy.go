package footprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
)

// ErrNoGeometry is returned by a Strategy when a cluster has no positioned
// voxel inside the band. The pair is skipped, not failed.
var ErrNoGeometry = errors.New("no geometry for depth band")

// Strategy builds the footprint of one cluster within one depth band.
// Implementations only read the cluster and must be safe for concurrent use.
type Strategy interface {
	Footprint(c *clustering.Cluster, layer Layer, positions PositionLookup) (orb.MultiPolygon, error)
}

// Strategy names accepted by StrategyByName.
const (
	StrategyConvex  = "convex"
	StrategyConcave = "concave"
)

// StrategyByName returns the named footprint strategy. concavity and
// simplifyTolerance only apply to the concave strategy.
func StrategyByName(name string, concavity, simplifyTolerance float64) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", StrategyConvex:
		return StitchedConvex{}, nil
	case StrategyConcave:
		return ConcaveHull{Concavity: concavity, SimplifyTolerance: simplifyTolerance}, nil
	default:
		return nil, fmt.Errorf("unknown footprint strategy %q", name)
	}
}

// StitchedConvex computes one convex hull per bucket and returns their
// union as a MultiPolygon. Each bucket borrows the points on the minimum
// x plane of its right neighbour, the minimum y plane of its top neighbour
// and the shared corner of its top-right neighbour, so adjacent hulls meet
// without a seam.
type StitchedConvex struct{}

// Footprint implements Strategy.
func (StitchedConvex) Footprint(c *clustering.Cluster, layer Layer, positions PositionLookup) (orb.MultiPolygon, error) {
	size := c.BucketSize()
	var (
		mp  orb.MultiPolygon
		pts []orb.Point
	)
	for _, b := range c.Buckets() {
		pts = appendPositions(pts[:0], b.Voxels(), layer, positions, func(clustering.Voxel) bool { return true })
		if len(pts) == 0 {
			continue
		}

		key := b.Key()
		if r, ok := c.Bucket(key.Right()); ok {
			edge := r.Key().MinX(size)
			pts = appendPositions(pts, r.Voxels(), layer, positions, func(v clustering.Voxel) bool {
				return v.X == edge
			})
		}
		if t, ok := c.Bucket(key.Top()); ok {
			edge := t.Key().MinY(size)
			pts = appendPositions(pts, t.Voxels(), layer, positions, func(v clustering.Voxel) bool {
				return v.Y == edge
			})
		}
		if tr, ok := c.Bucket(key.TopRight()); ok {
			x, y := tr.Key().MinX(size), tr.Key().MinY(size)
			for _, v := range tr.Voxels() {
				if v.X != x || v.Y != y || !layer.Contains(v.Z) {
					continue
				}
				if p, ok := positions.Position(v.X, v.Y); ok {
					pts = append(pts, p)
					break
				}
			}
		}

		mp = append(mp, orb.Polygon{convexHull(pts)})
	}
	if len(mp) == 0 {
		return nil, ErrNoGeometry
	}
	return mp, nil
}

// appendPositions appends the position of every voxel in the band that
// passes keep and has a recorded position.
func appendPositions(dst []orb.Point, voxels []clustering.Voxel, layer Layer, positions PositionLookup, keep func(clustering.Voxel) bool) []orb.Point {
	for _, v := range voxels {
		if !layer.Contains(v.Z) || !keep(v) {
			continue
		}
		if p, ok := positions.Position(v.X, v.Y); ok {
			dst = append(dst, p)
		}
	}
	return dst
}
