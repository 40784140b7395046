package footprint

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/banshee-data/gpr.report/internal/gpr/clustering"
)

// DefaultConcavity is the edge-to-distance ratio above which ConcaveHull
// digs an edge inward.
const DefaultConcavity = 2.0

// ConcaveHull builds a single concave polygon from every positioned voxel
// of the cluster in the band, ignoring bucket boundaries. It starts from
// the convex hull and repeatedly replaces an edge a-b by a-p-b, where p is
// the interior point nearest the edge, while |ab| / min(|ap|, |pb|)
// exceeds Concavity and the new edges keep the ring simple.
type ConcaveHull struct {
	// Concavity is the dig threshold. Values <= 0 use DefaultConcavity.
	// Larger values give shapes closer to the convex hull.
	Concavity float64
	// SimplifyTolerance enables Douglas-Peucker simplification of the
	// result when positive.
	SimplifyTolerance float64
}

// Footprint implements Strategy.
func (h ConcaveHull) Footprint(c *clustering.Cluster, layer Layer, positions PositionLookup) (orb.MultiPolygon, error) {
	var pts []orb.Point
	c.EachVoxel(func(v clustering.Voxel) {
		if !layer.Contains(v.Z) {
			return
		}
		if p, ok := positions.Position(v.X, v.Y); ok {
			pts = append(pts, p)
		}
	})
	if len(pts) == 0 {
		return nil, ErrNoGeometry
	}

	concavity := h.Concavity
	if concavity <= 0 {
		concavity = DefaultConcavity
	}
	ring := concaveHull(pts, concavity)
	if h.SimplifyTolerance > 0 {
		ring = simplifyRing(ring, h.SimplifyTolerance)
	}
	return orb.MultiPolygon{orb.Polygon{ring}}, nil
}

func concaveHull(pts []orb.Point, concavity float64) orb.Ring {
	pts = uniquePoints(pts)
	convex := convexHull(pts)
	if len(convex) < 4 {
		return convex
	}

	hull := slices.Clone(convex[:len(convex)-1])
	onHull := make(map[orb.Point]bool, len(hull))
	for _, p := range hull {
		onHull[p] = true
	}
	inner := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if !onHull[p] {
			inner = append(inner, p)
		}
	}
	hull, inner = insertCollinear(hull, inner)

	for i := 0; i < len(hull) && len(inner) > 0; {
		a, b := hull[i], hull[(i+1)%len(hull)]
		k := nearestLeft(inner, a, b)
		if k < 0 {
			i++
			continue
		}
		p := inner[k]
		d := min(planar.Distance(a, p), planar.Distance(p, b))
		if d == 0 || planar.Distance(a, b)/d <= concavity || !canDig(hull, inner, i, p) {
			i++
			continue
		}
		hull = slices.Insert(hull, i+1, p)
		inner = slices.Delete(inner, k, k+1)
	}
	return append(orb.Ring(hull), hull[0])
}

// insertCollinear moves interior points lying exactly on a hull edge into
// the hull, in order along the edge.
func insertCollinear(hull, inner []orb.Point) ([]orb.Point, []orb.Point) {
	out := make([]orb.Point, 0, len(hull))
	rest := make([]orb.Point, 0, len(inner))
	used := make([]bool, len(inner))
	for i, a := range hull {
		b := hull[(i+1)%len(hull)]
		out = append(out, a)
		var on []int
		for j, p := range inner {
			if !used[j] && cross(a, b, p) == 0 && strictlyBetween(a, b, p) {
				on = append(on, j)
			}
		}
		slices.SortFunc(on, func(x, y int) int {
			dx, dy := planar.DistanceSquared(a, inner[x]), planar.DistanceSquared(a, inner[y])
			switch {
			case dx < dy:
				return -1
			case dx > dy:
				return 1
			}
			return 0
		})
		for _, j := range on {
			used[j] = true
			out = append(out, inner[j])
		}
	}
	for j, p := range inner {
		if !used[j] {
			rest = append(rest, p)
		}
	}
	return out, rest
}

// strictlyBetween reports whether p, already known to be collinear with
// a-b, lies between them and is neither endpoint.
func strictlyBetween(a, b, p orb.Point) bool {
	dot := (p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])
	return dot > 0 && dot < planar.DistanceSquared(a, b)
}

// nearestLeft returns the index of the point strictly left of a->b that is
// closest to the segment, or -1.
func nearestLeft(pts []orb.Point, a, b orb.Point) int {
	best, bestD := -1, math.Inf(1)
	for i, p := range pts {
		if cross(a, b, p) <= 0 {
			continue
		}
		if d := segmentDistanceSquared(p, a, b); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func segmentDistanceSquared(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return planar.DistanceSquared(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = max(0, min(1, t))
	return planar.DistanceSquared(p, orb.Point{a[0] + t*dx, a[1] + t*dy})
}

// canDig reports whether replacing edge i of hull by a-p-b leaves every
// remaining point inside and the ring simple.
func canDig(hull, inner []orb.Point, i int, p orb.Point) bool {
	n := len(hull)
	a, b := hull[i], hull[(i+1)%n]
	for _, q := range inner {
		if q != p && inTriangle(a, p, b, q) {
			return false
		}
	}
	for j, q := range hull {
		if j != i && j != (i+1)%n && inTriangle(a, p, b, q) {
			return false
		}
	}
	for j := range hull {
		if j == i {
			continue
		}
		c, d := hull[j], hull[(j+1)%n]
		if properlyCross(a, p, c, d) || properlyCross(p, b, c, d) {
			return false
		}
	}
	return true
}

// inTriangle reports whether q is strictly inside triangle a, p, b, where
// the triangle is clockwise because p lies left of a->b.
func inTriangle(a, p, b, q orb.Point) bool {
	return cross(a, p, q) < 0 && cross(p, b, q) < 0 && cross(b, a, q) < 0
}

// properlyCross reports whether segments a-b and c-d cross at a single
// point interior to both.
func properlyCross(a, b, c, d orb.Point) bool {
	d1, d2 := cross(c, d, a), cross(c, d, b)
	d3, d4 := cross(a, b, c), cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// simplifyRing applies Douglas-Peucker to ring, keeping the original when
// the result would no longer be a polygon.
func simplifyRing(ring orb.Ring, tolerance float64) orb.Ring {
	ls := orb.LineString(ring)
	s := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone())
	result, ok := s.(orb.LineString)
	if !ok || len(result) < 4 {
		return ring
	}
	return orb.Ring(result)
}
