package footprint

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
)

// cross is the z component of (b-a) x (c-a). Positive when c is left of
// the directed line a->b.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func comparePoints(a, b orb.Point) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	return cmp.Compare(a[1], b[1])
}

// uniquePoints sorts pts lexicographically in place and drops duplicates.
func uniquePoints(pts []orb.Point) []orb.Point {
	slices.SortFunc(pts, comparePoints)
	return slices.Compact(pts)
}

// convexHull returns the closed counter-clockwise hull of pts using the
// monotone chain. Collinear points are dropped. A single point yields the
// ring {p, p} and a collinear set yields the segment {a, b, a}, so every
// non-empty input produces a ring. pts is reordered.
func convexHull(pts []orb.Point) orb.Ring {
	pts = uniquePoints(pts)
	switch len(pts) {
	case 0:
		return nil
	case 1:
		return orb.Ring{pts[0], pts[0]}
	}

	hull := make([]orb.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The upper chain ends on the starting point, closing the ring.
	return orb.Ring(hull)
}
