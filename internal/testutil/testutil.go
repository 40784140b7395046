// Package testutil provides shared test fixtures for voxel clustering and
// small assertion helpers.
//
// Fixtures are plain coordinate triples so that any package, including
// the clustering package itself, can use them without an import cycle.
package testutil

import (
	"math/rand"
	"net/http"
	"slices"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d (%s), want %d", got, http.StatusText(got), want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Coord is an (x, y, z) grid index.
type Coord [3]uint32

// Line returns n coordinates starting at from and stepping +1 along axis
// (0 = x, 1 = y, 2 = z).
func Line(from Coord, axis, n int) []Coord {
	out := make([]Coord, n)
	for i := range out {
		c := from
		c[axis] += uint32(i)
		out[i] = c
	}
	return out
}

// Box returns every coordinate in the inclusive box [lo, hi].
func Box(lo, hi Coord) []Coord {
	var out []Coord
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				out = append(out, Coord{x, y, z})
			}
		}
	}
	return out
}

// RandomCoords returns n distinct coordinates drawn uniformly from
// [0, extent) on each axis.
func RandomCoords(rng *rand.Rand, n int, extent Coord) []Coord {
	seen := make(map[Coord]bool, n)
	out := make([]Coord, 0, n)
	for len(out) < n {
		c := Coord{
			uint32(rng.Intn(int(extent[0]))),
			uint32(rng.Intn(int(extent[1]))),
			uint32(rng.Intn(int(extent[2]))),
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Shuffled returns a shuffled copy of coords.
func Shuffled(rng *rand.Rand, coords []Coord) []Coord {
	out := slices.Clone(coords)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// FloodFill is the reference partition: coordinates connected through a
// chain of pairwise steps within gap on every axis share a group. Groups
// are returned in canonical form (see Canonical).
func FloodFill(coords []Coord, gap Coord) [][]Coord {
	visited := make([]bool, len(coords))
	var groups [][]Coord
	for start := range coords {
		if visited[start] {
			continue
		}
		visited[start] = true
		group := []Coord{coords[start]}
		queue := []int{start}
		for len(queue) > 0 {
			cur := coords[queue[0]]
			queue = queue[1:]
			for j, c := range coords {
				if visited[j] || !withinGap(cur, c, gap) {
					continue
				}
				visited[j] = true
				group = append(group, c)
				queue = append(queue, j)
			}
		}
		groups = append(groups, group)
	}
	return Canonical(groups)
}

// Canonical sorts each group and then the groups themselves so that two
// partitions of the same set compare equal regardless of order.
func Canonical(groups [][]Coord) [][]Coord {
	out := make([][]Coord, len(groups))
	for i, g := range groups {
		out[i] = slices.Clone(g)
		slices.SortFunc(out[i], compareCoord)
	}
	slices.SortFunc(out, func(a, b []Coord) int {
		return compareCoord(a[0], b[0])
	})
	return out
}

func compareCoord(a, b Coord) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func withinGap(a, b, gap Coord) bool {
	for i := range a {
		d := a[i] - b[i]
		if b[i] > a[i] {
			d = b[i] - a[i]
		}
		if d > gap[i] {
			return false
		}
	}
	return true
}
