package footprint

import "github.com/paulmach/orb"

// PositionLookup maps a (longitudinal, transverse) index pair to its
// projected 2D coordinate. ok is false when the pair was never recorded.
// Implementations must be safe for concurrent reads.
type PositionLookup interface {
	Position(longitudinal, transverse uint32) (p orb.Point, ok bool)
}

type positionCell struct {
	p  orb.Point
	ok bool
}

// PositionGrid is a dense PositionLookup indexed by longitudinal then
// transverse index. Rows grow on demand. Writes must not run concurrently
// with reads.
type PositionGrid struct {
	rows [][]positionCell
	n    int
}

// NewPositionGrid returns an empty grid.
func NewPositionGrid() *PositionGrid {
	return &PositionGrid{}
}

// Set records the position of one index pair, replacing any earlier value.
func (g *PositionGrid) Set(longitudinal, transverse uint32, p orb.Point) {
	l, t := int(longitudinal), int(transverse)
	if l >= len(g.rows) {
		g.rows = append(g.rows, make([][]positionCell, l+1-len(g.rows))...)
	}
	row := g.rows[l]
	if t >= len(row) {
		row = append(row, make([]positionCell, t+1-len(row))...)
		g.rows[l] = row
	}
	if !row[t].ok {
		g.n++
	}
	row[t] = positionCell{p: p, ok: true}
}

// Position implements PositionLookup.
func (g *PositionGrid) Position(longitudinal, transverse uint32) (orb.Point, bool) {
	l, t := int(longitudinal), int(transverse)
	if l >= len(g.rows) || t >= len(g.rows[l]) {
		return orb.Point{}, false
	}
	c := g.rows[l][t]
	return c.p, c.ok
}

// Len returns the number of recorded index pairs.
func (g *PositionGrid) Len() int { return g.n }

// Each calls fn for every recorded pair in (longitudinal, transverse) order.
func (g *PositionGrid) Each(fn func(longitudinal, transverse uint32, p orb.Point)) {
	for l, row := range g.rows {
		for t, c := range row {
			if c.ok {
				fn(uint32(l), uint32(t), c.p)
			}
		}
	}
}
