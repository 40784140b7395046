package survey

import (
	"context"

	"github.com/paulmach/orb"
)

// Row is one trace: the amplitudes recorded at a (longitudinal, transverse)
// grid position, indexed by depth starting at FirstDepth.
type Row struct {
	Longitudinal uint32
	Transverse   uint32
	// Position is the projected coordinate of the trace. Only meaningful
	// when HasPosition is set.
	Position    orb.Point
	HasPosition bool
	FirstDepth  uint32
	Amplitudes  []int16
}

// DepthRange returns the valid depth indices of the row. ok is false for
// a row without samples.
func (r Row) DepthRange() (lo, hi uint32, ok bool) {
	if len(r.Amplitudes) == 0 {
		return 0, 0, false
	}
	return r.FirstDepth, r.FirstDepth + uint32(len(r.Amplitudes)) - 1, true
}

// Amplitude returns the sample at depth z. z must lie in DepthRange.
func (r Row) Amplitude(z uint32) int16 {
	return r.Amplitudes[z-r.FirstDepth]
}

// RowSource streams rows in a stable order. ForEachRow stops at the first
// error returned by fn and returns it.
type RowSource interface {
	ForEachRow(ctx context.Context, fn func(Row) error) error
}

// SliceSource is an in-memory RowSource.
type SliceSource []Row

// ForEachRow implements RowSource.
func (s SliceSource) ForEachRow(ctx context.Context, fn func(Row) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
