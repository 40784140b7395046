package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowDepthRange(t *testing.T) {
	r := Row{FirstDepth: 40, Amplitudes: []int16{1, 2, 3}}
	lo, hi, ok := r.DepthRange()
	assert.True(t, ok)
	assert.Equal(t, uint32(40), lo)
	assert.Equal(t, uint32(42), hi)
	assert.Equal(t, int16(3), r.Amplitude(42))

	_, _, ok = Row{FirstDepth: 40}.DepthRange()
	assert.False(t, ok)
}

func TestSliceSource(t *testing.T) {
	src := SliceSource{{Longitudinal: 1}, {Longitudinal: 2}, {Longitudinal: 3}}

	var seen []uint32
	err := src.ForEachRow(context.Background(), func(r Row) error {
		seen = append(seen, r.Longitudinal)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, seen)

	stop := errors.New("stop")
	seen = nil
	err = src.ForEachRow(context.Background(), func(r Row) error {
		seen = append(seen, r.Longitudinal)
		if r.Longitudinal == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []uint32{1, 2}, seen)
}
