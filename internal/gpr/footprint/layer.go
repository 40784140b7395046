package footprint

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLayers is returned when a run is configured without depth bands.
	ErrNoLayers = errors.New("no depth layers configured")
	// ErrInvalidLayer is returned for a band with an inverted range or no label.
	ErrInvalidLayer = errors.New("invalid depth layer")
)

// Layer is a labelled, inclusive range of depth indices.
type Layer struct {
	MinDepth uint32 `json:"min_depth"`
	MaxDepth uint32 `json:"max_depth"`
	Label    string `json:"label"`
}

// Contains reports whether depth index z falls inside the band.
func (l Layer) Contains(z uint32) bool {
	return l.MinDepth <= z && z <= l.MaxDepth
}

// Validate checks the band on its own.
func (l Layer) Validate() error {
	if l.Label == "" {
		return fmt.Errorf("%w: depth %d-%d has no label", ErrInvalidLayer, l.MinDepth, l.MaxDepth)
	}
	if l.MinDepth > l.MaxDepth {
		return fmt.Errorf("%w: %q has min_depth %d > max_depth %d", ErrInvalidLayer, l.Label, l.MinDepth, l.MaxDepth)
	}
	return nil
}

// ValidateLayers checks that at least one band is given and every band is
// well formed. Bands may overlap or leave gaps.
func ValidateLayers(layers []Layer) error {
	if len(layers) == 0 {
		return ErrNoLayers
	}
	for i, l := range layers {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// DepthRange returns the smallest min_depth and largest max_depth over all
// bands. Samples outside this window never need to be clustered.
func DepthRange(layers []Layer) (lo, hi uint32, err error) {
	if err := ValidateLayers(layers); err != nil {
		return 0, 0, err
	}
	lo, hi = layers[0].MinDepth, layers[0].MaxDepth
	for _, l := range layers[1:] {
		lo = min(lo, l.MinDepth)
		hi = max(hi, l.MaxDepth)
	}
	return lo, hi, nil
}

// DefaultLayers returns the ten 50 mm bands used when no layers are
// configured. The depth indices match the standard antenna calibration.
func DefaultLayers() []Layer {
	return []Layer{
		{MinDepth: 51, MaxDepth: 53, Label: "0-50mm"},
		{MinDepth: 54, MaxDepth: 57, Label: "50-100mm"},
		{MinDepth: 58, MaxDepth: 61, Label: "100-150mm"},
		{MinDepth: 62, MaxDepth: 65, Label: "150-200mm"},
		{MinDepth: 66, MaxDepth: 69, Label: "200-250mm"},
		{MinDepth: 70, MaxDepth: 73, Label: "250-300mm"},
		{MinDepth: 74, MaxDepth: 77, Label: "300-350mm"},
		{MinDepth: 82, MaxDepth: 85, Label: "350-400mm"},
		{MinDepth: 86, MaxDepth: 89, Label: "400-450mm"},
		{MinDepth: 90, MaxDepth: 93, Label: "450-500mm"},
	}
}
