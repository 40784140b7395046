package footprint

import (
	"errors"
	"testing"
)

func TestLayerValidate(t *testing.T) {
	tests := []struct {
		name    string
		layer   Layer
		wantErr bool
	}{
		{"valid", Layer{MinDepth: 1, MaxDepth: 3, Label: "a"}, false},
		{"single depth", Layer{MinDepth: 4, MaxDepth: 4, Label: "b"}, false},
		{"inverted", Layer{MinDepth: 5, MaxDepth: 4, Label: "c"}, true},
		{"no label", Layer{MinDepth: 1, MaxDepth: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layer.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLayer) {
				t.Errorf("error %v does not wrap ErrInvalidLayer", err)
			}
		})
	}
}

func TestLayerContains(t *testing.T) {
	l := Layer{MinDepth: 10, MaxDepth: 12, Label: "x"}
	for z, want := range map[uint32]bool{9: false, 10: true, 11: true, 12: true, 13: false} {
		if got := l.Contains(z); got != want {
			t.Errorf("Contains(%d) = %v, want %v", z, got, want)
		}
	}
}

func TestDepthRange(t *testing.T) {
	lo, hi, err := DepthRange([]Layer{
		{MinDepth: 20, MaxDepth: 25, Label: "b"},
		{MinDepth: 5, MaxDepth: 8, Label: "a"},
		{MinDepth: 22, MaxDepth: 40, Label: "c"},
	})
	if err != nil {
		t.Fatalf("DepthRange: %v", err)
	}
	if lo != 5 || hi != 40 {
		t.Errorf("DepthRange = %d,%d, want 5,40", lo, hi)
	}

	if _, _, err := DepthRange(nil); !errors.Is(err, ErrNoLayers) {
		t.Errorf("DepthRange(nil) error = %v, want ErrNoLayers", err)
	}
	if _, _, err := DepthRange([]Layer{{MinDepth: 3, MaxDepth: 1, Label: "bad"}}); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("DepthRange(bad) error = %v, want ErrInvalidLayer", err)
	}
}

func TestDefaultLayers(t *testing.T) {
	layers := DefaultLayers()
	if len(layers) != 10 {
		t.Fatalf("len(DefaultLayers()) = %d, want 10", len(layers))
	}
	if err := ValidateLayers(layers); err != nil {
		t.Fatalf("default layers invalid: %v", err)
	}
	lo, hi, _ := DepthRange(layers)
	if lo != 51 || hi != 93 {
		t.Errorf("default depth range = %d-%d, want 51-93", lo, hi)
	}
	if layers[0].Label != "0-50mm" || layers[9].Label != "450-500mm" {
		t.Errorf("unexpected labels %q .. %q", layers[0].Label, layers[9].Label)
	}
}
