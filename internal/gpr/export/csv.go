// Package export writes run results to files: features and positions as
// CSV, the effective parameters as JSON and an optional footprint plot.
package export

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/banshee-data/gpr.report/internal/fsutil"
	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
)

// FeatureHeader is the header row of the features CSV.
var FeatureHeader = []string{"depth_band", "mean_amplitude", "wkt"}

// PositionHeader is the header row of the positions CSV.
var PositionHeader = []string{"longitudinal", "transverse", "x", "y"}

// WriteFeaturesCSV writes one row per feature to path. An existing file is
// never overwritten; the returned error then matches fs.ErrExist.
func WriteFeaturesCSV(fsys fsutil.FileSystem, path string, features []footprint.Feature) error {
	f, err := fsys.CreateNew(path)
	if err != nil {
		return fmt.Errorf("create features file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write(FeatureHeader)
	for _, ft := range features {
		w.Write([]string{
			ft.DepthBand,
			strconv.Itoa(int(ft.MeanAmplitude)),
			ft.WKT(),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write features: %w", err)
	}
	return f.Close()
}

// WritePositionsCSV writes every known grid position to path, ordered by
// longitudinal then transverse index.
func WritePositionsCSV(fsys fsutil.FileSystem, path string, positions *footprint.PositionGrid) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create positions file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write(PositionHeader)
	positions.Each(func(l, t uint32, p orb.Point) {
		w.Write([]string{
			strconv.FormatUint(uint64(l), 10),
			strconv.FormatUint(uint64(t), 10),
			strconv.FormatFloat(p.X(), 'f', -1, 64),
			strconv.FormatFloat(p.Y(), 'f', -1, 64),
		})
	})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write positions: %w", err)
	}
	return f.Close()
}
