package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gpr.report/internal/fsutil"
	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
	"github.com/banshee-data/gpr.report/internal/gpr/survey"
	"github.com/banshee-data/gpr.report/internal/version"
)

func square(x, y, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}, {x, y},
	}}
}

func sampleFeatures() []footprint.Feature {
	return []footprint.Feature{
		{ClusterIndex: 0, Volume: 60, DepthBand: "51-53", MeanAmplitude: 12000,
			Footprint: orb.MultiPolygon{square(0, 0, 2), square(4, 0, 1)}},
		{ClusterIndex: 0, Volume: 60, DepthBand: "54-56", MeanAmplitude: -15001,
			Footprint: orb.MultiPolygon{square(0.5, 0.5, 1)}},
		{ClusterIndex: 1, Volume: 90, DepthBand: "51-53", MeanAmplitude: 30000,
			Footprint: orb.MultiPolygon{square(10, 10, 3)}},
	}
}

func readCSV(t *testing.T, fsys *fsutil.MemoryFileSystem, path string) [][]string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteFeaturesCSV(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	features := sampleFeatures()
	require.NoError(t, WriteFeaturesCSV(fsys, "out/features.csv", features))

	records := readCSV(t, fsys, "out/features.csv")
	require.Len(t, records, 4)
	assert.Equal(t, FeatureHeader, records[0])
	assert.Equal(t, []string{"51-53", "12000"}, records[1][:2])
	assert.Equal(t, "-15001", records[2][1])

	g, err := wkt.Unmarshal(records[1][2])
	require.NoError(t, err)
	assert.Equal(t, features[0].Footprint, g)
}

func TestWriteFeaturesCSV_RefusesOverwrite(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFeaturesCSV(fsys, "features.csv", sampleFeatures()))

	err := WriteFeaturesCSV(fsys, "features.csv", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist), "got %v", err)

	// The first file is untouched.
	assert.Len(t, readCSV(t, fsys, "features.csv"), 4)
}

func TestWriteFeaturesCSV_Empty(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFeaturesCSV(fsys, "features.csv", nil))
	assert.Equal(t, [][]string{FeatureHeader}, readCSV(t, fsys, "features.csv"))
}

func TestWritePositionsCSV(t *testing.T) {
	grid := footprint.NewPositionGrid()
	grid.Set(1, 0, orb.Point{512000.5, 6400000.25})
	grid.Set(0, 2, orb.Point{-1, 2})

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, WritePositionsCSV(fsys, "positions.csv", grid))
	assert.Equal(t, [][]string{
		PositionHeader,
		{"0", "2", "-1", "2"},
		{"1", "0", "512000.5", "6400000.25"},
	}, readCSV(t, fsys, "positions.csv"))

	// Positions are rewritten on every run.
	require.NoError(t, WritePositionsCSV(fsys, "positions.csv", footprint.NewPositionGrid()))
	assert.Len(t, readCSV(t, fsys, "positions.csv"), 1)
}

func TestWriteParamsJSON(t *testing.T) {
	origV, origSHA := version.Version, version.GitSHA
	defer func() { version.Version, version.GitSHA = origV, origSHA }()
	version.Version, version.GitSHA = "0.9.0", "deadbeef"

	fsys := fsutil.NewMemoryFileSystem()
	params := survey.DefaultParams()
	dump := NewParamsDump("site-a", "run-1", params)
	require.NoError(t, WriteParamsJSON(fsys, "params.json", dump))

	data, err := fsys.ReadFile("params.json")
	require.NoError(t, err)

	var got ParamsDump
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "0.9.0", got.Version)
	assert.Equal(t, "deadbeef", got.GitSHA)
	assert.Equal(t, "site-a", got.SurveyID)
	assert.Equal(t, params, got.Params)
	assert.Contains(t, string(data), `"amplitude_threshold": 10000`)
}

func TestPlotFootprints(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, PlotFootprints(fsys, "footprints.png", "site-a", sampleFeatures()))

	data, err := fsys.ReadFile("footprints.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "not a PNG")
}

func TestPlotFootprints_Nothing(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	err := PlotFootprints(fsys, "footprints.png", "empty", []footprint.Feature{{DepthBand: "51-53"}})
	assert.ErrorIs(t, err, ErrNothingToPlot)
	assert.False(t, fsys.Exists("footprints.png"))
}
