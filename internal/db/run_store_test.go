package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
	"github.com/banshee-data/gpr.report/internal/gpr/survey"
)

func square(x, y, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}, {x, y},
	}}
}

func TestRunStore_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := db.Runs()

	params := survey.DefaultParams()
	run, err := store.CreateRun(ctx, "site-a", params)
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
	assert.Nil(t, run.FinishedAtNs)

	var decoded survey.Params
	require.NoError(t, json.Unmarshal(run.ParamsJSON, &decoded))
	assert.Equal(t, params, decoded)

	summary := survey.Summary{Clusters: 4, KeptClusters: 2, Voxels: 180, MeanVolume: 45, MedianVolume: 40, P95Volume: 90, MaxVolume: 95}
	require.NoError(t, store.FinishRun(ctx, run.RunID, summary, 3))

	got, err := store.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "site-a", got.SurveyID)
	assert.Equal(t, summary, got.Summary)
	assert.Equal(t, 3, got.FeatureCount)
	require.NotNil(t, got.FinishedAtNs)
	assert.GreaterOrEqual(t, *got.FinishedAtNs, got.StartedAtNs)
	assert.JSONEq(t, string(run.ParamsJSON), string(got.ParamsJSON))
}

func TestRunStore_Features(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := db.Runs()

	run, err := store.CreateRun(ctx, "site-a", survey.DefaultParams())
	require.NoError(t, err)

	first := []footprint.Feature{
		{ClusterIndex: 0, Volume: 60, DepthBand: "51-53", MeanAmplitude: 12000,
			Footprint: orb.MultiPolygon{square(0, 0, 2), square(5, 5, 1)}},
		{ClusterIndex: 0, Volume: 60, DepthBand: "54-56", MeanAmplitude: -15000,
			Footprint: orb.MultiPolygon{square(0, 0, 1)}},
	}
	second := []footprint.Feature{
		{ClusterIndex: 1, Volume: 80, DepthBand: "51-53", MeanAmplitude: 20000,
			Footprint: orb.MultiPolygon{square(10, 10, 3)}},
	}
	require.NoError(t, store.InsertFeatures(ctx, run.RunID, first))
	require.NoError(t, store.InsertFeatures(ctx, run.RunID, second))

	got, err := store.Features(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, append(first, second...), got)

	var area float64
	require.NoError(t, db.QueryRow(
		`SELECT area FROM cluster_features WHERE run_id = ? AND seq = 0`, run.RunID).Scan(&area))
	assert.InDelta(t, 5.0, area, 1e-9)

	other, err := store.Features(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRunStore_FeaturesNeedRun(t *testing.T) {
	db := newTestDB(t)
	err := db.Runs().InsertFeatures(context.Background(), "missing", []footprint.Feature{
		{DepthBand: "51-53", Footprint: orb.MultiPolygon{square(0, 0, 1)}},
	})
	assert.Error(t, err, "foreign key should reject features of an unknown run")
}

func TestRunStore_FailRun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := db.Runs()

	failed, err := store.CreateRun(ctx, "site-a", survey.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, store.InsertFeatures(ctx, failed.RunID, []footprint.Feature{
		{DepthBand: "51-53", Footprint: orb.MultiPolygon{square(0, 0, 1)}},
	}))
	require.NoError(t, store.FailRun(ctx, failed.RunID, errors.New("reading rows (after 12): disk gone")))

	pending, err := store.CreateRun(ctx, "site-a", survey.DefaultParams())
	require.NoError(t, err)

	got, err := store.GetRun(ctx, failed.RunID)
	require.NoError(t, err)
	require.NotNil(t, got.FinishedAtNs)
	assert.Equal(t, "reading rows (after 12): disk gone", got.Error)
	assert.Equal(t, 0, got.FeatureCount)

	features, err := store.Features(ctx, failed.RunID)
	require.NoError(t, err)
	assert.Empty(t, features)

	// A run still in progress is distinguishable from a failed one.
	inProgress, err := store.GetRun(ctx, pending.RunID)
	require.NoError(t, err)
	assert.Nil(t, inProgress.FinishedAtNs)
	assert.Empty(t, inProgress.Error)

	err = store.FailRun(ctx, "missing", errors.New("x"))
	assert.True(t, errors.Is(err, ErrRunNotFound), "FailRun: %v", err)
}

func TestRunStore_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Runs().GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound), "GetRun: %v", err)

	err = db.Runs().FinishRun(ctx, "missing", survey.Summary{}, 0)
	assert.True(t, errors.Is(err, ErrRunNotFound), "FinishRun: %v", err)
}

func TestRunStore_ListRuns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := db.Runs()

	var ids []string
	for _, sid := range []string{"a", "b", "a"} {
		run, err := store.CreateRun(ctx, sid, survey.DefaultParams())
		require.NoError(t, err)
		ids = append(ids, run.RunID)
		time.Sleep(time.Millisecond)
	}

	all, err := store.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].RunID, "newest first")

	onlyA, err := store.ListRuns(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, []string{ids[2], ids[0]}, []string{onlyA[0].RunID, onlyA[1].RunID})

	limited, err := store.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestParseFootprint(t *testing.T) {
	mp, err := parseFootprint("POLYGON((0 0,1 0,1 1,0 0))")
	require.NoError(t, err)
	assert.Len(t, mp, 1)

	_, err = parseFootprint("POINT(1 2)")
	assert.Error(t, err)

	_, err = parseFootprint("not wkt")
	assert.Error(t, err)
}
