package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/banshee-data/gpr.report/internal/gpr/footprint"
	"github.com/banshee-data/gpr.report/internal/gpr/survey"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded clustering run.
type Run struct {
	RunID        string          `json:"run_id"`
	SurveyID     string          `json:"survey_id"`
	ParamsJSON   json.RawMessage `json:"params_json"`
	StartedAtNs  int64           `json:"started_at_ns"`
	FinishedAtNs *int64          `json:"finished_at_ns,omitempty"`
	Summary      survey.Summary  `json:"summary"`
	FeatureCount int             `json:"feature_count"`
	// Error is set when the run was abandoned by FailRun.
	Error string `json:"error,omitempty"`
}

// RunStore provides persistence for runs and their features.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun records the start of a run and returns it with a fresh UUID.
func (s *RunStore) CreateRun(ctx context.Context, surveyID string, params survey.Params) (*Run, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	run := &Run{
		RunID:       uuid.New().String(),
		SurveyID:    surveyID,
		ParamsJSON:  paramsJSON,
		StartedAtNs: time.Now().UnixNano(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cluster_runs (run_id, survey_id, params_json, started_at_ns)
		VALUES (?, ?, ?, ?)
	`, run.RunID, run.SurveyID, string(run.ParamsJSON), run.StartedAtNs)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the summary and feature count of a completed run.
func (s *RunStore) FinishRun(ctx context.Context, runID string, summary survey.Summary, featureCount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cluster_runs SET
			finished_at_ns = ?, cluster_count = ?, kept_count = ?, voxel_count = ?,
			feature_count = ?, mean_volume = ?, median_volume = ?, p95_volume = ?, max_volume = ?
		WHERE run_id = ?
	`, time.Now().UnixNano(), summary.Clusters, summary.KeptClusters, summary.Voxels,
		featureCount, summary.MeanVolume, summary.MedianVolume, summary.P95Volume, summary.MaxVolume,
		runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// FailRun marks a run as finished with an error. Features already stored
// for the run are removed.
func (s *RunStore) FailRun(ctx context.Context, runID string, cause error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fail: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE cluster_runs SET finished_at_ns = ?, error_message = ?, feature_count = 0
		WHERE run_id = ?
	`, time.Now().UnixNano(), cause.Error(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cluster_features WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete features: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fail: %w", err)
	}
	return nil
}

// InsertFeatures appends features to a run in one transaction, keeping
// their order.
func (s *RunStore) InsertFeatures(ctx context.Context, runID string, features []footprint.Feature) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM cluster_features WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return fmt.Errorf("next feature seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cluster_features (
			feature_id, run_id, seq, cluster_index, volume, depth_band,
			mean_amplitude, area, wkt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range features {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, next+i, f.ClusterIndex, f.Volume, f.DepthBand,
			f.MeanAmplitude, f.Area(), f.WKT(),
		); err != nil {
			return fmt.Errorf("insert feature %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Features returns the features of a run in insertion order.
func (s *RunStore) Features(ctx context.Context, runID string) ([]footprint.Feature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cluster_index, volume, depth_band, mean_amplitude, wkt
		FROM cluster_features
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var features []footprint.Feature
	for rows.Next() {
		var (
			f    footprint.Feature
			text string
		)
		if err := rows.Scan(&f.ClusterIndex, &f.Volume, &f.DepthBand, &f.MeanAmplitude, &text); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		f.Footprint, err = parseFootprint(text)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// GetRun loads one run.
func (s *RunStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, runSelect+` WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first. An empty surveyID
// lists runs of every survey.
func (s *RunStore) ListRuns(ctx context.Context, surveyID string, limit int) ([]Run, error) {
	query := runSelect
	args := []any{}
	if surveyID != "" {
		query += ` WHERE survey_id = ?`
		args = append(args, surveyID)
	}
	query += ` ORDER BY started_at_ns DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

const runSelect = `
	SELECT run_id, survey_id, params_json, started_at_ns, finished_at_ns,
		cluster_count, kept_count, voxel_count, feature_count,
		mean_volume, median_volume, p95_volume, max_volume, error_message
	FROM cluster_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		params   string
		finished sql.NullInt64
		failure  sql.NullString
	)
	if err := row.Scan(&run.RunID, &run.SurveyID, &params, &run.StartedAtNs, &finished,
		&run.Summary.Clusters, &run.Summary.KeptClusters, &run.Summary.Voxels, &run.FeatureCount,
		&run.Summary.MeanVolume, &run.Summary.MedianVolume, &run.Summary.P95Volume, &run.Summary.MaxVolume,
		&failure,
	); err != nil {
		return nil, err
	}
	run.ParamsJSON = json.RawMessage(params)
	if finished.Valid {
		run.FinishedAtNs = &finished.Int64
	}
	run.Error = failure.String
	return &run, nil
}

// parseFootprint reads a stored WKT footprint back into a MultiPolygon.
func parseFootprint(text string) (orb.MultiPolygon, error) {
	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("parse footprint: %w", err)
	}
	switch g := g.(type) {
	case orb.MultiPolygon:
		return g, nil
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	default:
		return nil, fmt.Errorf("parse footprint: unexpected geometry %s", g.GeoJSONType())
	}
}
