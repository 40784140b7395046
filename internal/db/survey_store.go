package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/banshee-data/gpr.report/internal/gpr/survey"
)

// SurveyStore persists the traces of one survey and streams them back as a
// survey.RowSource.
type SurveyStore struct {
	db       *sql.DB
	surveyID string
}

// NewSurveyStore creates a new SurveyStore.
func NewSurveyStore(db *sql.DB, surveyID string) *SurveyStore {
	return &SurveyStore{db: db, surveyID: surveyID}
}

// SurveyID returns the survey this store reads and writes.
func (s *SurveyStore) SurveyID() string { return s.surveyID }

// InsertRows writes rows in a single transaction. A row at an existing
// (longitudinal, transverse) position replaces the stored one.
func (s *SurveyStore) InsertRows(ctx context.Context, rows []survey.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO survey_traces (
			survey_id, longitudinal, transverse, x, y, first_depth, amplitudes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var x, y sql.NullFloat64
		if r.HasPosition {
			x = sql.NullFloat64{Float64: r.Position.X(), Valid: true}
			y = sql.NullFloat64{Float64: r.Position.Y(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			s.surveyID, r.Longitudinal, r.Transverse, x, y, r.FirstDepth, encodeAmplitudes(r.Amplitudes),
		); err != nil {
			return fmt.Errorf("insert trace (%d, %d): %w", r.Longitudinal, r.Transverse, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Count returns the number of stored traces.
func (s *SurveyStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM survey_traces WHERE survey_id = ?`, s.surveyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count traces: %w", err)
	}
	return n, nil
}

// ForEachRow implements survey.RowSource, yielding traces ordered by
// longitudinal then transverse index.
func (s *SurveyStore) ForEachRow(ctx context.Context, fn func(survey.Row) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT longitudinal, transverse, x, y, first_depth, amplitudes
		FROM survey_traces
		WHERE survey_id = ?
		ORDER BY longitudinal, transverse
	`, s.surveyID)
	if err != nil {
		return fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r    survey.Row
			x, y sql.NullFloat64
			blob []byte
		)
		if err := rows.Scan(&r.Longitudinal, &r.Transverse, &x, &y, &r.FirstDepth, &blob); err != nil {
			return fmt.Errorf("scan trace: %w", err)
		}
		if x.Valid && y.Valid {
			r.Position = orb.Point{x.Float64, y.Float64}
			r.HasPosition = true
		}
		r.Amplitudes, err = decodeAmplitudes(blob)
		if err != nil {
			return fmt.Errorf("trace (%d, %d): %w", r.Longitudinal, r.Transverse, err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListSurveys returns the distinct survey IDs with stored traces.
func (db *DB) ListSurveys(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT survey_id FROM survey_traces ORDER BY survey_id`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// encodeAmplitudes packs samples as little-endian int16.
func encodeAmplitudes(amps []int16) []byte {
	buf := make([]byte, 0, 2*len(amps))
	for _, a := range amps {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(a))
	}
	return buf
}

func decodeAmplitudes(blob []byte) ([]int16, error) {
	if len(blob)%2 != 0 {
		return nil, fmt.Errorf("amplitude blob has odd length %d", len(blob))
	}
	amps := make([]int16, len(blob)/2)
	for i := range amps {
		amps[i] = int16(binary.LittleEndian.Uint16(blob[2*i:]))
	}
	return amps, nil
}
