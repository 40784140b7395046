package db

import (
	"io/fs"
	"path/filepath"
	"testing"
)

func TestNewDB_MigratesToLatest(t *testing.T) {
	db := newTestDB(t)

	migFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}
	version, dirty, err := db.MigrateVersion(migFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 3 || dirty {
		t.Errorf("version = %d dirty = %v, want 3 clean", version, dirty)
	}

	for _, table := range []string{"survey_traces", "cluster_runs", "cluster_features"} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}

	// Running again is a no-op.
	if err := db.MigrateUp(migFS); err != nil {
		t.Errorf("second MigrateUp failed: %v", err)
	}
}

func TestOpenDB_Pragmas(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "pragmas.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	migFS, _ := getMigrationsFS()
	version, _, err := db.MigrateVersion(migFS)
	if err != nil || version != 0 {
		t.Errorf("fresh OpenDB version = %d, %v; want 0, nil", version, err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := newTestDB(t)
	migFS, _ := getMigrationsFS()

	if err := db.MigrateDown(migFS); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	version, _, err := db.MigrateVersion(migFS)
	if err != nil || version != 2 {
		t.Fatalf("version after down = %d, %v; want 2", version, err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('cluster_runs') WHERE name='error_message'`).Scan(&n)
	if n != 0 {
		t.Error("error_message column should be dropped")
	}

	if err := db.MigrateDown(migFS); err != nil {
		t.Fatalf("second MigrateDown failed: %v", err)
	}
	version, _, err = db.MigrateVersion(migFS)
	if err != nil || version != 1 {
		t.Fatalf("version after second down = %d, %v; want 1", version, err)
	}
	db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cluster_runs'`).Scan(&n)
	if n != 0 {
		t.Error("cluster_runs should be dropped")
	}
}

func TestEmbeddedMigrationsFS(t *testing.T) {
	migFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS failed: %v", err)
	}
	entries, err := fs.ReadDir(migFS, ".")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("expected 6 migration files (3 up + 3 down), got %d", len(entries))
	}
}
