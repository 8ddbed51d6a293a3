package db

import "database/sql"

// SchemaSQL is the complete schema for a fresh journal.
// It reflects the state after all migrations.
//
// Tests load it through GetSchemaSQL() and never hardcode CREATE TABLE
// statements, so repository code referencing a missing column fails fast.
//
// When adding columns:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Runs (one row per sync invocation)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL CHECK(command IN ('pull', 'export', 'continue', 'abort')),
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	status INTEGER NOT NULL DEFAULT 1,
	marker_before TEXT,
	marker_after TEXT,
	applied INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	conflicted INTEGER NOT NULL DEFAULT 0,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// InitSchema creates the schema on a fresh database and migrates an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(conn)
	}

	// Fresh install: create the modern schema and mark every migration applied.
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(conn); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
