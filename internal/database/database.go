package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool, creating parent directories
// as needed.
func New(dataSourceName string) (*sql.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && dataSourceName != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	// sqlite supports a single writer; one connection avoids SQLITE_BUSY
	// under concurrent requests and makes :memory: databases usable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
//
// The UNIQUE constraint on dumps.public_id is load-bearing: the allocator's
// pre-check is advisory only, and the insert path relies on this constraint
// to reject a concurrent duplicate.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		website TEXT NOT NULL DEFAULT '',
		avatar BLOB,
		views INTEGER NOT NULL DEFAULT 0,
		joined DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dumps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '' COLLATE NOCASE,
		title TEXT NOT NULL DEFAULT '',
		contents TEXT NOT NULL DEFAULT '',
		exposure TEXT NOT NULL DEFAULT 'PUBLIC',
		type TEXT NOT NULL DEFAULT '',
		views INTEGER NOT NULL DEFAULT 0,
		expiration DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_dumps_expiration ON dumps(expiration) WHERE expiration IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_dumps_username ON dumps(username);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		dump_public_id TEXT,
		created_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
