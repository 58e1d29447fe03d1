package database

import (
	"database/sql"
	"strings"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// InitDB initializes and returns a database connection. The schema is
// embedded in the binary so the server can run from any directory.
func InitDB(dataSourceName string) (*sql.DB, error) {
	// SQLite does not enforce foreign keys unless asked to, and a
	// PRAGMA exec'd through a pooled *sql.DB reaches only whichever
	// connection runs it. The DSN option applies to every connection
	// the pool opens; the rsvps table relies on it to reject unknown
	// player/game references.
	sep := "?"
	if strings.ContainsRune(dataSourceName, '?') {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dataSourceName+sep+"_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if dataSourceName == ":memory:" {
		// Every new pooled connection to :memory: opens its own empty
		// database, so the pool is pinned to a single connection.
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
