package internal

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens the chat application's SQLite database in read-only
// mode. The upstream application may hold the write lock concurrently, so
// this connection must never attempt a write.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}
