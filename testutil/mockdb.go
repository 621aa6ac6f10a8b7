package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the chat
// application's schema for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	createSchema(t, db)
	return db
}

// CreateFileDB creates a file-backed SQLite database with the chat
// application's schema at path
func CreateFileDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to create database file: %v", err)
	}
	defer db.Close()
	createSchema(t, db)
}

func createSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	schema := []string{
		`CREATE TABLE IF NOT EXISTS user (
			id TEXT PRIMARY KEY,
			name TEXT,
			last_active_at INTEGER,
			created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS chat (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			chat TEXT,
			created_at INTEGER,
			updated_at INTEGER
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("Failed to create schema: %v", err)
		}
	}
}

// SeedUser inserts a user row. lastActive may be nil for never-active
// accounts.
func SeedUser(t *testing.T, db *sql.DB, id, name string, lastActive *int64, created int64) {
	t.Helper()
	var active any
	if lastActive != nil {
		active = *lastActive
	}
	if _, err := db.Exec(
		"INSERT INTO user (id, name, last_active_at, created_at) VALUES (?, ?, ?, ?)",
		id, name, active, created); err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

// SeedChat inserts a chat row with a raw payload blob
func SeedChat(t *testing.T, db *sql.DB, id, userID, blob string, created, updated int64) {
	t.Helper()
	if _, err := db.Exec(
		"INSERT INTO chat (id, user_id, chat, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, userID, blob, created, updated); err != nil {
		t.Fatalf("Failed to seed chat %s: %v", id, err)
	}
}

// CreateTestDB creates an in-memory database with a small, representative
// data set: two users (one recently active), two well-formed chats and one
// corrupt one.
func CreateTestDB(t *testing.T, now int64) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	tenDaysAgo := now - 10*24*3600
	fortyDaysAgo := now - 40*24*3600

	SeedUser(t, db, "u1", "alice", &tenDaysAgo, fortyDaysAgo)
	SeedUser(t, db, "u2", "bob", &fortyDaysAgo, fortyDaysAgo)

	SeedChat(t, db, "c1", "u1",
		`{"messages":[{"role":"user"},{"role":"assistant"},{"role":"assistant"}],"models":["m1"]}`,
		tenDaysAgo, tenDaysAgo)
	SeedChat(t, db, "c2", "u2",
		`{"messages":[{"role":"user"},{"role":"assistant"}],"models":["m1","m2"]}`,
		fortyDaysAgo, fortyDaysAgo)
	SeedChat(t, db, "c3", "u1", `{not json`, tenDaysAgo, tenDaysAgo)

	return db
}
