package internal

import (
	"context"
	"database/sql"
	"time"
)

// TimeRange is a closed interval used to scope session extraction.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts (unix seconds) falls inside the range.
func (r TimeRange) Contains(ts int64) bool {
	t := time.Unix(ts, 0)
	return !t.Before(r.Start) && !t.After(r.End)
}

// Storage extracts accounts and chat sessions from the source database.
// All methods are read-only and idempotent.
type Storage struct {
	db      *sql.DB
	path    string
	skipped int
}

// NewStorage creates a new Storage instance
func NewStorage(db *sql.DB, path string) *Storage {
	return &Storage{db: db, path: path}
}

// LoadAccounts loads every account from the user table. Accounts are always
// loaded in full; time windows only scope sessions.
func (s *Storage) LoadAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, last_active_at, created_at FROM user")
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "query", Err: err}
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var (
			acct       Account
			name       sql.NullString
			lastActive sql.NullInt64
			created    sql.NullInt64
		)
		if err := rows.Scan(&acct.ID, &name, &lastActive, &created); err != nil {
			return nil, &StoreError{Path: s.path, Op: "scan", Err: err}
		}
		acct.Name = name.String
		acct.LastActiveAt = lastActive.Int64
		acct.CreatedAt = created.Int64
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Path: s.path, Op: "scan", Err: err}
	}

	return accounts, nil
}

// LoadSessions loads chat sessions, decoding each row's JSON payload. When
// window is non-nil only sessions created inside it are returned.
//
// A payload that fails to decode does not abort extraction: the session is
// kept with an empty payload and the skip is counted (see SkippedRows).
func (s *Storage) LoadSessions(ctx context.Context, window *TimeRange) ([]ChatSession, error) {
	query := "SELECT id, user_id, chat, created_at, updated_at FROM chat"
	var args []any
	if window != nil {
		query += " WHERE created_at >= ? AND created_at <= ?"
		args = append(args, window.Start.Unix(), window.End.Unix())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "query", Err: err}
	}
	defer rows.Close()

	s.skipped = 0
	var sessions []ChatSession
	for rows.Next() {
		var (
			session ChatSession
			owner   sql.NullString
			blob    sql.NullString
			created sql.NullInt64
			updated sql.NullInt64
		)
		if err := rows.Scan(&session.ID, &owner, &blob, &created, &updated); err != nil {
			return nil, &StoreError{Path: s.path, Op: "scan", Err: err}
		}
		session.AccountID = owner.String
		session.CreatedAt = created.Int64
		session.UpdatedAt = updated.Int64

		payload, err := ParsePayload(session.ID, blob.String)
		if err != nil {
			LogWarn("Skipping corrupt chat payload: %v", err)
			s.skipped++
		}
		session.Payload = payload

		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Path: s.path, Op: "scan", Err: err}
	}

	return sessions, nil
}

// SkippedRows returns the number of payloads skipped as malformed during
// the most recent LoadSessions call.
func (s *Storage) SkippedRows() int {
	return s.skipped
}
