package internal

import (
	"fmt"
	"time"
)

// StoreError represents a failure to reach the source database: the file is
// missing, locked by the writer, or a query timed out. Callers decide the
// retry policy.
type StoreError struct {
	Path string
	Op   string // "open", "query", "scan"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DecodeError represents a malformed chat payload on a single row. It is
// never fatal: the row is skipped and counted.
type DecodeError struct {
	ChatID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error [chat %s]: %v", e.ChatID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DateError represents an unparseable report date argument.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// RangeError represents an inverted report date range (end before start).
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}
