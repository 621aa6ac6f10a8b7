package internal

import "time"

// ActiveWindow is the trailing period inside which an account counts as
// active.
const ActiveWindow = 30 * 24 * time.Hour

// Snapshot is a fully-computed, immutable aggregate over one extraction.
// It is never persisted and never partially updated: consumers replace it
// as a whole.
type Snapshot struct {
	UsersTotal    int
	UsersActive   int
	ChatsTotal    int
	MessagesTotal int
	ModelUsage    map[string]int
	UserMessages  map[string]int
	TakenAt       time.Time
}

// Aggregate computes a Snapshot from extracted accounts and sessions. It is
// a pure function of its inputs: no I/O, deterministic for a fixed now.
//
// Per-model attribution is per-session: every model listed on a session is
// credited with the session's full assistant-message count. A session that
// used several models is therefore counted once per model. This matches the
// upstream accounting and is a known double-counting surface; do not "fix"
// it here without changing the dashboards that consume it.
func Aggregate(accounts []Account, sessions []ChatSession, now time.Time) *Snapshot {
	snap := &Snapshot{
		UsersTotal:   len(accounts),
		ChatsTotal:   len(sessions),
		ModelUsage:   make(map[string]int),
		UserMessages: make(map[string]int),
		TakenAt:      now,
	}

	names := make(map[string]string, len(accounts))
	for _, acct := range accounts {
		names[acct.ID] = acct.Name
		if acct.LastActiveAt == 0 {
			continue
		}
		if now.Sub(acct.LastActive()) <= ActiveWindow {
			snap.UsersActive++
		}
	}

	for _, session := range sessions {
		count := session.Payload.AssistantMessages()
		if count == 0 {
			continue
		}
		snap.MessagesTotal += count

		// Orphaned owner: the account was deleted out from under the
		// session. Its messages still count globally and per model, just
		// not per user.
		if name, ok := names[session.AccountID]; ok {
			if name == "" {
				name = "Unknown"
			}
			snap.UserMessages[name] += count
		}

		for _, model := range session.Payload.DistinctModels() {
			snap.ModelUsage[model] += count
		}
	}

	return snap
}
