package internal

import (
	"encoding/json"
	"time"
)

// Message roles as stored in the chat payload. Roles outside this set are
// kept but ignored by the aggregator.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Account represents a row from the user table
type Account struct {
	ID           string
	Name         string
	LastActiveAt int64 // unix seconds, 0 = never active
	CreatedAt    int64 // unix seconds
}

// LastActive returns the last-active timestamp, or the zero time if the
// account has never been active.
func (a *Account) LastActive() time.Time {
	if a.LastActiveAt == 0 {
		return time.Time{}
	}
	return time.Unix(a.LastActiveAt, 0)
}

// ChatSession represents a row from the chat table. AccountID is a
// non-owning reference: the account may have been deleted independently.
type ChatSession struct {
	ID        string
	AccountID string
	Payload   Payload
	CreatedAt int64 // unix seconds
	UpdatedAt int64 // unix seconds
}

// Created returns the session's creation timestamp.
func (s *ChatSession) Created() time.Time {
	return time.Unix(s.CreatedAt, 0)
}

// Updated returns the session's last-update timestamp, falling back to
// creation time when unset.
func (s *ChatSession) Updated() time.Time {
	if s.UpdatedAt == 0 {
		return s.Created()
	}
	return time.Unix(s.UpdatedAt, 0)
}

// Payload is the decoded structure held inside a chat session's JSON blob.
// The upstream application owns this schema and may evolve it, so every
// field is optional.
type Payload struct {
	Messages []Message `json:"messages,omitempty"`
	Models   []string  `json:"models,omitempty"`
}

// Message represents a single message inside a payload. Content is ignored
// by this engine; only the role matters for aggregation.
type Message struct {
	Role string `json:"role"`
}

// ParsePayload decodes a chat session's JSON blob into a Payload.
//
// An empty blob decodes to an empty payload. A malformed blob returns a
// DecodeError; callers are expected to skip the row and keep going rather
// than abort extraction.
func ParsePayload(chatID, raw string) (Payload, error) {
	var payload Payload
	if raw == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Payload{}, &DecodeError{ChatID: chatID, Err: err}
	}
	return payload, nil
}

// AssistantMessages returns the number of assistant-role messages in the
// payload.
func (p Payload) AssistantMessages() int {
	n := 0
	for _, m := range p.Messages {
		if m.Role == RoleAssistant {
			n++
		}
	}
	return n
}

// DistinctModels returns the payload's model list with duplicates removed,
// preserving first-seen order.
func (p Payload) DistinctModels() []string {
	if len(p.Models) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(p.Models))
	models := make([]string, 0, len(p.Models))
	for _, m := range p.Models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		models = append(models, m)
	}
	return models
}
