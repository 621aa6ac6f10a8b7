package internal

import "time"

// CreateTestAccount creates a test account active at the given time
func CreateTestAccount(id, name string, lastActive time.Time) Account {
	return Account{
		ID:           id,
		Name:         name,
		LastActiveAt: lastActive.Unix(),
		CreatedAt:    lastActive.Add(-24 * time.Hour).Unix(),
	}
}

// CreateTestSession creates a test session with the given roles and models
func CreateTestSession(id, accountID string, roles []string, models []string) ChatSession {
	messages := make([]Message, len(roles))
	for i, role := range roles {
		messages[i] = Message{Role: role}
	}
	return ChatSession{
		ID:        id,
		AccountID: accountID,
		Payload: Payload{
			Messages: messages,
			Models:   models,
		},
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}
}
