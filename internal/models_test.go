package internal

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantErr       bool
		wantAssistant int
		wantModels    []string
	}{
		{
			name:          "valid payload",
			raw:           `{"messages":[{"role":"user"},{"role":"assistant"}],"models":["m1"]}`,
			wantAssistant: 1,
			wantModels:    []string{"m1"},
		},
		{
			name: "empty blob",
			raw:  "",
		},
		{
			name: "empty object",
			raw:  `{}`,
		},
		{
			name:    "malformed JSON",
			raw:     `{not json`,
			wantErr: true,
		},
		{
			name:    "wrong shape",
			raw:     `{"messages":"oops"}`,
			wantErr: true,
		},
		{
			name:          "unknown roles tolerated",
			raw:           `{"messages":[{"role":"system"},{"role":"assistant"},{"role":""}]}`,
			wantAssistant: 1,
		},
		{
			name:          "extra fields ignored",
			raw:           `{"messages":[{"role":"assistant","content":"hi","id":"x"}],"models":["m1"],"title":"t"}`,
			wantAssistant: 1,
			wantModels:    []string{"m1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParsePayload("chat1", tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("ParsePayload() error = %T, want *DecodeError", err)
				}
				if decodeErr.ChatID != "chat1" {
					t.Errorf("DecodeError.ChatID = %q, want %q", decodeErr.ChatID, "chat1")
				}
				return
			}
			if got := payload.AssistantMessages(); got != tt.wantAssistant {
				t.Errorf("AssistantMessages() = %d, want %d", got, tt.wantAssistant)
			}
			if got := payload.DistinctModels(); !reflect.DeepEqual(got, tt.wantModels) {
				t.Errorf("DistinctModels() = %v, want %v", got, tt.wantModels)
			}
		})
	}
}

func TestDistinctModels(t *testing.T) {
	tests := []struct {
		name   string
		models []string
		want   []string
	}{
		{"nil", nil, nil},
		{"duplicates removed", []string{"m1", "m2", "m1", "m2"}, []string{"m1", "m2"}},
		{"order preserved", []string{"m2", "m1"}, []string{"m2", "m1"}},
		{"empty names dropped", []string{"", "m1"}, []string{"m1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Payload{Models: tt.models}
			if got := payload.DistinctModels(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DistinctModels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccountLastActive(t *testing.T) {
	never := Account{ID: "u1"}
	if !never.LastActive().IsZero() {
		t.Errorf("LastActive() for never-active account = %v, want zero time", never.LastActive())
	}

	ts := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	active := Account{ID: "u2", LastActiveAt: ts.Unix()}
	if !active.LastActive().Equal(ts) {
		t.Errorf("LastActive() = %v, want %v", active.LastActive(), ts)
	}
}

func TestSessionUpdatedFallback(t *testing.T) {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	session := ChatSession{ID: "c1", CreatedAt: created.Unix()}
	if !session.Updated().Equal(created) {
		t.Errorf("Updated() = %v, want creation time %v", session.Updated(), created)
	}
}
