package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iksnae/webui-metrics/testutil"
)

func newTestPublisher(t *testing.T) (*Publisher, *Storage) {
	t.Helper()
	db := testutil.CreateTestDB(t, time.Now().Unix())
	t.Cleanup(func() { db.Close() })
	storage := NewStorage(db, ":memory:")
	return NewPublisher(storage, time.Second, 5*time.Second), storage
}

func TestPublisherRefresh(t *testing.T) {
	publisher, _ := newTestPublisher(t)

	if publisher.Current() != nil {
		t.Fatal("Current() should be nil before the first refresh")
	}

	if err := publisher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	snap := publisher.Current()
	if snap == nil {
		t.Fatal("Current() is nil after a successful refresh")
	}
	if snap.UsersTotal != 2 {
		t.Errorf("UsersTotal = %d, want 2", snap.UsersTotal)
	}
	if snap.UsersActive != 1 {
		t.Errorf("UsersActive = %d, want 1", snap.UsersActive)
	}
	if snap.ChatsTotal != 3 {
		t.Errorf("ChatsTotal = %d, want 3", snap.ChatsTotal)
	}
	if snap.MessagesTotal != 3 {
		t.Errorf("MessagesTotal = %d, want 3", snap.MessagesTotal)
	}
}

func TestPublisherCollect(t *testing.T) {
	publisher, _ := newTestPublisher(t)
	if err := publisher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	expected := `
# HELP webui_users_total Total registered users
# TYPE webui_users_total gauge
webui_users_total 2
# HELP webui_messages_total Total AI responses
# TYPE webui_messages_total gauge
webui_messages_total 3
# HELP webui_model_usage AI responses per model
# TYPE webui_model_usage gauge
webui_model_usage{model="m1"} 3
webui_model_usage{model="m2"} 1
# HELP webui_user_messages AI responses per user
# TYPE webui_user_messages gauge
webui_user_messages{user_name="alice"} 2
webui_user_messages{user_name="bob"} 1
# HELP webui_skipped_chat_rows Chat rows skipped as malformed in the last refresh
# TYPE webui_skipped_chat_rows gauge
webui_skipped_chat_rows 1
`
	err := promtest.CollectAndCompare(publisher, strings.NewReader(expected),
		"webui_users_total",
		"webui_messages_total",
		"webui_model_usage",
		"webui_user_messages",
		"webui_skipped_chat_rows",
	)
	if err != nil {
		t.Errorf("CollectAndCompare() mismatch: %v", err)
	}
}

func TestPublisherCollectBeforeFirstRefresh(t *testing.T) {
	publisher, _ := newTestPublisher(t)

	// Only the refresh-error counter is exposed until a snapshot exists.
	if got := promtest.CollectAndCount(publisher); got != 1 {
		t.Errorf("CollectAndCount() = %d metrics before first refresh, want 1", got)
	}
}

func TestPublisherKeepsLastKnownGood(t *testing.T) {
	db := testutil.CreateTestDB(t, time.Now().Unix())
	storage := NewStorage(db, ":memory:")
	publisher := NewPublisher(storage, time.Second, 5*time.Second)

	if err := publisher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	good := publisher.Current()

	// Kill the store out from under the publisher.
	db.Close()

	if err := publisher.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() against a closed store should fail")
	}

	if publisher.Current() != good {
		t.Error("failed refresh replaced the last-known-good snapshot")
	}

	expected := `
# HELP webui_refresh_errors_total Refresh cycles that failed against the source store
# TYPE webui_refresh_errors_total counter
webui_refresh_errors_total 1
`
	err := promtest.CollectAndCompare(publisher, strings.NewReader(expected),
		"webui_refresh_errors_total")
	if err != nil {
		t.Errorf("CollectAndCompare() mismatch: %v", err)
	}
}

func TestPublisherRunStopsOnCancel(t *testing.T) {
	publisher, _ := newTestPublisher(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		publisher.Run(ctx)
		close(done)
	}()

	// Let the initial refresh land.
	deadline := time.After(2 * time.Second)
	for publisher.Current() == nil {
		select {
		case <-deadline:
			t.Fatal("Run() never published a snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop on context cancellation")
	}
}
