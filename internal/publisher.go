package internal

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersTotalDesc = prometheus.NewDesc(
		"webui_users_total", "Total registered users", nil, nil)
	usersActiveDesc = prometheus.NewDesc(
		"webui_users_active_30d", "Users active in last 30 days", nil, nil)
	chatsTotalDesc = prometheus.NewDesc(
		"webui_chats_total", "Total chat sessions", nil, nil)
	messagesTotalDesc = prometheus.NewDesc(
		"webui_messages_total", "Total AI responses", nil, nil)
	modelUsageDesc = prometheus.NewDesc(
		"webui_model_usage", "AI responses per model", []string{"model"}, nil)
	userMessagesDesc = prometheus.NewDesc(
		"webui_user_messages", "AI responses per user", []string{"user_name"}, nil)

	skippedRowsDesc = prometheus.NewDesc(
		"webui_skipped_chat_rows", "Chat rows skipped as malformed in the last refresh", nil, nil)
	refreshErrorsDesc = prometheus.NewDesc(
		"webui_refresh_errors_total", "Refresh cycles that failed against the source store", nil, nil)
	lastRefreshDesc = prometheus.NewDesc(
		"webui_last_refresh_timestamp_seconds", "Unix time of the last successful refresh", nil, nil)
)

// Publisher holds the latest Snapshot and refreshes it on a fixed interval.
// It implements prometheus.Collector, so scrapes always serve the last
// published snapshot and never block on an in-flight refresh.
type Publisher struct {
	storage  *Storage
	interval time.Duration
	timeout  time.Duration

	mu          sync.RWMutex
	current     *Snapshot
	skipped     int
	refreshErrs int
	lastRefresh time.Time
}

// NewPublisher creates a Publisher refreshing every interval, with each
// refresh bounded by timeout against the source store.
func NewPublisher(storage *Storage, interval, timeout time.Duration) *Publisher {
	return &Publisher{
		storage:  storage,
		interval: interval,
		timeout:  timeout,
	}
}

// Refresh recomputes the snapshot from the source store and publishes it
// atomically. On failure the previous snapshot is left in place so the
// endpoint keeps serving last-known-good data.
func (p *Publisher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	accounts, err := p.storage.LoadAccounts(ctx)
	if err != nil {
		p.recordFailure(err)
		return err
	}
	sessions, err := p.storage.LoadSessions(ctx, nil)
	if err != nil {
		p.recordFailure(err)
		return err
	}

	snap := Aggregate(accounts, sessions, time.Now())

	p.mu.Lock()
	p.current = snap
	p.skipped = p.storage.SkippedRows()
	p.lastRefresh = snap.TakenAt
	p.mu.Unlock()

	LogDebug("Refreshed snapshot: %d users, %d chats, %d messages",
		snap.UsersTotal, snap.ChatsTotal, snap.MessagesTotal)
	return nil
}

func (p *Publisher) recordFailure(err error) {
	p.mu.Lock()
	p.refreshErrs++
	p.mu.Unlock()
	LogError("Refresh failed, serving last-known-good snapshot: %v", err)
}

// Current returns the last published snapshot, or nil before the first
// successful refresh.
func (p *Publisher) Current() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Run refreshes once immediately and then on every interval tick until ctx
// is cancelled. The loop is sequential: a tick that fires while a refresh
// is still running is dropped, never overlapped.
func (p *Publisher) Run(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		LogWarn("Initial refresh failed: %v", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
				LogWarn("Refresh failed: %v", err)
			}
		}
	}
}

// Describe implements prometheus.Collector.
func (p *Publisher) Describe(ch chan<- *prometheus.Desc) {
	ch <- usersTotalDesc
	ch <- usersActiveDesc
	ch <- chatsTotalDesc
	ch <- messagesTotalDesc
	ch <- modelUsageDesc
	ch <- userMessagesDesc
	ch <- skippedRowsDesc
	ch <- refreshErrorsDesc
	ch <- lastRefreshDesc
}

// Collect implements prometheus.Collector. It reads the last published
// snapshot under a read lock; it never touches the source store.
func (p *Publisher) Collect(ch chan<- prometheus.Metric) {
	p.mu.RLock()
	snap := p.current
	skipped := p.skipped
	refreshErrs := p.refreshErrs
	lastRefresh := p.lastRefresh
	p.mu.RUnlock()

	ch <- prometheus.MustNewConstMetric(
		refreshErrorsDesc, prometheus.CounterValue, float64(refreshErrs))

	if snap == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(
		usersTotalDesc, prometheus.GaugeValue, float64(snap.UsersTotal))
	ch <- prometheus.MustNewConstMetric(
		usersActiveDesc, prometheus.GaugeValue, float64(snap.UsersActive))
	ch <- prometheus.MustNewConstMetric(
		chatsTotalDesc, prometheus.GaugeValue, float64(snap.ChatsTotal))
	ch <- prometheus.MustNewConstMetric(
		messagesTotalDesc, prometheus.GaugeValue, float64(snap.MessagesTotal))
	for model, count := range snap.ModelUsage {
		ch <- prometheus.MustNewConstMetric(
			modelUsageDesc, prometheus.GaugeValue, float64(count), model)
	}
	for user, count := range snap.UserMessages {
		ch <- prometheus.MustNewConstMetric(
			userMessagesDesc, prometheus.GaugeValue, float64(count), user)
	}
	ch <- prometheus.MustNewConstMetric(
		skippedRowsDesc, prometheus.GaugeValue, float64(skipped))
	ch <- prometheus.MustNewConstMetric(
		lastRefreshDesc, prometheus.GaugeValue, float64(lastRefresh.Unix()))
}
