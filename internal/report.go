package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const dateLayout = "2006-01-02"

// ParseRange parses a pair of YYYY-MM-DD dates into an inclusive window.
// The end date is extended to the last second of its day. Returns a
// DateError on an unparseable date and a RangeError when end < start.
func ParseRange(startStr, endStr string) (TimeRange, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return TimeRange{}, &DateError{Input: startStr, Err: err}
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return TimeRange{}, &DateError{Input: endStr, Err: err}
	}
	if end.Before(start) {
		return TimeRange{}, &RangeError{Start: start, End: end}
	}
	end = end.Add(24*time.Hour - time.Second)
	return TimeRange{Start: start, End: end}, nil
}

// ParseMonth expands a YYYY-MM shorthand into the month's first day at
// midnight through its last day at 23:59:59.
func ParseMonth(monthStr string) (TimeRange, error) {
	start, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return TimeRange{}, &DateError{Input: monthStr, Err: err}
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return TimeRange{Start: start, End: end}, nil
}

// CapEnd clamps the window's end to now. The store has no future data, so
// a month that is still in progress reports up to the present.
func (r TimeRange) CapEnd(now time.Time) TimeRange {
	if r.End.After(now) {
		r.End = now
	}
	return r
}

// Report is a date-scoped KPI report ready for rendering.
type Report struct {
	Window  TimeRange
	Snap    *Snapshot
	Latency *float64 // avg response seconds, supplied externally; nil = N/A
}

// GenerateReport extracts and aggregates sessions inside window. The
// recency check for active users is evaluated against the window's end,
// not wall-clock time, so historical months report historical activity.
func GenerateReport(ctx context.Context, storage *Storage, window TimeRange) (Report, error) {
	accounts, err := storage.LoadAccounts(ctx)
	if err != nil {
		return Report{}, err
	}
	sessions, err := storage.LoadSessions(ctx, &window)
	if err != nil {
		return Report{}, err
	}
	snap := Aggregate(accounts, sessions, window.End)
	return Report{Window: window, Snap: snap}, nil
}

// Render formats the report as plain text for stdout.
func (r Report) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "KPI REPORT: %s to %s\n",
		r.Window.Start.Format(dateLayout), r.Window.End.Format(dateLayout))
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintf(&b, "KEY METRICS:\n")
	fmt.Fprintf(&b, "  Active Users:              %12s\n", formatCount(r.Snap.UsersActive))
	fmt.Fprintf(&b, "  Chat Sessions:             %12s\n", formatCount(r.Snap.ChatsTotal))
	fmt.Fprintf(&b, "  Assistant Messages:        %12s\n", formatCount(r.Snap.MessagesTotal))
	if r.Latency != nil {
		fmt.Fprintf(&b, "  Avg Response Time:         %11.3fs\n", *r.Latency)
	} else {
		fmt.Fprintf(&b, "  Avg Response Time:         %12s\n", "N/A")
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "RESPONSES BY MODEL:\n")
	usage := RankCounts(r.Snap.ModelUsage)
	if len(usage) == 0 {
		fmt.Fprintf(&b, "  No data available\n")
	} else {
		total := 0
		for _, u := range usage {
			total += u.Count
		}
		for _, u := range usage {
			pct := 0.0
			if total > 0 {
				pct = float64(u.Count) / float64(total) * 100
			}
			fmt.Fprintf(&b, "  %-42s %10s (%5.1f%%)\n",
				truncateModel(u.Label), formatCount(u.Count), pct)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	return b.String()
}

// LabelCount is one row of a ranked breakdown (per model, per user).
type LabelCount struct {
	Label string
	Count int
}

// RankCounts sorts a keyed counter by count descending, then by label so
// equal counts render in a stable order.
func RankCounts(counts map[string]int) []LabelCount {
	ranked := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		ranked = append(ranked, LabelCount{Label: label, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Label < ranked[j].Label
	})
	return ranked
}

func truncateModel(model string) string {
	if len(model) <= 40 {
		return model
	}
	return model[:37] + "..."
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}
