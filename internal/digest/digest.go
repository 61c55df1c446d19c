// Package digest builds the weekly productivity report from the entity
// store and schedules its generation.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"daypilot/internal/store"
)

// Report is one generated digest.
type Report struct {
	UserID      string
	GeneratedAt time.Time
	Created     int
	Completed   int
	Overdue     int
	ByType      map[store.ItemType]int
	Upcoming    []*store.Item
	Text        string
}

// Build computes the trailing-week digest for a user as of now.
func Build(ctx context.Context, st *store.Store, userID string, now time.Time) (*Report, error) {
	items, err := st.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	start := now.AddDate(0, 0, -7)
	report := &Report{
		UserID:      userID,
		GeneratedAt: now,
		ByType:      make(map[store.ItemType]int),
	}

	var upcoming []*store.Item
	for _, it := range items {
		if !it.CreatedAt.Before(start) {
			report.Created++
			report.ByType[it.Type]++
		}
		if it.Status == store.StatusCompleted && !it.UpdatedAt.Before(start) {
			report.Completed++
		}
		if it.Overdue(now) {
			report.Overdue++
		}
		if it.DueAt != nil && it.Status != store.StatusCompleted && it.DueAt.After(now) {
			upcoming = append(upcoming, it)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueAt.Before(*upcoming[j].DueAt)
	})
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	report.Upcoming = upcoming
	report.Text = render(report)

	return report, nil
}

func render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Weekly digest for %s\n\n", r.GeneratedAt.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "Created this week: %d\n", r.Created)
	fmt.Fprintf(&b, "Completed this week: %d\n", r.Completed)
	fmt.Fprintf(&b, "Currently overdue: %d\n", r.Overdue)

	if len(r.ByType) > 0 {
		b.WriteString("\nNew items by type:\n")
		for _, t := range []store.ItemType{store.TypeTask, store.TypeMeeting, store.TypeSchool} {
			if n := r.ByType[t]; n > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", t, n)
			}
		}
	}

	if len(r.Upcoming) > 0 {
		b.WriteString("\nComing up:\n")
		for _, it := range r.Upcoming {
			fmt.Fprintf(&b, "- %s (due %s)\n", it.Title, it.DueAt.Format("Jan 2"))
		}
	}

	return b.String()
}
