package agent

import (
	"context"
	"sort"
	"time"

	"daypilot/internal/store"
)

// Snapshot is the point-in-time summary of a user's state fed into the
// prompt. It is computed eagerly and completely before prompt construction,
// so the prompt is deterministic given a fixed database state at a fixed
// instant. Nothing outside this struct may leak into the completion
// request.
type Snapshot struct {
	Now                  time.Time
	TotalItems           int
	CountsByType         map[store.ItemType]int
	CountsByStatus       map[store.Status]int
	OverdueCount         int
	Upcoming             []*store.Item // 5 soonest-due incomplete items
	Recent               []*store.Item // 5 most recently created items
	Labels               []*store.Label
	PendingNotifications int
}

// Assembler builds snapshots from the entity store. Read-only, no side
// effects.
type Assembler struct {
	store *store.Store
}

// NewAssembler creates an assembler over the entity store.
func NewAssembler(st *store.Store) *Assembler {
	return &Assembler{store: st}
}

// Snapshot assembles the user's current state.
func (a *Assembler) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	now := time.Now()

	items, err := a.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Now:            now,
		TotalItems:     len(items),
		CountsByType:   make(map[store.ItemType]int),
		CountsByStatus: make(map[store.Status]int),
	}

	var withDue []*store.Item
	for _, it := range items {
		snap.CountsByType[it.Type]++
		snap.CountsByStatus[it.Status]++
		if it.Overdue(now) {
			snap.OverdueCount++
		}
		if it.DueAt != nil && it.Status != store.StatusCompleted {
			withDue = append(withDue, it)
		}
	}

	sort.SliceStable(withDue, func(i, j int) bool {
		return withDue[i].DueAt.Before(*withDue[j].DueAt)
	})
	if len(withDue) > 5 {
		withDue = withDue[:5]
	}
	snap.Upcoming = withDue

	recent := make([]*store.Item, len(items))
	copy(recent, items)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	snap.Recent = recent

	labels, err := a.store.ListLabels(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap.Labels = labels

	notifications, err := a.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, n := range notifications {
		if n.DeliveredAt == nil {
			snap.PendingNotifications++
		}
	}

	return snap, nil
}
