package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"daypilot/internal/llm"
	"daypilot/internal/store"
)

func TestBuildPrompt_SectionOrder(t *testing.T) {
	snap := &Snapshot{
		Now:            time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		CountsByType:   map[store.ItemType]int{},
		CountsByStatus: map[store.Status]int{},
	}
	prompt := BuildPrompt(snap)

	ctxIdx := strings.Index(prompt, "## Current context")
	actIdx := strings.Index(prompt, "## Actions")
	rulesIdx := strings.Index(prompt, "## Rules")
	if ctxIdx == -1 || actIdx == -1 || rulesIdx == -1 {
		t.Fatal("missing prompt section")
	}
	if !(ctxIdx < actIdx && actIdx < rulesIdx) {
		t.Error("sections out of order: context must precede actions, actions precede rules")
	}
}

func TestBuildPrompt_EnumeratesEveryAction(t *testing.T) {
	snap := &Snapshot{
		Now:            time.Now(),
		CountsByType:   map[store.ItemType]int{},
		CountsByStatus: map[store.Status]int{},
	}
	prompt := BuildPrompt(snap)

	for _, k := range allKinds {
		if !strings.Contains(prompt, `"action": "`+string(k)+`"`) {
			t.Errorf("prompt missing example for %s", k)
		}
	}
}

func TestActionExamples_CoverAllKinds(t *testing.T) {
	if len(actionExamples) != len(allKinds) {
		t.Fatalf("examples/kinds mismatch: %d vs %d", len(actionExamples), len(allKinds))
	}
	for _, k := range allKinds {
		example, ok := actionExamples[k]
		if !ok {
			t.Errorf("no example for %s", k)
			continue
		}
		// Every example must round-trip through the parser as itself.
		actions := Parse(example)
		if len(actions) != 1 || actions[0].Kind != k {
			t.Errorf("example for %s does not parse back to it: %v", k, actions)
		}
	}
}

func TestBuildPrompt_IsDeterministic(t *testing.T) {
	s := newTestStore(t)
	asm := NewAssembler(s)
	ctx := context.Background()

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seedItem(t, s, "u1", store.ItemInput{Title: "Essay", Type: store.TypeSchool, DueAt: &due})
	seedItem(t, s, "u1", store.ItemInput{Title: "Standup", Type: store.TypeMeeting})

	snap, err := asm.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	first := BuildPrompt(snap)
	second := BuildPrompt(snap)
	if first != second {
		t.Error("prompt not deterministic for a fixed snapshot")
	}
	if !strings.Contains(first, "Essay") || !strings.Contains(first, "Standup") {
		t.Error("prompt missing item context")
	}
}

func TestBuildMessages(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleAssistant, Content: "earlier answer"},
		{Role: llm.RoleSystem, Content: "stale system prompt"},
	}
	messages := BuildMessages("fresh system prompt", history, "new question")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != llm.RoleSystem || messages[0].Content != "fresh system prompt" {
		t.Error("system prompt must come first")
	}
	// Stale system entries in history are dropped, not duplicated.
	for _, m := range messages[1:] {
		if m.Role == llm.RoleSystem {
			t.Error("history system message leaked through")
		}
	}
	last := messages[len(messages)-1]
	if last.Role != llm.RoleUser || last.Content != "new question" {
		t.Error("user message must come last")
	}
}

func TestSnapshot_Assembly(t *testing.T) {
	s := newTestStore(t)
	asm := NewAssembler(s)
	ctx := context.Background()

	past := time.Now().AddDate(0, 0, -1)
	soon := time.Now().AddDate(0, 0, 1)
	later := time.Now().AddDate(0, 0, 3)
	seedItem(t, s, "u1", store.ItemInput{Title: "Overdue thing", DueAt: &past})
	seedItem(t, s, "u1", store.ItemInput{Title: "Later", DueAt: &later})
	seedItem(t, s, "u1", store.ItemInput{Title: "Soon", DueAt: &soon})
	seedItem(t, s, "u1", store.ItemInput{Title: "Done", Status: store.StatusCompleted})
	seedItem(t, s, "u1", store.ItemInput{Title: "Meeting", Type: store.TypeMeeting})

	item := seedItem(t, s, "u1", store.ItemInput{Title: "Notify me"})
	if _, err := s.CreateNotification(ctx, "u1", item.ID, "Due: Notify me", nil); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	snap, err := asm.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if snap.TotalItems != 6 {
		t.Errorf("expected 6 items, got %d", snap.TotalItems)
	}
	if snap.CountsByType[store.TypeTask] != 5 || snap.CountsByType[store.TypeMeeting] != 1 {
		t.Errorf("unexpected type counts: %v", snap.CountsByType)
	}
	if snap.OverdueCount != 1 {
		t.Errorf("expected 1 overdue, got %d", snap.OverdueCount)
	}
	if snap.PendingNotifications != 1 {
		t.Errorf("expected 1 pending notification, got %d", snap.PendingNotifications)
	}

	// Upcoming is sorted by due date ascending, overdue first.
	wantUpcoming := []string{"Overdue thing", "Soon", "Later"}
	if len(snap.Upcoming) != len(wantUpcoming) {
		t.Fatalf("expected %d upcoming, got %d", len(wantUpcoming), len(snap.Upcoming))
	}
	for i, title := range wantUpcoming {
		if snap.Upcoming[i].Title != title {
			t.Errorf("upcoming[%d] = %q, want %q", i, snap.Upcoming[i].Title, title)
		}
	}

	if len(snap.Recent) != 5 {
		t.Errorf("expected recent capped at 5, got %d", len(snap.Recent))
	}
}
