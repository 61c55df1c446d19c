package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"daypilot/internal/llm"
	"daypilot/internal/store"
)

// scriptedClient returns a canned completion, for driving the turn
// pipeline without a provider.
type scriptedClient struct {
	reply string
	err   error
}

func (c *scriptedClient) Complete(context.Context, []llm.Message) (string, error) {
	return c.reply, c.err
}

func (c *scriptedClient) Name() string { return "scripted" }

func TestHandleTurn_CreateViaRules(t *testing.T) {
	s := newTestStore(t)
	a := New(s, llm.NewRulesClient())
	ctx := context.Background()

	result, err := a.HandleTurn(ctx, "u1", "create a task called Buy milk", nil)
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}

	if len(result.Actions) != 1 || result.Actions[0].Kind != KindCreateItem {
		t.Fatalf("expected one create_item action, got %+v", result.Actions)
	}
	if !result.Actions[0].Success {
		t.Fatalf("create failed: %s", result.Actions[0].Message)
	}
	if result.Response == "" || !strings.Contains(result.Response, "Buy milk") {
		t.Errorf("unexpected response: %q", result.Response)
	}

	items, err := s.ListItems(ctx, "u1", store.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Buy milk" || items[0].Type != store.TypeTask {
		t.Errorf("unexpected stored item: %+v", items)
	}
}

func TestHandleTurn_ProseFallsBackToRespond(t *testing.T) {
	s := newTestStore(t)
	a := New(s, llm.NewRulesClient())
	ctx := context.Background()

	result, err := a.HandleTurn(ctx, "u1", "what's the meaning of life?", nil)
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if len(result.Actions) != 1 || result.Actions[0].Kind != KindRespond {
		t.Fatalf("expected a respond action, got %+v", result.Actions)
	}
	if result.Response == "" {
		t.Error("expected a non-empty response")
	}

	items, _ := s.ListItems(ctx, "u1", store.ItemFilter{})
	if len(items) != 0 {
		t.Errorf("respond must not create items, got %d", len(items))
	}
}

func TestHandleTurn_SequentialWithinTurn(t *testing.T) {
	s := newTestStore(t)
	client := &scriptedClient{reply: `[
		{"action": "create_item", "data": {"title": "Pack bags"}},
		{"action": "mark_complete", "data": {"identifiers": ["Pack bags"]}}
	]`}
	a := New(s, client)
	ctx := context.Background()

	result, err := a.HandleTurn(ctx, "u1", "pack and finish", nil)
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if len(result.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(result.Actions))
	}
	// The second action sees the first action's write.
	if !result.Actions[0].Success || !result.Actions[1].Success {
		t.Fatalf("expected both actions to succeed: %+v", result.Actions)
	}

	items, _ := s.ListItems(ctx, "u1", store.ItemFilter{Status: store.StatusCompleted})
	if len(items) != 1 || items[0].Title != "Pack bags" {
		t.Error("expected Pack bags completed within the same turn")
	}
}

func TestHandleTurn_LastNavigateWins(t *testing.T) {
	s := newTestStore(t)
	client := &scriptedClient{reply: `[
		{"action": "navigate", "data": {"path": "/calendar"}},
		{"action": "navigate", "data": {"path": "/focus"}}
	]`}
	a := New(s, client)

	result, err := a.HandleTurn(context.Background(), "u1", "go", nil)
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Navigate != "/focus" {
		t.Errorf("expected last navigate to win, got %s", result.Navigate)
	}
}

func TestHandleTurn_FailedActionsAreReportedNotRaised(t *testing.T) {
	s := newTestStore(t)
	client := &scriptedClient{reply: `{"action": "delete_item", "data": {"identifier": "ghost"}}`}
	a := New(s, client)

	result, err := a.HandleTurn(context.Background(), "u1", "delete ghost", nil)
	if err != nil {
		t.Fatalf("action failure must not surface as a turn error: %v", err)
	}
	if len(result.Actions) != 1 || result.Actions[0].Success {
		t.Fatalf("expected a failed action outcome, got %+v", result.Actions)
	}
	if result.Response != "Item not found: ghost" {
		t.Errorf("unexpected response: %q", result.Response)
	}
}

func TestHandleTurn_EmptyMessagesComposeDone(t *testing.T) {
	s := newTestStore(t)
	client := &scriptedClient{reply: `{"action": "respond", "data": {"message": ""}}`}
	a := New(s, client)

	result, err := a.HandleTurn(context.Background(), "u1", "hm", nil)
	if err != nil {
		t.Fatalf("HandleTurn failed: %v", err)
	}
	if result.Response != "Done." {
		t.Errorf("expected fallback response, got %q", result.Response)
	}
}

func TestHandleTurn_CompletionErrorPropagates(t *testing.T) {
	s := newTestStore(t)
	client := &scriptedClient{err: errors.New("connection refused")}
	a := New(s, client)

	if _, err := a.HandleTurn(context.Background(), "u1", "hi", nil); err == nil {
		t.Error("expected completion transport error to propagate")
	}
}

func TestHandleTurn_RequiresUser(t *testing.T) {
	s := newTestStore(t)
	a := New(s, llm.NewRulesClient())

	if _, err := a.HandleTurn(context.Background(), "", "hi", nil); err == nil {
		t.Error("expected error for missing user ID")
	}
}
