package llm

import (
	"context"
	"encoding/json"
	"testing"
)

func complete(t *testing.T, input string) (kind string, data map[string]interface{}) {
	t.Helper()
	c := NewRulesClient()
	raw, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: input}})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	var reply struct {
		Action string                 `json:"action"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		t.Fatalf("reply is not action grammar JSON: %v\n%s", err, raw)
	}
	return reply.Action, reply.Data
}

func TestRules_Create(t *testing.T) {
	tests := []struct {
		input     string
		wantTitle string
		wantType  string
	}{
		{"create a task called Buy milk", "Buy milk", "task"},
		{"add a meeting named Sprint review", "Sprint review", "meeting"},
		{`new assignment "Essay draft"`, "Essay draft", "school"},
		{"create a task Buy milk", "Buy milk", "task"},
	}
	for _, tt := range tests {
		kind, data := complete(t, tt.input)
		if kind != "create_item" {
			t.Errorf("%q: expected create_item, got %s", tt.input, kind)
			continue
		}
		if data["title"] != tt.wantTitle {
			t.Errorf("%q: title = %v, want %q", tt.input, data["title"], tt.wantTitle)
		}
		if data["type"] != tt.wantType {
			t.Errorf("%q: type = %v, want %q", tt.input, data["type"], tt.wantType)
		}
	}
}

func TestRules_Complete(t *testing.T) {
	kind, data := complete(t, `mark "Buy milk" as done`)
	if kind != "mark_complete" {
		t.Fatalf("expected mark_complete, got %s", kind)
	}
	idents := data["identifiers"].([]interface{})
	if len(idents) != 1 || idents[0] != "Buy milk" {
		t.Errorf("unexpected identifiers: %v", idents)
	}
}

func TestRules_Reschedule(t *testing.T) {
	kind, data := complete(t, "reschedule the rent task to tomorrow")
	if kind != "reschedule" {
		t.Fatalf("expected reschedule, got %s", kind)
	}
	if data["identifier"] != "rent" {
		t.Errorf("identifier = %v, want rent", data["identifier"])
	}
	if data["newDueAt"] != "tomorrow" {
		t.Errorf("newDueAt = %v, want tomorrow", data["newDueAt"])
	}
}

func TestRules_Summary(t *testing.T) {
	kind, data := complete(t, "give me a summary of my week")
	if kind != "get_summary" {
		t.Fatalf("expected get_summary, got %s", kind)
	}
	if data["period"] != "week" {
		t.Errorf("period = %v, want week", data["period"])
	}
}

func TestRules_Search(t *testing.T) {
	kind, data := complete(t, "find groceries")
	if kind != "search_items" {
		t.Fatalf("expected search_items, got %s", kind)
	}
	if data["query"] != "groceries" {
		t.Errorf("query = %v, want groceries", data["query"])
	}
}

func TestRules_UnmatchedInputRespondsWithHint(t *testing.T) {
	kind, data := complete(t, "how is the weather in Paris?")
	if kind != "respond" {
		t.Fatalf("expected respond, got %s", kind)
	}
	if data["message"] == "" {
		t.Error("expected a non-empty hint")
	}
}

func TestRules_Deterministic(t *testing.T) {
	c := NewRulesClient()
	messages := []Message{{Role: RoleUser, Content: "show my tasks"}}

	first, _ := c.Complete(context.Background(), messages)
	second, _ := c.Complete(context.Background(), messages)
	if first != second {
		t.Errorf("rules client not deterministic: %q vs %q", first, second)
	}
}

func TestRules_LastUserMessageWins(t *testing.T) {
	c := NewRulesClient()
	raw, err := c.Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "create a task called Old"},
		{Role: RoleAssistant, Content: "done"},
		{Role: RoleUser, Content: "give me my analytics"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	var reply struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		t.Fatalf("bad reply: %v", err)
	}
	if reply.Action != "get_analytics" {
		t.Errorf("expected get_analytics from the last message, got %s", reply.Action)
	}
}
