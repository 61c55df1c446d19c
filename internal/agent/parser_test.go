package agent

import (
	"encoding/json"
	"testing"
)

func TestParse_PlainProse(t *testing.T) {
	actions := Parse("hello")
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if actions[0].Kind != KindRespond {
		t.Fatalf("expected respond, got %s", actions[0].Kind)
	}

	var p respondPayload
	if err := json.Unmarshal(actions[0].Data, &p); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if p.Message != "hello" {
		t.Errorf("expected message=hello, got %q", p.Message)
	}
}

func TestParse_NeverEmpty(t *testing.T) {
	inputs := []string{
		"",
		"{broken json",
		`{"action": 42}`,
		"```json\nnot actually json\n```",
		`[]`,
	}
	for _, in := range inputs {
		if actions := Parse(in); len(actions) == 0 {
			t.Errorf("Parse(%q) returned no actions", in)
		}
	}
}

func TestParse_SingleAction(t *testing.T) {
	actions := Parse(`{"action": "create_item", "data": {"title": "Buy milk"}}`)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if actions[0].Kind != KindCreateItem {
		t.Fatalf("expected create_item, got %s", actions[0].Kind)
	}

	var p createItemPayload
	if err := json.Unmarshal(actions[0].Data, &p); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if p.Title != "Buy milk" {
		t.Errorf("expected title=Buy milk, got %q", p.Title)
	}
}

func TestParse_WrappedInProse(t *testing.T) {
	raw := "Sure! Here's what I'll do:\n" +
		`{"action": "mark_complete", "data": {"identifiers": ["Task A"]}}` +
		"\nLet me know if that works."
	actions := Parse(raw)
	if len(actions) != 1 || actions[0].Kind != KindMarkComplete {
		t.Fatalf("expected one mark_complete, got %v", actions)
	}
}

func TestParse_ArrayPreservesOrder(t *testing.T) {
	raw := `[
		{"action": "create_item", "data": {"title": "A"}},
		{"action": "create_item", "data": {"title": "A"}},
		{"action": "mark_complete", "data": {"identifiers": ["A"]}}
	]`
	actions := Parse(raw)
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	// Duplicates are preserved, not collapsed.
	if actions[0].Kind != KindCreateItem || actions[1].Kind != KindCreateItem {
		t.Error("expected duplicate create_item actions preserved")
	}
	if actions[2].Kind != KindMarkComplete {
		t.Error("expected mark_complete last")
	}
}

func TestParse_TypeSpelling(t *testing.T) {
	actions := Parse(`{"type": "navigate", "data": {"path": "/calendar"}}`)
	if len(actions) != 1 || actions[0].Kind != KindNavigate {
		t.Fatalf("expected navigate via type field, got %v", actions)
	}
}

func TestParse_UnknownActionDegrades(t *testing.T) {
	actions := Parse(`{"action": "launch_rocket", "data": {"target": "moon"}}`)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if actions[0].Kind != KindRespond {
		t.Fatalf("expected respond fallback, got %s", actions[0].Kind)
	}

	var p respondPayload
	if err := json.Unmarshal(actions[0].Data, &p); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if p.Message == "" {
		t.Error("expected serialized element as message")
	}
}

func TestParse_MixedArrayNeverDropsElements(t *testing.T) {
	raw := `[
		{"action": "navigate", "data": {"path": "/x"}},
		{"something": "else"},
		"just a string"
	]`
	actions := Parse(raw)
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	if actions[0].Kind != KindNavigate {
		t.Errorf("expected navigate first, got %s", actions[0].Kind)
	}
	if actions[1].Kind != KindRespond || actions[2].Kind != KindRespond {
		t.Error("expected unmappable elements to degrade to respond")
	}
}

func TestParse_ActionWithoutData(t *testing.T) {
	actions := Parse(`{"action": "get_analytics"}`)
	if len(actions) != 1 || actions[0].Kind != KindGetAnalytics {
		t.Fatalf("expected get_analytics with empty payload, got %v", actions)
	}
}

func TestKnownKind(t *testing.T) {
	for _, k := range allKinds {
		if !KnownKind(string(k)) {
			t.Errorf("KnownKind(%s) = false", k)
		}
	}
	if KnownKind("launch_rocket") {
		t.Error("KnownKind accepted an unknown kind")
	}
}
