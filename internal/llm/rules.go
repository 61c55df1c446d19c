package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// RulesClient is a deterministic pattern-matching completion client. It
// satisfies the same contract as the API providers by emitting the agent's
// JSON action grammar from keyword rules, so chat keeps working when no
// API key is configured.
type RulesClient struct{}

// NewRulesClient creates the rule-based fallback client.
func NewRulesClient() *RulesClient {
	return &RulesClient{}
}

// Name identifies the provider.
func (c *RulesClient) Name() string { return "rules" }

var (
	quotedRe     = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	calledRe     = regexp.MustCompile(`(?i)\b(?:called|named|titled)\s+(.+)$`)
	createRe     = regexp.MustCompile(`(?i)\b(?:create|add|new)\b`)
	completeRe   = regexp.MustCompile(`(?i)\b(?:complete|completed|done|finish|finished)\b`)
	deleteRe     = regexp.MustCompile(`(?i)\b(?:delete|remove)\b`)
	rescheduleRe = regexp.MustCompile(`(?i)\b(?:reschedule|postpone|push)\s+(.+?)\s+(?:to|until|for)\s+(.+)$`)
	searchRe     = regexp.MustCompile(`(?i)\b(?:search|find)\b(?:\s+for)?\s+(.+)$`)
	listRe       = regexp.MustCompile(`(?i)\b(?:list|show)\b`)
	summaryRe    = regexp.MustCompile(`(?i)\b(?:summary|overview|how am i doing)\b`)
	analyticsRe  = regexp.MustCompile(`(?i)\b(?:analytics|stats|statistics|productivity)\b`)
	notifRe      = regexp.MustCompile(`(?i)\bnotifications?\b`)
	focusRe      = regexp.MustCompile(`(?i)\b(?:focus|pomodoro)\b`)
	itemWordRe   = regexp.MustCompile(`(?i)\b(task|todo|meeting|school|assignment|homework|item|reminder)\b`)
)

// Complete inspects the last user message and returns an action grammar
// JSON reply. It never fails.
func (c *RulesClient) Complete(_ context.Context, messages []Message) (string, error) {
	var input string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			input = messages[i].Content
			break
		}
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return c.respond("What would you like to do?"), nil
	}

	switch {
	case createRe.MatchString(input) && itemWordRe.MatchString(input):
		data := map[string]interface{}{"title": extractTitle(input)}
		switch strings.ToLower(itemWordRe.FindString(input)) {
		case "meeting":
			data["type"] = "meeting"
		case "school", "assignment", "homework":
			data["type"] = "school"
		default:
			data["type"] = "task"
		}
		return c.action("create_item", data), nil

	case rescheduleRe.MatchString(input):
		m := rescheduleRe.FindStringSubmatch(input)
		return c.action("reschedule", map[string]interface{}{
			"identifier": stripItemWords(m[1]),
			"newDueAt":   strings.TrimSpace(m[2]),
		}), nil

	case completeRe.MatchString(input):
		return c.action("mark_complete", map[string]interface{}{
			"identifiers": []string{extractTitle(input)},
		}), nil

	case deleteRe.MatchString(input):
		return c.action("delete_item", map[string]interface{}{
			"identifier": extractTitle(input),
		}), nil

	case notifRe.MatchString(input) && deleteRe.MatchString(input) || notifRe.MatchString(input) && strings.Contains(strings.ToLower(input), "clear"):
		return c.action("clear_notifications", map[string]interface{}{"all": true}), nil

	case summaryRe.MatchString(input):
		period := "today"
		lower := strings.ToLower(input)
		if strings.Contains(lower, "week") {
			period = "week"
		} else if strings.Contains(lower, "month") {
			period = "month"
		}
		return c.action("get_summary", map[string]interface{}{"period": period}), nil

	case analyticsRe.MatchString(input):
		return c.action("get_analytics", map[string]interface{}{}), nil

	case focusRe.MatchString(input):
		return c.action("start_focus", map[string]interface{}{}), nil

	case searchRe.MatchString(input):
		m := searchRe.FindStringSubmatch(input)
		return c.action("search_items", map[string]interface{}{
			"query": stripItemWords(m[1]),
		}), nil

	case listRe.MatchString(input):
		data := map[string]interface{}{}
		switch strings.ToLower(itemWordRe.FindString(input)) {
		case "meeting":
			data["type"] = "meeting"
		case "school", "assignment", "homework":
			data["type"] = "school"
		case "task", "todo":
			data["type"] = "task"
		}
		return c.action("list_items", data), nil
	}

	return c.respond("I can create, update, complete, list, and search your items. Try: create a task called Buy milk."), nil
}

// action renders a single action grammar object.
func (c *RulesClient) action(kind string, data map[string]interface{}) string {
	out, err := json.Marshal(map[string]interface{}{"action": kind, "data": data})
	if err != nil {
		return c.respond("Sorry, I could not process that.")
	}
	return string(out)
}

func (c *RulesClient) respond(msg string) string {
	out, _ := json.Marshal(map[string]interface{}{
		"action": "respond",
		"data":   map[string]interface{}{"message": msg},
	})
	return string(out)
}

// extractTitle pulls the most likely item title from a command: quoted
// text wins, then text after called/named/titled, then the remainder
// after the verb and item words.
func extractTitle(input string) string {
	if m := quotedRe.FindStringSubmatch(input); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if m := calledRe.FindStringSubmatch(input); m != nil {
		return strings.TrimSpace(m[1])
	}

	// Drop the leading verb and filler: "create a task Buy milk" -> "Buy milk".
	cleaned := createRe.ReplaceAllString(input, "")
	cleaned = completeRe.ReplaceAllString(cleaned, "")
	cleaned = deleteRe.ReplaceAllString(cleaned, "")
	cleaned = stripItemWords(cleaned)
	cleaned = strings.TrimSpace(strings.Trim(cleaned, ".!?"))
	if cleaned == "" {
		return input
	}
	return cleaned
}

// stripItemWords removes item-kind words and leading articles from a phrase.
func stripItemWords(s string) string {
	s = itemWordRe.ReplaceAllString(s, "")
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for i, w := range words {
		lw := strings.ToLower(w)
		if i == 0 && (lw == "a" || lw == "an" || lw == "the" || lw == "my" || lw == "mark") {
			continue
		}
		if lw == "as" || lw == "please" {
			continue
		}
		out = append(out, w)
	}
	return strings.TrimSpace(strings.Join(out, " "))
}
