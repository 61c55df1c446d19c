package agent

import (
	"fmt"
	"strings"
	"time"

	"daypilot/internal/llm"
	"daypilot/internal/store"
)

// actionExamples enumerates every action's example JSON, in allKinds
// order. This enumeration is the wire contract with the completion
// capability: a kind missing here can never be emitted by the model, so
// any new Kind must be added to both allKinds and this map.
var actionExamples = map[Kind]string{
	KindCreateItem:         `{"action": "create_item", "data": {"title": "Buy milk", "type": "task", "priority": "medium", "dueAt": "2025-03-01", "tags": ["errands"]}}`,
	KindUpdateItem:         `{"action": "update_item", "data": {"identifier": "Buy milk", "updates": {"status": "in_progress", "details": "2% this time"}}}`,
	KindDeleteItem:         `{"action": "delete_item", "data": {"identifier": "Buy milk"}}`,
	KindListItems:          `{"action": "list_items", "data": {"type": "task", "status": "not_started", "limit": 10}}`,
	KindSearchItems:        `{"action": "search_items", "data": {"query": "milk", "limit": 10}}`,
	KindMoveItem:           `{"action": "move_item", "data": {"identifier": "Standup", "type": "meeting"}}`,
	KindCreateLabel:        `{"action": "create_label", "data": {"name": "errands", "color": "#22c55e"}}`,
	KindAddLabel:           `{"action": "add_label", "data": {"identifier": "Buy milk", "label": "errands"}}`,
	KindMarkComplete:       `{"action": "mark_complete", "data": {"identifiers": ["Buy milk", "Pay rent"]}}`,
	KindReschedule:         `{"action": "reschedule", "data": {"identifier": "Pay rent", "newDueAt": "2025-03-01"}}`,
	KindPrioritize:         `{"action": "prioritize", "data": {"identifier": "Pay rent", "priority": "urgent"}}`,
	KindGetSummary:         `{"action": "get_summary", "data": {"period": "today"}}`,
	KindClearNotifications: `{"action": "clear_notifications", "data": {"all": true}}`,
	KindNavigate:           `{"action": "navigate", "data": {"path": "/calendar"}}`,
	KindRespond:            `{"action": "respond", "data": {"message": "You have 3 tasks due today."}}`,
	KindBatchUpdate:        `{"action": "batch_update", "data": {"filter": {"status": "not_started", "overdue": true}, "updates": {"priority": "high"}}}`,
	KindBulkCreate:         `{"action": "bulk_create", "data": {"items": [{"title": "Read ch. 4", "type": "school"}, {"title": "Read ch. 5", "type": "school"}]}}`,
	KindStartFocus:         `{"action": "start_focus", "data": {"identifier": "Read ch. 4", "durationMinutes": 25}}`,
	KindGetAnalytics:       `{"action": "get_analytics", "data": {"days": 7}}`,
}

// BuildPrompt renders the system instruction document: current context
// block, then the action grammar enumeration, then the rules block, in
// that fixed order.
func BuildPrompt(snap *Snapshot) string {
	var b strings.Builder

	b.WriteString("You are the assistant inside daypilot, a personal productivity app.\n")
	b.WriteString("You translate the user's message into actions against their items.\n\n")

	b.WriteString("## Current context\n")
	fmt.Fprintf(&b, "Now: %s\n", snap.Now.Format(time.RFC3339))
	fmt.Fprintf(&b, "Items: %d total (%d tasks, %d meetings, %d school)\n",
		snap.TotalItems,
		snap.CountsByType[store.TypeTask],
		snap.CountsByType[store.TypeMeeting],
		snap.CountsByType[store.TypeSchool])
	fmt.Fprintf(&b, "Status: %d not started, %d in progress, %d completed, %d blocked, %d overdue\n",
		snap.CountsByStatus[store.StatusNotStarted],
		snap.CountsByStatus[store.StatusInProgress],
		snap.CountsByStatus[store.StatusCompleted],
		snap.CountsByStatus[store.StatusBlocked],
		snap.OverdueCount)

	if len(snap.Upcoming) > 0 {
		b.WriteString("Due soonest:\n")
		for _, it := range snap.Upcoming {
			fmt.Fprintf(&b, "- %s (%s, due %s)\n", it.Title, it.Type, it.DueAt.Format("2006-01-02 15:04"))
		}
	}
	if len(snap.Recent) > 0 {
		b.WriteString("Recently created:\n")
		for _, it := range snap.Recent {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", it.Title, it.Type, it.Status)
		}
	}
	if len(snap.Labels) > 0 {
		names := make([]string, 0, len(snap.Labels))
		for _, l := range snap.Labels {
			names = append(names, l.Name)
		}
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Pending notifications: %d\n", snap.PendingNotifications)

	b.WriteString("\n## Actions\n")
	b.WriteString("Reply with one action object, or an array of them:\n")
	for _, k := range allKinds {
		fmt.Fprintf(&b, "%s\n", actionExamples[k])
	}

	b.WriteString("\n## Rules\n")
	b.WriteString("- Always respond with valid JSON in the shapes above.\n")
	b.WriteString("- Dates must be in ISO form (YYYY-MM-DD or RFC 3339).\n")
	b.WriteString("- Multiple actions may be batched in a JSON array; they run in order.\n")
	b.WriteString("- Prefer batch_update or bulk_create for multi-item requests.\n")
	b.WriteString("- Use respond when no data operation is needed.\n")

	return b.String()
}

// BuildMessages assembles the ordered message list for the completion
// capability: system prompt, prior conversation, then the new user message.
func BuildMessages(systemPrompt string, history []llm.Message, userMessage string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		if m.Role == llm.RoleUser || m.Role == llm.RoleAssistant {
			messages = append(messages, m)
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}
