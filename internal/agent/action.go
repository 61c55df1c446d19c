package agent

import "encoding/json"

// Kind discriminates the closed set of agent actions. The parser only ever
// emits kinds from this set (anything else degrades to KindRespond) and the
// dispatcher switches over every kind with no silent default.
type Kind string

const (
	KindCreateItem         Kind = "create_item"
	KindUpdateItem         Kind = "update_item"
	KindDeleteItem         Kind = "delete_item"
	KindListItems          Kind = "list_items"
	KindSearchItems        Kind = "search_items"
	KindMoveItem           Kind = "move_item"
	KindCreateLabel        Kind = "create_label"
	KindAddLabel           Kind = "add_label"
	KindMarkComplete       Kind = "mark_complete"
	KindReschedule         Kind = "reschedule"
	KindPrioritize         Kind = "prioritize"
	KindGetSummary         Kind = "get_summary"
	KindClearNotifications Kind = "clear_notifications"
	KindNavigate           Kind = "navigate"
	KindRespond            Kind = "respond"
	KindBatchUpdate        Kind = "batch_update"
	KindBulkCreate         Kind = "bulk_create"
	KindStartFocus         Kind = "start_focus"
	KindGetAnalytics       Kind = "get_analytics"
)

// allKinds is the complete action vocabulary, in prompt-grammar order.
var allKinds = []Kind{
	KindCreateItem, KindUpdateItem, KindDeleteItem, KindListItems,
	KindSearchItems, KindMoveItem, KindCreateLabel, KindAddLabel,
	KindMarkComplete, KindReschedule, KindPrioritize, KindGetSummary,
	KindClearNotifications, KindNavigate, KindRespond, KindBatchUpdate,
	KindBulkCreate, KindStartFocus, KindGetAnalytics,
}

// KnownKind reports whether s names an action in the closed set.
func KnownKind(s string) bool {
	for _, k := range allKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Action is one parsed agent action: a kind plus its raw payload. The
// dispatcher decodes Data into the kind's typed payload before executing.
type Action struct {
	Kind Kind
	Data json.RawMessage
}

// RespondAction builds a respond action carrying a plain message.
func RespondAction(message string) Action {
	data, _ := json.Marshal(respondPayload{Message: message})
	return Action{Kind: KindRespond, Data: data}
}

// ActionResult is the uniform return shape for every dispatched action.
// Callers never need to know the action kind to interpret it.
type ActionResult struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Navigate string      `json:"navigate,omitempty"`
}

// ===== typed payloads, one per kind =====

type createItemPayload struct {
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Details          string   `json:"details"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	Tags             []string `json:"tags"`
	DueAt            string   `json:"dueAt"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
}

// itemUpdates is the shared partial-update payload for update_item and
// batch_update. Pointer fields distinguish "absent" from "set to zero".
type itemUpdates struct {
	Title            *string   `json:"title"`
	Type             *string   `json:"type"`
	Details          *string   `json:"details"`
	Status           *string   `json:"status"`
	Priority         *string   `json:"priority"`
	Tags             *[]string `json:"tags"`
	DueAt            *string   `json:"dueAt"`
	EstimatedMinutes *int      `json:"estimatedMinutes"`
}

type updateItemPayload struct {
	Identifier string      `json:"identifier"`
	Updates    itemUpdates `json:"updates"`
}

type deleteItemPayload struct {
	Identifier string `json:"identifier"`
}

type listItemsPayload struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Limit    int    `json:"limit"`
}

type searchItemsPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type moveItemPayload struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}

type createLabelPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type addLabelPayload struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
	Color      string `json:"color"`
}

type markCompletePayload struct {
	Identifiers []string `json:"identifiers"`
}

type reschedulePayload struct {
	Identifier string `json:"identifier"`
	NewDueAt   string `json:"newDueAt"`
}

type prioritizePayload struct {
	Identifier string `json:"identifier"`
	Priority   string `json:"priority"`
}

type getSummaryPayload struct {
	Period string `json:"period"` // today, week, month
}

type clearNotificationsPayload struct {
	All bool   `json:"all"`
	ID  string `json:"id"`
}

type navigatePayload struct {
	Path string `json:"path"`
}

type respondPayload struct {
	Message string `json:"message"`
}

type batchFilter struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Overdue  *bool  `json:"overdue"`
}

type batchUpdatePayload struct {
	Filter  batchFilter `json:"filter"`
	Updates itemUpdates `json:"updates"`
}

type bulkItemSpec struct {
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Details          string   `json:"details"`
	Priority         string   `json:"priority"`
	Tags             []string `json:"tags"`
	DueAt            string   `json:"dueAt"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
}

type bulkCreatePayload struct {
	Items []bulkItemSpec `json:"items"`
}

type startFocusPayload struct {
	Identifier      string `json:"identifier"`
	DurationMinutes int    `json:"durationMinutes"`
}

type getAnalyticsPayload struct {
	Days int `json:"days"`
}
