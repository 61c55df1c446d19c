package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"daypilot/internal/logging"
	"daypilot/internal/store"
)

// Dispatcher validates and executes parsed actions against the entity
// store. It is the error boundary of the core: Execute never panics out
// and never returns a Go error; everything becomes an ActionResult with a
// human-readable message. State-changing actions append one activity
// record per mutated entity.
type Dispatcher struct {
	store    *store.Store
	resolver *Resolver
	log      *logging.Logger
}

// NewDispatcher creates a dispatcher over the entity store.
func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{
		store:    st,
		resolver: NewResolver(st),
		log:      logging.Get(logging.CategoryAgent),
	}
}

// Execute runs one action for the user and returns its uniform result.
func (d *Dispatcher) Execute(ctx context.Context, userID string, action Action) (result ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic executing %s: %v", action.Kind, r)
			result = ActionResult{Success: false, Message: "Action failed"}
		}
	}()

	if userID == "" {
		return ActionResult{Success: false, Message: "No user specified"}
	}

	// Exhaustive over the closed action set; adding a Kind without a case
	// here lands in the explicit failure below, never a silent no-op.
	switch action.Kind {
	case KindCreateItem:
		return d.createItem(ctx, userID, action.Data)
	case KindUpdateItem:
		return d.updateItem(ctx, userID, action.Data)
	case KindDeleteItem:
		return d.deleteItem(ctx, userID, action.Data)
	case KindListItems:
		return d.listItems(ctx, userID, action.Data)
	case KindSearchItems:
		return d.searchItems(ctx, userID, action.Data)
	case KindMoveItem:
		return d.moveItem(ctx, userID, action.Data)
	case KindCreateLabel:
		return d.createLabel(ctx, userID, action.Data)
	case KindAddLabel:
		return d.addLabel(ctx, userID, action.Data)
	case KindMarkComplete:
		return d.markComplete(ctx, userID, action.Data)
	case KindReschedule:
		return d.reschedule(ctx, userID, action.Data)
	case KindPrioritize:
		return d.prioritize(ctx, userID, action.Data)
	case KindGetSummary:
		return d.getSummary(ctx, userID, action.Data)
	case KindClearNotifications:
		return d.clearNotifications(ctx, userID, action.Data)
	case KindNavigate:
		return d.navigate(action.Data)
	case KindRespond:
		return d.respond(action.Data)
	case KindBatchUpdate:
		return d.batchUpdate(ctx, userID, action.Data)
	case KindBulkCreate:
		return d.bulkCreate(ctx, userID, action.Data)
	case KindStartFocus:
		return d.startFocus(ctx, userID, action.Data)
	case KindGetAnalytics:
		return d.getAnalytics(ctx, userID, action.Data)
	}
	return ActionResult{Success: false, Message: fmt.Sprintf("Unknown action: %s", action.Kind)}
}

// decode unmarshals an action payload; a nil payload decodes as empty.
func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	return json.Unmarshal(data, v)
}

func failed(msg string) ActionResult {
	return ActionResult{Success: false, Message: msg}
}

func failedErr(err error) ActionResult {
	if err == nil {
		return ActionResult{Success: false, Message: "Action failed"}
	}
	return ActionResult{Success: false, Message: err.Error()}
}

// resolveTarget resolves a reference or builds the standard not-found
// failure without attempting any mutation.
func (d *Dispatcher) resolveTarget(ctx context.Context, userID, ref string) (*store.Item, *ActionResult) {
	item, err := d.resolver.Resolve(ctx, userID, ref)
	if err != nil {
		res := failed(fmt.Sprintf("Item not found: %s", ref))
		return nil, &res
	}
	return item, nil
}

// logDelta appends an audit record capturing the applied delta, not the
// whole entity. Audit failures are logged but never fail the action.
func (d *Dispatcher) logDelta(ctx context.Context, userID, action, itemID string, delta map[string]interface{}) {
	data, err := json.Marshal(delta)
	if err != nil {
		data = []byte("{}")
	}
	if err := d.store.LogActivity(ctx, userID, action, itemID, string(data)); err != nil {
		d.log.Warn("failed to log %s for %s: %v", action, itemID, err)
	}
}

func (d *Dispatcher) createItem(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p createItemPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid create_item payload")
	}
	if strings.TrimSpace(p.Title) == "" {
		return failed("Title is required")
	}

	input := store.ItemInput{
		Type:             store.ItemType(p.Type),
		Title:            p.Title,
		Details:          p.Details,
		Status:           store.Status(p.Status),
		Priority:         store.Priority(p.Priority),
		Tags:             p.Tags,
		EstimatedMinutes: p.EstimatedMinutes,
	}
	// Due dates are a convenience: an unparseable date means no due date,
	// never an error.
	if due, ok := parseDate(p.DueAt, time.Now()); ok {
		input.DueAt = &due
	}

	item, err := d.store.CreateItem(ctx, userID, input)
	if err != nil {
		return failedErr(err)
	}

	if item.DueAt != nil {
		if _, err := d.store.CreateNotification(ctx, userID, item.ID, "Due: "+item.Title, item.DueAt); err != nil {
			d.log.Warn("failed to create due notification for %s: %v", item.ID, err)
		}
	}

	d.logDelta(ctx, userID, "item_created", item.ID, map[string]interface{}{
		"title": item.Title,
		"type":  item.Type,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Created %s %q", item.Type, item.Title),
		Data:    item,
	}
}

// patchFromUpdates builds a store patch from the shared update payload.
// Enum values are passed through for store-side validation; an unparseable
// date string is skipped, matching create_item's convenience semantics.
func patchFromUpdates(u itemUpdates) store.ItemPatch {
	var patch store.ItemPatch
	if u.Title != nil {
		patch.Title = u.Title
	}
	if u.Type != nil {
		t := store.ItemType(*u.Type)
		patch.Type = &t
	}
	if u.Details != nil {
		patch.Details = u.Details
	}
	if u.Status != nil {
		s := store.Status(*u.Status)
		patch.Status = &s
	}
	if u.Priority != nil {
		pr := store.Priority(*u.Priority)
		patch.Priority = &pr
	}
	if u.Tags != nil {
		patch.Tags = u.Tags
	}
	if u.DueAt != nil {
		if *u.DueAt == "" {
			patch.ClearDueAt = true
		} else if due, ok := parseDate(*u.DueAt, time.Now()); ok {
			patch.DueAt = &due
		}
	}
	if u.EstimatedMinutes != nil {
		patch.EstimatedMinutes = u.EstimatedMinutes
	}
	return patch
}

// deltaFromUpdates records which fields the update touched.
func deltaFromUpdates(u itemUpdates) map[string]interface{} {
	delta := map[string]interface{}{}
	if u.Title != nil {
		delta["title"] = *u.Title
	}
	if u.Type != nil {
		delta["type"] = *u.Type
	}
	if u.Details != nil {
		delta["details"] = *u.Details
	}
	if u.Status != nil {
		delta["status"] = *u.Status
	}
	if u.Priority != nil {
		delta["priority"] = *u.Priority
	}
	if u.Tags != nil {
		delta["tags"] = *u.Tags
	}
	if u.DueAt != nil {
		delta["dueAt"] = *u.DueAt
	}
	if u.EstimatedMinutes != nil {
		delta["estimatedMinutes"] = *u.EstimatedMinutes
	}
	return delta
}

func (d *Dispatcher) updateItem(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p updateItemPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid update_item payload")
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	updated, err := d.store.UpdateItem(ctx, userID, item.ID, patchFromUpdates(p.Updates))
	if err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "item_updated", item.ID, deltaFromUpdates(p.Updates))
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Updated %q", updated.Title),
		Data:    updated,
	}
}

func (d *Dispatcher) deleteItem(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p deleteItemPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid delete_item payload")
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	if err := d.store.DeleteItem(ctx, userID, item.ID); err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "item_deleted", item.ID, map[string]interface{}{
		"title": item.Title,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Deleted %q", item.Title),
	}
}

func (d *Dispatcher) listItems(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p listItemsPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid list_items payload")
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}

	items, err := d.store.ListItems(ctx, userID, store.ItemFilter{
		Type:     store.ItemType(p.Type),
		Status:   store.Status(p.Status),
		Priority: store.Priority(p.Priority),
	})
	if err != nil {
		return failedErr(err)
	}
	if len(items) > p.Limit {
		items = items[:p.Limit]
	}

	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Found %d item(s)", len(items)),
		Data:    items,
	}
}

func (d *Dispatcher) searchItems(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p searchItemsPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid search_items payload")
	}
	if strings.TrimSpace(p.Query) == "" {
		return failed("Search query required")
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}

	items, err := d.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return failedErr(err)
	}

	query := strings.ToLower(p.Query)
	var matches []*store.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), query) ||
			strings.Contains(strings.ToLower(it.Details), query) ||
			tagMatch(it.Tags, query) {
			matches = append(matches, it)
			if len(matches) == p.Limit {
				break
			}
		}
	}

	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Found %d item(s) matching %q", len(matches), p.Query),
		Data:    matches,
	}
}

func tagMatch(tags []string, query string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) moveItem(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p moveItemPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid move_item payload")
	}

	newType := store.ItemType(p.Type)
	if !store.ValidType(newType) {
		return failed(fmt.Sprintf("Invalid item type: %s", p.Type))
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	updated, err := d.store.UpdateItem(ctx, userID, item.ID, store.ItemPatch{Type: &newType})
	if err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "item_moved", item.ID, map[string]interface{}{
		"from": item.Type,
		"to":   newType,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Moved %q to %s", updated.Title, newType),
		Data:    updated,
	}
}

func (d *Dispatcher) createLabel(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p createLabelPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid create_label payload")
	}
	if strings.TrimSpace(p.Name) == "" {
		return failed("Label name required")
	}

	label, err := d.store.CreateLabel(ctx, userID, p.Name, p.Color)
	if err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "label_created", "", map[string]interface{}{
		"name": label.Name,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Created label %q", label.Name),
		Data:    label,
	}
}

func (d *Dispatcher) addLabel(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p addLabelPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid add_label payload")
	}
	if strings.TrimSpace(p.Label) == "" {
		return failed("Label name required")
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	label, err := d.store.CreateLabel(ctx, userID, p.Label, p.Color)
	if err != nil {
		return failedErr(err)
	}
	if err := d.store.AddLabelToItem(ctx, userID, item.ID, label.ID); err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "label_added", item.ID, map[string]interface{}{
		"label": label.Name,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Added label %q to %q", label.Name, item.Title),
	}
}

func (d *Dispatcher) markComplete(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p markCompletePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid mark_complete payload")
	}
	if len(p.Identifiers) == 0 {
		return failed("No items specified")
	}

	// Each identifier resolves independently; misses accumulate instead of
	// failing the batch.
	completed := 0
	var completedTitles, notFound []string
	status := store.StatusCompleted
	for _, ident := range p.Identifiers {
		item, err := d.resolver.Resolve(ctx, userID, ident)
		if err != nil {
			notFound = append(notFound, ident)
			continue
		}
		if _, err := d.store.UpdateItem(ctx, userID, item.ID, store.ItemPatch{Status: &status}); err != nil {
			notFound = append(notFound, ident)
			continue
		}
		d.logDelta(ctx, userID, "item_completed", item.ID, map[string]interface{}{
			"title": item.Title,
		})
		completed++
		completedTitles = append(completedTitles, item.Title)
	}

	result := ActionResult{
		Success: completed > 0,
		Data: map[string]interface{}{
			"completed": completed,
			"titles":    completedTitles,
			"notFound":  notFound,
		},
	}
	switch {
	case completed > 0 && len(notFound) > 0:
		result.Message = fmt.Sprintf("Completed %d item(s); not found: %s",
			completed, strings.Join(notFound, ", "))
	case completed > 0:
		result.Message = fmt.Sprintf("Completed %d item(s)", completed)
	default:
		result.Message = fmt.Sprintf("No matching items found: %s", strings.Join(notFound, ", "))
	}
	return result
}

func (d *Dispatcher) reschedule(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p reschedulePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid reschedule payload")
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	due, ok := parseDate(p.NewDueAt, time.Now())
	if !ok {
		return failed("Invalid date format")
	}

	updated, err := d.store.UpdateItem(ctx, userID, item.ID, store.ItemPatch{DueAt: &due})
	if err != nil {
		return failedErr(err)
	}

	delta := map[string]interface{}{"to": due.Format(time.RFC3339)}
	if item.DueAt != nil {
		delta["from"] = item.DueAt.Format(time.RFC3339)
	}
	d.logDelta(ctx, userID, "item_rescheduled", item.ID, delta)
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Rescheduled %q to %s", updated.Title, due.Format("2006-01-02")),
		Data:    updated,
	}
}

func (d *Dispatcher) prioritize(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p prioritizePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid prioritize payload")
	}

	priority := store.Priority(p.Priority)
	if !store.ValidPriority(priority) {
		return failed(fmt.Sprintf("Invalid priority: %s", p.Priority))
	}

	item, fail := d.resolveTarget(ctx, userID, p.Identifier)
	if fail != nil {
		return *fail
	}

	updated, err := d.store.UpdateItem(ctx, userID, item.ID, store.ItemPatch{Priority: &priority})
	if err != nil {
		return failedErr(err)
	}

	d.logDelta(ctx, userID, "item_prioritized", item.ID, map[string]interface{}{
		"from": item.Priority,
		"to":   priority,
	})
	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Set %q to %s priority", updated.Title, priority),
		Data:    updated,
	}
}

// SummaryData is the payload returned by get_summary.
type SummaryData struct {
	Period     string        `json:"period"`
	Total      int           `json:"total"`
	Completed  int           `json:"completed"`
	InProgress int           `json:"inProgress"`
	NotStarted int           `json:"notStarted"`
	Overdue    int           `json:"overdue"`
	Upcoming   []*store.Item `json:"upcoming"`
}

func (d *Dispatcher) getSummary(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p getSummaryPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid get_summary payload")
	}

	now := time.Now()
	var start time.Time
	switch p.Period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	case "today", "":
		p.Period = "today"
		y, m, day := now.Date()
		start = time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	default:
		return failed(fmt.Sprintf("Invalid period: %s", p.Period))
	}

	items, err := d.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return failedErr(err)
	}

	summary := SummaryData{Period: p.Period}
	var upcoming []*store.Item
	for _, it := range items {
		// Upcoming deadlines are system-wide, not window-bounded, so a
		// "today" summary still warns about next week.
		if it.DueAt != nil && it.Status != store.StatusCompleted {
			upcoming = append(upcoming, it)
		}
		if it.CreatedAt.Before(start) {
			continue
		}
		summary.Total++
		switch it.Status {
		case store.StatusCompleted:
			summary.Completed++
		case store.StatusInProgress:
			summary.InProgress++
		case store.StatusNotStarted:
			summary.NotStarted++
		}
		if it.Overdue(now) {
			summary.Overdue++
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueAt.Before(*upcoming[j].DueAt)
	})
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	summary.Upcoming = upcoming

	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("%s: %d item(s), %d completed, %d in progress, %d overdue",
			summary.Period, summary.Total, summary.Completed, summary.InProgress, summary.Overdue),
		Data: summary,
	}
}

func (d *Dispatcher) clearNotifications(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p clearNotificationsPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid clear_notifications payload")
	}

	switch {
	case p.All:
		n, err := d.store.MarkAllNotificationsDelivered(ctx, userID)
		if err != nil {
			return failedErr(err)
		}
		d.logDelta(ctx, userID, "notifications_cleared", "", map[string]interface{}{
			"count": n,
		})
		return ActionResult{
			Success: true,
			Message: fmt.Sprintf("Cleared %d notification(s)", n),
		}

	case p.ID != "":
		if err := d.store.MarkNotificationDelivered(ctx, userID, p.ID); err != nil {
			if err == store.ErrNotFound {
				return failed(fmt.Sprintf("Notification not found: %s", p.ID))
			}
			return failedErr(err)
		}
		d.logDelta(ctx, userID, "notifications_cleared", "", map[string]interface{}{
			"id": p.ID,
		})
		return ActionResult{Success: true, Message: "Notification cleared"}
	}

	return failed("No notification specified")
}

func (d *Dispatcher) navigate(data json.RawMessage) ActionResult {
	var p navigatePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid navigate payload")
	}
	if p.Path == "" {
		return failed("No path specified")
	}
	return ActionResult{
		Success:  true,
		Message:  fmt.Sprintf("Navigating to %s", p.Path),
		Navigate: p.Path,
	}
}

func (d *Dispatcher) respond(data json.RawMessage) ActionResult {
	var p respondPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid respond payload")
	}
	return ActionResult{Success: true, Message: p.Message}
}

func (d *Dispatcher) batchUpdate(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p batchUpdatePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid batch_update payload")
	}
	if len(deltaFromUpdates(p.Updates)) == 0 {
		return failed("No updates specified")
	}

	items, err := d.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return failedErr(err)
	}

	now := time.Now()
	patch := patchFromUpdates(p.Updates)
	delta := deltaFromUpdates(p.Updates)

	// No atomicity across the batch: a failure partway through leaves
	// earlier mutations committed, and the counts below report exactly
	// what happened.
	matched, updated := 0, 0
	for _, it := range items {
		if !matchesBatchFilter(it, p.Filter, now) {
			continue
		}
		matched++
		if _, err := d.store.UpdateItem(ctx, userID, it.ID, patch); err != nil {
			d.log.Warn("batch_update failed for %s: %v", it.ID, err)
			continue
		}
		d.logDelta(ctx, userID, "item_updated", it.ID, delta)
		updated++
	}

	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Updated %d of %d matching item(s)", updated, matched),
		Data: map[string]interface{}{
			"matched": matched,
			"updated": updated,
		},
	}
}

// matchesBatchFilter applies AND semantics across all set filter fields.
func matchesBatchFilter(it *store.Item, f batchFilter, now time.Time) bool {
	if f.Type != "" && it.Type != store.ItemType(f.Type) {
		return false
	}
	if f.Status != "" && it.Status != store.Status(f.Status) {
		return false
	}
	if f.Priority != "" && it.Priority != store.Priority(f.Priority) {
		return false
	}
	if f.Overdue != nil && it.Overdue(now) != *f.Overdue {
		return false
	}
	return true
}

func (d *Dispatcher) bulkCreate(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p bulkCreatePayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid bulk_create payload")
	}
	if len(p.Items) == 0 {
		return failed("No items specified")
	}

	created := 0
	var createdItems []*store.Item
	var errors []string
	for _, spec := range p.Items {
		input := store.ItemInput{
			Type:             store.ItemType(spec.Type),
			Title:            spec.Title,
			Details:          spec.Details,
			Priority:         store.Priority(spec.Priority),
			Tags:             spec.Tags,
			EstimatedMinutes: spec.EstimatedMinutes,
		}
		// Bulk specs carry dates as-is: only strict ISO forms are honored,
		// anything else leaves the item undated.
		if spec.DueAt != "" {
			if t, err := time.Parse(time.RFC3339, spec.DueAt); err == nil {
				utc := t.UTC()
				input.DueAt = &utc
			} else if t, err := time.Parse("2006-01-02", spec.DueAt); err == nil {
				utc := t.UTC()
				input.DueAt = &utc
			}
		}

		item, err := d.store.CreateItem(ctx, userID, input)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", spec.Title, err))
			continue
		}
		d.logDelta(ctx, userID, "item_created", item.ID, map[string]interface{}{
			"title": item.Title,
			"type":  item.Type,
		})
		created++
		createdItems = append(createdItems, item)
	}

	result := ActionResult{
		Success: created > 0,
		Data: map[string]interface{}{
			"created": created,
			"items":   createdItems,
			"errors":  errors,
		},
	}
	if len(errors) > 0 {
		result.Message = fmt.Sprintf("Created %d item(s), %d failed", created, len(errors))
	} else {
		result.Message = fmt.Sprintf("Created %d item(s)", created)
	}
	return result
}

func (d *Dispatcher) startFocus(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p startFocusPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid start_focus payload")
	}
	if p.DurationMinutes <= 0 {
		p.DurationMinutes = 25
	}

	// A focus session may be item-less; a resolution miss is tolerated.
	path := "/focus"
	var item *store.Item
	if p.Identifier != "" {
		if resolved, err := d.resolver.Resolve(ctx, userID, p.Identifier); err == nil {
			item = resolved
			path = "/focus?item=" + item.ID
		}
	}

	result := ActionResult{
		Success:  true,
		Navigate: path,
		Data: map[string]interface{}{
			"durationMinutes": p.DurationMinutes,
			"item":            item,
		},
	}
	if item != nil {
		result.Message = fmt.Sprintf("Starting a %d-minute focus session on %q", p.DurationMinutes, item.Title)
	} else {
		result.Message = fmt.Sprintf("Starting a %d-minute focus session", p.DurationMinutes)
	}
	return result
}

// AnalyticsData is the payload returned by get_analytics.
type AnalyticsData struct {
	Days       int            `json:"days"`
	Created    int            `json:"created"`
	Completed  int            `json:"completed"`
	Overdue    int            `json:"overdue"`
	ByType     map[string]int `json:"byType"`
	ByPriority map[string]int `json:"byPriority"`
}

func (d *Dispatcher) getAnalytics(ctx context.Context, userID string, data json.RawMessage) ActionResult {
	var p getAnalyticsPayload
	if err := decode(data, &p); err != nil {
		return failed("Invalid get_analytics payload")
	}
	if p.Days <= 0 {
		p.Days = 7
	}

	items, err := d.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return failedErr(err)
	}

	now := time.Now()
	start := now.AddDate(0, 0, -p.Days)
	analytics := AnalyticsData{
		Days:       p.Days,
		ByType:     make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, it := range items {
		if !it.CreatedAt.Before(start) {
			analytics.Created++
			analytics.ByType[string(it.Type)]++
		}
		if it.Status == store.StatusCompleted && !it.UpdatedAt.Before(start) {
			analytics.Completed++
		}
		if it.Overdue(now) {
			analytics.Overdue++
		}
		// Priority distribution reflects the current open set, not the
		// window.
		if it.Status != store.StatusCompleted {
			analytics.ByPriority[string(it.Priority)]++
		}
	}

	return ActionResult{
		Success: true,
		Message: fmt.Sprintf("Last %d days: %d created, %d completed, %d overdue",
			analytics.Days, analytics.Created, analytics.Completed, analytics.Overdue),
		Data: analytics,
	}
}
