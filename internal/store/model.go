package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist for the
// given user.
var ErrNotFound = errors.New("not found")

// ItemType classifies an item.
type ItemType string

const (
	TypeTask    ItemType = "task"
	TypeMeeting ItemType = "meeting"
	TypeSchool  ItemType = "school"
)

// ValidType reports whether t is one of the enumerated item types.
func ValidType(t ItemType) bool {
	switch t {
	case TypeTask, TypeMeeting, TypeSchool:
		return true
	}
	return false
}

// Status is the lifecycle state of an item.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// Priority ranks an item's urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is one of the enumerated priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Item is the universal task/meeting/school unit. All items are owned by
// exactly one user; the store never operates cross-user.
type Item struct {
	ID               string
	UserID           string
	Type             ItemType
	Title            string
	Details          string
	Status           Status
	Priority         Priority
	Tags             []string
	DueAt            *time.Time
	StartAt          *time.Time
	EndAt            *time.Time
	EstimatedMinutes int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Overdue reports whether the item has a past due date and is not completed.
func (it *Item) Overdue(now time.Time) bool {
	return it.DueAt != nil && it.DueAt.Before(now) && it.Status != StatusCompleted
}

// ItemInput carries the fields for creating an item. Zero values for Type,
// Status, and Priority are defaulted by CreateItem.
type ItemInput struct {
	Type             ItemType
	Title            string
	Details          string
	Status           Status
	Priority         Priority
	Tags             []string
	DueAt            *time.Time
	StartAt          *time.Time
	EndAt            *time.Time
	EstimatedMinutes int
}

// ItemPatch carries a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Type             *ItemType
	Title            *string
	Details          *string
	Status           *Status
	Priority         *Priority
	Tags             *[]string
	DueAt            *time.Time
	ClearDueAt       bool
	StartAt          *time.Time
	EndAt            *time.Time
	EstimatedMinutes *int
}

// ItemFilter narrows ListItems results. Empty fields match everything;
// set fields combine with AND semantics.
type ItemFilter struct {
	Type     ItemType
	Status   Status
	Priority Priority
}

// Label is a user-defined tag attachable to items.
type Label struct {
	ID     string
	UserID string
	Name   string
	Color  string
}

// Notification is a due-date reminder. A nil DeliveredAt means pending.
type Notification struct {
	ID          string
	UserID      string
	ItemID      string
	Title       string
	DueAt       *time.Time
	DeliveredAt *time.Time
}

// ActivityRecord is one append-only audit entry written for every
// state-changing agent action.
type ActivityRecord struct {
	ID        string
	UserID    string
	Action    string
	ItemID    string
	Data      string // opaque JSON payload describing the delta
	CreatedAt time.Time
}
