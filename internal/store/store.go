// Package store implements the daypilot entity store on SQLite.
// It holds items, labels, notifications, and the append-only activity log.
// Every operation is scoped by an explicit user ID; there is no implicit
// default user.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"daypilot/internal/logging"
)

// Store provides typed CRUD over the productivity entities backed by SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New initializes the SQLite database at the given path. Use ":memory:"
// for an ephemeral store in tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer, and a single pooled connection also
	// keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Get(logging.CategoryStore).Info("store opened at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	itemsTable := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		due_at TEXT,
		start_at TEXT,
		end_at TEXT,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id);
	CREATE INDEX IF NOT EXISTS idx_items_due ON items(user_id, due_at);
	`

	labelsTable := `
	CREATE TABLE IF NOT EXISTS labels (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		UNIQUE(user_id, name)
	);
	CREATE TABLE IF NOT EXISTS item_labels (
		item_id TEXT NOT NULL,
		label_id TEXT NOT NULL,
		UNIQUE(item_id, label_id)
	);
	`

	notificationsTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		title TEXT NOT NULL,
		due_at TEXT,
		delivered_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
	`

	activityTable := `
	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		item_id TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_log(user_id);
	`

	for _, table := range []string{itemsTable, labelsTable, notificationsTable, activityTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// timeText formats a timestamp for storage; nil stays NULL.
func timeText(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeText(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// ========== Items ==========

// CreateItem inserts a new item, applying defaults for missing enum fields:
// type=task, status=not_started, priority=medium.
func (s *Store) CreateItem(ctx context.Context, userID string, input ItemInput) (*Item, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title required")
	}

	item := &Item{
		ID:               uuid.NewString(),
		UserID:           userID,
		Type:             input.Type,
		Title:            strings.TrimSpace(input.Title),
		Details:          input.Details,
		Status:           input.Status,
		Priority:         input.Priority,
		Tags:             input.Tags,
		DueAt:            input.DueAt,
		StartAt:          input.StartAt,
		EndAt:            input.EndAt,
		EstimatedMinutes: input.EstimatedMinutes,
		CreatedAt:        time.Now().UTC(),
	}
	item.UpdatedAt = item.CreatedAt

	if item.Type == "" {
		item.Type = TypeTask
	}
	if item.Status == "" {
		item.Status = StatusNotStarted
	}
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	if !ValidType(item.Type) {
		return nil, fmt.Errorf("invalid item type: %s", item.Type)
	}
	if !ValidStatus(item.Status) {
		return nil, fmt.Errorf("invalid status: %s", item.Status)
	}
	if !ValidPriority(item.Priority) {
		return nil, fmt.Errorf("invalid priority: %s", item.Priority)
	}

	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, user_id, type, title, details, status, priority, tags,
			due_at, start_at, end_at, estimated_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, string(item.Type), item.Title, item.Details,
		string(item.Status), string(item.Priority), string(tagsJSON),
		timeText(item.DueAt), timeText(item.StartAt), timeText(item.EndAt),
		item.EstimatedMinutes,
		item.CreatedAt.Format(time.RFC3339Nano), item.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	return item, nil
}

const itemColumns = `id, user_id, type, title, details, status, priority, tags,
	due_at, start_at, end_at, estimated_minutes, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*Item, error) {
	var (
		it                      Item
		typ, status, prio, tags string
		due, start, end         sql.NullString
		created, updated        string
	)
	err := row.Scan(&it.ID, &it.UserID, &typ, &it.Title, &it.Details, &status,
		&prio, &tags, &due, &start, &end, &it.EstimatedMinutes, &created, &updated)
	if err != nil {
		return nil, err
	}

	it.Type = ItemType(typ)
	it.Status = Status(status)
	it.Priority = Priority(prio)
	if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
		it.Tags = []string{}
	}
	it.DueAt = parseTimeText(due)
	it.StartAt = parseTimeText(start)
	it.EndAt = parseTimeText(end)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		it.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		it.UpdatedAt = t
	}
	return &it, nil
}

// GetItem fetches one item by ID, scoped to the user.
func (s *Store) GetItem(ctx context.Context, userID, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND user_id = ?`, id, userID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns the user's items matching the filter, in stable
// creation order (oldest first).
func (s *Store) ListItems(ctx context.Context, userID string, filter ItemFilter) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}
	// rowid reflects insertion order exactly, which resolver tie-breaking
	// depends on.
	query += ` ORDER BY rowid ASC`

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem applies a partial update and returns the updated item.
func (s *Store) UpdateItem(ctx context.Context, userID, id string, patch ItemPatch) (*Item, error) {
	current, err := s.GetItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Type != nil {
		if !ValidType(*patch.Type) {
			return nil, fmt.Errorf("invalid item type: %s", *patch.Type)
		}
		current.Type = *patch.Type
	}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("title required")
		}
		current.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Details != nil {
		current.Details = *patch.Details
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return nil, fmt.Errorf("invalid status: %s", *patch.Status)
		}
		current.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !ValidPriority(*patch.Priority) {
			return nil, fmt.Errorf("invalid priority: %s", *patch.Priority)
		}
		current.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		current.Tags = *patch.Tags
	}
	if patch.ClearDueAt {
		current.DueAt = nil
	} else if patch.DueAt != nil {
		current.DueAt = patch.DueAt
	}
	if patch.StartAt != nil {
		current.StartAt = patch.StartAt
	}
	if patch.EndAt != nil {
		current.EndAt = patch.EndAt
	}
	if patch.EstimatedMinutes != nil {
		current.EstimatedMinutes = *patch.EstimatedMinutes
	}
	current.UpdatedAt = time.Now().UTC()

	tagsJSON, err := json.Marshal(current.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET type = ?, title = ?, details = ?, status = ?, priority = ?,
			tags = ?, due_at = ?, start_at = ?, end_at = ?, estimated_minutes = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(current.Type), current.Title, current.Details, string(current.Status),
		string(current.Priority), string(tagsJSON),
		timeText(current.DueAt), timeText(current.StartAt), timeText(current.EndAt),
		current.EstimatedMinutes, current.UpdatedAt.Format(time.RFC3339Nano),
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return current, nil
}

// DeleteItem removes an item and its label associations.
func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM item_labels WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item labels: %w", err)
	}
	return nil
}

// ========== Labels ==========

// CreateLabel inserts a label, or returns the existing one with the same name.
func (s *Store) CreateLabel(ctx context.Context, userID, name, color string) (*Label, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("label name required")
	}
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing Label
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, color FROM labels WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&existing.ID, &existing.UserID, &existing.Name, &existing.Color)
	if err == nil {
		return &existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query label: %w", err)
	}

	label := &Label{ID: uuid.NewString(), UserID: userID, Name: name, Color: color}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO labels (id, user_id, name, color) VALUES (?, ?, ?, ?)`,
		label.ID, label.UserID, label.Name, label.Color); err != nil {
		return nil, fmt.Errorf("failed to insert label: %w", err)
	}
	return label, nil
}

// ListLabels returns all labels for the user.
func (s *Store) ListLabels(ctx context.Context, userID string) ([]*Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, color FROM labels WHERE user_id = ? ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []*Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Color); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, &l)
	}
	return labels, rows.Err()
}

// AddLabelToItem attaches a label to an item. Re-attaching is a no-op.
func (s *Store) AddLabelToItem(ctx context.Context, userID, itemID, labelID string) error {
	if _, err := s.GetItem(ctx, userID, itemID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO item_labels (item_id, label_id) VALUES (?, ?)`,
		itemID, labelID)
	if err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// RemoveLabelFromItem detaches a label from an item.
func (s *Store) RemoveLabelFromItem(ctx context.Context, userID, itemID, labelID string) error {
	if _, err := s.GetItem(ctx, userID, itemID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM item_labels WHERE item_id = ? AND label_id = ?`, itemID, labelID)
	if err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}

// ========== Notifications ==========

// CreateNotification inserts a due-date reminder.
func (s *Store) CreateNotification(ctx context.Context, userID, itemID, title string, dueAt *time.Time) (*Notification, error) {
	n := &Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		ItemID: itemID,
		Title:  title,
		DueAt:  dueAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, item_id, title, due_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, NULL)`,
		n.ID, n.UserID, n.ItemID, n.Title, timeText(n.DueAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns all notifications for the user.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, title, due_at, delivered_at
		FROM notifications WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var (
			n              Notification
			due, delivered sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.ItemID, &n.Title, &due, &delivered); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.DueAt = parseTimeText(due)
		n.DeliveredAt = parseTimeText(delivered)
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkNotificationDelivered stamps a single notification as delivered.
func (s *Store) MarkNotificationDelivered(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET delivered_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsDelivered stamps every pending notification and
// returns how many were updated.
func (s *Store) MarkAllNotificationsDelivered(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET delivered_at = ? WHERE user_id = ? AND delivered_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ========== Activity log ==========

// LogActivity appends one audit entry. The log is write-once; nothing in
// the store mutates or deletes entries.
func (s *Store) LogActivity(ctx context.Context, userID, action, itemID, data string) error {
	if data == "" {
		data = "{}"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, action, item_id, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, action, itemID, data,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent audit entries, newest first.
func (s *Store) ListActivity(ctx context.Context, userID string, limit int) ([]*ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, item_id, data, created_at
		FROM activity_log WHERE user_id = ?
		ORDER BY rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []*ActivityRecord
	for rows.Next() {
		var (
			r       ActivityRecord
			created string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Action, &r.ItemID, &r.Data, &created); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
