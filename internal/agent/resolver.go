package agent

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"daypilot/internal/logging"
	"daypilot/internal/store"
)

// Resolver maps a loose reference (UUID, exact title, partial title, fuzzy
// words) to a concrete item. Users refer to items conversationally, so the
// tiers prefer exactness over recall to avoid surprising mutations.
type Resolver struct {
	store *store.Store
}

// NewResolver creates a resolver over the entity store.
func NewResolver(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve finds the item a reference points at. Precedence, first match
// wins:
//
//  1. UUID-shaped input: direct ID lookup. Failures here are swallowed and
//     resolution falls through to title search, so an action never
//     hard-fails just because a UUID-looking string wasn't a real ID.
//  2. Case-insensitive exact title match.
//  3. Substring: the reference appears in a title.
//  4. Reverse substring: a title appears in the reference (handles
//     over-specified input like "the laundry task" matching "Laundry").
//  5. Fuzzy: any whitespace-split word of the reference longer than two
//     characters appears in a title.
//
// Ties inside a tier resolve to the oldest item, which keeps repeated
// calls stable. Returns store.ErrNotFound when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, userID, ref string) (*store.Item, error) {
	log := logging.Get(logging.CategoryAgent)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, store.ErrNotFound
	}

	if _, err := uuid.Parse(ref); err == nil {
		if item, err := r.store.GetItem(ctx, userID, ref); err == nil {
			return item, nil
		}
		log.Debug("uuid-shaped ref %q did not resolve by id, trying titles", ref)
	}

	items, err := r.store.ListItems(ctx, userID, store.ItemFilter{})
	if err != nil {
		return nil, err
	}

	lowerRef := strings.ToLower(ref)

	for _, it := range items {
		if strings.ToLower(it.Title) == lowerRef {
			return it, nil
		}
	}

	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), lowerRef) {
			return it, nil
		}
	}

	for _, it := range items {
		if strings.Contains(lowerRef, strings.ToLower(it.Title)) {
			return it, nil
		}
	}

	var words []string
	for _, w := range strings.Fields(lowerRef) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	for _, it := range items {
		title := strings.ToLower(it.Title)
		for _, w := range words {
			if strings.Contains(title, w) {
				return it, nil
			}
		}
	}

	return nil, store.ErrNotFound
}
