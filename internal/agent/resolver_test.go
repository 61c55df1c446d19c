package agent

import (
	"context"
	"testing"

	"daypilot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedItem(t *testing.T, s *store.Store, userID string, input store.ItemInput) *store.Item {
	t.Helper()
	item, err := s.CreateItem(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("failed to seed item %q: %v", input.Title, err)
	}
	return item
}

func TestResolve_ByID(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	item := seedItem(t, s, "u1", store.ItemInput{Title: "Finish report"})

	got, err := r.Resolve(ctx, "u1", item.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("expected %s, got %s", item.ID, got.ID)
	}
}

func TestResolve_UUIDShapedMissFallsThrough(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	// The title is itself UUID-shaped but isn't any item's ID; the direct
	// lookup miss must fall through to title search, not fail the action.
	item := seedItem(t, s, "u1", store.ItemInput{Title: "123e4567-e89b-12d3-a456-426614174000"})

	got, err := r.Resolve(ctx, "u1", "123e4567-e89b-12d3-a456-426614174000")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("expected fallthrough to title match")
	}
}

func TestResolve_ExactBeatsSubstring(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	seedItem(t, s, "u1", store.ItemInput{Title: "Report card review"})
	exact := seedItem(t, s, "u1", store.ItemInput{Title: "Report"})

	got, err := r.Resolve(ctx, "u1", "report")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != exact.ID {
		t.Errorf("expected exact match %q, got %q", exact.Title, got.Title)
	}
}

func TestResolve_SubstringPrecedence(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	first := seedItem(t, s, "u1", store.ItemInput{Title: "Finish report"})
	seedItem(t, s, "u1", store.ItemInput{Title: "Report card"})

	// Both titles contain "report"; the substring tier resolves to the
	// oldest item, before any fuzzy fallback runs.
	got, err := r.Resolve(ctx, "u1", "report")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected %q, got %q", first.Title, got.Title)
	}
}

func TestResolve_ReverseSubstring(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	item := seedItem(t, s, "u1", store.ItemInput{Title: "Laundry"})

	got, err := r.Resolve(ctx, "u1", "the laundry task")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("expected reverse-substring match for over-specified input")
	}
}

func TestResolve_FuzzyWords(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	item := seedItem(t, s, "u1", store.ItemInput{Title: "Google internship application"})

	got, err := r.Resolve(ctx, "u1", "mark my internship thing")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("expected fuzzy word match")
	}
}

func TestResolve_ShortWordsIgnoredInFuzzy(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	seedItem(t, s, "u1", store.ItemInput{Title: "Go to gym"})

	// Every word of the reference is <= 2 chars except one that matches
	// nothing, so resolution must fail rather than match on "to".
	if _, err := r.Resolve(ctx, "u1", "it is to xyzzyplugh"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	seedItem(t, s, "u1", store.ItemInput{Title: "Something"})

	if _, err := r.Resolve(ctx, "u1", "nonexistent-xyz"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Resolve(ctx, "u1", ""); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for empty ref, got %v", err)
	}
}

func TestResolve_AmbiguousIsStable(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	first := seedItem(t, s, "u1", store.ItemInput{Title: "Team standup"})
	seedItem(t, s, "u1", store.ItemInput{Title: "Standup notes"})

	for i := 0; i < 5; i++ {
		got, err := r.Resolve(ctx, "u1", "standup")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.ID != first.ID {
			t.Fatalf("iteration %d: ambiguous resolution not stable", i)
		}
	}
}

func TestResolve_UserScoped(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	seedItem(t, s, "u1", store.ItemInput{Title: "Secret plans"})

	if _, err := r.Resolve(ctx, "u2", "secret plans"); err != store.ErrNotFound {
		t.Errorf("expected cross-user resolution to fail, got %v", err)
	}
}
