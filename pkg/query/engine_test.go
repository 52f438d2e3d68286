package query

import (
	"context"
	"errors"
	"testing"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/store/memory"
)

// seedStore loads a small knowledge graph: an AI industry cluster around
// OpenAI plus one unrelated entity.
func seedStore(t *testing.T) *memory.MemoryStorage {
	t.Helper()
	ctx := context.Background()
	st := memory.NewMemoryStorage()

	_, err := st.UpsertEntities(ctx, []common.Entity{
		{ID: "1", Name: "OpenAI", Type: "organization", Description: "AI research lab", Degree: 3},
		{ID: "2", Name: "Sam Altman", Type: "person", Description: "CEO of OpenAI", Degree: 2},
		{ID: "3", Name: "Microsoft", Type: "organization", Description: "Technology company", Degree: 2},
		{ID: "4", Name: "Azure", Type: "product", Description: "Cloud platform", Degree: 1},
		{ID: "5", Name: "CERN", Type: "organization", Description: "Physics laboratory", Degree: 0},
	})
	if err != nil {
		t.Fatalf("seed entities: %v", err)
	}

	_, err = st.UpsertRelationships(ctx, []common.Relationship{
		{ID: "r1", SourceID: "1", TargetID: "2", Description: "led by", Weight: 2},
		{ID: "r2", SourceID: "1", TargetID: "3", Description: "partners with", Weight: 1},
		{ID: "r3", SourceID: "3", TargetID: "4", Description: "operates", Weight: 1},
	})
	if err != nil {
		t.Fatalf("seed relationships: %v", err)
	}

	_, err = st.UpsertCommunities(ctx, []common.Community{
		{ID: "c1", Title: "AI Industry", Summary: "Organizations and people in AI", Level: 0, Rank: 8.5},
		{ID: "c2", Title: "Cloud Computing", Summary: "Cloud platforms and vendors", Level: 0, Rank: 6.0},
	})
	if err != nil {
		t.Fatalf("seed communities: %v", err)
	}

	return st
}

func newTestEngine(t *testing.T) (*Engine, *memory.MemoryStorage) {
	t.Helper()
	st := seedStore(t)
	return NewEngine(NewEngineParams{Store: st}), st
}

func TestSearch(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("rejects empty term", func(t *testing.T) {
		for _, q := range []string{"", "   "} {
			if _, err := e.Search(ctx, q, 10); !errors.Is(err, common.ErrInvalidArgument) {
				t.Fatalf("query %q: expected ErrInvalidArgument, got %v", q, err)
			}
		}
	})

	t.Run("matches name case-insensitively", func(t *testing.T) {
		got, err := e.Search(ctx, "openai", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// "OpenAI" by name, "Sam Altman" by description.
		if len(got) != 2 {
			t.Fatalf("unexpected result count: got %d, want 2", len(got))
		}
		if got[0].Name != "OpenAI" || got[1].Name != "Sam Altman" {
			t.Fatalf("results must be ordered by descending degree: %v", got)
		}
	})

	t.Run("matches type field", func(t *testing.T) {
		got, err := e.Search(ctx, "person", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "2" {
			t.Fatalf("unexpected results: %v", got)
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		got, err := e.Search(ctx, "o", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected result count: got %d, want 2", len(got))
		}
	})
}

func TestListTypes(t *testing.T) {
	e, _ := newTestEngine(t)

	types, err := e.ListTypes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		typ   string
		count int
	}{
		{"organization", 3},
		{"person", 1},
		{"product", 1},
	}
	if len(types) != len(want) {
		t.Fatalf("unexpected type count: got %d, want %d", len(types), len(want))
	}
	for i, w := range want {
		if types[i].Type != w.typ || types[i].Count != w.count {
			t.Fatalf("unexpected entry at %d: got %+v, want %+v", i, types[i], w)
		}
	}
}

func TestByType(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.ByType(ctx, "  ", 10); !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	got, err := e.ByType(ctx, "ORGANIZATION", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected result count: got %d, want 3", len(got))
	}
	if got[0].ID != "1" {
		t.Fatalf("highest-degree entity must come first: %v", got)
	}

	got, err = e.ByType(ctx, "spacecraft", 10)
	if err != nil {
		t.Fatalf("unknown type must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown type must yield empty results: %v", got)
	}
}

func TestListEntities(t *testing.T) {
	e, _ := newTestEngine(t)

	got, err := e.ListEntities(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected result count: got %d, want 3", len(got))
	}
	if got[0].ID != "1" {
		t.Fatalf("highest-degree entity must come first: %v", got)
	}
}

func TestSearchCommunities(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.SearchCommunities(ctx, "", 10); !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	got, err := e.SearchCommunities(ctx, "cloud", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("unexpected results: %v", got)
	}

	// Matches across title and summary, ranked.
	got, err = e.SearchCommunities(ctx, "o", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c1" {
		t.Fatalf("results must be ordered by descending rank: %v", got)
	}
}

func TestStats(t *testing.T) {
	e, _ := newTestEngine(t)

	stats, err := e.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entities != 5 || stats.Relationships != 3 || stats.Communities != 2 || stats.Documents != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, defaultLimit},
		{-5, defaultLimit},
		{7, 7},
		{maxLimit, maxLimit},
		{maxLimit + 1, maxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Fatalf("clampLimit(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}
