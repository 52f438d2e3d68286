package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestChunkRange(t *testing.T) {
	var got [][2]int
	err := ChunkRange(10, 4, func(start, end int) error {
		got = append(got, [2]int{start, end})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 4}, {4, 8}, {8, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected windows: got %v, want %v", got, want)
	}
}

func TestChunkRangeEmpty(t *testing.T) {
	err := ChunkRange(0, 4, func(start, end int) error {
		t.Fatalf("fn must not run for an empty range")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChunkRangeStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := ChunkRange(10, 4, func(start, end int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("fn must stop after the first failure: got %d calls", calls)
	}
}

func TestDedupeLast(t *testing.T) {
	type rec struct {
		ID    string
		Value int
	}
	id := func(r rec) string { return r.ID }

	tests := []struct {
		name string
		in   []rec
		want []rec
	}{
		{name: "nil", in: nil, want: nil},
		{
			name: "no repeats",
			in:   []rec{{"a", 1}, {"b", 2}},
			want: []rec{{"a", 1}, {"b", 2}},
		},
		{
			name: "last occurrence wins",
			in:   []rec{{"a", 1}, {"b", 2}, {"a", 3}},
			want: []rec{{"a", 3}, {"b", 2}},
		},
		{
			name: "keeps first-seen order across repeats",
			in:   []rec{{"b", 1}, {"a", 2}, {"b", 3}, {"a", 4}},
			want: []rec{{"b", 3}, {"a", 4}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeLast(tt.in, id)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected result: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDedupeStrings(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "drops empties and repeats", in: []string{"a", "", "b", "a", "b"}, want: []string{"a", "b"}},
		{name: "preserves first-seen order", in: []string{"c", "a", "c", "b"}, want: []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeStrings(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected result: got %v, want %v", got, tt.want)
			}
		})
	}
}
