package record

import (
	"errors"
	"reflect"
	"testing"

	"github.com/graphfold/graphfold/pkg/common"
)

func row(fields map[string]string) Row {
	return Row{Line: 2, Fields: fields}
}

func TestNormalizeEntity(t *testing.T) {
	t.Run("applies defaults for absent optional fields", func(t *testing.T) {
		e, err := NormalizeEntity(row(map[string]string{"id": "e1"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Name != "" || e.Type != "" || e.Degree != 0 || e.HumanReadableID != 0 {
			t.Fatalf("optional fields must default to zero values: %+v", e)
		}
	})

	t.Run("name falls back to title", func(t *testing.T) {
		e, err := NormalizeEntity(row(map[string]string{"id": "e1", "title": "OpenAI"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Name != "OpenAI" {
			t.Fatalf("unexpected name: got %q, want %q", e.Name, "OpenAI")
		}
	})

	t.Run("accepts float-formatted integer columns", func(t *testing.T) {
		e, err := NormalizeEntity(row(map[string]string{"id": "e1", "degree": "5.0", "human_readable_id": "12.0"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Degree != 5 || e.HumanReadableID != 12 {
			t.Fatalf("unexpected numerics: degree=%d hr_id=%d", e.Degree, e.HumanReadableID)
		}
	})

	t.Run("missing id is malformed", func(t *testing.T) {
		_, err := NormalizeEntity(row(map[string]string{"name": "OpenAI"}))
		var malformed *common.MalformedRecordError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedRecordError, got %v", err)
		}
		if malformed.Field != "id" || malformed.Line != 2 {
			t.Fatalf("unexpected error detail: %+v", malformed)
		}
	})

	t.Run("parses community id list", func(t *testing.T) {
		e, err := NormalizeEntity(row(map[string]string{"id": "e1", "community_ids": "[c1, c2]"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(e.CommunityIDs, []string{"c1", "c2"}) {
			t.Fatalf("unexpected community ids: %v", e.CommunityIDs)
		}
	})
}

func TestNormalizeRelationship(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		wantField string
	}{
		{name: "missing id", fields: map[string]string{"source": "a", "target": "b"}, wantField: "id"},
		{name: "missing source", fields: map[string]string{"id": "r1", "target": "b"}, wantField: "source"},
		{name: "missing target", fields: map[string]string{"id": "r1", "source": "a"}, wantField: "target"},
		{name: "negative weight", fields: map[string]string{"id": "r1", "source": "a", "target": "b", "weight": "-1"}, wantField: "weight"},
		{name: "unparsable weight", fields: map[string]string{"id": "r1", "source": "a", "target": "b", "weight": "heavy"}, wantField: "weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRelationship(row(tt.fields))
			var malformed *common.MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRecordError, got %v", err)
			}
			if malformed.Field != tt.wantField {
				t.Fatalf("unexpected field: got %q, want %q", malformed.Field, tt.wantField)
			}
		})
	}

	t.Run("absent weight defaults to zero", func(t *testing.T) {
		r, err := NormalizeRelationship(row(map[string]string{"id": "r1", "source": "a", "target": "b"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Weight != 0 {
			t.Fatalf("unexpected weight: got %v, want 0", r.Weight)
		}
	})
}

func TestNormalizeCommunity(t *testing.T) {
	t.Run("negative level is malformed", func(t *testing.T) {
		_, err := NormalizeCommunity(row(map[string]string{"id": "c1", "level": "-1"}))
		var malformed *common.MalformedRecordError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedRecordError, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		c, err := NormalizeCommunity(row(map[string]string{"id": "c1"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Level != 0 || c.Rank != 0 || c.Title != "" {
			t.Fatalf("optional fields must default to zero values: %+v", c)
		}
	})
}

func TestNormalizeDocument(t *testing.T) {
	d, err := NormalizeDocument(row(map[string]string{"id": "d1", "entity_ids": "e1;e2"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title != "d1" {
		t.Fatalf("title must fall back to id: got %q", d.Title)
	}
	if !reflect.DeepEqual(d.EntityIDs, []string{"e1", "e2"}) {
		t.Fatalf("unexpected entity ids: %v", d.EntityIDs)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "empty brackets", input: "[]", want: nil},
		{name: "bracketed list", input: "[a, b]", want: []string{"a", "b"}},
		{name: "quoted values", input: `['a', "b"]`, want: []string{"a", "b"}},
		{name: "semicolon separated", input: "a;b;c", want: []string{"a", "b", "c"}},
		{name: "plain comma separated", input: "a, b", want: []string{"a", "b"}},
		{name: "drops empty parts", input: "a,,b", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIDList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected ids: got %v, want %v", got, tt.want)
			}
		})
	}
}
