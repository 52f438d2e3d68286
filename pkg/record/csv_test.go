package record

import (
	"strings"
	"testing"
)

func TestReadRows(t *testing.T) {
	input := strings.Join([]string{
		"ID,Name, Type ,description",
		"1,OpenAI,organization,AI lab",
		"2,Sam Altman",
		`3,"Quoted, Name",person,`,
	}, "\n")

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("unexpected row count: got %d, want 3", len(rows))
	}

	if got := rows[0].Get("id"); got != "1" {
		t.Fatalf("header must be lowercased and trimmed: got id=%q", got)
	}
	if got := rows[0].Get("type"); got != "organization" {
		t.Fatalf("unexpected type: got %q", got)
	}

	// Short rows pad the missing trailing fields.
	if got := rows[1].Get("type"); got != "" {
		t.Fatalf("short row must pad missing fields: got %q", got)
	}
	if rows[1].Get("name") != "Sam Altman" {
		t.Fatalf("unexpected name: got %q", rows[1].Get("name"))
	}

	if got := rows[2].Get("name"); got != "Quoted, Name" {
		t.Fatalf("quoted field must survive: got %q", got)
	}

	// Line numbers start after the header line.
	if rows[0].Line != 2 || rows[1].Line != 3 || rows[2].Line != 4 {
		t.Fatalf("unexpected line numbers: got %d, %d, %d", rows[0].Line, rows[1].Line, rows[2].Line)
	}
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != nil {
		t.Fatalf("empty input must yield no rows, got %d", len(rows))
	}
}
