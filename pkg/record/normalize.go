package record

import (
	"strconv"
	"strings"

	"github.com/graphfold/graphfold/pkg/common"
)

// NormalizeEntity turns one entity row into a typed record. The id is
// required; the display name falls back to the title column when the
// extraction run emitted one instead.
func NormalizeEntity(row Row) (common.Entity, error) {
	id := row.Get("id")
	if id == "" {
		return common.Entity{}, missing(KindEntities, row, "id")
	}

	name := row.Get("name")
	if name == "" {
		name = row.Get("title")
	}

	degree, err := parseInt(KindEntities, row, "degree")
	if err != nil {
		return common.Entity{}, err
	}
	hrID, err := parseInt64(KindEntities, row, "human_readable_id")
	if err != nil {
		return common.Entity{}, err
	}

	return common.Entity{
		ID:              id,
		Name:            name,
		Type:            row.Get("type"),
		Description:     row.Get("description"),
		Degree:          degree,
		HumanReadableID: hrID,
		CommunityIDs:    ParseIDList(row.Get("community_ids")),
	}, nil
}

// NormalizeRelationship turns one relationship row into a typed record.
// The id and both endpoint ids are required; an edge without endpoints can
// never resolve.
func NormalizeRelationship(row Row) (common.Relationship, error) {
	id := row.Get("id")
	if id == "" {
		return common.Relationship{}, missing(KindRelationships, row, "id")
	}
	source := row.Get("source")
	if source == "" {
		return common.Relationship{}, missing(KindRelationships, row, "source")
	}
	target := row.Get("target")
	if target == "" {
		return common.Relationship{}, missing(KindRelationships, row, "target")
	}

	weight, err := parseFloat(KindRelationships, row, "weight")
	if err != nil {
		return common.Relationship{}, err
	}
	if weight < 0 {
		return common.Relationship{}, &common.MalformedRecordError{
			Kind: string(KindRelationships), Line: row.Line, Field: "weight", Cause: "negative weight",
		}
	}
	hrID, err := parseInt64(KindRelationships, row, "human_readable_id")
	if err != nil {
		return common.Relationship{}, err
	}

	return common.Relationship{
		ID:              id,
		SourceID:        source,
		TargetID:        target,
		Description:     row.Get("description"),
		Weight:          weight,
		HumanReadableID: hrID,
	}, nil
}

// NormalizeCommunity turns one community row into a typed record.
func NormalizeCommunity(row Row) (common.Community, error) {
	id := row.Get("id")
	if id == "" {
		return common.Community{}, missing(KindCommunities, row, "id")
	}

	level, err := parseInt(KindCommunities, row, "level")
	if err != nil {
		return common.Community{}, err
	}
	if level < 0 {
		return common.Community{}, &common.MalformedRecordError{
			Kind: string(KindCommunities), Line: row.Line, Field: "level", Cause: "negative level",
		}
	}
	rank, err := parseFloat(KindCommunities, row, "rank")
	if err != nil {
		return common.Community{}, err
	}

	return common.Community{
		ID:      id,
		Title:   row.Get("title"),
		Summary: row.Get("summary"),
		Level:   level,
		Rank:    rank,
		Period:  row.Get("period"),
	}, nil
}

// NormalizeDocument turns one document row into a typed record. The title
// falls back to the id so every document has a display label.
func NormalizeDocument(row Row) (common.Document, error) {
	id := row.Get("id")
	if id == "" {
		return common.Document{}, missing(KindDocuments, row, "id")
	}

	title := row.Get("title")
	if title == "" {
		title = id
	}

	return common.Document{
		ID:         id,
		Title:      title,
		RawContent: row.Get("raw_content"),
		EntityIDs:  ParseIDList(row.Get("entity_ids")),
	}, nil
}

// ParseIDList parses a list-valued cell into ids. Exports serialize lists in
// several shapes: "[a, b]", "['a', 'b']", "a;b" or a plain comma-separated
// string. Empty input yields nil.
func ParseIDList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	if value == "" {
		return nil
	}

	sep := ","
	if strings.Contains(value, ";") {
		sep = ";"
	}

	var ids []string
	for _, part := range strings.Split(value, sep) {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part == "" {
			continue
		}
		ids = append(ids, part)
	}
	return ids
}

func missing(kind Kind, row Row, field string) *common.MalformedRecordError {
	return &common.MalformedRecordError{Kind: string(kind), Line: row.Line, Field: field}
}

func parseInt(kind Kind, row Row, field string) (int, error) {
	v, err := parseFloat(kind, row, field)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseInt64(kind Kind, row Row, field string) (int64, error) {
	v, err := parseFloat(kind, row, field)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// parseFloat reads a numeric cell, defaulting absent values to 0. Integer
// columns round-trip through float because tabular exports frequently write
// them as "5.0".
func parseFloat(kind Kind, row Row, field string) (float64, error) {
	raw := row.Get(field)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &common.MalformedRecordError{
			Kind: string(kind), Line: row.Line, Field: field, Cause: "not a number",
		}
	}
	return v, nil
}
