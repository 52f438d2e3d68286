package common

// Entity represents a node in the graph. An entity can be an organization,
// person, location, or any other concept the extraction pipeline produced.
// The type tag is open-ended; callers must tolerate values they do not know.
//
// Degree is the incident-edge count cached by the extraction run, not
// recomputed on load.
type Entity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	Degree          int    `json:"degree"`
	HumanReadableID int64  `json:"human_readable_id"`

	// CommunityIDs lists the communities this entity belongs to, as given
	// by the extraction output. Membership edges are derived from it.
	CommunityIDs []string `json:"community_ids,omitempty"`
}

// Relationship represents a directed edge between two entities. The edge kind
// is always the generic relates-to; the semantic relation lives in the
// description. Traversal treats the edge as undirected.
type Relationship struct {
	ID              string  `json:"id"`
	SourceID        string  `json:"source"`
	TargetID        string  `json:"target"`
	Description     string  `json:"description"`
	Weight          float64 `json:"weight"`
	HumanReadableID int64   `json:"human_readable_id"`
}

// Community represents a detected cluster of entities.
type Community struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Level   int     `json:"level"`
	Rank    float64 `json:"rank"`
	Period  string  `json:"period"`
}

// Document represents a source text unit.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	RawContent string `json:"raw_content"`

	// EntityIDs lists entities mentioned by this document, when the
	// extraction output carries provenance. Optional.
	EntityIDs []string `json:"entity_ids,omitempty"`
}

// EntitySummary is the slim entity shape returned by search and listing
// operations.
type EntitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Degree      int    `json:"degree"`
}

// CommunitySummary is the slim community shape returned by community search.
type CommunitySummary struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Level   int     `json:"level"`
	Rank    float64 `json:"rank"`
}

// TypeCount is one distinct entity type with the number of entities
// carrying it.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Stats holds the total node and edge counts per kind.
type Stats struct {
	Entities      int64 `json:"total_entities"`
	Relationships int64 `json:"total_relationships"`
	Communities   int64 `json:"total_communities"`
	Documents     int64 `json:"total_documents"`
}
