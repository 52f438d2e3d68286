package store

import (
	"context"

	"github.com/graphfold/graphfold/pkg/common"
)

// UpsertResult reports how many records of a batch were newly created and
// how many overwrote an existing record with the same public id.
type UpsertResult struct {
	Created int
	Updated int
}

func (r *UpsertResult) Add(other UpsertResult) {
	r.Created += other.Created
	r.Updated += other.Updated
}

// Link is a typed edge between two already-loaded nodes, addressed by public
// id: entity to community for membership, document to entity for provenance.
type Link struct {
	FromID string
	ToID   string
}

// NeighborEdge is one relationship edge with both endpoints resolved,
// as returned by neighborhood traversal.
type NeighborEdge struct {
	ID          string
	Description string
	Weight      float64
	Source      common.EntitySummary
	Target      common.EntitySummary
}

// GraphStorage is the narrow interface the loader and query engine depend
// on. Upserts are keyed by public id with last-write-wins overwrite
// semantics; all query methods are read-only with deterministic ordering.
//
// Implementations wrap backend failures with common.WrapStore so callers can
// distinguish store outages from caller errors.
type GraphStorage interface {
	UpsertEntities(ctx context.Context, entities []common.Entity) (UpsertResult, error)
	UpsertRelationships(ctx context.Context, relations []common.Relationship) (UpsertResult, error)
	UpsertCommunities(ctx context.Context, communities []common.Community) (UpsertResult, error)
	UpsertDocuments(ctx context.Context, documents []common.Document) (UpsertResult, error)

	// ExistingEntityIDs reports which of the given entity public ids are
	// present in the store. Used to resolve relationship endpoints before
	// edge upsert.
	ExistingEntityIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	ExistingCommunityIDs(ctx context.Context, ids []string) (map[string]struct{}, error)

	LinkCommunityMembers(ctx context.Context, links []Link) error
	LinkDocumentEntities(ctx context.Context, links []Link) error

	// EntityByName resolves a display name to one entity, case-insensitively.
	// Ambiguous names resolve deterministically: highest degree first, then
	// lowest public id. Returns common.ErrNotFound when nothing matches.
	EntityByName(ctx context.Context, name string) (common.Entity, error)

	// NeighborEdges returns every relationship edge incident to any of the
	// given entities, ordered by edge public id.
	NeighborEdges(ctx context.Context, entityIDs []string) ([]NeighborEdge, error)

	CommunitiesForEntity(ctx context.Context, entityID string) ([]common.CommunitySummary, error)

	SearchEntities(ctx context.Context, q string, limit int) ([]common.EntitySummary, error)
	EntitiesByType(ctx context.Context, entityType string, limit int) ([]common.EntitySummary, error)
	AllEntities(ctx context.Context, limit int) ([]common.EntitySummary, error)
	ListTypes(ctx context.Context) ([]common.TypeCount, error)
	SearchCommunities(ctx context.Context, q string, limit int) ([]common.CommunitySummary, error)

	Stats(ctx context.Context) (common.Stats, error)
}
