// Package memory provides an in-process store.GraphStorage used by unit
// tests and local experiments. It mirrors the ordering guarantees of the
// PostgreSQL implementation so engine and loader behavior is identical
// against either backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/store"
)

type MemoryStorage struct {
	mu            sync.RWMutex
	entities      map[string]common.Entity
	relationships map[string]common.Relationship
	communities   map[string]common.Community
	documents     map[string]common.Document
	members       map[store.Link]struct{}
	docEntities   map[store.Link]struct{}
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entities:      make(map[string]common.Entity),
		relationships: make(map[string]common.Relationship),
		communities:   make(map[string]common.Community),
		documents:     make(map[string]common.Document),
		members:       make(map[store.Link]struct{}),
		docEntities:   make(map[store.Link]struct{}),
	}
}

var _ store.GraphStorage = (*MemoryStorage)(nil)

func (s *MemoryStorage) UpsertEntities(ctx context.Context, entities []common.Entity) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result store.UpsertResult
	for _, e := range entities {
		if _, ok := s.entities[e.ID]; ok {
			result.Updated++
		} else {
			result.Created++
		}
		s.entities[e.ID] = e
	}
	return result, nil
}

func (s *MemoryStorage) UpsertRelationships(ctx context.Context, relations []common.Relationship) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result store.UpsertResult
	for _, r := range relations {
		if _, ok := s.entities[r.SourceID]; !ok {
			return result, common.WrapStore("upsert relationships", errUnresolved(r.SourceID))
		}
		if _, ok := s.entities[r.TargetID]; !ok {
			return result, common.WrapStore("upsert relationships", errUnresolved(r.TargetID))
		}
		if _, ok := s.relationships[r.ID]; ok {
			result.Updated++
		} else {
			result.Created++
		}
		s.relationships[r.ID] = r
	}
	return result, nil
}

func (s *MemoryStorage) UpsertCommunities(ctx context.Context, communities []common.Community) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result store.UpsertResult
	for _, c := range communities {
		if _, ok := s.communities[c.ID]; ok {
			result.Updated++
		} else {
			result.Created++
		}
		s.communities[c.ID] = c
	}
	return result, nil
}

func (s *MemoryStorage) UpsertDocuments(ctx context.Context, documents []common.Document) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result store.UpsertResult
	for _, d := range documents {
		if _, ok := s.documents[d.ID]; ok {
			result.Updated++
		} else {
			result.Created++
		}
		s.documents[d.ID] = d
	}
	return result, nil
}

func (s *MemoryStorage) ExistingEntityIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := s.entities[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (s *MemoryStorage) ExistingCommunityIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := s.communities[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (s *MemoryStorage) LinkCommunityMembers(ctx context.Context, links []store.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range links {
		s.members[l] = struct{}{}
	}
	return nil
}

func (s *MemoryStorage) LinkDocumentEntities(ctx context.Context, links []store.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range links {
		s.docEntities[l] = struct{}{}
	}
	return nil
}

func (s *MemoryStorage) EntityByName(ctx context.Context, name string) (common.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []common.Entity
	for _, e := range s.entities {
		if strings.EqualFold(e.Name, name) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return common.Entity{}, common.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Degree != matches[j].Degree {
			return matches[i].Degree > matches[j].Degree
		}
		return matches[i].ID < matches[j].ID
	})
	return matches[0], nil
}

func (s *MemoryStorage) NeighborEdges(ctx context.Context, entityIDs []string) ([]store.NeighborEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		wanted[id] = struct{}{}
	}

	var edges []store.NeighborEdge
	for _, r := range s.relationships {
		_, srcHit := wanted[r.SourceID]
		_, tgtHit := wanted[r.TargetID]
		if !srcHit && !tgtHit {
			continue
		}
		edges = append(edges, store.NeighborEdge{
			ID:          r.ID,
			Description: r.Description,
			Weight:      r.Weight,
			Source:      s.summary(r.SourceID),
			Target:      s.summary(r.TargetID),
		})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges, nil
}

func (s *MemoryStorage) CommunitiesForEntity(ctx context.Context, entityID string) ([]common.CommunitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var communities []common.CommunitySummary
	for link := range s.members {
		if link.FromID != entityID {
			continue
		}
		if c, ok := s.communities[link.ToID]; ok {
			communities = append(communities, summaryOf(c))
		}
	}
	sortCommunities(communities)
	return communities, nil
}

func (s *MemoryStorage) SearchEntities(ctx context.Context, q string, limit int) ([]common.EntitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(q)
	var matches []common.EntitySummary
	for _, e := range s.entities {
		if strings.Contains(strings.ToLower(e.Name), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle) ||
			strings.Contains(strings.ToLower(e.Type), needle) {
			matches = append(matches, entitySummary(e))
		}
	}
	sortEntities(matches)
	return clip(matches, limit), nil
}

func (s *MemoryStorage) EntitiesByType(ctx context.Context, entityType string, limit int) ([]common.EntitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []common.EntitySummary
	for _, e := range s.entities {
		if strings.EqualFold(e.Type, entityType) {
			matches = append(matches, entitySummary(e))
		}
	}
	sortEntities(matches)
	return clip(matches, limit), nil
}

func (s *MemoryStorage) AllEntities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]common.EntitySummary, 0, len(s.entities))
	for _, e := range s.entities {
		matches = append(matches, entitySummary(e))
	}
	sortEntities(matches)
	return clip(matches, limit), nil
}

func (s *MemoryStorage) ListTypes(ctx context.Context) ([]common.TypeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range s.entities {
		counts[e.Type]++
	}

	types := make([]common.TypeCount, 0, len(counts))
	for t, n := range counts {
		types = append(types, common.TypeCount{Type: t, Count: n})
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Count != types[j].Count {
			return types[i].Count > types[j].Count
		}
		return types[i].Type < types[j].Type
	})
	return types, nil
}

func (s *MemoryStorage) SearchCommunities(ctx context.Context, q string, limit int) ([]common.CommunitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(q)
	var matches []common.CommunitySummary
	for _, c := range s.communities {
		if strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Summary), needle) {
			matches = append(matches, summaryOf(c))
		}
	}
	sortCommunities(matches)
	return clip(matches, limit), nil
}

func (s *MemoryStorage) Stats(ctx context.Context) (common.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return common.Stats{
		Entities:      int64(len(s.entities)),
		Relationships: int64(len(s.relationships)),
		Communities:   int64(len(s.communities)),
		Documents:     int64(len(s.documents)),
	}, nil
}

// MembershipCount reports how many membership links exist. Test helper.
func (s *MemoryStorage) MembershipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// DocumentLinkCount reports how many provenance links exist. Test helper.
func (s *MemoryStorage) DocumentLinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docEntities)
}

func (s *MemoryStorage) summary(id string) common.EntitySummary {
	return entitySummary(s.entities[id])
}

func entitySummary(e common.Entity) common.EntitySummary {
	return common.EntitySummary{
		ID:          e.ID,
		Name:        e.Name,
		Type:        e.Type,
		Description: e.Description,
		Degree:      e.Degree,
	}
}

func summaryOf(c common.Community) common.CommunitySummary {
	return common.CommunitySummary{
		ID:      c.ID,
		Title:   c.Title,
		Summary: c.Summary,
		Level:   c.Level,
		Rank:    c.Rank,
	}
}

func sortEntities(entities []common.EntitySummary) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Degree != entities[j].Degree {
			return entities[i].Degree > entities[j].Degree
		}
		if entities[i].Name != entities[j].Name {
			return entities[i].Name < entities[j].Name
		}
		return entities[i].ID < entities[j].ID
	})
}

func sortCommunities(communities []common.CommunitySummary) {
	sort.Slice(communities, func(i, j int) bool {
		if communities[i].Rank != communities[j].Rank {
			return communities[i].Rank > communities[j].Rank
		}
		if communities[i].Title != communities[j].Title {
			return communities[i].Title < communities[j].Title
		}
		return communities[i].ID < communities[j].ID
	})
}

func clip[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

type unresolvedError string

func (e unresolvedError) Error() string {
	return "unresolved entity: " + string(e)
}

func errUnresolved(id string) error {
	return unresolvedError(id)
}
