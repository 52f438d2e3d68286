package pgx

import (
	"context"
	"errors"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/store"
)

const entityByNameSQL = `
SELECT public_id, name, type, description, degree, human_readable_id
FROM entities
WHERE lower(name) = lower($1)
ORDER BY degree DESC, public_id ASC
LIMIT 1;
`

func (s *GraphDBStorage) EntityByName(ctx context.Context, name string) (common.Entity, error) {
	var e common.Entity
	err := s.conn.QueryRow(ctx, entityByNameSQL, name).Scan(
		&e.ID, &e.Name, &e.Type, &e.Description, &e.Degree, &e.HumanReadableID)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Entity{}, common.ErrNotFound
	}
	if err != nil {
		return common.Entity{}, common.WrapStore("entity by name", err)
	}
	return e, nil
}

const neighborEdgesSQL = `
SELECT
	r.public_id, r.description, r.weight,
	se.public_id, se.name, se.type, se.description, se.degree,
	te.public_id, te.name, te.type, te.description, te.degree
FROM relationships r
JOIN entities se ON se.id = r.source_id
JOIN entities te ON te.id = r.target_id
WHERE se.public_id = ANY($1) OR te.public_id = ANY($1)
ORDER BY r.public_id ASC;
`

func (s *GraphDBStorage) NeighborEdges(ctx context.Context, entityIDs []string) ([]store.NeighborEdge, error) {
	entityIDs = store.DedupeStrings(entityIDs)
	if len(entityIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, neighborEdgesSQL, entityIDs)
	if err != nil {
		return nil, common.WrapStore("neighbor edges", err)
	}
	defer rows.Close()

	var edges []store.NeighborEdge
	for rows.Next() {
		var e store.NeighborEdge
		err := rows.Scan(
			&e.ID, &e.Description, &e.Weight,
			&e.Source.ID, &e.Source.Name, &e.Source.Type, &e.Source.Description, &e.Source.Degree,
			&e.Target.ID, &e.Target.Name, &e.Target.Type, &e.Target.Description, &e.Target.Degree,
		)
		if err != nil {
			return nil, common.WrapStore("neighbor edges", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("neighbor edges", err)
	}
	return edges, nil
}

const communitiesForEntitySQL = `
SELECT c.public_id, c.title, c.summary, c.level, c.rank
FROM communities c
JOIN community_members cm ON cm.community_id = c.id
JOIN entities e ON e.id = cm.entity_id
WHERE e.public_id = $1
ORDER BY c.rank DESC, c.public_id ASC;
`

func (s *GraphDBStorage) CommunitiesForEntity(ctx context.Context, entityID string) ([]common.CommunitySummary, error) {
	return s.queryCommunities(ctx, communitiesForEntitySQL, entityID)
}

const searchEntitiesSQL = `
SELECT public_id, name, type, description, degree
FROM entities
WHERE name ILIKE $1 ESCAPE '\'
   OR description ILIKE $1 ESCAPE '\'
   OR type ILIKE $1 ESCAPE '\'
ORDER BY degree DESC, name ASC, public_id ASC
LIMIT $2;
`

func (s *GraphDBStorage) SearchEntities(ctx context.Context, q string, limit int) ([]common.EntitySummary, error) {
	return s.queryEntities(ctx, searchEntitiesSQL, likePattern(q), limit)
}

const entitiesByTypeSQL = `
SELECT public_id, name, type, description, degree
FROM entities
WHERE lower(type) = lower($1)
ORDER BY degree DESC, name ASC, public_id ASC
LIMIT $2;
`

func (s *GraphDBStorage) EntitiesByType(ctx context.Context, entityType string, limit int) ([]common.EntitySummary, error) {
	return s.queryEntities(ctx, entitiesByTypeSQL, entityType, limit)
}

const allEntitiesSQL = `
SELECT public_id, name, type, description, degree
FROM entities
ORDER BY degree DESC, name ASC, public_id ASC
LIMIT $1;
`

func (s *GraphDBStorage) AllEntities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	return s.queryEntities(ctx, allEntitiesSQL, limit)
}

const listTypesSQL = `
SELECT type, count(*)
FROM entities
GROUP BY type
ORDER BY count(*) DESC, type ASC;
`

func (s *GraphDBStorage) ListTypes(ctx context.Context) ([]common.TypeCount, error) {
	rows, err := s.conn.Query(ctx, listTypesSQL)
	if err != nil {
		return nil, common.WrapStore("list types", err)
	}
	defer rows.Close()

	var types []common.TypeCount
	for rows.Next() {
		var tc common.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, common.WrapStore("list types", err)
		}
		types = append(types, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("list types", err)
	}
	return types, nil
}

const searchCommunitiesSQL = `
SELECT public_id, title, summary, level, rank
FROM communities
WHERE title ILIKE $1 ESCAPE '\'
   OR summary ILIKE $1 ESCAPE '\'
ORDER BY rank DESC, title ASC, public_id ASC
LIMIT $2;
`

func (s *GraphDBStorage) SearchCommunities(ctx context.Context, q string, limit int) ([]common.CommunitySummary, error) {
	return s.queryCommunities(ctx, searchCommunitiesSQL, likePattern(q), limit)
}

const statsSQL = `
SELECT
	(SELECT count(*) FROM entities),
	(SELECT count(*) FROM relationships),
	(SELECT count(*) FROM communities),
	(SELECT count(*) FROM documents);
`

func (s *GraphDBStorage) Stats(ctx context.Context) (common.Stats, error) {
	var stats common.Stats
	err := s.conn.QueryRow(ctx, statsSQL).Scan(
		&stats.Entities, &stats.Relationships, &stats.Communities, &stats.Documents)
	if err != nil {
		return common.Stats{}, common.WrapStore("stats", err)
	}
	return stats, nil
}

func (s *GraphDBStorage) queryEntities(ctx context.Context, sql string, args ...any) ([]common.EntitySummary, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, common.WrapStore("query entities", err)
	}
	defer rows.Close()

	var entities []common.EntitySummary
	for rows.Next() {
		var e common.EntitySummary
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Description, &e.Degree); err != nil {
			return nil, common.WrapStore("query entities", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("query entities", err)
	}
	return entities, nil
}

func (s *GraphDBStorage) queryCommunities(ctx context.Context, sql string, args ...any) ([]common.CommunitySummary, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, common.WrapStore("query communities", err)
	}
	defer rows.Close()

	var communities []common.CommunitySummary
	for rows.Next() {
		var c common.CommunitySummary
		if err := rows.Scan(&c.ID, &c.Title, &c.Summary, &c.Level, &c.Rank); err != nil {
			return nil, common.WrapStore("query communities", err)
		}
		communities = append(communities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("query communities", err)
	}
	return communities, nil
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped, so user input never acts as a wildcard.
func likePattern(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(q) + "%"
}
