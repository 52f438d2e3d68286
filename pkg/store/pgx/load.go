package pgx

import (
	"context"
	"fmt"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/store"
)

const upsertEntitiesSQL = `
INSERT INTO entities (public_id, name, type, description, degree, human_readable_id)
SELECT * FROM unnest(
	$1::text[], $2::text[], $3::text[], $4::text[], $5::int[], $6::bigint[]
)
ON CONFLICT (public_id) DO UPDATE SET
	name              = EXCLUDED.name,
	type              = EXCLUDED.type,
	description       = EXCLUDED.description,
	degree            = EXCLUDED.degree,
	human_readable_id = EXCLUDED.human_readable_id,
	updated_at        = now()
RETURNING (xmax = 0) AS inserted;
`

func (s *GraphDBStorage) UpsertEntities(ctx context.Context, entities []common.Entity) (store.UpsertResult, error) {
	var result store.UpsertResult

	err := store.ChunkRange(len(entities), s.batchChunk, func(start, end int) error {
		chunk := entities[start:end]
		logger.Debug("[Store][UpsertEntities] Saving chunk", "entities", len(chunk))

		publicIDs := make([]string, len(chunk))
		names := make([]string, len(chunk))
		types := make([]string, len(chunk))
		descriptions := make([]string, len(chunk))
		degrees := make([]int32, len(chunk))
		hrIDs := make([]int64, len(chunk))
		for i, e := range chunk {
			publicIDs[i] = e.ID
			names[i] = e.Name
			types[i] = e.Type
			descriptions[i] = e.Description
			degrees[i] = int32(e.Degree)
			hrIDs[i] = e.HumanReadableID
		}

		chunkResult, err := s.upsertInTx(ctx, upsertEntitiesSQL,
			publicIDs, names, types, descriptions, degrees, hrIDs)
		if err != nil {
			return err
		}
		result.Add(chunkResult)
		return nil
	})
	if err != nil {
		return result, common.WrapStore("upsert entities", err)
	}

	return result, nil
}

const upsertRelationshipsSQL = `
WITH incoming AS (
	SELECT * FROM unnest(
		$1::text[], $2::text[], $3::text[], $4::text[], $5::float8[], $6::bigint[]
	) AS t(public_id, source_public_id, target_public_id, description, weight, human_readable_id)
)
INSERT INTO relationships (public_id, source_id, target_id, description, weight, human_readable_id)
SELECT i.public_id, se.id, te.id, i.description, i.weight, i.human_readable_id
FROM incoming i
JOIN entities se ON se.public_id = i.source_public_id
JOIN entities te ON te.public_id = i.target_public_id
ON CONFLICT (public_id) DO UPDATE SET
	source_id         = EXCLUDED.source_id,
	target_id         = EXCLUDED.target_id,
	description       = EXCLUDED.description,
	weight            = EXCLUDED.weight,
	human_readable_id = EXCLUDED.human_readable_id,
	updated_at        = now()
RETURNING (xmax = 0) AS inserted;
`

// UpsertRelationships writes edges whose endpoints are already present.
// Callers resolve endpoints first; a row that still fails the entity join
// here means the graph changed underneath the batch, which is an error
// rather than a soft skip.
func (s *GraphDBStorage) UpsertRelationships(ctx context.Context, relations []common.Relationship) (store.UpsertResult, error) {
	var result store.UpsertResult

	err := store.ChunkRange(len(relations), s.batchChunk, func(start, end int) error {
		chunk := relations[start:end]
		logger.Debug("[Store][UpsertRelationships] Saving chunk", "relationships", len(chunk))

		publicIDs := make([]string, len(chunk))
		sourceIDs := make([]string, len(chunk))
		targetIDs := make([]string, len(chunk))
		descriptions := make([]string, len(chunk))
		weights := make([]float64, len(chunk))
		hrIDs := make([]int64, len(chunk))
		for i, r := range chunk {
			publicIDs[i] = r.ID
			sourceIDs[i] = r.SourceID
			targetIDs[i] = r.TargetID
			descriptions[i] = r.Description
			weights[i] = r.Weight
			hrIDs[i] = r.HumanReadableID
		}

		chunkResult, err := s.upsertInTx(ctx, upsertRelationshipsSQL,
			publicIDs, sourceIDs, targetIDs, descriptions, weights, hrIDs)
		if err != nil {
			return err
		}
		if chunkResult.Created+chunkResult.Updated != len(chunk) {
			return fmt.Errorf("upserted %d of %d relationships: unresolved endpoint",
				chunkResult.Created+chunkResult.Updated, len(chunk))
		}
		result.Add(chunkResult)
		return nil
	})
	if err != nil {
		return result, common.WrapStore("upsert relationships", err)
	}

	return result, nil
}

const upsertCommunitiesSQL = `
INSERT INTO communities (public_id, title, summary, level, rank, period)
SELECT * FROM unnest(
	$1::text[], $2::text[], $3::text[], $4::int[], $5::float8[], $6::text[]
)
ON CONFLICT (public_id) DO UPDATE SET
	title      = EXCLUDED.title,
	summary    = EXCLUDED.summary,
	level      = EXCLUDED.level,
	rank       = EXCLUDED.rank,
	period     = EXCLUDED.period,
	updated_at = now()
RETURNING (xmax = 0) AS inserted;
`

func (s *GraphDBStorage) UpsertCommunities(ctx context.Context, communities []common.Community) (store.UpsertResult, error) {
	var result store.UpsertResult

	err := store.ChunkRange(len(communities), s.batchChunk, func(start, end int) error {
		chunk := communities[start:end]
		logger.Debug("[Store][UpsertCommunities] Saving chunk", "communities", len(chunk))

		publicIDs := make([]string, len(chunk))
		titles := make([]string, len(chunk))
		summaries := make([]string, len(chunk))
		levels := make([]int32, len(chunk))
		ranks := make([]float64, len(chunk))
		periods := make([]string, len(chunk))
		for i, c := range chunk {
			publicIDs[i] = c.ID
			titles[i] = c.Title
			summaries[i] = c.Summary
			levels[i] = int32(c.Level)
			ranks[i] = c.Rank
			periods[i] = c.Period
		}

		chunkResult, err := s.upsertInTx(ctx, upsertCommunitiesSQL,
			publicIDs, titles, summaries, levels, ranks, periods)
		if err != nil {
			return err
		}
		result.Add(chunkResult)
		return nil
	})
	if err != nil {
		return result, common.WrapStore("upsert communities", err)
	}

	return result, nil
}

const upsertDocumentsSQL = `
INSERT INTO documents (public_id, title, raw_content)
SELECT * FROM unnest($1::text[], $2::text[], $3::text[])
ON CONFLICT (public_id) DO UPDATE SET
	title       = EXCLUDED.title,
	raw_content = EXCLUDED.raw_content,
	updated_at  = now()
RETURNING (xmax = 0) AS inserted;
`

func (s *GraphDBStorage) UpsertDocuments(ctx context.Context, documents []common.Document) (store.UpsertResult, error) {
	var result store.UpsertResult

	err := store.ChunkRange(len(documents), s.batchChunk, func(start, end int) error {
		chunk := documents[start:end]
		logger.Debug("[Store][UpsertDocuments] Saving chunk", "documents", len(chunk))

		publicIDs := make([]string, len(chunk))
		titles := make([]string, len(chunk))
		contents := make([]string, len(chunk))
		for i, d := range chunk {
			publicIDs[i] = d.ID
			titles[i] = d.Title
			contents[i] = d.RawContent
		}

		chunkResult, err := s.upsertInTx(ctx, upsertDocumentsSQL, publicIDs, titles, contents)
		if err != nil {
			return err
		}
		result.Add(chunkResult)
		return nil
	})
	if err != nil {
		return result, common.WrapStore("upsert documents", err)
	}

	return result, nil
}

// upsertInTx runs one batch upsert statement in its own transaction and
// counts inserted vs. updated rows from the RETURNING clause.
func (s *GraphDBStorage) upsertInTx(ctx context.Context, sql string, args ...any) (store.UpsertResult, error) {
	var result store.UpsertResult

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return result, err
	}
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			rows.Close()
			return result, err
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return store.UpsertResult{}, err
	}
	return result, nil
}

func (s *GraphDBStorage) ExistingEntityIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return s.existingIDs(ctx, "entities", ids)
}

func (s *GraphDBStorage) ExistingCommunityIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return s.existingIDs(ctx, "communities", ids)
}

func (s *GraphDBStorage) existingIDs(ctx context.Context, table string, ids []string) (map[string]struct{}, error) {
	ids = store.DedupeStrings(ids)
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := s.conn.Query(ctx,
		`SELECT public_id FROM `+table+` WHERE public_id = ANY($1)`, ids)
	if err != nil {
		return nil, common.WrapStore("resolve "+table, err)
	}
	defer rows.Close()

	existing := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.WrapStore("resolve "+table, err)
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("resolve "+table, err)
	}
	return existing, nil
}

const linkCommunityMembersSQL = `
WITH incoming AS (
	SELECT * FROM unnest($1::text[], $2::text[]) AS t(entity_public_id, community_public_id)
)
INSERT INTO community_members (entity_id, community_id)
SELECT e.id, c.id
FROM incoming i
JOIN entities e ON e.public_id = i.entity_public_id
JOIN communities c ON c.public_id = i.community_public_id
ON CONFLICT (entity_id, community_id) DO NOTHING;
`

func (s *GraphDBStorage) LinkCommunityMembers(ctx context.Context, links []store.Link) error {
	err := s.linkPairs(ctx, linkCommunityMembersSQL, links)
	return common.WrapStore("link community members", err)
}

const linkDocumentEntitiesSQL = `
WITH incoming AS (
	SELECT * FROM unnest($1::text[], $2::text[]) AS t(document_public_id, entity_public_id)
)
INSERT INTO document_entities (document_id, entity_id)
SELECT d.id, e.id
FROM incoming i
JOIN documents d ON d.public_id = i.document_public_id
JOIN entities e ON e.public_id = i.entity_public_id
ON CONFLICT (document_id, entity_id) DO NOTHING;
`

func (s *GraphDBStorage) LinkDocumentEntities(ctx context.Context, links []store.Link) error {
	err := s.linkPairs(ctx, linkDocumentEntitiesSQL, links)
	return common.WrapStore("link document entities", err)
}

func (s *GraphDBStorage) linkPairs(ctx context.Context, sql string, links []store.Link) error {
	return store.ChunkRange(len(links), s.batchChunk, func(start, end int) error {
		chunk := links[start:end]

		from := make([]string, len(chunk))
		to := make([]string, len(chunk))
		for i, l := range chunk {
			from[i] = l.FromID
			to[i] = l.ToID
		}

		_, err := s.conn.Exec(ctx, sql, from, to)
		return err
	})
}
