// Package loader ingests normalized extraction records into the graph
// store. Ingestion is the only writer in the system; every load is an
// id-keyed upsert so running the same batch twice leaves the graph
// unchanged.
package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/record"
	"github.com/graphfold/graphfold/pkg/store"
)

// FailedEdge records one edge that could not be created because an endpoint
// did not resolve to a loaded node. Collected, never thrown.
type FailedEdge struct {
	ID       string `json:"id"`
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Reason   string `json:"reason"`
}

// Report summarizes one ingestion run across all record kinds.
type Report struct {
	Created     int          `json:"created"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	FailedEdges []FailedEdge `json:"failed_edges"`
}

func (r *Report) add(result store.UpsertResult) {
	r.Created += result.Created
	r.Updated += result.Updated
}

// Loader upserts extraction output into a graph store. It is meant to run as
// a single offline batch job; concurrent runs stay well-defined because every
// write is keyed by public id, but callers should serialize runs (see
// pkg/leaselock).
type Loader struct {
	store store.GraphStorage
}

func NewLoader(s store.GraphStorage) *Loader {
	return &Loader{store: s}
}

// Ingest runs the full ordered load from a batch source: entities first
// (relationship resolution depends on them), then relationships, then
// communities and documents in parallel, then membership and provenance
// links. Malformed rows are skipped and counted; unresolved edges are
// collected; a store failure aborts with the failing kind in the error.
func (l *Loader) Ingest(ctx context.Context, src record.Source) (Report, error) {
	var report Report

	// Batch files can repeat an id across rows. Collapse repeats to the
	// last occurrence before upserting: one statement must not touch the
	// same row twice, and the last row wins either way.
	entities, err := normalizeBatch(ctx, src, record.KindEntities, &report, record.NormalizeEntity)
	if err != nil {
		return report, err
	}
	entities = store.DedupeLast(entities, func(e common.Entity) string { return e.ID })
	if err := l.LoadEntities(ctx, entities, &report); err != nil {
		return report, err
	}

	relations, err := normalizeBatch(ctx, src, record.KindRelationships, &report, record.NormalizeRelationship)
	if err != nil {
		return report, err
	}
	relations = store.DedupeLast(relations, func(r common.Relationship) string { return r.ID })
	if err := l.LoadRelationships(ctx, relations, &report); err != nil {
		return report, err
	}

	communities, err := normalizeBatch(ctx, src, record.KindCommunities, &report, record.NormalizeCommunity)
	if err != nil {
		return report, err
	}
	communities = store.DedupeLast(communities, func(c common.Community) string { return c.ID })
	documents, err := normalizeBatch(ctx, src, record.KindDocuments, &report, record.NormalizeDocument)
	if err != nil {
		return report, err
	}
	documents = store.DedupeLast(documents, func(d common.Document) string { return d.ID })

	// Communities and documents have no ordering dependency on each other.
	var communityResult, documentResult store.UpsertResult
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		result, err := l.store.UpsertCommunities(egCtx, communities)
		if err != nil {
			return fmt.Errorf("load communities: %w", err)
		}
		communityResult = result
		return nil
	})
	eg.Go(func() error {
		result, err := l.store.UpsertDocuments(egCtx, documents)
		if err != nil {
			return fmt.Errorf("load documents: %w", err)
		}
		documentResult = result
		return nil
	})
	if err := eg.Wait(); err != nil {
		return report, err
	}
	report.add(communityResult)
	report.add(documentResult)

	if err := l.LinkCommunityMembers(ctx, entities, &report); err != nil {
		return report, err
	}
	if err := l.LinkDocumentEntities(ctx, documents, &report); err != nil {
		return report, err
	}

	logger.Info("[Loader] Ingest complete",
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed_edges", len(report.FailedEdges),
	)
	return report, nil
}

// LoadEntities upserts entity nodes, last write wins per id.
func (l *Loader) LoadEntities(ctx context.Context, entities []common.Entity, report *Report) error {
	result, err := l.store.UpsertEntities(ctx, entities)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}
	report.add(result)
	return nil
}

// LoadRelationships resolves both endpoints of each edge against loaded
// entities, collects unresolved rows as failed edges and upserts the rest.
func (l *Loader) LoadRelationships(ctx context.Context, relations []common.Relationship, report *Report) error {
	if len(relations) == 0 {
		return nil
	}

	referenced := make([]string, 0, len(relations)*2)
	for _, r := range relations {
		referenced = append(referenced, r.SourceID, r.TargetID)
	}
	existing, err := l.store.ExistingEntityIDs(ctx, referenced)
	if err != nil {
		return fmt.Errorf("load relationships: %w", err)
	}

	resolved := make([]common.Relationship, 0, len(relations))
	for _, r := range relations {
		if _, ok := existing[r.SourceID]; !ok {
			report.FailedEdges = append(report.FailedEdges, FailedEdge{
				ID: r.ID, SourceID: r.SourceID, TargetID: r.TargetID,
				Reason: "source entity not found",
			})
			continue
		}
		if _, ok := existing[r.TargetID]; !ok {
			report.FailedEdges = append(report.FailedEdges, FailedEdge{
				ID: r.ID, SourceID: r.SourceID, TargetID: r.TargetID,
				Reason: "target entity not found",
			})
			continue
		}
		resolved = append(resolved, r)
	}

	result, err := l.store.UpsertRelationships(ctx, resolved)
	if err != nil {
		return fmt.Errorf("load relationships: %w", err)
	}
	report.add(result)
	return nil
}

// LinkCommunityMembers derives membership edges from the community id lists
// on entity records. Memberships referencing unknown communities are
// collected as failed edges.
func (l *Loader) LinkCommunityMembers(ctx context.Context, entities []common.Entity, report *Report) error {
	var referenced []string
	for _, e := range entities {
		referenced = append(referenced, e.CommunityIDs...)
	}
	if len(referenced) == 0 {
		return nil
	}

	existing, err := l.store.ExistingCommunityIDs(ctx, referenced)
	if err != nil {
		return fmt.Errorf("link community members: %w", err)
	}

	var links []store.Link
	for _, e := range entities {
		for _, communityID := range e.CommunityIDs {
			if _, ok := existing[communityID]; !ok {
				report.FailedEdges = append(report.FailedEdges, FailedEdge{
					ID: e.ID, SourceID: e.ID, TargetID: communityID,
					Reason: "community not found",
				})
				continue
			}
			links = append(links, store.Link{FromID: e.ID, ToID: communityID})
		}
	}

	if err := l.store.LinkCommunityMembers(ctx, links); err != nil {
		return fmt.Errorf("link community members: %w", err)
	}
	return nil
}

// LinkDocumentEntities derives provenance edges from the entity id lists on
// document records.
func (l *Loader) LinkDocumentEntities(ctx context.Context, documents []common.Document, report *Report) error {
	var referenced []string
	for _, d := range documents {
		referenced = append(referenced, d.EntityIDs...)
	}
	if len(referenced) == 0 {
		return nil
	}

	existing, err := l.store.ExistingEntityIDs(ctx, referenced)
	if err != nil {
		return fmt.Errorf("link document entities: %w", err)
	}

	var links []store.Link
	for _, d := range documents {
		for _, entityID := range d.EntityIDs {
			if _, ok := existing[entityID]; !ok {
				report.FailedEdges = append(report.FailedEdges, FailedEdge{
					ID: d.ID, SourceID: d.ID, TargetID: entityID,
					Reason: "entity not found",
				})
				continue
			}
			links = append(links, store.Link{FromID: d.ID, ToID: entityID})
		}
	}

	if err := l.store.LinkDocumentEntities(ctx, links); err != nil {
		return fmt.Errorf("link document entities: %w", err)
	}
	return nil
}

// normalizeBatch reads one kind's batch file and normalizes its rows,
// counting malformed rows into the report. A missing batch file is an empty
// batch.
func normalizeBatch[T any](
	ctx context.Context,
	src record.Source,
	kind record.Kind,
	report *Report,
	normalize func(record.Row) (T, error),
) ([]T, error) {
	reader, err := src.Open(ctx, kind)
	if record.IsNotExist(err) {
		logger.Debug("[Loader] No batch file for kind", "kind", kind)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s batch: %w", kind, err)
	}
	defer reader.Close()

	rows, err := record.ReadRows(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s batch: %w", kind, err)
	}

	records := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := normalize(row)
		if err != nil {
			report.Skipped++
			logger.Warn("[Loader] Skipping malformed row", "kind", kind, "err", err)
			continue
		}
		records = append(records, rec)
	}

	logger.Debug("[Loader] Normalized batch", "kind", kind, "rows", len(rows), "records", len(records))
	return records, nil
}
