package loader

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/graphfold/graphfold/pkg/record"
	"github.com/graphfold/graphfold/pkg/store/memory"
)

// mapSource serves batch files from memory, one CSV document per kind.
// Absent kinds behave like missing batch files.
type mapSource map[record.Kind]string

func (s mapSource) Open(ctx context.Context, kind record.Kind) (io.ReadCloser, error) {
	data, ok := s[kind]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func fullBatch() mapSource {
	return mapSource{
		record.KindEntities: strings.Join([]string{
			"id,name,type,description,degree,community_ids",
			"1,OpenAI,organization,AI research lab,2,[c1]",
			"2,Sam Altman,person,CEO of OpenAI,1,[c1]",
			"3,Microsoft,organization,Technology company,1,",
		}, "\n"),
		record.KindRelationships: strings.Join([]string{
			"id,source,target,description,weight",
			"r1,1,2,employs,2.0",
			"r2,1,999,invests in,1.0",
		}, "\n"),
		record.KindCommunities: strings.Join([]string{
			"id,title,summary,level,rank",
			"c1,AI Industry,Organizations and people in AI,0,8.5",
		}, "\n"),
		record.KindDocuments: strings.Join([]string{
			"id,title,raw_content,entity_ids",
			`d1,Press release,OpenAI announced...,"[1, 2]"`,
			"d2,,Some text,[999]",
		}, "\n"),
	}
}

func TestIngest(t *testing.T) {
	st := memory.NewMemoryStorage()
	ld := NewLoader(st)

	report, err := ld.Ingest(context.Background(), fullBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 entities + 1 relationship + 1 community + 2 documents.
	if report.Created != 7 {
		t.Fatalf("unexpected created count: got %d, want 7", report.Created)
	}
	if report.Updated != 0 {
		t.Fatalf("unexpected updated count: got %d, want 0", report.Updated)
	}
	if report.Skipped != 0 {
		t.Fatalf("unexpected skipped count: got %d, want 0", report.Skipped)
	}

	// r2 points at entity 999, d2 references entity 999.
	if len(report.FailedEdges) != 2 {
		t.Fatalf("unexpected failed edge count: got %d, want 2", len(report.FailedEdges))
	}
	if report.FailedEdges[0].ID != "r2" || report.FailedEdges[0].Reason != "target entity not found" {
		t.Fatalf("unexpected failed edge: %+v", report.FailedEdges[0])
	}
	if report.FailedEdges[1].ID != "d2" || report.FailedEdges[1].Reason != "entity not found" {
		t.Fatalf("unexpected failed edge: %+v", report.FailedEdges[1])
	}

	if got := st.MembershipCount(); got != 2 {
		t.Fatalf("unexpected membership link count: got %d, want 2", got)
	}
	if got := st.DocumentLinkCount(); got != 2 {
		t.Fatalf("unexpected provenance link count: got %d, want 2", got)
	}

	stats, err := st.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entities != 3 || stats.Relationships != 1 || stats.Communities != 1 || stats.Documents != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	st := memory.NewMemoryStorage()
	ld := NewLoader(st)
	ctx := context.Background()

	if _, err := ld.Ingest(ctx, fullBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := ld.Ingest(ctx, fullBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Created != 0 {
		t.Fatalf("second run must create nothing: got %d", report.Created)
	}
	if report.Updated != 7 {
		t.Fatalf("second run must update every record: got %d, want 7", report.Updated)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entities != 3 || stats.Relationships != 1 || stats.Communities != 1 || stats.Documents != 2 {
		t.Fatalf("double ingest must not duplicate records: %+v", stats)
	}
	if got := st.MembershipCount(); got != 2 {
		t.Fatalf("double ingest must not duplicate membership links: got %d", got)
	}
}

func TestIngestCollapsesDuplicateRows(t *testing.T) {
	src := mapSource{
		record.KindEntities: strings.Join([]string{
			"id,name,type,description,degree",
			"1,Stale Name,organization,First write,1",
			"2,Acme,organization,Unrelated,1",
			"1,OpenAI,organization,Last write,2",
		}, "\n"),
		record.KindRelationships: strings.Join([]string{
			"id,source,target,description,weight",
			"r1,1,2,old edge,1.0",
			"r1,1,2,new edge,3.0",
		}, "\n"),
	}

	st := memory.NewMemoryStorage()
	ctx := context.Background()
	report, err := NewLoader(st).Ingest(ctx, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 entities + 1 relationship; repeats collapse before the upsert so
	// they count once.
	if report.Created != 3 {
		t.Fatalf("unexpected created count: got %d, want 3", report.Created)
	}
	if report.Updated != 0 {
		t.Fatalf("unexpected updated count: got %d, want 0", report.Updated)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entities != 2 || stats.Relationships != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// The last row for an id wins.
	got, err := st.EntityByName(ctx, "OpenAI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" || got.Description != "Last write" || got.Degree != 2 {
		t.Fatalf("unexpected entity after duplicate rows: %+v", got)
	}
	if _, err := st.EntityByName(ctx, "Stale Name"); err == nil {
		t.Fatalf("overwritten name must not resolve")
	}

	edges, err := st.NeighborEdges(ctx, []string{"1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 1 || edges[0].Description != "new edge" || edges[0].Weight != 3.0 {
		t.Fatalf("unexpected edges after duplicate rows: %+v", edges)
	}
}

func TestIngestSkipsMalformedRows(t *testing.T) {
	src := mapSource{
		record.KindEntities: strings.Join([]string{
			"id,name,degree",
			"1,OpenAI,2",
			",Nameless,1",
			"3,Broken,many",
		}, "\n"),
	}

	st := memory.NewMemoryStorage()
	report, err := NewLoader(st).Ingest(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Created != 1 {
		t.Fatalf("unexpected created count: got %d, want 1", report.Created)
	}
	if report.Skipped != 2 {
		t.Fatalf("unexpected skipped count: got %d, want 2", report.Skipped)
	}
}

func TestIngestTreatsMissingFilesAsEmpty(t *testing.T) {
	st := memory.NewMemoryStorage()
	report, err := NewLoader(st).Ingest(context.Background(), mapSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 0 || report.Updated != 0 || report.Skipped != 0 || len(report.FailedEdges) != 0 {
		t.Fatalf("empty source must produce an empty report: %+v", report)
	}
}
