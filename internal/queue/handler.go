package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/graphfold/graphfold/internal/storage"
	"github.com/graphfold/graphfold/pkg/leaselock"
	"github.com/graphfold/graphfold/pkg/loader"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/record"
	graphstorage "github.com/graphfold/graphfold/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueueIngestMsg is one batch of extraction output to load, addressed by its
// object-storage prefix.
type QueueIngestMsg struct {
	RunID  string `json:"run_id"`
	Prefix string `json:"prefix"`
}

// ingestLockKey serializes batch loads. The store's upserts are idempotent,
// but interleaved batches would interleave their edge resolution.
const ingestLockKey = "graph:ingest"

func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueIngestMsg)
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}
	if data.Prefix == "" {
		return fmt.Errorf("ingest message without prefix")
	}

	logger.Info("[Queue] Starting ingest", "run_id", data.RunID, "prefix", data.Prefix)

	var src record.Source = storage.NewRecordSource(s3Client, data.Prefix)
	ld := loader.NewLoader(graphstorage.NewGraphDBStorage(conn))

	start := time.Now()
	lockClient := leaselock.New(conn)
	err := lockClient.WithLease(ctx, ingestLockKey, leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
		Wait:       true,
	}, func(ctx context.Context) error {
		report, err := ld.Ingest(ctx, src)
		if err != nil {
			return err
		}
		logger.Info(
			"[Queue] Ingest finished",
			"run_id", data.RunID,
			"created", report.Created,
			"updated", report.Updated,
			"skipped", report.Skipped,
			"failed_edges", len(report.FailedEdges),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		for _, edge := range report.FailedEdges {
			logger.Warn(
				"[Queue] Edge not loaded",
				"run_id", data.RunID,
				"edge_id", edge.ID,
				"source", edge.SourceID,
				"target", edge.TargetID,
				"reason", edge.Reason,
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", data.Prefix, err)
	}

	return nil
}
