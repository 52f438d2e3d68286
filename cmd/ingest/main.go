package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graphfold/graphfold/internal/storage"
	"github.com/graphfold/graphfold/internal/util"
	"github.com/graphfold/graphfold/pkg/leaselock"
	"github.com/graphfold/graphfold/pkg/loader"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/logger/console"
	"github.com/graphfold/graphfold/pkg/record"
	graphstorage "github.com/graphfold/graphfold/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// One-shot batch ingest. Reads extraction output from a local directory or
// an S3 prefix and upserts it into the graph store under the ingest lease.
func main() {
	dir := flag.String("dir", "", "local directory holding the batch files")
	prefix := flag.String("prefix", "", "S3 prefix holding the batch files")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if (*dir == "") == (*prefix == "") {
		logger.Fatal("Exactly one of -dir or -prefix is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer conn.Close()

	var src record.Source
	if *dir != "" {
		src = record.DirSource{Dir: *dir}
	} else {
		s3Client := storage.NewS3Client(ctx)
		if s3Client == nil {
			logger.Fatal("Failed to create S3 client")
		}
		// A typo'd prefix would otherwise run a silent no-op ingest.
		keys, err := storage.ListFilesWithPrefix(ctx, s3Client, *prefix)
		if err != nil {
			logger.Fatal("Failed to list batch files", "prefix", *prefix, "err", err)
		}
		if len(keys) == 0 {
			logger.Fatal("No batch files under prefix", "prefix", *prefix)
		}
		logger.Debug("Found batch files", "prefix", *prefix, "count", len(keys))
		src = storage.NewRecordSource(s3Client, *prefix)
	}

	runID, err := gonanoid.New()
	if err != nil {
		logger.Fatal("Failed to generate run id", "err", err)
	}

	ld := loader.NewLoader(graphstorage.NewGraphDBStorage(conn))
	lockClient := leaselock.New(conn)

	start := time.Now()
	err = lockClient.WithLease(ctx, "graph:ingest", leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
		Wait:       true,
	}, func(ctx context.Context) error {
		report, err := ld.Ingest(ctx, src)
		if err != nil {
			return err
		}
		logger.Info(
			"Ingest finished",
			"run_id", runID,
			"created", report.Created,
			"updated", report.Updated,
			"skipped", report.Skipped,
			"failed_edges", len(report.FailedEdges),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		for _, edge := range report.FailedEdges {
			logger.Warn(
				"Edge not loaded",
				"edge_id", edge.ID,
				"source", edge.SourceID,
				"target", edge.TargetID,
				"reason", edge.Reason,
			)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("Ingest failed", "run_id", runID, "err", err)
	}
}
