package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/graphfold/graphfold/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements store.GraphStorage on PostgreSQL. Nodes carry a
// bigserial internal id plus a unique public_id; all upserts key on
// public_id so re-ingesting the same batch is idempotent.
type GraphDBStorage struct {
	conn       pgxIConn
	batchChunk int
}

type GraphDBStorageOption func(*GraphDBStorage)

// WithBatchChunk overrides how many records go into one upsert transaction.
func WithBatchChunk(n int) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		if n > 0 {
			s.batchChunk = n
		}
	}
}

// NewGraphDBStorage creates a GraphDBStorage on an existing connection or
// pool. The connection is shared; no method holds it beyond its own call.
func NewGraphDBStorage(conn pgxIConn, opts ...GraphDBStorageOption) *GraphDBStorage {
	s := &GraphDBStorage{
		conn:       conn,
		batchChunk: 250,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

var _ store.GraphStorage = (*GraphDBStorage)(nil)
