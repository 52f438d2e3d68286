// Package query serves read-only operations over the graph store: keyword
// search, type filtering, community search and bounded-depth neighborhood
// expansion. No operation mutates the store; all are safe to retry and to
// run concurrently.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/store"
)

const (
	// DefaultMaxDepth bounds neighbor expansion; unbounded depth on a
	// connected graph is a resource-exhaustion risk.
	DefaultMaxDepth = 5

	// DefaultQueryTimeout bounds one expansion query end to end.
	DefaultQueryTimeout = 15 * time.Second

	defaultLimit = 10
	maxLimit     = 100
)

// Engine answers queries against a graph store.
type Engine struct {
	store    store.GraphStorage
	maxDepth int
	timeout  time.Duration
}

// NewEngineParams configures an Engine. Zero values fall back to the
// package defaults.
type NewEngineParams struct {
	Store        store.GraphStorage
	MaxDepth     int
	QueryTimeout time.Duration
}

func NewEngine(params NewEngineParams) *Engine {
	maxDepth := params.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	timeout := params.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Engine{
		store:    params.Store,
		maxDepth: maxDepth,
		timeout:  timeout,
	}
}

// MaxDepth returns the configured expansion ceiling.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// Stats returns total node and edge counts per kind.
func (e *Engine) Stats(ctx context.Context) (common.Stats, error) {
	return e.store.Stats(ctx)
}

// Search returns entities whose name, description or type contains q as a
// case-insensitive substring, best-connected first. An empty or
// whitespace-only q signals caller misuse and is rejected.
func (e *Engine) Search(ctx context.Context, q string, limit int) ([]common.EntitySummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty search term", common.ErrInvalidArgument)
	}
	return e.store.SearchEntities(ctx, q, clampLimit(limit))
}

// ListTypes returns the distinct entity type tags with their counts, most
// frequent first. The tag set is open-ended; callers must tolerate values
// they do not know.
func (e *Engine) ListTypes(ctx context.Context) ([]common.TypeCount, error) {
	return e.store.ListTypes(ctx)
}

// ByType returns entities whose type matches exactly (case-insensitive),
// best-connected first.
func (e *Engine) ByType(ctx context.Context, entityType string, limit int) ([]common.EntitySummary, error) {
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return nil, fmt.Errorf("%w: empty type", common.ErrInvalidArgument)
	}
	return e.store.EntitiesByType(ctx, entityType, clampLimit(limit))
}

// ListEntities returns all entities ordered by descending degree.
func (e *Engine) ListEntities(ctx context.Context, limit int) ([]common.EntitySummary, error) {
	return e.store.AllEntities(ctx, clampLimit(limit))
}

// SearchCommunities returns communities whose title or summary contains q,
// highest rank first.
func (e *Engine) SearchCommunities(ctx context.Context, q string, limit int) ([]common.CommunitySummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty search term", common.ErrInvalidArgument)
	}
	return e.store.SearchCommunities(ctx, q, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
