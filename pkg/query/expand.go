package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/store"
)

// ExpandedNode is one entity discovered during neighbor expansion, annotated
// with its hop distance from the root.
type ExpandedNode struct {
	common.EntitySummary
	Hop int `json:"hop"`
}

// ExpandedEdge is one relationship edge within the expanded subgraph.
type ExpandedEdge struct {
	ID          string  `json:"id"`
	SourceID    string  `json:"source"`
	TargetID    string  `json:"target"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// EntityDetail is the full result of a neighbor expansion: the resolved root,
// its community memberships and the induced subgraph up to the requested
// depth.
type EntityDetail struct {
	Entity      common.Entity             `json:"entity"`
	Communities []common.CommunitySummary `json:"communities"`
	Nodes       []ExpandedNode            `json:"nodes"`
	Edges       []ExpandedEdge            `json:"edges"`
}

// GetEntity resolves name to an entity and expands its neighborhood
// breadth-first up to depth hops, treating relationship edges as undirected.
// Each node is visited at most once regardless of how many paths reach it;
// the result is the induced subgraph, not a path tree. Depth 0 means the
// default of one hop; a depth above the configured ceiling is rejected
// before any store access. The whole expansion runs under the engine's
// query timeout: on deadline the partial traversal is discarded.
func (e *Engine) GetEntity(ctx context.Context, name string, depth int) (EntityDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return EntityDetail{}, fmt.Errorf("%w: empty entity name", common.ErrInvalidArgument)
	}
	if depth == 0 {
		depth = 1
	}
	if depth < 0 || depth > e.maxDepth {
		return EntityDetail{}, fmt.Errorf("%w: depth %d out of range [1, %d]",
			common.ErrInvalidArgument, depth, e.maxDepth)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	root, err := e.store.EntityByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return EntityDetail{}, fmt.Errorf("entity %q: %w", name, common.ErrNotFound)
		}
		return EntityDetail{}, err
	}

	communities, err := e.store.CommunitiesForEntity(ctx, root.ID)
	if err != nil {
		return EntityDetail{}, err
	}

	nodes, edges, err := e.expand(ctx, root, depth)
	if err != nil {
		return EntityDetail{}, err
	}

	return EntityDetail{
		Entity:      root,
		Communities: communities,
		Nodes:       nodes,
		Edges:       edges,
	}, nil
}

// expand walks the graph breadth-first from root. The visited set keys on
// entity id so cycles and diamond paths never re-expand a node; edges are
// deduped by id and kept only when both endpoints lie within the visited
// set.
func (e *Engine) expand(ctx context.Context, root common.Entity, depth int) ([]ExpandedNode, []ExpandedEdge, error) {
	visited := map[string]int{root.ID: 0}
	nodes := []ExpandedNode{{
		EntitySummary: common.EntitySummary{
			ID:          root.ID,
			Name:        root.Name,
			Type:        root.Type,
			Description: root.Description,
			Degree:      root.Degree,
		},
		Hop: 0,
	}}
	edgeSet := make(map[string]ExpandedEdge)
	frontier := []string{root.ID}

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, common.WrapStore("expand neighbors", err)
		}

		incident, err := e.store.NeighborEdges(ctx, frontier)
		if err != nil {
			return nil, nil, err
		}

		var next []string
		for _, edge := range incident {
			edgeSet[edge.ID] = toExpandedEdge(edge)
			for _, endpoint := range [2]common.EntitySummary{edge.Source, edge.Target} {
				if _, seen := visited[endpoint.ID]; seen {
					continue
				}
				visited[endpoint.ID] = hop
				nodes = append(nodes, ExpandedNode{EntitySummary: endpoint, Hop: hop})
				next = append(next, endpoint.ID)
			}
		}
		frontier = next
	}

	// Edges between two nodes on the deepest level are incident to no
	// expanded frontier, so sweep them up separately to complete the
	// induced subgraph.
	if len(frontier) > 0 {
		incident, err := e.store.NeighborEdges(ctx, frontier)
		if err != nil {
			return nil, nil, err
		}
		for _, edge := range incident {
			if _, ok := edgeSet[edge.ID]; ok {
				continue
			}
			_, sourceSeen := visited[edge.Source.ID]
			_, targetSeen := visited[edge.Target.ID]
			if sourceSeen && targetSeen {
				edgeSet[edge.ID] = toExpandedEdge(edge)
			}
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Hop != nodes[j].Hop {
			return nodes[i].Hop < nodes[j].Hop
		}
		if nodes[i].Degree != nodes[j].Degree {
			return nodes[i].Degree > nodes[j].Degree
		}
		return nodes[i].ID < nodes[j].ID
	})

	edges := make([]ExpandedEdge, 0, len(edgeSet))
	for _, edge := range edgeSet {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return nodes, edges, nil
}

func toExpandedEdge(edge store.NeighborEdge) ExpandedEdge {
	return ExpandedEdge{
		ID:          edge.ID,
		SourceID:    edge.Source.ID,
		TargetID:    edge.Target.ID,
		Description: edge.Description,
		Weight:      edge.Weight,
	}
}
