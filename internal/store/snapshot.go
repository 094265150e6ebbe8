package store

import (
	"fmt"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

const fullSnapshotCacheKey = "__full__"

// Snapshot loads every node and edge and builds a fresh graph.Snapshot,
// caching the full-graph view until the next write invalidates it.
func (s *Store) Snapshot() (*graph.Snapshot, error) {
	if cached, ok := s.snapshots.Get(fullSnapshotCacheKey); ok {
		return cached, nil
	}

	var snap *graph.Snapshot
	err := s.withReadLock(func() error {
		nodes, err := s.allNodes()
		if err != nil {
			return err
		}
		edges, err := s.allEdges()
		if err != nil {
			return err
		}
		snap = graph.Build(nodes, edges)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.snapshots.Add(fullSnapshotCacheKey, snap)
	return snap, nil
}

// SnapshotForRegion returns (and caches) a snapshot filtered to regionID.
func (s *Store) SnapshotForRegion(regionID string) (*graph.Snapshot, error) {
	if cached, ok := s.snapshots.Get(regionID); ok {
		return cached, nil
	}
	full, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	filtered := full.FilterToRegion(regionID)
	s.snapshots.Add(regionID, filtered)
	return filtered, nil
}

func (s *Store) allNodes() ([]*graph.Node, error) {
	rows, err := s.db.Query(`
		SELECT id, title, ai_title, content, is_item, is_universe, depth, parent_id, child_count, content_type, created_at, updated_at, embedding
		FROM nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []*graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) allEdges() ([]*graph.Edge, error) {
	rows, err := s.db.Query(`
		SELECT id, source_id, target_id, edge_type, weight, confidence, reason, metadata, created_at, superseded_by, source_parent_id, target_parent_id
		FROM edges
	`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var out []*graph.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
