package store

import (
	"fmt"
	"time"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// ListItems returns every leaf content node (is_item = 1), sorted by id.
func (s *Store) ListItems() ([]*graph.Node, error) {
	return s.listNodesWhere(`is_item = 1 ORDER BY id`)
}

// ListGroups returns every structural, non-universe node (is_item = 0 AND
// is_universe = 0), the set a pipeline rebuild clears and replaces.
func (s *Store) ListGroups() ([]*graph.Node, error) {
	return s.listNodesWhere(`is_item = 0 AND is_universe = 0 ORDER BY id`)
}

// ListMissingEmbeddings returns every item node with no stored embedding.
func (s *Store) ListMissingEmbeddings() ([]*graph.Node, error) {
	return s.listNodesWhere(`is_item = 1 AND (embedding IS NULL OR length(embedding) = 0) ORDER BY id`)
}

func (s *Store) listNodesWhere(whereAndOrder string, args ...any) ([]*graph.Node, error) {
	var out []*graph.Node
	err := s.withReadLock(func() error {
		rows, err := s.db.Query(`
			SELECT id, title, ai_title, content, is_item, is_universe, depth, parent_id, child_count, content_type, created_at, updated_at, embedding
			FROM nodes WHERE `+whereAndOrder, args...)
		if err != nil {
			return fmt.Errorf("query nodes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			n, err := scanNode(rows)
			if err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	return out, err
}

// Universe returns the single universe node, or nil if none exists yet.
func (s *Store) Universe() (*graph.Node, error) {
	var n *graph.Node
	err := s.withReadLock(func() error {
		row := s.db.QueryRow(`
			SELECT id, title, ai_title, content, is_item, is_universe, depth, parent_id, child_count, content_type, created_at, updated_at, embedding
			FROM nodes WHERE is_universe = 1
		`)
		node, err := scanNode(row)
		if err != nil {
			if err.Error() == "node not found" {
				return nil
			}
			return err
		}
		n = node
		return nil
	})
	return n, err
}

// ClearGroups deletes every non-item, non-universe node. Edges touching
// them cascade per the foreign key (spec §4.10).
func (s *Store) ClearGroups() error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`DELETE FROM nodes WHERE is_item = 0 AND is_universe = 0`)
		if err != nil {
			return fmt.Errorf("clear groups: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// ReparentItemsToUniverse sets every item's parent_id to universeID and
// depth to 1, the flat starting state a pipeline rebuild restores before
// the tree builder runs (spec §4.11 step 3).
func (s *Store) ReparentItemsToUniverse(universeID string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`UPDATE nodes SET parent_id = ?, depth = 1 WHERE is_item = 1`, universeID)
		if err != nil {
			return fmt.Errorf("reparent items: %w", err)
		}
		if _, err := s.db.Exec(`UPDATE edges SET source_parent_id = (SELECT parent_id FROM nodes WHERE nodes.id = edges.source_id)`); err != nil {
			return fmt.Errorf("resync edge source parents: %w", err)
		}
		if _, err := s.db.Exec(`UPDATE edges SET target_parent_id = (SELECT parent_id FROM nodes WHERE nodes.id = edges.target_id)`); err != nil {
			return fmt.Errorf("resync edge target parents: %w", err)
		}
		_, err = s.db.Exec(`UPDATE nodes SET child_count = (SELECT COUNT(*) FROM nodes c WHERE c.parent_id = nodes.id)`)
		if err != nil {
			return fmt.Errorf("recompute child counts: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// EnsureUniverse returns the existing universe node, or creates one with
// title if none exists.
func (s *Store) EnsureUniverse(id, title string) (*graph.Node, error) {
	existing, err := s.Universe()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	now := time.Now().UTC()
	n := &graph.Node{
		ID:         id,
		Title:      title,
		IsItem:     false,
		IsUniverse: true,
		Depth:      0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecomputeChildCounts rewrites every node's child_count from current
// parent_id values, used after bulk structural writes.
func (s *Store) RecomputeChildCounts() error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`UPDATE nodes SET child_count = (SELECT COUNT(*) FROM nodes c WHERE c.parent_id = nodes.id)`)
		if err != nil {
			return fmt.Errorf("recompute child counts: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// PopulateDenormalizedParents rewrites source_parent_id/target_parent_id on
// every edge from current node parent_id values (spec §4.11 step 7).
func (s *Store) PopulateDenormalizedParents() error {
	return s.withWriteLock(func() error {
		if _, err := s.db.Exec(`UPDATE edges SET source_parent_id = (SELECT parent_id FROM nodes WHERE nodes.id = edges.source_id)`); err != nil {
			return fmt.Errorf("resync edge source parents: %w", err)
		}
		if _, err := s.db.Exec(`UPDATE edges SET target_parent_id = (SELECT parent_id FROM nodes WHERE nodes.id = edges.target_id)`); err != nil {
			return fmt.Errorf("resync edge target parents: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// SetNodeUpdatedAt rewrites only the updated_at timestamp of id, used to
// propagate latest_child_date bottom-up (spec §4.11 step 6) without
// disturbing any other field.
func (s *Store) SetNodeUpdatedAt(id string, t time.Time) error {
	return s.withWriteLock(func() error {
		res, err := s.db.Exec(`UPDATE nodes SET updated_at = ? WHERE id = ?`, t.Format(time.RFC3339Nano), id)
		if err != nil {
			return fmt.Errorf("set updated_at: %w", err)
		}
		rows, _ := res.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("node %s not found", id)
		}
		return nil
	})
}
