package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// CreateNode inserts n, deriving depth from its parent (0 for the
// universe) and bumping the parent's denormalized child_count.
func (s *Store) CreateNode(n *graph.Node) error {
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		depth := 0
		if n.ParentID != nil {
			if err := tx.QueryRow(`SELECT depth FROM nodes WHERE id = ?`, *n.ParentID).Scan(&depth); err != nil {
				if err == sql.ErrNoRows {
					return fmt.Errorf("parent %s not found", *n.ParentID)
				}
				return fmt.Errorf("lookup parent depth: %w", err)
			}
			depth++
		}
		n.Depth = depth

		now := time.Now().UTC()
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = now

		_, err = tx.Exec(`
			INSERT INTO nodes (id, title, ai_title, content, is_item, is_universe, depth, parent_id, child_count, content_type, created_at, updated_at, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
		`, n.ID, n.Title, n.AITitle, n.Content, boolToInt(n.IsItem), boolToInt(n.IsUniverse), n.Depth,
			nullableString(n.ParentID), n.ContentType, n.CreatedAt.Format(time.RFC3339Nano), n.UpdatedAt.Format(time.RFC3339Nano), []byte(nil))
		if err != nil {
			return fmt.Errorf("insert node: %w", err)
		}

		if n.ParentID != nil {
			if _, err := tx.Exec(`UPDATE nodes SET child_count = child_count + 1 WHERE id = ?`, *n.ParentID); err != nil {
				return fmt.Errorf("bump parent child_count: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// UpdateNode applies field changes and, when ParentID changes, re-derives
// depth and keeps every adjacent edge's denormalized parent id in sync
// (spec §4.10).
func (s *Store) UpdateNode(n *graph.Node) error {
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		var oldParent sql.NullString
		if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, n.ID).Scan(&oldParent); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("node %s not found", n.ID)
			}
			return fmt.Errorf("lookup existing node: %w", err)
		}

		depth := 0
		if n.ParentID != nil {
			if err := tx.QueryRow(`SELECT depth FROM nodes WHERE id = ?`, *n.ParentID).Scan(&depth); err != nil {
				return fmt.Errorf("lookup parent depth: %w", err)
			}
			depth++
		}
		n.Depth = depth
		n.UpdatedAt = time.Now().UTC()

		_, err = tx.Exec(`
			UPDATE nodes SET title=?, ai_title=?, content=?, is_item=?, depth=?, parent_id=?, content_type=?, updated_at=?
			WHERE id = ?
		`, n.Title, n.AITitle, n.Content, boolToInt(n.IsItem), n.Depth, nullableString(n.ParentID), n.ContentType,
			n.UpdatedAt.Format(time.RFC3339Nano), n.ID)
		if err != nil {
			return fmt.Errorf("update node: %w", err)
		}

		reparented := (oldParent.Valid && (n.ParentID == nil || oldParent.String != *n.ParentID)) ||
			(!oldParent.Valid && n.ParentID != nil)
		if reparented {
			if oldParent.Valid {
				if _, err := tx.Exec(`UPDATE nodes SET child_count = child_count - 1 WHERE id = ?`, oldParent.String); err != nil {
					return fmt.Errorf("decrement old parent child_count: %w", err)
				}
			}
			if n.ParentID != nil {
				if _, err := tx.Exec(`UPDATE nodes SET child_count = child_count + 1 WHERE id = ?`, *n.ParentID); err != nil {
					return fmt.Errorf("increment new parent child_count: %w", err)
				}
			}
			if err := resyncDenormalizedParents(tx, n.ID, n.ParentID); err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// resyncDenormalizedParents rewrites source_parent_id/target_parent_id on
// every edge touching nodeID after a re-parent (spec §3 invariant).
func resyncDenormalizedParents(tx *sql.Tx, nodeID string, parentID *string) error {
	pid := nullableString(parentID)
	if _, err := tx.Exec(`UPDATE edges SET source_parent_id = ? WHERE source_id = ?`, pid, nodeID); err != nil {
		return fmt.Errorf("resync source_parent_id: %w", err)
	}
	if _, err := tx.Exec(`UPDATE edges SET target_parent_id = ? WHERE target_id = ?`, pid, nodeID); err != nil {
		return fmt.Errorf("resync target_parent_id: %w", err)
	}
	return nil
}

// DeleteNode removes n and, via FK cascade, every edge touching it; it also
// decrements the former parent's child_count.
func (s *Store) DeleteNode(id string) error {
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		var parent sql.NullString
		if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, id).Scan(&parent); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("node %s not found", id)
			}
			return fmt.Errorf("lookup node: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete node: %w", err)
		}
		if parent.Valid {
			if _, err := tx.Exec(`UPDATE nodes SET child_count = child_count - 1 WHERE id = ?`, parent.String); err != nil {
				return fmt.Errorf("decrement parent child_count: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// GetNode fetches a single node by id, decoding its embedding if present.
func (s *Store) GetNode(id string) (*graph.Node, error) {
	var n *graph.Node
	err := s.withReadLock(func() error {
		row := s.db.QueryRow(`
			SELECT id, title, ai_title, content, is_item, is_universe, depth, parent_id, child_count, content_type, created_at, updated_at, embedding
			FROM nodes WHERE id = ?
		`, id)
		node, err := scanNode(row)
		if err != nil {
			return err
		}
		n = node
		return nil
	})
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*graph.Node, error) {
	var (
		n                    graph.Node
		aiTitle, content     sql.NullString
		contentType          sql.NullString
		parentID             sql.NullString
		isItem, isUniverse   int
		createdAt, updatedAt string
		embedding            []byte
	)
	err := row.Scan(&n.ID, &n.Title, &aiTitle, &content, &isItem, &isUniverse, &n.Depth, &parentID,
		&n.ChildCount, &contentType, &createdAt, &updatedAt, &embedding)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan node: %w", err)
	}

	n.AITitle = aiTitle.String
	n.Content = content.String
	n.ContentType = contentType.String
	n.IsItem = isItem != 0
	n.IsUniverse = isUniverse != 0
	if parentID.Valid {
		pid := parentID.String
		n.ParentID = &pid
	}
	n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	n.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	n.HasEmbedding = len(embedding) > 0

	return &n, nil
}

// SetEmbedding writes vec as node id's embedding BLOB.
func (s *Store) SetEmbedding(id string, vec []float32) error {
	return s.withWriteLock(func() error {
		res, err := s.db.Exec(`UPDATE nodes SET embedding = ? WHERE id = ?`, encodeEmbedding(vec), id)
		if err != nil {
			return fmt.Errorf("set embedding: %w", err)
		}
		rows, _ := res.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("node %s not found", id)
		}
		return nil
	})
}

// Embedding reads and decodes node id's embedding, or (nil, nil) if unset.
func (s *Store) Embedding(id string) ([]float32, error) {
	var vec []float32
	err := s.withReadLock(func() error {
		var buf []byte
		err := s.db.QueryRow(`SELECT embedding FROM nodes WHERE id = ?`, id).Scan(&buf)
		if err == sql.ErrNoRows {
			return fmt.Errorf("node %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("query embedding: %w", err)
		}
		if len(buf) == 0 {
			return nil
		}
		decoded, err := decodeEmbedding(buf, EmbeddingDim)
		if err != nil {
			return err
		}
		vec = decoded
		return nil
	})
	return vec, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
