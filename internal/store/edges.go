package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// CreateEdge inserts e, stamping its denormalized parent ids from the
// current state of its endpoints.
func (s *Store) CreateEdge(e *graph.Edge) error {
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		if err := insertEdge(tx, e); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

func insertEdge(tx *sql.Tx, e *graph.Edge) error {
	var srcParent, tgtParent sql.NullString
	if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, e.SourceID).Scan(&srcParent); err != nil {
		return fmt.Errorf("lookup source parent: %w", err)
	}
	if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, e.TargetID).Scan(&tgtParent); err != nil {
		return fmt.Errorf("lookup target parent: %w", err)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal edge metadata: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO edges (id, source_id, target_id, edge_type, weight, confidence, reason, metadata, created_at, superseded_by, source_parent_id, target_parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SourceID, e.TargetID, string(e.Type), nullableFloat(e.Weight), nullableFloat(e.Confidence), e.Reason,
		string(metaJSON), e.CreatedAt.Format(time.RFC3339Nano), nullableString(e.SupersededBy),
		nullString(srcParent), nullString(tgtParent))
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

// BulkEmitEdges inserts edges under one transaction; on a (source, target,
// edge_type) conflict, it updates the stored weight only if the new weight
// is strictly greater (spec §4.10).
func (s *Store) BulkEmitEdges(edges []*graph.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		for _, e := range edges {
			var srcParent, tgtParent sql.NullString
			if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, e.SourceID).Scan(&srcParent); err != nil {
				return fmt.Errorf("lookup source parent for %s: %w", e.ID, err)
			}
			if err := tx.QueryRow(`SELECT parent_id FROM nodes WHERE id = ?`, e.TargetID).Scan(&tgtParent); err != nil {
				return fmt.Errorf("lookup target parent for %s: %w", e.ID, err)
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
			metaJSON, err := json.Marshal(e.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for %s: %w", e.ID, err)
			}

			_, err = tx.Exec(`
				INSERT INTO edges (id, source_id, target_id, edge_type, weight, confidence, reason, metadata, created_at, superseded_by, source_parent_id, target_parent_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(source_id, target_id, edge_type) DO UPDATE SET
					weight = excluded.weight
				WHERE excluded.weight > edges.weight
			`, e.ID, e.SourceID, e.TargetID, string(e.Type), nullableFloat(e.Weight), nullableFloat(e.Confidence), e.Reason,
				string(metaJSON), e.CreatedAt.Format(time.RFC3339Nano), nullableString(e.SupersededBy),
				nullString(srcParent), nullString(tgtParent))
			if err != nil {
				return fmt.Errorf("bulk upsert edge %s: %w", e.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// DeleteEdge removes a single edge by id.
func (s *Store) DeleteEdge(id string) error {
	return s.withWriteLock(func() error {
		res, err := s.db.Exec(`DELETE FROM edges WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete edge: %w", err)
		}
		rows, _ := res.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("edge %s not found", id)
		}
		s.invalidateSnapshots()
		return nil
	})
}

// QueryEdgeOptions filters QueryEdges.
type QueryEdgeOptions struct {
	NodeID   string // either endpoint
	EdgeType graph.EdgeType
}

// QueryEdges returns every edge matching opts, sorted by id for
// deterministic pagination.
func (s *Store) QueryEdges(opts QueryEdgeOptions) ([]*graph.Edge, error) {
	var out []*graph.Edge
	err := s.withReadLock(func() error {
		query := `SELECT id, source_id, target_id, edge_type, weight, confidence, reason, metadata, created_at, superseded_by, source_parent_id, target_parent_id FROM edges WHERE 1=1`
		var args []any
		if opts.NodeID != "" {
			query += ` AND (source_id = ? OR target_id = ?)`
			args = append(args, opts.NodeID, opts.NodeID)
		}
		if opts.EdgeType != "" {
			query += ` AND edge_type = ?`
			args = append(args, string(opts.EdgeType))
		}
		query += ` ORDER BY id`

		rows, err := s.db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("query edges: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEdge(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

// EdgesForView returns every edge whose denormalized source_parent_id or
// target_parent_id equals regionID, the O(1) "edges within this view"
// lookup spec §4.10 calls for.
func (s *Store) EdgesForView(regionID string) ([]*graph.Edge, error) {
	var out []*graph.Edge
	err := s.withReadLock(func() error {
		rows, err := s.db.Query(`
			SELECT id, source_id, target_id, edge_type, weight, confidence, reason, metadata, created_at, superseded_by, source_parent_id, target_parent_id
			FROM edges WHERE source_parent_id = ? OR target_parent_id = ? ORDER BY id
		`, regionID, regionID)
		if err != nil {
			return fmt.Errorf("query view edges: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEdge(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

func scanEdge(rows *sql.Rows) (*graph.Edge, error) {
	var (
		e                          graph.Edge
		weight, confidence         sql.NullFloat64
		reason                     sql.NullString
		metaJSON                   sql.NullString
		createdAt                  string
		supersededBy               sql.NullString
		sourceParent, targetParent sql.NullString
		edgeType                   string
	)
	if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &edgeType, &weight, &confidence, &reason, &metaJSON,
		&createdAt, &supersededBy, &sourceParent, &targetParent); err != nil {
		return nil, fmt.Errorf("scan edge: %w", err)
	}
	e.Type = graph.EdgeType(edgeType)
	if weight.Valid {
		w := weight.Float64
		e.Weight = &w
	}
	if confidence.Valid {
		c := confidence.Float64
		e.Confidence = &c
	}
	e.Reason = reason.String
	if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
		if err := json.Unmarshal([]byte(metaJSON.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal edge metadata: %w", err)
		}
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if supersededBy.Valid {
		sb := supersededBy.String
		e.SupersededBy = &sb
	}
	if sourceParent.Valid {
		sp := sourceParent.String
		e.SourceParentID = &sp
	}
	if targetParent.Valid {
		tp := targetParent.String
		e.TargetParentID = &tp
	}
	return &e, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullString(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}
