package store

import "fmt"

// ReparentNodes bulk-assigns parentID and depth to every id in ids and
// updates parentID's child_count, all under one transaction. Used by the
// pipeline driver when it persists a freshly built hierarchy's leaves
// (spec §4.11 step 5).
func (s *Store) ReparentNodes(ids []string, parentID string, depth int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`UPDATE nodes SET parent_id = ?, depth = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("prepare reparent: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.Exec(parentID, depth, id); err != nil {
				return fmt.Errorf("reparent %s: %w", id, err)
			}
		}

		if _, err := tx.Exec(`
			UPDATE nodes SET child_count = (SELECT COUNT(*) FROM nodes c WHERE c.parent_id = nodes.id)
			WHERE id = ?
		`, parentID); err != nil {
			return fmt.Errorf("recompute child_count for %s: %w", parentID, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		s.invalidateSnapshots()
		return nil
	})
}
