package store

import "fmt"

// PipelineState is the six-state enum tracked in the metadata table (spec
// §4.10).
type PipelineState string

const (
	StateFresh        PipelineState = "fresh"
	StateImported     PipelineState = "imported"
	StateProcessed    PipelineState = "processed"
	StateClustered    PipelineState = "clustered"
	StateHierarchized PipelineState = "hierarchized"
	StateComplete     PipelineState = "complete"
)

const metadataKeyPipelineState = "pipeline_state"

// SetMetadata upserts a single metadata key/value pair.
func (s *Store) SetMetadata(key, value string) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("set metadata %s: %w", key, err)
		}
		return nil
	})
}

// Metadata reads a single key, returning ("", false) if absent.
func (s *Store) Metadata(key string) (string, bool, error) {
	var value string
	found := false
	err := s.withReadLock(func() error {
		row := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
		switch err := row.Scan(&value); err {
		case nil:
			found = true
			return nil
		default:
			return nil // absent is not an error; found stays false
		}
	})
	return value, found, err
}

// SetPipelineState records the pipeline's current stage.
func (s *Store) SetPipelineState(state PipelineState) error {
	return s.SetMetadata(metadataKeyPipelineState, string(state))
}

// PipelineStateValue reads the pipeline's current stage, defaulting to
// StateFresh when unset.
func (s *Store) PipelineStateValue() (PipelineState, error) {
	v, found, err := s.Metadata(metadataKeyPipelineState)
	if err != nil {
		return "", err
	}
	if !found {
		return StateFresh, nil
	}
	return PipelineState(v), nil
}
