package store

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	ai_title      TEXT,
	content       TEXT,
	is_item       INTEGER NOT NULL DEFAULT 0,
	is_universe   INTEGER NOT NULL DEFAULT 0,
	depth         INTEGER NOT NULL DEFAULT 0,
	parent_id     TEXT REFERENCES nodes(id) ON DELETE SET NULL,
	child_count   INTEGER NOT NULL DEFAULT 0,
	content_type  TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	embedding     BLOB
);

CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_depth ON nodes(depth);

CREATE TABLE IF NOT EXISTS edges (
	id                TEXT PRIMARY KEY,
	source_id         TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	target_id         TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	edge_type         TEXT NOT NULL,
	weight            REAL,
	confidence        REAL,
	reason            TEXT,
	metadata          TEXT,
	created_at        TEXT NOT NULL,
	superseded_by     TEXT REFERENCES edges(id) ON DELETE SET NULL,
	source_parent_id  TEXT,
	target_parent_id  TEXT
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(edge_type);
CREATE INDEX IF NOT EXISTS idx_edges_source_parent ON edges(source_parent_id);
CREATE INDEX IF NOT EXISTS idx_edges_target_parent ON edges(target_parent_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_edges_pair_type ON edges(source_id, target_id, edge_type);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

-- Full-text index over title and content, kept consistent by triggers
-- (spec §4.10). content=nodes makes this an external-content table so the
-- row data isn't duplicated.
CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	title, content, content='nodes', content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS nodes_fts_insert AFTER INSERT ON nodes BEGIN
	INSERT INTO nodes_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
END;

CREATE TRIGGER IF NOT EXISTS nodes_fts_delete AFTER DELETE ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
END;

CREATE TRIGGER IF NOT EXISTS nodes_fts_update AFTER UPDATE ON nodes BEGIN
	INSERT INTO nodes_fts(nodes_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
	INSERT INTO nodes_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
END;
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaDDL)
	return err
}
