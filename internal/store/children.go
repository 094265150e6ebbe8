package store

import "github.com/josephgoksu/corpusgraph/internal/graph"

// Children returns every node whose parent_id equals id, sorted by id. Used
// by the get_children command (spec §6) and by the CLI/MCP tree browser.
func (s *Store) Children(id string) ([]*graph.Node, error) {
	return s.listNodesWhere(`parent_id = ? ORDER BY id`, id)
}
