package store

import (
	"fmt"
	"strings"
)

// stopWords is the small English stop-word set the FTS preprocessor drops,
// shared with the TF-IDF fallback group namer (spec §4.10, §6).
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "from": true, "as": true, "that": true,
	"this": true, "these": true, "those": true, "it": true, "its": true,
	"into": true, "about": true, "than": true, "then": true, "also": true,
	"not": true, "you": true, "your": true, "we": true, "our": true,
}

// Tokenize lowercases s, strips all punctuation except '_' and '.', and
// drops tokens shorter than 3 characters and stop-words. This is the single
// tokenization rule spec §4.10 and §6 both require: the FTS query
// preprocessor and the TF-IDF fallback group namer (internal/namer) must
// tokenize identically or their outputs would disagree on what a "term" is.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) < 3 {
			continue
		}
		if stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// PreprocessQuery tokenizes q per Tokenize and joins the result with " OR "
// for an FTS5 MATCH query (spec §4.10).
func PreprocessQuery(q string) string {
	return strings.Join(Tokenize(q), " OR ")
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	NodeID string
	Title  string
	Rank   float64
}

// Search runs a full-text query over titles and content. An empty
// preprocessed query returns zero results without touching the database
// (spec §4.10, §8).
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	preprocessed := PreprocessQuery(query)
	if preprocessed == "" {
		return nil, nil
	}

	var out []SearchResult
	err := s.withReadLock(func() error {
		rows, err := s.db.Query(`
			SELECT nodes.id, nodes.title, bm25(nodes_fts) AS rank
			FROM nodes_fts
			JOIN nodes ON nodes.rowid = nodes_fts.rowid
			WHERE nodes_fts MATCH ?
			ORDER BY rank
			LIMIT ?
		`, preprocessed, limit)
		if err != nil {
			return fmt.Errorf("fts query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r SearchResult
			if err := rows.Scan(&r.NodeID, &r.Title, &r.Rank); err != nil {
				return fmt.Errorf("scan search result: %w", err)
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}
