// Package graph holds the shared node/edge data model, the edge cost model
// (§4.3), and the immutable in-memory graph snapshot (§4.4) that the
// hierarchy builder, context expander, and health analyzer all read.
package graph

import "time"

// Node is a single vertex in the corpus graph: either a leaf content item or
// a structural group created by the hierarchy builder.
type Node struct {
	ID            string
	Title         string
	AITitle       string // optional AI-rewritten title
	Content       string
	IsItem        bool
	IsUniverse    bool
	Depth         int
	ParentID      *string
	ChildCount    int
	ContentType   string // optional classification
	CreatedAt     time.Time
	UpdatedAt     time.Time
	HasEmbedding  bool
}

// EdgeType is an open string tag, not a closed Go enum, because the set is
// explicitly open (spec §3). The constants below group the known tags into
// two families; IsStructural is the narrower cost flag, not a family test.
type EdgeType string

// Semantic edge types.
const (
	EdgeRelated      EdgeType = "related"
	EdgeSupports     EdgeType = "supports"
	EdgeContradicts  EdgeType = "contradicts"
	EdgeSupersedes   EdgeType = "supersedes"
	EdgeDerivesFrom  EdgeType = "derives_from"
	EdgeSummarizes   EdgeType = "summarizes"
	EdgeQuestions    EdgeType = "questions"
	EdgePrerequisite EdgeType = "prerequisite"
	EdgeEvolvedFrom  EdgeType = "evolved_from"
	EdgeResolves     EdgeType = "resolves"
	EdgeFlags        EdgeType = "flags"
)

// Structural edge types.
const (
	EdgeContains   EdgeType = "contains"
	EdgeBelongsTo  EdgeType = "belongs_to"
	EdgeDefinedIn  EdgeType = "defined_in"
	EdgeSibling    EdgeType = "sibling"
	EdgeCalls      EdgeType = "calls"
	EdgeUsesType   EdgeType = "uses_type"
	EdgeImplements EdgeType = "implements"
	EdgeImports    EdgeType = "imports"
	EdgeTests      EdgeType = "tests"
	EdgeDocuments  EdgeType = "documents"
	EdgeReference  EdgeType = "reference"
	EdgeBecause    EdgeType = "because"
	EdgeRepliesTo  EdgeType = "replies_to"
)

// Edge is a typed, optionally weighted relationship between two nodes.
type Edge struct {
	ID             string
	SourceID       string
	TargetID       string
	Type           EdgeType
	Weight         *float64 // [0,1] raw similarity/relatedness, optional
	Confidence     *float64 // [0,1], optional
	Reason         string
	Metadata       map[string]any
	CreatedAt      time.Time
	SupersededBy   *string
	SourceParentID *string // denormalized, kept in sync by the store
	TargetParentID *string
}

// IsStructural reports the structural cost flag (§4.3 s(t)): true only for
// defined_in, belongs_to and sibling. Other structural-family tags such as
// contains or calls report false.
func IsStructural(t EdgeType) bool {
	switch t {
	case EdgeDefinedIn, EdgeBelongsTo, EdgeSibling:
		return true
	default:
		return false
	}
}

// IsSemantic is the complement of IsStructural; the spec defines the type
// set by two named families plus "all others" falling to the low-priority
// default, so semantic-ness is simply "not structural" for cost purposes.
func IsSemantic(t EdgeType) bool {
	return !IsStructural(t)
}
