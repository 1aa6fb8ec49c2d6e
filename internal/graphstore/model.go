// Package graphstore projects ingested commit/file/symbol data onto a
// property graph reachable over the Bolt protocol (Memgraph or Neo4j),
// grounded on the original tool's mg_* Cypher functions in
// build_engine.py. Every write is an idempotent MERGE so re-ingesting a
// commit never duplicates nodes or edges.
package graphstore

// CommitMeta is the subset of gitdriver.CommitMeta the projector needs,
// kept separate so this package doesn't import gitdriver.
type CommitMeta struct {
	SHA          string
	AuthoredAt   int64
	CommittedAt  int64
	AuthorName   string
	AuthorEmail  string
	Subject      string
}

// FileChange is one file touched by a commit, already merged from
// numstat + name-status.
type FileChange struct {
	Path       string
	OldPath    string
	Status     string // "A", "M", "D", "R", "C"
	Additions  int
	Deletions  int
	Ext        string
	IsCode     bool
}

// SymbolDef is a named function/class definition to upsert.
type SymbolDef struct {
	Name      string
	Kind      string // "Function" or "Class"
	StartLine int
	EndLine   int
}

// CallSite is a named call expression found in a file.
type CallSite struct {
	Name      string
	StartLine int
}

// ImportRow is one import triple plus its resolution (if local).
type ImportRow struct {
	Module       string
	Member       string
	Alias        string
	ResolvedPath string // empty when unresolved
}

// DependencyUpdate is one manifest-declared dependency seen in a commit.
type DependencyUpdate struct {
	Ecosystem string
	Name      string
	Version   string
}

// CommitRollup is what LinkCommit computes and the anomaly scorer later
// consumes via the Commit node's own stored fields.
type CommitRollup struct {
	FilesChanged int
	LinesChanged int
	Hour         int
	DOW          int
}
