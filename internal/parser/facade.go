// Package parser loads per-language tree-sitter grammars and exposes a
// uniform parse + compiled-query surface to the symbol/call and import
// extractors. A language whose grammar isn't wired returns empty results
// rather than an error, per the facade's "gracefully report absence"
// contract; Go, this rewrite's reflective-fallback language, is served by
// the sibling fallback package instead of a tree-sitter grammar.
package parser

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Tree is a parsed syntax tree bundled with the source bytes it came
// from, since captured nodes only carry byte offsets.
type Tree struct {
	Root   *sitter.Node
	Source []byte
}

// Valid reports whether parsing produced a usable tree.
func (t Tree) Valid() bool { return t.Root != nil }

// QueryPack holds the compiled named queries for one language. Any field
// may be nil when the grammar has no meaningful query for that concern.
type QueryPack struct {
	Functions *sitter.Query
	Classes   *sitter.Query
	Calls     *sitter.Query
	Imports   *sitter.Query
}

// Capture is one (node, capture-name) pair yielded by running a query
// over a tree, normalized away from go-tree-sitter's cursor/match API.
type Capture struct {
	Node *sitter.Node
	Name string
}

type grammar struct {
	lang    *sitter.Language
	parser  *sitter.Parser
	queries QueryPack
	mu      sync.Mutex
}

// Facade lazily builds and caches one grammar+query set per language.
type Facade struct {
	mu       sync.Mutex
	grammars map[string]*grammar
}

// NewFacade returns an empty Facade. Grammars are built on first use.
func NewFacade() *Facade {
	return &Facade{grammars: map[string]*grammar{}}
}

func (f *Facade) grammarFor(lang string) *grammar {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.grammars[lang]; ok {
		return g
	}
	g := buildGrammar(lang)
	f.grammars[lang] = g
	return g
}

func buildGrammar(lang string) *grammar {
	var sl *sitter.Language
	var set querySet
	switch lang {
	case "python":
		sl = python.GetLanguage()
		set = pythonQueries
	case "javascript":
		sl = javascript.GetLanguage()
		set = javascriptQueries
	case "typescript":
		sl = typescript.GetLanguage()
		set = typescriptQueries
	default:
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(sl)
	g := &grammar{lang: sl, parser: p}
	g.queries.Functions = compileQuery(sl, set.functions)
	g.queries.Classes = compileQuery(sl, set.classes)
	g.queries.Calls = compileQuery(sl, set.calls)
	g.queries.Imports = compileQuery(sl, set.imports)
	return g
}

func compileQuery(lang *sitter.Language, src string) *sitter.Query {
	if src == "" {
		return nil
	}
	q, err := sitter.NewQuery([]byte(src), lang)
	if err != nil {
		// A malformed query is a programming error in this package, not a
		// per-repository failure; fail soft by disabling that query
		// rather than panicking the whole ingest.
		return nil
	}
	return q
}

// Parse parses src as lang. It returns a zero Tree (Valid() == false) for
// an unrecognized or unbuilt grammar, never an error.
func (f *Facade) Parse(ctx context.Context, lang string, src []byte) Tree {
	g := f.grammarFor(lang)
	if g == nil {
		return Tree{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	tree, err := g.parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return Tree{}
	}
	return Tree{Root: tree.RootNode(), Source: src}
}

// Queries returns the compiled query pack for lang, or a zero QueryPack
// when the grammar is unavailable.
func (f *Facade) Queries(lang string) QueryPack {
	g := f.grammarFor(lang)
	if g == nil {
		return QueryPack{}
	}
	return g.queries
}

// Captures runs q over tree and returns every (node, capture name) pair.
// A nil query or invalid tree yields nil.
func Captures(tree Tree, q *sitter.Query) []Capture {
	if q == nil || !tree.Valid() {
		return nil
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.Root)

	var out []Capture
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			out = append(out, Capture{Node: c.Node, Name: q.CaptureNameForId(c.Index)})
		}
	}
	return out
}

// Text returns the exact source slice spanned by node.
func Text(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
