// Package symbols extracts named function/class definitions and call
// sites from a file's source, grounded on the original tool's
// extract_symbols_coarse: run the tree-sitter queries, keep only named
// results, and fall back to the reflective Go parser when the primary
// parser yields nothing for a fallback-capable language.
package symbols

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cyraxred/repograph/internal/parser"
	"github.com/cyraxred/repograph/internal/parser/fallback"
)

// Kind mirrors the original tool's "Function"/"Class"/"Call" tags.
type Kind string

const (
	KindFunction Kind = "Function"
	KindClass    Kind = "Class"
	KindCall     Kind = "Call"
)

// Symbol is one materialized definition or call site.
type Symbol struct {
	Kind      Kind
	Name      string
	StartLine int
	EndLine   int
}

// Extractor wires a Parser Facade to the symbol/call extraction rules.
type Extractor struct {
	facade *parser.Facade
}

func New(facade *parser.Facade) *Extractor {
	return &Extractor{facade: facade}
}

// Extract returns every named function, class and call found in src,
// written in lang. Go has no tree-sitter grammar wired, so it always
// goes through the reflective fallback. Python also goes through the
// fallback when its tree-sitter pass produces zero named results (the
// fallback parses Go source only, so for Python source it yields nil);
// other languages do not fall back.
func (e *Extractor) Extract(ctx context.Context, lang string, src []byte) []Symbol {
	if lang == "go" {
		return fallbackExtract(src)
	}

	tree := e.facade.Parse(ctx, lang, src)
	if !tree.Valid() {
		return nil
	}
	q := e.facade.Queries(lang)

	funcs := namedDefs(tree, q.Functions, KindFunction)
	classes := namedDefs(tree, q.Classes, KindClass)
	calls := namedCalls(tree, q.Calls)

	out := make([]Symbol, 0, len(funcs)+len(classes)+len(calls))
	out = append(out, funcs...)
	out = append(out, classes...)
	out = append(out, calls...)

	if lang == "python" && len(out) == 0 {
		return fallbackExtract(src)
	}
	return out
}

// namedDefs runs q over tree and keeps only "name"-captured results,
// promoting a bare identifier capture to its definition node so the
// line range covers the whole def, not just the name token.
func namedDefs(tree parser.Tree, q *sitter.Query, kind Kind) []Symbol {
	if q == nil {
		return nil
	}
	var out []Symbol
	for _, def := range groupByDef(tree, q) {
		name := strings.TrimSpace(def.name)
		if name == "" {
			continue
		}
		out = append(out, Symbol{
			Kind:      kind,
			Name:      name,
			StartLine: def.startLine,
			EndLine:   def.endLine,
		})
	}
	return out
}

// namedCalls runs q over tree, keeping only named call sites. The call
// name is the last component of a dotted/member capture, matching the
// original extractor's convention.
func namedCalls(tree parser.Tree, q *sitter.Query) []Symbol {
	if q == nil {
		return nil
	}
	var out []Symbol
	for _, c := range parser.Captures(tree, q) {
		if c.Name != "name" {
			continue
		}
		name := strings.TrimSpace(parser.Text(tree.Source, c.Node))
		if name == "" {
			continue
		}
		out = append(out, Symbol{
			Kind:      KindCall,
			Name:      name,
			StartLine: int(c.Node.StartPoint().Row) + 1,
			EndLine:   int(c.Node.EndPoint().Row) + 1,
		})
	}
	return out
}

type defCapture struct {
	name      string
	startLine int
	endLine   int
}

// groupByDef pairs each "@def" capture with its "name" capture. Queries
// in this package always emit one def per name within the same match, so
// a single pass keyed by match index is sufficient.
func groupByDef(tree parser.Tree, q *sitter.Query) []defCapture {
	if q == nil || !tree.Valid() {
		return nil
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.Root)

	var out []defCapture
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		var cur defCapture
		var haveDef bool
		for _, c := range match.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "def":
				cur.startLine = int(c.Node.StartPoint().Row) + 1
				cur.endLine = int(c.Node.EndPoint().Row) + 1
				haveDef = true
			case "name":
				cur.name = parser.Text(tree.Source, c.Node)
			}
		}
		if haveDef {
			out = append(out, cur)
		}
	}
	return out
}

func fallbackExtract(src []byte) []Symbol {
	syms, calls, err := fallback.Parse("fallback", src)
	if err != nil {
		return nil
	}
	out := make([]Symbol, 0, len(syms)+len(calls))
	for _, s := range syms {
		kind := KindFunction
		if s.Kind == "class" {
			kind = KindClass
		}
		out = append(out, Symbol{Kind: kind, Name: s.Name, StartLine: s.StartLine, EndLine: s.EndLine})
	}
	for _, c := range calls {
		out = append(out, Symbol{Kind: KindCall, Name: c.Name, StartLine: c.StartLine, EndLine: c.StartLine})
	}
	return out
}
