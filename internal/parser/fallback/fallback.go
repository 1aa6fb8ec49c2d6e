// Package fallback implements the reflective-fallback parser for this
// rewrite's own language, Go, using go/parser and go/ast in place of a
// tree-sitter grammar. The symbols extractor invokes it for every Go
// file (no tree-sitter Go grammar is wired) and for a Python file whose
// tree-sitter pass yields zero named results, mirroring the original
// tool's standard-library-ast fallback for its own dominant language.
package fallback

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// Symbol is a named definition discovered by walking the AST: a
// function, method, or type declaration.
type Symbol struct {
	Name      string
	Kind      string // "function", "method", "class" (type declaration)
	StartLine int
	EndLine   int
}

// Call is a call-expression site with the name of the thing being
// called, resolved to its last dotted/selector component just like the
// tree-sitter call-name extraction.
type Call struct {
	Name      string
	StartLine int
}

// Parse walks src (one Go source file) and returns every function,
// method and type declaration plus every call expression in the file
// (including package-level initializers). A parse error yields (nil, nil, err); callers
// treat that the same as "no results from the fallback" since a single
// unparsable file shouldn't abort ingestion of the rest of the commit.
func Parse(filename string, src []byte) ([]Symbol, []Call, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, nil, err
	}

	var symbols []Symbol
	var calls []Call

	ast.Inspect(file, func(n ast.Node) bool {
		switch decl := n.(type) {
		case *ast.FuncDecl:
			kind := "function"
			if decl.Recv != nil && len(decl.Recv.List) > 0 {
				kind = "method"
			}
			if decl.Name != nil {
				symbols = append(symbols, Symbol{
					Name:      decl.Name.Name,
					Kind:      kind,
					StartLine: fset.Position(decl.Pos()).Line,
					EndLine:   fset.Position(decl.End()).Line,
				})
			}
		case *ast.TypeSpec:
			if decl.Name != nil {
				symbols = append(symbols, Symbol{
					Name:      decl.Name.Name,
					Kind:      "class",
					StartLine: fset.Position(decl.Pos()).Line,
					EndLine:   fset.Position(decl.End()).Line,
				})
			}
		case *ast.CallExpr:
			if name := callName(decl.Fun); name != "" {
				calls = append(calls, Call{
					Name:      name,
					StartLine: fset.Position(decl.Pos()).Line,
				})
			}
		}
		return true
	})

	return symbols, calls, nil
}

// callName extracts the last identifier in a call target, e.g. "Fatalf"
// out of "t.Fatalf" or "log.Fatalf" — the same innermost-name convention
// the tree-sitter path uses for dotted member calls.
func callName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	default:
		return ""
	}
}
