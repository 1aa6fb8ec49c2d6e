// Package imports extracts (module, member, alias) import triples from
// a file's source and resolves local (relative) imports to an actual
// path in the tree at that commit, grounded on the original tool's
// extract_imports / _resolve_local_module_path / _is_local_import.
package imports

import (
	"context"
	"path"
	"strings"

	"github.com/cyraxred/repograph/internal/gitdriver"
	"github.com/cyraxred/repograph/internal/parser"
)

// Import is one extracted import statement component. Member/Alias are
// empty when not applicable (e.g. a bare Python "import pkg").
type Import struct {
	Module string
	Member string
	Alias  string
}

// Extractor wires a Parser Facade to import-statement extraction.
type Extractor struct {
	facade *parser.Facade
}

func New(facade *parser.Facade) *Extractor {
	return &Extractor{facade: facade}
}

// Extract returns every import found in src written in lang. Go and any
// language without a wired imports query yield nil — the orchestrator
// treats that the same as "no imports to resolve", never an error.
func (e *Extractor) Extract(ctx context.Context, lang string, src []byte) []Import {
	tree := e.facade.Parse(ctx, lang, src)
	if !tree.Valid() {
		return nil
	}
	q := e.facade.Queries(lang).Imports
	if q == nil {
		return nil
	}

	var out []Import
	var currentModule string
	for _, c := range parser.Captures(tree, q) {
		text := strings.TrimSpace(parser.Text(tree.Source, c.Node))
		switch c.Name {
		case "module":
			currentModule = stripQuotes(text)
			if currentModule != "" {
				out = append(out, Import{Module: currentModule})
			}
		case "member":
			out = append(out, Import{Module: currentModule, Member: text})
		case "alias":
			out = append(out, Import{Module: currentModule, Alias: text})
		}
	}
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// IsLocal reports whether moduleSpec is a relative import for lang:
// Python's dotted-relative ("." / ".." / "...pkg") or the slash-relative
// convention JS/TS use ("./x", "../x").
func IsLocal(lang, moduleSpec string) bool {
	if lang == "python" {
		return strings.HasPrefix(moduleSpec, ".")
	}
	return strings.HasPrefix(moduleSpec, "./") || strings.HasPrefix(moduleSpec, "../")
}

// Resolve maps a local import spec to an actual path that exists in the
// tree at sha, trying the same extension/package-convention candidates
// the original tool tries, in order, and returning the first that
// resolves via a cat-file -e probe. It returns ("", false) when no
// candidate exists, which callers treat as an unresolved (not an
// erroring) import.
func Resolve(ctx context.Context, driver *gitdriver.Driver, sha, baseRelFile, moduleSpec, lang string) (string, bool) {
	if !IsLocal(lang, moduleSpec) {
		return "", false
	}
	baseDir := path.Dir(baseRelFile)

	for _, cand := range candidates(baseDir, moduleSpec, lang) {
		if driver.Exists(ctx, sha, cand) {
			return cand, true
		}
	}
	return "", false
}

func candidates(baseDir, moduleSpec, lang string) []string {
	switch lang {
	case "javascript", "typescript":
		return jsCandidates(baseDir, moduleSpec)
	case "python":
		return pyCandidates(baseDir, moduleSpec)
	default:
		return nil
	}
}

func jsCandidates(baseDir, moduleSpec string) []string {
	base := cleanJoin(baseDir, moduleSpec)
	exts := []string{".js", ".jsx", ".ts", ".tsx"}
	var out []string
	for _, ext := range exts {
		out = append(out, withExt(base, ext))
	}
	for _, ext := range exts {
		out = append(out, path.Join(base, "index"+ext))
	}
	return out
}

func pyCandidates(baseDir, moduleSpec string) []string {
	var anchor string
	if strings.HasPrefix(moduleSpec, ".") {
		dots := 0
		for dots < len(moduleSpec) && moduleSpec[dots] == '.' {
			dots++
		}
		tail := moduleSpec[dots:]
		anchor = baseDir
		for i := 0; i < dots-1; i++ {
			anchor = path.Dir(anchor)
		}
		var spec string
		if tail != "" {
			spec = path.Join(anchor, strings.ReplaceAll(tail, ".", "/"))
		} else {
			spec = anchor
		}
		return []string{spec + ".py", path.Join(spec, "__init__.py")}
	}
	spec := cleanJoin(baseDir, moduleSpec)
	return []string{spec + ".py", path.Join(spec, "__init__.py")}
}

func cleanJoin(baseDir, spec string) string {
	return path.Join(baseDir, spec)
}

// withExt mirrors pathlib's Path.with_suffix: replace an existing
// extension, or append one if p has none.
func withExt(p, ext string) string {
	if cur := path.Ext(p); cur != "" {
		return p[:len(p)-len(cur)] + ext
	}
	return p + ext
}
