// Package langregistry holds per-language parsing configuration: file
// extensions, the AST node-kind sets that describe functions, classes,
// calls and other constructs, field names used to pull a name/body out of
// a node, and a whitelist of node kinds worth materializing. It is a
// direct table-of-structs translation of the original Python tool's
// per-language dataclass, in the teacher's languages.go idiom (a
// package-level table of struct literals, from which New builds the
// name and extension lookup maps).
package langregistry

// Language describes one supported source language's syntax shape, in
// terms a tree-sitter grammar (or the reflective fallback) can answer.
type Language struct {
	// Name is the canonical language tag stored on Symbol/Module nodes.
	Name string
	// Extensions lists the file extensions (with leading dot) mapped to
	// this language.
	Extensions []string

	FunctionNodeKinds []string
	ClassNodeKinds    []string
	ModuleNodeKinds   []string
	CallNodeKinds     []string
	BranchNodeKinds   []string
	LoopNodeKinds     []string
	SwitchNodeKinds   []string
	TryNodeKinds      []string
	CatchNodeKinds    []string
	BlockNodeKinds    []string

	// NameField/BodyField are the tree-sitter field names used to pull a
	// definition's identifier and body out of a matched node.
	NameField string
	BodyField string

	// PackageIndicators lists file basenames that mark a directory as an
	// importable package for this language (e.g. "__init__.py").
	PackageIndicators []string

	// WhitelistNodeKinds restricts which matched node kinds are
	// materialized when non-empty; an empty list means "no restriction
	// beyond Function/Class/Call".
	WhitelistNodeKinds []string
}

// IsWhitelisted reports whether kind should be materialized. An empty
// whitelist always allows.
func (l Language) IsWhitelisted(kind string) bool {
	if len(l.WhitelistNodeKinds) == 0 {
		return true
	}
	for _, k := range l.WhitelistNodeKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsPackageIndicator reports whether basename marks a package directory
// for this language (e.g. Python's "__init__.py").
func (l Language) IsPackageIndicator(basename string) bool {
	for _, ind := range l.PackageIndicators {
		if ind == basename {
			return true
		}
	}
	return false
}

// Registry is the set of all known languages, keyed by their canonical
// name, plus the derived extension -> language lookup.
type Registry struct {
	byName map[string]Language
	byExt  map[string]string
}

// New builds the default Registry covering python, javascript, typescript
// and go (the reflective-fallback language).
func New() *Registry {
	r := &Registry{byName: map[string]Language{}, byExt: map[string]string{}}
	for _, l := range defaultLanguages {
		r.byName[l.Name] = l
		for _, ext := range l.Extensions {
			r.byExt[ext] = l.Name
		}
	}
	return r
}

// ByExtension returns the language tag for a file extension (including the
// leading dot), or ("", false) if unrecognized.
func (r *Registry) ByExtension(ext string) (string, bool) {
	name, ok := r.byExt[ext]
	return name, ok
}

// Get returns the Language config for a language tag.
func (r *Registry) Get(name string) (Language, bool) {
	l, ok := r.byName[name]
	return l, ok
}

// IsCode reports whether path's extension is recognized as a source
// language by this registry.
func (r *Registry) IsCode(ext string) bool {
	_, ok := r.byExt[ext]
	return ok
}
