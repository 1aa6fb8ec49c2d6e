// Package manifest parses dependency manifests found while walking a
// commit's tree: Python requirements files, pyproject.toml (Poetry
// layout), and package.json. Grounded on the original tool's
// parse_requirements_txt / parse_pyproject_toml / parse_package_json.
package manifest

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Dependency is one manifest-declared package requirement.
type Dependency struct {
	Ecosystem string // "pypi" or "npm"
	Name      string
	Version   string
}

var depLineRe = regexp.MustCompile(`^\s*([A-Za-z0-9_.\-]+)\s*([=~!<>]{1,2})\s*([A-Za-z0-9_.\-+]+)`)
var bareNameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// Parse dispatches on fileName's basename to the matching parser. An
// unrecognized manifest name, or any parse failure, yields an empty
// list rather than an error — a malformed manifest should never abort
// ingestion of the rest of the commit.
func Parse(fileName string, blob []byte) []Dependency {
	switch filepath.Base(fileName) {
	case "requirements.txt", "requirements-dev.txt":
		return ParseRequirementsTxt(blob)
	case "package.json":
		return ParsePackageJSON(blob)
	case "pyproject.toml":
		return ParsePyprojectToml(blob)
	default:
		return nil
	}
}

// ParseRequirementsTxt reads pip-style requirement lines, accepting both
// pinned ("name==1.2.3") and bare ("name") forms. Comments and blanks
// are skipped.
func ParseRequirementsTxt(blob []byte) []Dependency {
	var out []Dependency
	for _, raw := range strings.Split(string(blob), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := depLineRe.FindStringSubmatch(line); m != nil {
			out = append(out, Dependency{Ecosystem: "pypi", Name: strings.ToLower(m[1]), Version: m[3]})
		} else if bareNameRe.MatchString(line) {
			out = append(out, Dependency{Ecosystem: "pypi", Name: strings.ToLower(line), Version: ""})
		}
	}
	return out
}

type packageJSON struct {
	Name                 string            `json:"name"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ParsePackageJSON merges all four dependency sections npm recognizes.
func ParsePackageJSON(blob []byte) []Dependency {
	var pkg packageJSON
	if err := json.Unmarshal(blob, &pkg); err != nil {
		return nil
	}
	var out []Dependency
	for _, sec := range []map[string]string{
		pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies, pkg.OptionalDependencies,
	} {
		for name, ver := range sec {
			out = append(out, Dependency{Ecosystem: "npm", Name: strings.ToLower(name), Version: ver})
		}
	}
	return out
}

// PackageName returns package.json's own "name" field, used to link a
// manifest back to its repo/package identity. ("", false) if absent or
// the blob doesn't parse.
func PackageName(blob []byte) (string, bool) {
	var pkg packageJSON
	if err := json.Unmarshal(blob, &pkg); err != nil || pkg.Name == "" {
		return "", false
	}
	return pkg.Name, true
}

type pyprojectDoc struct {
	Tool struct {
		Poetry struct {
			Name            string                 `toml:"name"`
			Dependencies    map[string]toml.Primitive `toml:"dependencies"`
			DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyprojectToml reads Poetry's tool.poetry.dependencies and
// tool.poetry.dev-dependencies tables. A dependency value may be a bare
// version string or a table with a "version" key; both collapse to a
// version string, best-effort.
func ParsePyprojectToml(blob []byte) []Dependency {
	var doc pyprojectDoc
	md, err := toml.Decode(string(blob), &doc)
	if err != nil {
		return nil
	}
	var out []Dependency
	collect := func(sec map[string]toml.Primitive) {
		for name, prim := range sec {
			out = append(out, Dependency{Ecosystem: "pypi", Name: strings.ToLower(name), Version: primitiveVersion(md, prim)})
		}
	}
	collect(doc.Tool.Poetry.Dependencies)
	collect(doc.Tool.Poetry.DevDependencies)
	return out
}

// PyprojectPackageName returns tool.poetry.name, used the same way
// PackageName is for package.json.
func PyprojectPackageName(blob []byte) (string, bool) {
	var doc pyprojectDoc
	if _, err := toml.Decode(string(blob), &doc); err != nil || doc.Tool.Poetry.Name == "" {
		return "", false
	}
	return doc.Tool.Poetry.Name, true
}

func primitiveVersion(md toml.MetaData, prim toml.Primitive) string {
	var s string
	if err := md.PrimitiveDecode(prim, &s); err == nil {
		return s
	}
	var table struct {
		Version string `toml:"version"`
	}
	if err := md.PrimitiveDecode(prim, &table); err == nil {
		return table.Version
	}
	return ""
}

// SemverMajorBump reports whether new's major version exceeds prev's.
// It returns (false, false) when either version string doesn't contain
// a recognizable leading integer — "undecidable" in the original tool's
// terms, which it treats as no bump rather than an error.
func SemverMajorBump(prev, new string) (isBump bool, decidable bool) {
	pMajor, ok1 := leadingMajor(prev)
	nMajor, ok2 := leadingMajor(new)
	if !ok1 || !ok2 {
		return false, false
	}
	return nMajor > pMajor, true
}

var versionPrefixRe = regexp.MustCompile(`^[\^~<>=\s]*v?`)
var majorRe = regexp.MustCompile(`(\d+)`)

func leadingMajor(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	v = versionPrefixRe.ReplaceAllString(v, "")
	m := majorRe.FindString(v)
	if m == "" {
		return 0, false
	}
	n := 0
	for _, r := range m {
		n = n*10 + int(r-'0')
	}
	return n, true
}

// IsManifestFile reports whether basename is one of the manifest file
// names this package understands, used by the orchestrator to decide
// whether to route a touched file through manifest parsing.
func IsManifestFile(basename string) bool {
	switch basename {
	case "requirements.txt", "requirements-dev.txt", "package.json", "pyproject.toml":
		return true
	default:
		return false
	}
}
