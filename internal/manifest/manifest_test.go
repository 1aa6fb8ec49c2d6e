package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequirementsTxt(t *testing.T) {
	blob := []byte("# comment\nrequests==2.31.0\nflask>=2.0\nnumpy\n\n")
	deps := ParseRequirementsTxt(blob)

	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	require.Equal(t, "2.31.0", byName["requests"].Version)
	require.Equal(t, "pypi", byName["requests"].Ecosystem)
	require.Equal(t, "2.0", byName["flask"].Version)
	require.Equal(t, "", byName["numpy"].Version)
}

func TestParsePackageJSON(t *testing.T) {
	blob := []byte(`{
		"name": "my-app",
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"jest": "~29.0.0"}
	}`)
	deps := ParsePackageJSON(blob)
	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	require.Equal(t, "^18.0.0", byName["react"].Version)
	require.Equal(t, "~29.0.0", byName["jest"].Version)

	name, ok := PackageName(blob)
	require.True(t, ok)
	require.Equal(t, "my-app", name)
}

func TestParsePyprojectToml(t *testing.T) {
	blob := []byte(`
[tool.poetry]
name = "my-lib"

[tool.poetry.dependencies]
python = "^3.11"
requests = "2.31.0"

[tool.poetry.dev-dependencies]
pytest = "^7.0"
`)
	deps := ParsePyprojectToml(blob)
	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	require.Equal(t, "2.31.0", byName["requests"].Version)
	require.Equal(t, "^7.0", byName["pytest"].Version)

	name, ok := PyprojectPackageName(blob)
	require.True(t, ok)
	require.Equal(t, "my-lib", name)
}

func TestSemverMajorBump(t *testing.T) {
	bump, ok := SemverMajorBump("^2.3.4", "3.0.0")
	require.True(t, ok)
	require.True(t, bump)

	bump, ok = SemverMajorBump("~1.5.0", "1.9.0")
	require.True(t, ok)
	require.False(t, bump)

	_, ok = SemverMajorBump("", "1.0.0")
	require.False(t, ok)
}

func TestIsManifestFile(t *testing.T) {
	require.True(t, IsManifestFile("requirements.txt"))
	require.True(t, IsManifestFile("package.json"))
	require.False(t, IsManifestFile("README.md"))
}

func TestParseDispatchesOnBasename(t *testing.T) {
	deps := Parse("vendor/pkg/requirements.txt", []byte("flask==2.0\n"))
	require.Len(t, deps, 1)
	require.Equal(t, "flask", deps[0].Name)

	require.Nil(t, Parse("setup.py", []byte("x")))
}
