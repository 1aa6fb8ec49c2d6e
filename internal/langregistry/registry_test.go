package langregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByExtension(t *testing.T) {
	r := New()
	lang, ok := r.ByExtension(".py")
	require.True(t, ok)
	require.Equal(t, "python", lang)

	_, ok = r.ByExtension(".rb")
	require.False(t, ok)
}

func TestIsCode(t *testing.T) {
	r := New()
	require.True(t, r.IsCode(".ts"))
	require.False(t, r.IsCode(".md"))
}

func TestPackageIndicator(t *testing.T) {
	r := New()
	py, ok := r.Get("python")
	require.True(t, ok)
	require.True(t, py.IsPackageIndicator("__init__.py"))
	require.False(t, py.IsPackageIndicator("main.py"))
}

func TestWhitelistEmptyAllowsAll(t *testing.T) {
	r := New()
	py, _ := r.Get("python")
	require.True(t, py.IsWhitelisted("anything"))
}
