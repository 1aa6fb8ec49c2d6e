package fallback

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSrc = `package sample

type Widget struct {
	Name string
}

func (w *Widget) Greet() string {
	return format(w.Name)
}

func format(s string) string {
	return "hi " + s
}
`

func TestParseSymbolsAndCalls(t *testing.T) {
	symbols, calls, err := Parse("sample.go", []byte(sampleSrc))
	require.NoError(t, err)

	var names []string
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	require.Contains(t, names, "Widget")
	require.Contains(t, names, "Greet")
	require.Contains(t, names, "format")

	var callNames []string
	for _, c := range calls {
		callNames = append(callNames, c.Name)
	}
	require.Contains(t, callNames, "format")
}

func TestParseInvalidSource(t *testing.T) {
	_, _, err := Parse("broken.go", []byte("package broken\nfunc ( {"))
	require.Error(t, err)
}

func TestMethodKindDistinguishedFromFunction(t *testing.T) {
	symbols, _, err := Parse("sample.go", []byte(sampleSrc))
	require.NoError(t, err)

	kinds := map[string]string{}
	for _, s := range symbols {
		kinds[s.Name] = s.Kind
	}
	require.Equal(t, "method", kinds["Greet"])
	require.Equal(t, "function", kinds["format"])
	require.Equal(t, "class", kinds["Widget"])
}
