package symbols

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyraxred/repograph/internal/parser"
)

const pySample = `class Widget:
    def greet(self):
        return helper.format(self.name)


def top_level():
    return Widget().greet()
`

func TestExtractPython(t *testing.T) {
	e := New(parser.NewFacade())
	syms := e.Extract(context.Background(), "python", []byte(pySample))
	require.NotEmpty(t, syms)

	// Widget and greet are both defined and called in pySample, so
	// definitions and call sites are keyed separately.
	defsByName := map[string]Symbol{}
	callsByName := map[string]Symbol{}
	for _, s := range syms {
		if s.Kind == KindCall {
			callsByName[s.Name] = s
		} else {
			defsByName[s.Name] = s
		}
	}
	require.Equal(t, KindClass, defsByName["Widget"].Kind)
	require.Equal(t, KindFunction, defsByName["greet"].Kind)
	require.Equal(t, KindFunction, defsByName["top_level"].Kind)
	require.Equal(t, KindCall, callsByName["format"].Kind)
}

func TestExtractGoUsesFallback(t *testing.T) {
	src := []byte("package p\nfunc A() { B() }\nfunc B() {}\n")
	e := New(parser.NewFacade())
	syms := e.Extract(context.Background(), "go", src)

	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	require.Contains(t, names, "A")
	require.Contains(t, names, "B")
}

func TestExtractUnknownLanguageYieldsNil(t *testing.T) {
	e := New(parser.NewFacade())
	syms := e.Extract(context.Background(), "ruby", []byte("puts 1"))
	require.Nil(t, syms)
}
