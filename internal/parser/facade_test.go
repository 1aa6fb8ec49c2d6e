package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const pySample = `class Widget:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return helper.format(self.name)


def top_level():
    return Widget("x").greet()
`

func TestParsePythonFunctionsAndClasses(t *testing.T) {
	f := NewFacade()
	ctx := context.Background()
	tree := f.Parse(ctx, "python", []byte(pySample))
	require.True(t, tree.Valid())

	q := f.Queries("python")
	require.NotNil(t, q.Functions)
	require.NotNil(t, q.Classes)
	require.NotNil(t, q.Calls)

	var names []string
	for _, c := range Captures(tree, q.Functions) {
		if c.Name == "name" {
			names = append(names, Text(tree.Source, c.Node))
		}
	}
	require.Contains(t, names, "greet")
	require.Contains(t, names, "top_level")

	var classNames []string
	for _, c := range Captures(tree, q.Classes) {
		if c.Name == "name" {
			classNames = append(classNames, Text(tree.Source, c.Node))
		}
	}
	require.Contains(t, classNames, "Widget")
}

func TestParseUnknownLanguageReturnsInvalidTree(t *testing.T) {
	f := NewFacade()
	ctx := context.Background()
	tree := f.Parse(ctx, "ruby", []byte("puts 1"))
	require.False(t, tree.Valid())

	q := f.Queries("ruby")
	require.Nil(t, q.Functions)
	require.Nil(t, Captures(tree, q.Functions))
}

func TestCapturesOnInvalidTreeIsNil(t *testing.T) {
	require.Nil(t, Captures(Tree{}, nil))
}
