package imports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyraxred/repograph/internal/parser"
)

func TestExtractPythonImports(t *testing.T) {
	src := []byte(`import os
from .utils import helper
`)
	e := New(parser.NewFacade())
	got := e.Extract(context.Background(), "python", src)

	var modules []string
	for _, im := range got {
		if im.Module != "" {
			modules = append(modules, im.Module)
		}
	}
	require.Contains(t, modules, "os")
	require.Contains(t, modules, ".utils")
}

func TestExtractPythonImportsCapturesMemberAndAlias(t *testing.T) {
	src := []byte(`from .b import foo
from pkg import x, y as z
import numpy as np
`)
	e := New(parser.NewFacade())
	got := e.Extract(context.Background(), "python", src)

	var members, aliases []string
	for _, im := range got {
		if im.Member != "" {
			members = append(members, im.Member)
		}
		if im.Alias != "" {
			aliases = append(aliases, im.Alias)
		}
	}
	require.Contains(t, members, "foo")
	require.Contains(t, members, "x")
	require.Contains(t, aliases, "z")
	require.Contains(t, aliases, "np")
}

func TestExtractJSImportsCapturesMemberAndAlias(t *testing.T) {
	src := []byte(`import { foo } from './b';
import * as ns from './utils';
`)
	e := New(parser.NewFacade())
	got := e.Extract(context.Background(), "javascript", src)

	var members, aliases []string
	for _, im := range got {
		if im.Member != "" {
			members = append(members, im.Member)
		}
		if im.Alias != "" {
			aliases = append(aliases, im.Alias)
		}
	}
	require.Contains(t, members, "foo")
	require.Contains(t, aliases, "ns")
}

func TestIsLocal(t *testing.T) {
	require.True(t, IsLocal("python", ".utils"))
	require.True(t, IsLocal("python", "..pkg.mod"))
	require.False(t, IsLocal("python", "os"))

	require.True(t, IsLocal("javascript", "./sibling"))
	require.True(t, IsLocal("javascript", "../parent"))
	require.False(t, IsLocal("javascript", "lodash"))
}

func TestPyCandidatesDottedRelative(t *testing.T) {
	cands := pyCandidates("src/pkg", ".utils")
	require.Contains(t, cands, "src/pkg/utils.py")
	require.Contains(t, cands, "src/pkg/utils/__init__.py")

	cands = pyCandidates("src/pkg", "..sibling.mod")
	require.Contains(t, cands, "src/sibling/mod.py")
}

func TestJSCandidates(t *testing.T) {
	cands := jsCandidates("src", "./helper")
	require.Contains(t, cands, "src/helper.js")
	require.Contains(t, cands, "src/helper.ts")
	require.Contains(t, cands, "src/helper/index.js")
}
