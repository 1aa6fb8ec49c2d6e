package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToConfigKeyReplacesDashes(t *testing.T) {
	require.Equal(t, "memgraph_uri", toConfigKey("memgraph-uri"))
	require.Equal(t, "walk_max_commits", toConfigKey("walk-max-commits"))
	require.Equal(t, "shallow_clone", toConfigKey("shallow-clone"))
}

func TestAnomalyLocationFallsBackToUTC(t *testing.T) {
	require.Equal(t, time.UTC, anomalyLocation(""))
	require.Equal(t, time.UTC, anomalyLocation("Not/AZone"))

	loc := anomalyLocation("UTC")
	require.Equal(t, "UTC", loc.String())
}

func TestLooksRemote(t *testing.T) {
	require.True(t, looksRemote("https://github.com/acme/widgets.git"))
	require.True(t, looksRemote("git@github.com:acme/widgets.git"))
	require.False(t, looksRemote("/home/user/repos/widgets"))
	require.False(t, looksRemote("relative/path"))
}
