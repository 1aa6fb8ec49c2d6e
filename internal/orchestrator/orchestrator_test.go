package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyraxred/repograph/internal/gitdriver"
	"github.com/cyraxred/repograph/internal/langregistry"
)

func TestMergeFileChangesPrefersNameStatus(t *testing.T) {
	numstat := map[string]gitdriver.FileStat{
		"src/a.py": {Additions: 1, Deletions: 1},
		"src/b.py": {Additions: 5, Deletions: 0},
	}
	nameStatus := map[string]gitdriver.NameStatusEntry{
		"src/a.py": {Status: "M"},
	}
	changes := mergeFileChanges(numstat, nameStatus)

	byPath := map[string]fileChange{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	require.Equal(t, "M", byPath["src/a.py"].Status)
	require.Equal(t, "M", byPath["src/b.py"].Status) // numstat-only fallback
	require.Equal(t, 5, byPath["src/b.py"].Additions)
}

func TestToDOWMatchesPythonWeekdayConvention(t *testing.T) {
	// 2026-07-30 is a Thursday; Python's weekday() => 3.
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC).Unix()
	require.Equal(t, 3, toDOW(ts))

	// 2026-08-02 is a Sunday; Python's weekday() => 6.
	ts = time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC).Unix()
	require.Equal(t, 6, toDOW(ts))
}

func TestToLocalHourUsesGivenLocation(t *testing.T) {
	ts := time.Date(2026, 7, 30, 23, 30, 0, 0, time.UTC).Unix()
	require.Equal(t, 23, toLocalHour(ts, time.UTC))
}

func TestIsCodeFileRecognizesManifestsAndExtensions(t *testing.T) {
	o := &Orchestrator{}
	o.Langs = langregistry.New()
	require.True(t, o.isCodeFile("requirements.txt", ""))
	require.True(t, o.isCodeFile("src/a.py", ".py"))
	require.False(t, o.isCodeFile("README.md", ".md"))
}
