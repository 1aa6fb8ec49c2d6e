package gitdriver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runGit is the test-only equivalent of the driver's internal run(), used
// to build fixture repositories without going through the Driver itself.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// newFixtureRepo builds the S1 scenario from the testable-properties
// section: commit A adds src/a.py, B modifies it and adds src/b.py, C
// renames src/b.py to src/pkg_b.py.
func newFixtureRepo(t *testing.T) (dir string, shas []string) {
	t.Helper()
	dir = t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")

	writeFile(t, dir, "src/a.py", "def foo():\n    pass\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "A")

	writeFile(t, dir, "src/a.py", "def foo():\n    return 1\n")
	writeFile(t, dir, "src/b.py", strings_repeat("x = 1\n", 20))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "B")

	runGit(t, dir, "mv", "src/b.py", "src/pkg_b.py")
	runGit(t, dir, "commit", "-q", "-m", "C")

	out, err := exec.Command("git", "-C", dir, "log", "--format=%H", "--reverse").Output()
	require.NoError(t, err)
	for _, line := range splitLines(string(out)) {
		shas = append(shas, line)
	}
	return dir, shas
}

func strings_repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == '\n' {
			if cur != "" {
				out = append(out, cur)
			}
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func TestDriverCommitsSinceAndMeta(t *testing.T) {
	dir, shas := newFixtureRepo(t)
	require.Len(t, shas, 3)

	d, err := Open(dir)
	require.NoError(t, err)

	ctx := context.Background()
	commits, err := d.CommitsSince(ctx, "main", "", 0)
	require.NoError(t, err)
	require.Equal(t, shas, commits)

	meta, err := d.CommitMeta(ctx, shas[0])
	require.NoError(t, err)
	require.Equal(t, "A", meta.Subject)
	require.Equal(t, "test@example.com", meta.AuthorEmail)

	partial, err := d.CommitsSince(ctx, "main", shas[0], 0)
	require.NoError(t, err)
	require.Equal(t, shas[1:], partial)
}

func TestDriverNumstatAndNameStatus(t *testing.T) {
	dir, shas := newFixtureRepo(t)
	d, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	stat, err := d.Numstat(ctx, shas[1])
	require.NoError(t, err)
	require.Equal(t, FileStat{Additions: 1, Deletions: 1}, stat["src/a.py"])
	require.Equal(t, FileStat{Additions: 20, Deletions: 0}, stat["src/b.py"])

	ns, err := d.NameStatus(ctx, shas[2], 50)
	require.NoError(t, err)
	entry, ok := ns["src/pkg_b.py"]
	require.True(t, ok)
	require.Equal(t, "R", entry.Status)
	require.Equal(t, "src/b.py", entry.OldPath)
}

func TestDriverFileAtAndExists(t *testing.T) {
	dir, shas := newFixtureRepo(t)
	d, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	blob, ok := d.FileAt(ctx, shas[0], "src/a.py")
	require.True(t, ok)
	require.Contains(t, string(blob), "def foo")

	_, ok = d.FileAt(ctx, shas[0], "does/not/exist.py")
	require.False(t, ok)

	require.True(t, d.Exists(ctx, shas[0], "src/a.py"))
	require.False(t, d.Exists(ctx, shas[0], "src/b.py"))
}

func TestDriverAddedLineRanges(t *testing.T) {
	dir, shas := newFixtureRepo(t)
	d, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ranges, err := d.AddedLineRanges(ctx, shas[0], "src/a.py")
	require.NoError(t, err)
	require.Equal(t, []LineRange{{Start: 1, End: 2}}, ranges)
}

func TestDriverResolveAndIsRepo(t *testing.T) {
	dir, shas := newFixtureRepo(t)
	d, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, d.IsRepo(ctx))

	sha, ok := d.Resolve(ctx, "main")
	require.True(t, ok)
	require.Equal(t, shas[2], sha)

	_, ok = d.Resolve(ctx, "does-not-exist")
	require.False(t, ok)
}

func TestOpenRejectsNonRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	require.Error(t, err)
}
