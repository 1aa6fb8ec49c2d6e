// Package gitdriver runs `git` as a subprocess against a working copy and
// parses its plumbing-oriented output (rev-list, show --numstat,
// show --name-status, show --unified=0, cat-file -e) into the shapes the
// rest of the ingestion pipeline consumes. It deliberately does not use a
// pure-Go git implementation for these operations: matching upstream
// git's own rename heuristics and diff formatting exactly is what the
// ingestion invariants depend on.
package gitdriver

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
)

// CommitMeta is the result of CommitMeta().
type CommitMeta struct {
	SHA          string
	AuthoredAt   int64
	CommittedAt  int64
	AuthorName   string
	AuthorEmail  string
	Subject      string
}

// FileStat is one entry of Numstat().
type FileStat struct {
	Additions int
	Deletions int
}

// NameStatusEntry is one entry of NameStatus().
type NameStatusEntry struct {
	Status  string // "A", "M", "D", "R"
	OldPath string // only set when Status == "R"
}

// LineRange is an inclusive, 1-based [Start, End] line span on the
// new-file side of a diff hunk.
type LineRange struct {
	Start, End int
}

// Driver executes git subcommands against one working copy path.
type Driver struct {
	repoPath string
}

// Open returns a Driver rooted at repoPath after a cheap sanity check that
// the path really is a Git working copy (`git rev-parse
// --is-inside-work-tree`, via IsRepo). go-git only supplies the
// ErrRepositoryNotExists value wrapped in the returned error; every
// operation of the driver shells out to `git` directly.
func Open(repoPath string) (*Driver, error) {
	d := &Driver{repoPath: repoPath}
	if !d.IsRepo(context.Background()) {
		return nil, &GitError{Args: []string{"-C", repoPath, "rev-parse"}, Err: git.ErrRepositoryNotExists}
	}
	return d, nil
}

// run executes `git -C repoPath args...` and returns decoded stdout.
func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", d.repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &GitError{Args: full, Stderr: stderr.String(), Err: err}
	}
	return toUTF8(stdout.Bytes()), nil
}

// toUTF8 decodes b as UTF-8, replacing invalid sequences with the Unicode
// replacement character rather than failing, matching git's own
// best-effort text handling of arbitrary commit metadata and diffs.
func toUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// IsRepo reports whether the driver's path is inside a Git work tree.
func (d *Driver) IsRepo(ctx context.Context) bool {
	out, err := d.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// MarkSafe registers repoPath in the global safe.directory list. Some CI
// hosts refuse to operate on repositories not owned by the invoking user
// unless this is set.
func (d *Driver) MarkSafe(ctx context.Context) error {
	_, err := d.run(ctx, "config", "--global", "--add", "safe.directory", d.repoPath)
	return err
}

// Resolve resolves ref to a commit sha, returning ("", false) if ref does
// not exist.
func (d *Driver) Resolve(ctx context.Context, ref string) (string, bool) {
	out, err := d.run(ctx, "rev-parse", "--verify", ref)
	if err != nil {
		return "", false
	}
	sha := strings.TrimSpace(out)
	if sha == "" {
		return "", false
	}
	return sha, true
}

// CommitsSince lists commits on branch oldest-first. When startExclusive
// is empty, all commits reachable from branch are returned. max == 0
// means unbounded.
func (d *Driver) CommitsSince(ctx context.Context, branch, startExclusive string, max int) ([]string, error) {
	args := []string{"rev-list", "--reverse"}
	if max > 0 {
		args = append(args, "--max-count="+strconv.Itoa(max))
	}
	if startExclusive != "" {
		args = append(args, startExclusive+".."+branch)
	} else {
		args = append(args, branch)
	}
	out, err := d.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	var shas []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			shas = append(shas, line)
		}
	}
	return shas, nil
}

// commitMetaFormat produces, one per line: sha, authored-unix, author
// name, author email, committed-unix, subject.
const commitMetaFormat = "%H%n%at%n%an%n%ae%n%ct%n%s"

// CommitMeta returns the commit's authorship and timing metadata.
func (d *Driver) CommitMeta(ctx context.Context, sha string) (CommitMeta, error) {
	out, err := d.run(ctx, "show", "-s", "--format="+commitMetaFormat, sha)
	if err != nil {
		return CommitMeta{}, err
	}
	lines := strings.SplitN(out, "\n", 6)
	for len(lines) < 6 {
		lines = append(lines, "")
	}
	authoredAt, _ := strconv.ParseInt(lines[1], 10, 64)
	committedAt, _ := strconv.ParseInt(lines[4], 10, 64)
	return CommitMeta{
		SHA:         lines[0],
		AuthoredAt:  authoredAt,
		AuthorName:  lines[2],
		AuthorEmail: lines[3],
		CommittedAt: committedAt,
		Subject:     lines[5],
	}, nil
}

// Numstat returns per-path (additions, deletions) for sha.
func (d *Driver) Numstat(ctx context.Context, sha string) (map[string]FileStat, error) {
	out, err := d.run(ctx, "show", "--numstat", "--format=", sha)
	if err != nil {
		return nil, err
	}
	res := map[string]FileStat{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.SplitN(sc.Text(), "\t", 3)
		if len(parts) < 3 {
			continue
		}
		adds, _ := strconv.Atoi(parts[0])
		dels, _ := strconv.Atoi(parts[1])
		res[strings.TrimSpace(parts[2])] = FileStat{Additions: adds, Deletions: dels}
	}
	return res, nil
}

// NameStatus returns, for each new path touched by sha, its change status
// and (for renames) the old path. renameThreshold is expressed as a
// percentage, matching `git show -M<N>% -C<N>%`.
func (d *Driver) NameStatus(ctx context.Context, sha string, renameThreshold int) (map[string]NameStatusEntry, error) {
	pct := strconv.Itoa(renameThreshold) + "%"
	out, err := d.run(ctx, "show", "--name-status", "-M"+pct, "-C"+pct, "--format=", sha)
	if err != nil {
		return nil, err
	}
	res := map[string]NameStatusEntry{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		code := parts[0]
		if strings.HasPrefix(code, "R") || strings.HasPrefix(code, "C") {
			if len(parts) >= 3 {
				res[strings.TrimSpace(parts[2])] = NameStatusEntry{Status: "R", OldPath: strings.TrimSpace(parts[1])}
			}
			continue
		}
		if len(parts) >= 2 {
			status := code
			if len(status) > 1 {
				status = status[:1]
			}
			res[strings.TrimSpace(parts[1])] = NameStatusEntry{Status: status}
		}
	}
	return res, nil
}

// FileAt returns the blob contents of path at sha, or (nil, false) when
// the path does not exist at that commit - not an error condition.
func (d *Driver) FileAt(ctx context.Context, sha, path string) ([]byte, bool) {
	full := append([]string{"-C", d.repoPath}, "show", sha+":"+path)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, false
	}
	return stdout.Bytes(), true
}

// Exists reports whether path is present in the object database at sha,
// via `git cat-file -e`. Used by the import resolver to test candidate
// paths without materializing their contents.
func (d *Driver) Exists(ctx context.Context, sha, path string) bool {
	_, err := d.run(ctx, "cat-file", "-e", sha+":"+path)
	return err == nil
}
