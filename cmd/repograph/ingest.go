package main

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cyraxred/repograph/internal/gitdriver"
	"github.com/cyraxred/repograph/internal/graphstore"
	"github.com/cyraxred/repograph/internal/orchestrator"
	"github.com/cyraxred/repograph/internal/parser"
	"github.com/cyraxred/repograph/internal/statussink"
)

var remoteURIPattern = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

var (
	ingestRepoID     string
	ingestStartAfter string
	ingestMaxCommits int
	ingestTaskID     string
	ingestClonePath  string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestRepoID, "repo-id", "", "repo identifier to key graph nodes on (defaults to the repo path/URI)")
	ingestCmd.Flags().StringVar(&ingestStartAfter, "start-after", "", "ingest only commits strictly after this SHA, ignoring the stored cursor")
	ingestCmd.Flags().IntVar(&ingestMaxCommits, "max-commits", 0, "cap on commits ingested this run, 0 for unbounded")
	ingestCmd.Flags().StringVar(&ingestTaskID, "task-id", "", "status-reporting task id (a UUID is generated when blank)")
	ingestCmd.Flags().StringVar(&ingestClonePath, "clone-path", "", "working directory for a remote URI's clone (a temp dir is used when blank)")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <repo-path-or-uri> <branch>",
	Short: "Walk one branch's new commits and project them onto the graph.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, branch := args[0], args[1]
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		repoPath, err := resolveLocalPath(cmd.Context(), uri, ingestClonePath, cfg.ShallowClone)
		if err != nil {
			return err
		}

		driver, err := gitdriver.Open(repoPath)
		if err != nil {
			return err
		}

		store, err := graphstore.Open(cmd.Context(), cfg.MemgraphURI, "", "", logger)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		repoID := ingestRepoID
		if repoID == "" {
			repoID = uri
		}
		taskID := ingestTaskID
		if taskID == "" {
			taskID = uuid.NewString()
		}

		online := cfg.BackendMode == "online" && cfg.BackendURL != ""
		sink := statussink.New(online, cfg.BackendURL, cfg.InternalAPIToken, cfg.OfflineOutDir, logger)

		workers := cfg.WalkWorkers
		if workers <= 0 || workers > runtime.NumCPU() {
			workers = runtime.NumCPU()
		}
		o := orchestrator.New(store, parser.NewFacade(), sink, workers, anomalyLocation(cfg.AnomalyTZ), logger)
		defer o.Close()

		maxCommits := ingestMaxCommits
		if maxCommits <= 0 {
			maxCommits = cfg.WalkMaxCommits
		}

		return o.IngestBranch(cmd.Context(), driver, repoPath, repoID, branch, taskID, ingestStartAfter, maxCommits)
	},
}

// resolveLocalPath mirrors the dual-mode repository resolution a CLI
// analysis tool needs: a remote URI is cloned into a working directory
// first, a local path is used as-is. Unlike a full object-model clone,
// this only needs a plain working copy for `git` subprocess calls to
// operate on.
func resolveLocalPath(ctx context.Context, uri, clonePath string, shallow bool) (string, error) {
	if !looksRemote(uri) {
		return uri, nil
	}

	dir := clonePath
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "repograph-clone-")
		if err != nil {
			return "", err
		}
	}

	args := []string{"clone"}
	if shallow {
		args = append(args, "--depth", "1", "--no-single-branch")
	}
	args = append(args, uri, dir)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return dir, nil
}

func looksRemote(uri string) bool {
	return strings.Contains(uri, "://") || remoteURIPattern.MatchString(uri)
}
