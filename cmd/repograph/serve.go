package main

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cyraxred/repograph/internal/config"
	"github.com/cyraxred/repograph/internal/gitdriver"
	"github.com/cyraxred/repograph/internal/graphstore"
	"github.com/cyraxred/repograph/internal/orchestrator"
	"github.com/cyraxred/repograph/internal/parser"
	"github.com/cyraxred/repograph/internal/statussink"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address the trigger HTTP server listens on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger endpoint, ingesting branches as they're requested.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)

		store, err := graphstore.Open(cmd.Context(), cfg.MemgraphURI, "", "", logger)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		srv := newTriggerServer(cfg, store, logger)
		httpServer := &http.Server{Addr: serveAddr, Handler: srv}
		logger.WithField("addr", serveAddr).Info("repograph: trigger server listening")
		return httpServer.ListenAndServe()
	},
}

// triggerRequest is the Trigger API's request body.
type triggerRequest struct {
	RepoID     string `json:"repoId"`
	TaskID     string `json:"taskId"`
	Branch     string `json:"branch"`
	RepoPath   string `json:"repoPath"`
	StartSHA   string `json:"startSha"`
	MaxCommits int    `json:"maxCommits"`
}

// triggerResponse is the Trigger API's 202 response body.
type triggerResponse struct {
	Status string `json:"status"`
	TaskID string `json:"taskId"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// triggerServer accepts ingest requests and supervises one goroutine per
// (repoID, branch) pair, each with its own background context. A second
// trigger for a pair already in flight is coalesced onto the running job
// instead of starting a duplicate walk, since cursor-based ingestion makes
// re-running the same branch from scratch wasted work, not merely
// redundant. Jobs are dispatched independently (not under a shared
// errgroup) so one branch's failure can never cancel any other
// concurrently-running job.
type triggerServer struct {
	cfg    *config.Config
	store  *graphstore.Store
	logger logrus.FieldLogger

	mu       sync.Mutex
	inFlight map[string]string // (repoID,branch) key -> taskID of the running job
}

func newTriggerServer(cfg *config.Config, store *graphstore.Store, logger logrus.FieldLogger) *triggerServer {
	return &triggerServer{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		inFlight: map[string]string{},
	}
}

func inFlightKey(repoID, branch string) string {
	return repoID + "\x00" + branch
}

func (s *triggerServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RepoID == "" || req.Branch == "" {
		http.Error(w, "repoId and branch are required", http.StatusBadRequest)
		return
	}
	if req.TaskID == "" {
		req.TaskID = uuid.NewString()
	}

	key := inFlightKey(req.RepoID, req.Branch)
	s.mu.Lock()
	if existingTask, running := s.inFlight[key]; running {
		s.mu.Unlock()
		writeJSON(w, http.StatusAccepted, triggerResponse{
			Status: "queued", TaskID: existingTask, Repo: req.RepoID, Branch: req.Branch,
		})
		return
	}
	s.inFlight[key] = req.TaskID
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, key)
			s.mu.Unlock()
		}()
		if err := s.runIngest(req); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"repo": req.RepoID, "branch": req.Branch, "taskId": req.TaskID,
			}).Error("repograph: ingest job failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, triggerResponse{
		Status: "queued", TaskID: req.TaskID, Repo: req.RepoID, Branch: req.Branch,
	})
}

func (s *triggerServer) runIngest(req triggerRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	online := s.cfg.BackendMode == "online" && s.cfg.BackendURL != ""
	sink := statussink.New(online, s.cfg.BackendURL, s.cfg.InternalAPIToken, s.cfg.OfflineOutDir, s.logger)

	repoPath := req.RepoPath
	if repoPath == "" {
		repoPath = req.RepoID
	}
	driver, err := gitdriver.Open(repoPath)
	if err != nil {
		sink.Report(ctx, req.TaskID, statussink.Update{Status: statussink.StatusFailed, Message: "unable to open repository"})
		return err
	}

	workers := s.cfg.WalkWorkers
	if workers <= 0 || workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}
	o := orchestrator.New(s.store, parser.NewFacade(), sink, workers, anomalyLocation(s.cfg.AnomalyTZ), s.logger)
	defer o.Close()

	maxCommits := req.MaxCommits
	if maxCommits <= 0 {
		maxCommits = s.cfg.WalkMaxCommits
	}

	return o.IngestBranch(ctx, driver, repoPath, req.RepoID, req.Branch, req.TaskID, req.StartSHA, maxCommits)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
