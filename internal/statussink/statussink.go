// Package statussink reports ingest task progress either to a backend
// HTTP endpoint or to local files, grounded on the original tool's
// update_task_status / _offline_write.
package statussink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is one of the task lifecycle states a sink reports.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Update is one status report, serialized the same way whether it's
// PATCHed to the backend or written to an offline file.
type Update struct {
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	CommitID   string `json:"commit_id,omitempty"`
}

// Sink reports task status updates, online (HTTP PATCH) or offline
// (file write under OfflineOutDir), mirroring the Go config's
// BackendMode switch.
type Sink struct {
	Online        bool
	BackendURL    string
	Token         string
	OfflineOutDir string
	HTTPClient    *http.Client
	Logger        logrus.FieldLogger
}

// New builds a Sink from already-resolved configuration. Online is
// "BACKEND_MODE == online and BACKEND_URL not blank", computed by
// the caller since that decision belongs to config, not this package.
func New(online bool, backendURL, token, offlineOutDir string, logger logrus.FieldLogger) *Sink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sink{
		Online:        online,
		BackendURL:    backendURL,
		Token:         token,
		OfflineOutDir: offlineOutDir,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		Logger:        logger,
	}
}

// Report sends or writes one status update for taskID. A failure to
// reach the backend is logged, never returned as an error — status
// reporting must never abort ingestion.
func (s *Sink) Report(ctx context.Context, taskID string, update Update) {
	if !s.Online {
		s.writeOffline(taskID, update)
		return
	}
	if err := s.patchBackend(ctx, taskID, update); err != nil {
		s.Logger.WithError(err).WithField("task_id", taskID).Error("statussink: failed to update task status")
	} else {
		s.Logger.WithFields(logrus.Fields{"task_id": taskID, "status": update.Status}).Info("statussink: task status updated")
	}
}

func (s *Sink) writeOffline(taskID string, update Update) {
	dir := filepath.Join(s.OfflineOutDir, "task_status")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.Logger.WithError(err).Error("statussink: failed to create offline output dir")
		return
	}
	body, err := json.MarshalIndent(update, "", "  ")
	if err != nil {
		s.Logger.WithError(err).Error("statussink: failed to marshal status update")
		return
	}
	path := filepath.Join(dir, taskID+".json")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		s.Logger.WithError(err).Error("statussink: failed to write offline status file")
	}
}

func (s *Sink) patchBackend(ctx context.Context, taskID string, update Update) error {
	body, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "marshal status update")
	}
	url := s.BackendURL + "/graph/build/" + taskID + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build status request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("x-internal-token", s.Token)
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send status request")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NowISO8601 formats t (in UTC, RFC 3339) the way Update's timestamp
// fields expect. Callers stamp timestamps themselves since
// this package doesn't call time.Now on its own initiative beyond what
// the HTTP client needs.
func NowISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
