package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/cyraxred/repograph/internal/config"
)

func TestTriggerServerCoalescesInFlightRequests(t *testing.T) {
	srv := newTriggerServer(&config.Config{}, nil, logrus.StandardLogger())

	// Manually mark a (repo,branch) pair in flight, bypassing runIngest
	// (which needs a real repo/store), to exercise only the coalescing path.
	srv.mu.Lock()
	srv.inFlight[inFlightKey("acme/widgets", "main")] = "task-original"
	srv.mu.Unlock()

	body, _ := json.Marshal(triggerRequest{RepoID: "acme/widgets", Branch: "main", TaskID: "task-new"})
	req := httptest.NewRequest(http.MethodPost, "/trigger", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp triggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "queued", resp.Status)
	require.Equal(t, "task-original", resp.TaskID) // coalesced, not the new id
}

func TestTriggerServerRejectsMissingFields(t *testing.T) {
	srv := newTriggerServer(&config.Config{}, nil, logrus.StandardLogger())

	body, _ := json.Marshal(triggerRequest{RepoID: "acme/widgets"})
	req := httptest.NewRequest(http.MethodPost, "/trigger", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerServerRejectsNonPost(t *testing.T) {
	srv := newTriggerServer(&config.Config{}, nil, logrus.StandardLogger())
	req := httptest.NewRequest(http.MethodGet, "/trigger", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
