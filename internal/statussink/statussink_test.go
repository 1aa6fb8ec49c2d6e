package statussink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportOfflineWritesFile(t *testing.T) {
	dir := t.TempDir()
	s := New(false, "", "", dir, nil)

	s.Report(context.Background(), "task-1", Update{Status: StatusCompleted, Message: "done"})

	body, err := os.ReadFile(filepath.Join(dir, "task_status", "task-1.json"))
	require.NoError(t, err)

	var got Update
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, "done", got.Message)
}

func TestReportOnlinePatchesBackend(t *testing.T) {
	var gotToken string
	var gotBody Update
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/graph/build/task-2/status", r.URL.Path)
		gotToken = r.Header.Get("x-internal-token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := New(true, server.URL, "secret-token", "", nil)
	s.Report(context.Background(), "task-2", Update{Status: StatusInProgress, Message: "halfway"})

	require.Equal(t, "secret-token", gotToken)
	require.Equal(t, StatusInProgress, gotBody.Status)
}
