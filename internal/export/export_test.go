package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Nodes: []Node{
			{ID: "1", Labels: []string{"Repo"}, Props: map[string]any{"id": "acme/widgets"}},
			{ID: "2", Labels: []string{"Commit"}, Props: map[string]any{"sha": "abc123", "subject": "fix <bug> & \"quote\""}},
		},
		Edges: []Edge{
			{From: "1", To: "2", Type: "HAS_COMMIT", Props: map[string]any{"weight": 1}},
		},
	}
}

func TestWriteGraphMLEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGraphML(&buf, sampleSnapshot()))
	out := buf.String()
	require.Contains(t, out, "<graphml>")
	require.Contains(t, out, "abc123")
	require.NotContains(t, out, "<bug>")
	require.Contains(t, out, "&lt;bug&gt;")
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSnapshot()))

	var doc jsonSnapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
	require.Equal(t, "HAS_COMMIT", doc.Edges[0].Type)
}

func TestWriteNodesAndEdgesCSV(t *testing.T) {
	var nodes, edges bytes.Buffer
	snap := sampleSnapshot()
	require.NoError(t, WriteNodesCSV(&nodes, snap))
	require.NoError(t, WriteEdgesCSV(&edges, snap))

	nodeLines := strings.Split(strings.TrimSpace(nodes.String()), "\n")
	require.Len(t, nodeLines, 3) // header + 2 nodes
	edgeLines := strings.Split(strings.TrimSpace(edges.String()), "\n")
	require.Len(t, edgeLines, 2) // header + 1 edge
}

func TestFileNamesAreDeterministic(t *testing.T) {
	graphml, jsonPath, nodesCSV, edgesCSV := FileNames("task-1")
	require.Equal(t, "graph_snapshot_task-1.graphml", graphml)
	require.Equal(t, "graph_snapshot_task-1.json", jsonPath)
	require.Equal(t, "graph_snapshot_task-1_nodes.csv", nodesCSV)
	require.Equal(t, "graph_snapshot_task-1_edges.csv", edgesCSV)
}
