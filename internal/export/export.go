// Package export writes a graph snapshot out as GraphML, JSON, or CSV.
// It is deliberately thin: the property graph's real consumer is the
// graph store itself, these are just point-in-time dumps for inspection
// or hand-off to an external visualization tool.
package export

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

// Node is one exported graph node.
type Node struct {
	ID     string
	Labels []string
	Props  map[string]any
}

// Edge is one exported graph relationship.
type Edge struct {
	From, To string
	Type     string
	Props    map[string]any
}

// Snapshot is the full set of nodes/edges a single export run writes.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

// FileNames returns the deterministic output filenames for a snapshot id,
// matching graph_snapshot_<id>.{graphml,json} and
// graph_snapshot_<id>_{nodes,edges}.csv.
func FileNames(id string) (graphml, jsonPath, nodesCSV, edgesCSV string) {
	base := "graph_snapshot_" + id
	return base + ".graphml", base + ".json", base + "_nodes.csv", base + "_edges.csv"
}

// --- GraphML ---

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlGraph struct {
	ID      string        `xml:"id,attr"`
	EdgeDef string        `xml:"edgedefault,attr"`
	Nodes   []graphmlNode `xml:"node"`
	Edges   []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML emits snap as GraphML to w. Every property is rendered as
// a <data key="..."> element; XML-unsafe characters in attribute and
// element text are escaped by encoding/xml itself.
func WriteGraphML(w io.Writer, snap Snapshot) error {
	doc := graphmlDoc{
		Graph: graphmlGraph{ID: "G", EdgeDef: "directed"},
	}
	for _, n := range snap.Nodes {
		gn := graphmlNode{ID: n.ID}
		gn.Data = append(gn.Data, graphmlData{Key: "labels", Value: joinLabels(n.Labels)})
		for _, k := range sortedKeys(n.Props) {
			gn.Data = append(gn.Data, graphmlData{Key: k, Value: fmt.Sprint(n.Props[k])})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, gn)
	}
	for _, e := range snap.Edges {
		ge := graphmlEdge{Source: e.From, Target: e.To}
		ge.Data = append(ge.Data, graphmlData{Key: "type", Value: e.Type})
		for _, k := range sortedKeys(e.Props) {
			ge.Data = append(ge.Data, graphmlData{Key: k, Value: fmt.Sprint(e.Props[k])})
		}
		doc.Graph.Edges = append(doc.Graph.Edges, ge)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

// --- JSON ---

type jsonNode struct {
	ID     string         `json:"id"`
	Labels []string       `json:"labels"`
	Props  map[string]any `json:"props,omitempty"`
}

type jsonEdge struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Type  string         `json:"type"`
	Props map[string]any `json:"props,omitempty"`
}

type jsonSnapshot struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// WriteJSON emits snap as one JSON document to w.
func WriteJSON(w io.Writer, snap Snapshot) error {
	doc := jsonSnapshot{}
	for _, n := range snap.Nodes {
		doc.Nodes = append(doc.Nodes, jsonNode{ID: n.ID, Labels: n.Labels, Props: n.Props})
	}
	for _, e := range snap.Edges {
		doc.Edges = append(doc.Edges, jsonEdge{From: e.From, To: e.To, Type: e.Type, Props: e.Props})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// --- CSV ---

// WriteNodesCSV emits one row per node: id, labels (pipe-joined), then a
// single json-encoded props column (property sets vary node to node, so
// a fixed column-per-property layout isn't workable here).
func WriteNodesCSV(w io.Writer, snap Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "labels", "props"}); err != nil {
		return err
	}
	for _, n := range snap.Nodes {
		props, err := json.Marshal(n.Props)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{n.ID, joinLabels(n.Labels), string(props)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesCSV emits one row per edge: from, to, type, json-encoded props.
func WriteEdgesCSV(w io.Writer, snap Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "type", "props"}); err != nil {
		return err
	}
	for _, e := range snap.Edges {
		props, err := json.Marshal(e.Props)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{e.From, e.To, e.Type, string(props)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += "|"
		}
		out += l
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
