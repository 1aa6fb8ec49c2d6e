package graphstore

import (
	"context"

	"github.com/cyraxred/repograph/internal/export"
)

// Snapshot reads every node and edge reachable from one repo's Repo node
// (branches, commits, contributors, files, symbols, dependencies) and
// returns it in the shape internal/export serializes. Kept to two round
// trips (collect reachable ids, then fetch full node/edge rows) rather
// than a single deep pattern match, since Memgraph's OPTIONAL MATCH chain
// across this many hops gets expensive fast.
func (s *Store) Snapshot(ctx context.Context, repoID string) (export.Snapshot, error) {
	idRecords, err := s.runRead(ctx, `
		MATCH (r:Repo {id:$rid})
		OPTIONAL MATCH (r)-[:HAS_BRANCH]->(b:Branch)
		OPTIONAL MATCH (b)-[:HAS_COMMIT]->(c:Commit)
		OPTIONAL MATCH (c)-[:TOUCHED]->(f:File)
		OPTIONAL MATCH (f)-[:DECLARES]->(sym:Symbol)
		OPTIONAL MATCH (u:Contributor)-[:AUTHORED]->(c)
		OPTIONAL MATCH (c)-[:UPDATES_DEP]->(d:Dependency)
		RETURN collect(DISTINCT elementId(r)) +
		       collect(DISTINCT elementId(b)) +
		       collect(DISTINCT elementId(c)) +
		       collect(DISTINCT elementId(f)) +
		       collect(DISTINCT elementId(sym)) +
		       collect(DISTINCT elementId(u)) +
		       collect(DISTINCT elementId(d)) AS ids
	`, map[string]any{"rid": repoID})
	if err != nil {
		return export.Snapshot{}, err
	}
	if len(idRecords) == 0 {
		return export.Snapshot{}, nil
	}
	rawIDs, _ := idRecords[0].Get("ids")
	ids := dedupStrings(toStringSlice(rawIDs))
	if len(ids) == 0 {
		return export.Snapshot{}, nil
	}

	nodeRecords, err := s.runRead(ctx, `
		MATCH (n) WHERE elementId(n) IN $ids
		RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props
	`, map[string]any{"ids": ids})
	if err != nil {
		return export.Snapshot{}, err
	}
	snap := export.Snapshot{}
	for _, rec := range nodeRecords {
		id, _ := rec.Get("id")
		labels, _ := rec.Get("labels")
		props, _ := rec.Get("props")
		snap.Nodes = append(snap.Nodes, export.Node{
			ID:     toString(id),
			Labels: toStringSlice(labels),
			Props:  toPropsMap(props),
		})
	}

	edgeRecords, err := s.runRead(ctx, `
		MATCH (n)-[rel]->(m) WHERE elementId(n) IN $ids AND elementId(m) IN $ids
		RETURN elementId(n) AS from, elementId(m) AS to, type(rel) AS type, properties(rel) AS props
	`, map[string]any{"ids": ids})
	if err != nil {
		return export.Snapshot{}, err
	}
	for _, rec := range edgeRecords {
		from, _ := rec.Get("from")
		to, _ := rec.Get("to")
		typ, _ := rec.Get("type")
		props, _ := rec.Get("props")
		snap.Edges = append(snap.Edges, export.Edge{
			From:  toString(from),
			To:    toString(to),
			Type:  toString(typ),
			Props: toPropsMap(props),
		})
	}

	return snap, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toPropsMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
