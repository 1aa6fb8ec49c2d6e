package graphstore

import (
	"context"
	"fmt"

	"github.com/cyraxred/repograph/internal/anomaly"
)

// indexStatements is a direct translation of ensure_indexes' stmts list.
// Memgraph (like the original tool's target) ignores a duplicate CREATE
// INDEX rather than erroring, so failures here are logged, not fatal.
var indexStatements = []string{
	"CREATE INDEX ON :Repo(id)",
	"CREATE INDEX ON :Branch(id)",
	"CREATE INDEX ON :Commit(sha)",
	"CREATE INDEX ON :Commit(committed_at)",
	"CREATE INDEX ON :Commit(dow)",
	"CREATE INDEX ON :Commit(hour)",
	"CREATE INDEX ON :Contributor(key)",
	"CREATE INDEX ON :File(path)",
	"CREATE INDEX ON :File(repo_id)",
	"CREATE INDEX ON :Symbol(key)",
	"CREATE INDEX ON :Symbol(file_path)",
	"CREATE INDEX ON :Dependency(name)",
	"CREATE INDEX ON :Dependency(ecosystem)",
}

// EnsureIndexes creates every index the projector's queries rely on. A
// per-statement failure (e.g. the index already exists) is logged and
// skipped rather than aborting the rest.
func (s *Store) EnsureIndexes(ctx context.Context) {
	for _, stmt := range indexStatements {
		if err := s.run(ctx, stmt, nil); err != nil {
			s.logger.WithField("stmt", stmt).Debug("graphstore: index create ignored")
		}
	}
}

func branchID(repoID, branch string) string {
	return fmt.Sprintf("%s#%s", repoID, branch)
}

// UpsertRepoBranch ensures the Repo and Branch nodes exist and are
// linked, safe to call at the start of every ingest run.
func (s *Store) UpsertRepoBranch(ctx context.Context, repoID, branch string) error {
	return s.run(ctx, `
		MERGE (r:Repo {id:$rid})
		MERGE (b:Branch {id:$bid})
		  ON CREATE SET b.repo_id = $rid, b.name = $bname
		MERGE (r)-[:HAS_BRANCH]->(b)
	`, map[string]any{"rid": repoID, "bid": branchID(repoID, branch), "bname": branch})
}

// BranchCursor returns the last-ingested sha and timestamp for a branch,
// (empty, 0, false) if the branch has never been ingested.
func (s *Store) BranchCursor(ctx context.Context, repoID, branch string) (sha string, lastTime int64, found bool) {
	records, err := s.runRead(ctx, `
		MATCH (b:Branch {id:$bid}) RETURN b.last_sha AS sha, b.last_time AS t
	`, map[string]any{"bid": branchID(repoID, branch)})
	if err != nil || len(records) == 0 {
		return "", 0, false
	}
	rec := records[0]
	shaVal, _ := rec.Get("sha")
	tVal, _ := rec.Get("t")
	s2, ok1 := shaVal.(string)
	t2, ok2 := tVal.(int64)
	if !ok1 || s2 == "" {
		return "", 0, false
	}
	if !ok2 {
		t2 = 0
	}
	return s2, t2, true
}

// SetBranchCursor advances the branch's ingestion cursor. Only called
// after a commit fully succeeds, so a mid-commit failure never advances
// past a partially-ingested commit.
func (s *Store) SetBranchCursor(ctx context.Context, repoID, branch, lastSHA string, lastTime int64) error {
	return s.run(ctx, `
		MATCH (b:Branch {id:$bid})
		SET b.last_sha = $sha, b.last_time = $t
	`, map[string]any{"bid": branchID(repoID, branch), "sha": lastSHA, "t": lastTime})
}

// LinkCommit creates/updates the Commit node, its author edge, its
// Branch membership, and its rollup fields (files/lines changed, local
// hour and day-of-week — computed by the caller so this package never
// needs a timezone policy of its own).
func (s *Store) LinkCommit(ctx context.Context, repoID, branch string, meta CommitMeta, rollup CommitRollup, linesAdded, linesDeleted int) error {
	authorKey := meta.AuthorEmail
	if authorKey == "" {
		authorKey = meta.AuthorName
	}
	return s.run(ctx, `
		MERGE (r:Repo {id:$rid})
		MERGE (b:Branch {id:$bid})
		MERGE (c:Commit {sha:$sha})
		  ON CREATE SET c.authored_at=$at, c.committed_at=$ct, c.message=$msg
		SET c.files_changed=$files,
		    c.lines_added=$adds,
		    c.lines_deleted=$dels,
		    c.lines_changed=$lines,
		    c.hour=$hour,
		    c.dow=$dow
		MERGE (b)-[:HAS_COMMIT]->(c)
		MERGE (u:Contributor {key:$ckey})
		  ON CREATE SET u.name=$an, u.email=$ae
		MERGE (u)-[:AUTHORED]->(c)
	`, map[string]any{
		"rid": repoID, "bid": branchID(repoID, branch), "sha": meta.SHA,
		"at": meta.AuthoredAt, "ct": meta.CommittedAt, "msg": meta.Subject,
		"files": rollup.FilesChanged, "adds": linesAdded, "dels": linesDeleted,
		"lines": rollup.LinesChanged, "hour": rollup.Hour, "dow": rollup.DOW,
		"ckey": authorKey, "an": meta.AuthorName, "ae": meta.AuthorEmail,
	})
}

// LinkFileTouch records one file touched in a commit: ensures the File
// node exists, then a TOUCHED edge with this commit's change stats.
func (s *Store) LinkFileTouch(ctx context.Context, repoID, branch, sha string, fc FileChange) error {
	var oldPath any
	if fc.OldPath != "" {
		oldPath = fc.OldPath
	}
	return s.run(ctx, `
		MERGE (f:File {path:$path})
		  ON CREATE SET f.repo_id=$rid, f.branch=$branch, f.ext=$ext, f.is_code=$is_code
		SET f.ext=$ext, f.is_code=$is_code
		WITH f
		MATCH (c:Commit {sha:$sha})
		MERGE (c)-[t:TOUCHED]->(f)
		SET t.status=$status, t.additions=$adds, t.deletions=$dels, t.old_path=$old
	`, map[string]any{
		"path": fc.Path, "rid": repoID, "branch": branch, "ext": fc.Ext, "is_code": fc.IsCode,
		"sha": sha, "status": fc.Status, "adds": fc.Additions, "dels": fc.Deletions, "old": oldPath,
	})
}

// LinkRepoPackage connects a logical package (Dependency node) to the
// Repo that implements it, used for the pyproject.toml/package.json
// project-name "this repo publishes this package" extension.
func (s *Store) LinkRepoPackage(ctx context.Context, repoID, ecosystem, packageName string) error {
	return s.run(ctx, `
		MERGE (dep:Dependency {ecosystem:$eco, name:$name})
		  ON CREATE SET dep.created_at = timestamp()
		MERGE (r:Repo {id:$rid})
		MERGE (dep)-[:HAS_REPO]->(r)
	`, map[string]any{"eco": ecosystem, "name": packageName, "rid": repoID})
}

func symbolKey(filePath, name, kind string) string {
	return fmt.Sprintf("%s::%s::%s", filePath, name, kind)
}

// UpsertSymbols materializes Function/Class definitions as Symbol nodes,
// declares them from their File, and marks this Commit as having seen
// them (the SEES edge anomaly-adjacent code can traverse later).
func (s *Store) UpsertSymbols(ctx context.Context, filePath, lang, sha string, defs []SymbolDef) error {
	if len(defs) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		batch = append(batch, map[string]any{
			"key": symbolKey(filePath, d.Name, d.Kind), "name": d.Name, "kind": d.Kind,
			"file_path": filePath, "lang": lang, "start_line": d.StartLine, "end_line": d.EndLine,
		})
	}
	return s.run(ctx, `
		UNWIND $batch AS sym
		MERGE (x:Symbol {key:sym.key})
		  ON CREATE SET x.name=sym.name, x.kind=sym.kind, x.file_path=sym.file_path,
		                x.lang=sym.lang, x.start_line=sym.start_line, x.end_line=sym.end_line
		SET x.lang=sym.lang, x.start_line=sym.start_line, x.end_line=sym.end_line
		WITH x, sym
		MATCH (f:File {path: sym.file_path})
		MERGE (f)-[:DECLARES]->(x)
		WITH x
		MATCH (c:Commit {sha:$sha})
		MERGE (c)-[:SEES]->(x)
	`, map[string]any{"batch": batch, "sha": sha})
}

// UpsertCallsIntraFile connects every symbol declared in filePath to
// each symbol declared in filePath whose name matches one of calls — the
// coarse, name-matched intra-file call graph the original tool builds before
// attempting any cross-file resolution.
func (s *Store) UpsertCallsIntraFile(ctx context.Context, filePath, sha string, calls []CallSite) error {
	named := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		if c.Name == "" {
			continue
		}
		named = append(named, map[string]any{"name": c.Name, "start_line": c.StartLine})
	}
	if len(named) == 0 {
		return nil
	}
	return s.run(ctx, `
		UNWIND $calls AS c
		MATCH (callerFile:File {path:$fp})-[:DECLARES]->(callerSym:Symbol)
		WITH c, callerSym, $fp AS fp
		MATCH (targetFile:File {path:fp})-[:DECLARES]->(target:Symbol {name:c.name})
		MERGE (callerSym)-[r:CALLS]->(target)
		SET r.at_line = c.start_line
		WITH target
		MATCH (cm:Commit {sha:$sha})
		MERGE (cm)-[:SEES]->(target)
	`, map[string]any{"calls": named, "fp": filePath, "sha": sha})
}

// ResolveCrossFileCalls connects a caller's symbols to same-named
// symbols in files reachable via a resolved IMPORTS edge. Tightened per
// this rewrite's cross-file-call-safety decision: a caller symbol only
// gets a CALLS edge to the innermost declaring symbol whose line range
// contains the call site, not every symbol in the caller file — see
// UpsertCallsIntraFile for the (separately maintained) coarse intra-file
// edges, which keep the looser every-declared-symbol behavior the
// original tool used there.
func (s *Store) ResolveCrossFileCalls(ctx context.Context, callerFile string, calls []CallSite) error {
	named := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		if c.Name == "" {
			continue
		}
		named = append(named, map[string]any{"name": c.Name, "start_line": c.StartLine})
	}
	if len(named) == 0 {
		return nil
	}
	return s.run(ctx, `
		UNWIND $calls AS c
		MATCH (callerFile:File {path:$fp})-[:DECLARES]->(callerSym:Symbol)
		WHERE callerSym.start_line <= c.start_line AND callerSym.end_line >= c.start_line
		WITH c, callerFile, callerSym
		ORDER BY callerSym.start_line DESC
		WITH c, callerFile, collect(callerSym)[0] AS innermost
		WHERE innermost IS NOT NULL
		MATCH (callerFile)-[:IMPORTS {resolved:true}]->(depFile:File)
		MATCH (depFile)-[:DECLARES]->(target:Symbol {name:c.name})
		MERGE (innermost)-[r:CALLS]->(target)
		  ON CREATE SET r.at_line = c.start_line
	`, map[string]any{"calls": named, "fp": callerFile})
}

// UpsertImports creates (File)-[:IMPORTS]->(File|Module) edges: a
// resolved import points at the actual File it names; an unresolved one
// points at a Module placeholder node keyed by the raw spec.
func (s *Store) UpsertImports(ctx context.Context, filePath, lang string, rows []ImportRow) error {
	for _, row := range rows {
		if row.Module == "" {
			continue
		}
		if row.ResolvedPath != "" {
			if err := s.run(ctx, `
				MATCH (src:File {path:$src})
				MERGE (dst:File {path:$dst})
				MERGE (src)-[r:IMPORTS {module:$mod}]->(dst)
				SET r.member = $mem, r.alias = $alias, r.resolved = true
			`, map[string]any{"src": filePath, "dst": row.ResolvedPath, "mod": row.Module, "mem": row.Member, "alias": row.Alias}); err != nil {
				return err
			}
			continue
		}
		if err := s.run(ctx, `
			MATCH (src:File {path:$src})
			MERGE (m:Module {spec:$mod, lang:$lang})
			MERGE (src)-[r:IMPORTS]->(m)
			SET r.member = $mem, r.alias = $alias, r.resolved = false
		`, map[string]any{"src": filePath, "mod": row.Module, "lang": lang, "mem": row.Member, "alias": row.Alias}); err != nil {
			return err
		}
	}
	return nil
}

// UpsertDependencies creates/updates Dependency nodes and UPDATES_DEP
// edges, detecting a major-version bump against the most recent prior
// UPDATES_DEP edge for the same (ecosystem, name) on an earlier commit.
func (s *Store) UpsertDependencies(ctx context.Context, sha string, committedAt int64, deps []DependencyUpdate, majorBump func(prev, new string) (bool, bool)) error {
	for _, d := range deps {
		records, err := s.runRead(ctx, `
			MATCH (prc:Commit)-[pu:UPDATES_DEP]->(dep:Dependency {ecosystem:$eco, name:$name})
			WHERE prc.committed_at < $t
			RETURN pu.version AS v
			ORDER BY prc.committed_at DESC LIMIT 1
		`, map[string]any{"eco": d.Ecosystem, "name": d.Name, "t": committedAt})
		if err != nil {
			return err
		}
		prevVer := ""
		if len(records) > 0 {
			if v, ok := records[0].Get("v"); ok {
				if s2, ok := v.(string); ok {
					prevVer = s2
				}
			}
		}
		isMajor, _ := majorBump(prevVer, d.Version)

		if err := s.run(ctx, `
			MERGE (dep:Dependency {ecosystem:$eco, name:$name})
			  ON CREATE SET dep.created_at = timestamp()
			WITH dep
			MATCH (c:Commit {sha:$sha})
			MERGE (c)-[u:UPDATES_DEP]->(dep)
			SET u.version = $ver,
			    u.prev_version = $prev,
			    u.is_major_bump = $major
		`, map[string]any{"eco": d.Ecosystem, "name": d.Name, "sha": sha, "ver": d.Version, "prev": prevVer, "major": isMajor}); err != nil {
			return err
		}
	}
	return nil
}

// TouchSymbol accumulates TOUCHED_SYMBOL.lines_changed for symbols whose
// line range overlaps this commit's added/changed hunks, keyed by
// symbol name within filePath (re-ingestion keeps adding to the total,
// it never resets it).
func (s *Store) TouchSymbol(ctx context.Context, sha, filePath string, touches map[string]int) error {
	rows := make([]map[string]any, 0, len(touches))
	for name, delta := range touches {
		if delta > 0 {
			rows = append(rows, map[string]any{"name": name, "delta": delta})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return s.run(ctx, `
		UNWIND $rows AS r
		MATCH (sym:Symbol {file_path:$fp, name:r.name})
		MATCH (c:Commit {sha:$sha})
		MERGE (c)-[t:TOUCHED_SYMBOL]->(sym)
		  ON CREATE SET t.lines_changed = 0
		SET t.lines_changed = t.lines_changed + r.delta
	`, map[string]any{"rows": rows, "fp": filePath, "sha": sha})
}

// AnomalyHistory returns the contributor's k most recent commits on
// branch strictly before beforeTime (excluding the commit itself),
// windowed and ordered the same way score_commit_anomaly's query is.
func (s *Store) AnomalyHistory(ctx context.Context, repoID, branch, contributorKey string, beforeTime int64, k int) ([]anomaly.Sample, error) {
	records, err := s.runRead(ctx, `
		MATCH (:Branch {id:$bid})-[:HAS_COMMIT]->(c:Commit)<-[:AUTHORED]-(:Contributor {key:$ckey})
		WHERE c.committed_at < $t
		RETURN c.files_changed AS f, c.lines_changed AS l, c.hour AS h
		ORDER BY c.committed_at DESC LIMIT $k
	`, map[string]any{"bid": branchID(repoID, branch), "ckey": contributorKey, "t": beforeTime, "k": k})
	if err != nil {
		return nil, err
	}
	samples := make([]anomaly.Sample, 0, len(records))
	for _, rec := range records {
		sample := anomaly.Sample{}
		if v, ok := rec.Get("f"); ok {
			sample.FilesChanged = toInt(v)
		}
		if v, ok := rec.Get("l"); ok {
			sample.LinesChanged = toInt(v)
		}
		if v, ok := rec.Get("h"); ok && v != nil {
			sample.Hour = toInt(v)
			sample.HasHour = true
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// WriteAnomalyScore stores the computed anomaly verdict back onto the
// Commit node, matching score_commit_anomaly's final SET statement.
func (s *Store) WriteAnomalyScore(ctx context.Context, sha string, r anomaly.Result) error {
	return s.run(ctx, `
		MATCH (c:Commit {sha:$sha})
		SET c.z_files = $zf,
		    c.z_lines = $zl,
		    c.off_hours = $off,
		    c.anomaly_score = $score,
		    c.anomaly_flags = $flags
	`, map[string]any{"sha": sha, "zf": r.ZFiles, "zl": r.ZLines, "off": r.OffHours, "score": r.Score, "flags": r.Flags})
}

// IncContributorFileTouch increments a contributor's familiarity counter
// for a file they authored a commit touching.
func (s *Store) IncContributorFileTouch(ctx context.Context, sha, path string, committedAt int64) error {
	return s.run(ctx, `
		MATCH (c:Commit {sha:$sha})<-[:AUTHORED]-(u:Contributor),
		      (f:File {path:$path})
		MERGE (u)-[r:TOUCHED]->(f)
		  ON CREATE SET r.count = 0
		SET r.count = r.count + 1,
		    r.last_touched_at = $t
	`, map[string]any{"sha": sha, "path": path, "t": committedAt})
}
