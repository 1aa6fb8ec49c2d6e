// Package orchestrator drives one branch's ingestion from commit walk to
// graph projection, grounded on the original tool's run_branch_ingest:
// a fixed, per-commit procedure rather than a dynamically composed
// pipeline, since every commit goes through the exact same steps in the
// exact same order.
package orchestrator

import (
	"context"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/sirupsen/logrus"

	"github.com/cyraxred/repograph/internal/anomaly"
	"github.com/cyraxred/repograph/internal/gitdriver"
	"github.com/cyraxred/repograph/internal/graphstore"
	"github.com/cyraxred/repograph/internal/imports"
	"github.com/cyraxred/repograph/internal/langregistry"
	"github.com/cyraxred/repograph/internal/manifest"
	"github.com/cyraxred/repograph/internal/parser"
	"github.com/cyraxred/repograph/internal/statussink"
	"github.com/cyraxred/repograph/internal/symbols"
)

// maxChurnForSymbols skips symbol/call extraction for a file whose
// additions+deletions exceed this in a single commit — matches the
// original's speed cutoff.
const maxChurnForSymbols = 200000

// progressEvery is how often (in ingested commits) a progress status
// update is reported.
const progressEvery = 20

// Orchestrator wires every extraction/storage component together for
// one ingest run. It holds no per-branch state; IngestBranch is safe to
// call concurrently for different (repo, branch) pairs sharing one
// Orchestrator, since the graph store serializes writes per commit and
// job supervision (one goroutine per (repo, branch) pair) lives in
// cmd/repograph.
type Orchestrator struct {
	Store      *graphstore.Store
	Langs      *langregistry.Registry
	SymbolX    *symbols.Extractor
	ImportX    *imports.Extractor
	Status     *statussink.Sink
	Pool       *tunny.Pool
	Logger     logrus.FieldLogger
	AnomalyTZ  *time.Location
	WindowSize int
}

// New builds an Orchestrator with a worker pool sized to workers (the
// caller clamps this to runtime.NumCPU() before constructing).
func New(store *graphstore.Store, facade *parser.Facade, status *statussink.Sink, workers int, anomalyTZ *time.Location, logger logrus.FieldLogger) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if anomalyTZ == nil {
		anomalyTZ = time.UTC
	}
	o := &Orchestrator{
		Store:      store,
		Langs:      langregistry.New(),
		SymbolX:    symbols.New(facade),
		ImportX:    imports.New(facade),
		Status:     status,
		Logger:     logger,
		AnomalyTZ:  anomalyTZ,
		WindowSize: anomaly.DefaultWindow,
	}
	o.Pool = tunny.NewFunc(workers, o.runFileJob)
	return o
}

// Close releases the worker pool. The graphstore.Store is owned by the
// caller and closed separately.
func (o *Orchestrator) Close() {
	if o.Pool != nil {
		o.Pool.Close()
	}
}

type fileChange struct {
	Path       string
	OldPath    string
	Status     string
	Additions  int
	Deletions  int
}

// IngestBranch walks every new commit on branch (since the branch's
// stored cursor, or startExclusive when given) and projects it onto the
// graph. The cursor only advances past commits that fully succeeded;
// a per-commit failure is logged and skipped, matching the original's
// try/except-per-commit isolation.
func (o *Orchestrator) IngestBranch(ctx context.Context, driver *gitdriver.Driver, repoPath, repoID, branch, taskID, startExclusive string, maxCommits int) error {
	o.Store.EnsureIndexes(ctx)
	if err := o.Store.UpsertRepoBranch(ctx, repoID, branch); err != nil {
		o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusFailed, Message: "failed to initialize repo/branch"})
		return err
	}

	cursor := startExclusive
	if cursor == "" {
		if sha, _, found := o.Store.BranchCursor(ctx, repoID, branch); found {
			cursor = sha
		}
	}

	todo, err := driver.CommitsSince(ctx, branch, cursor, maxCommits)
	if err != nil {
		o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusFailed, Message: "failed to list commits"})
		return err
	}
	if len(todo) == 0 {
		o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusCompleted, Message: "no new commits"})
		return nil
	}

	o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusInProgress, Message: commitCountMsg(len(todo))})

	ingested := 0
	for _, sha := range todo {
		if err := o.ingestCommit(ctx, driver, repoPath, repoID, branch, sha); err != nil {
			o.Logger.WithError(err).WithField("sha", sha).Error("orchestrator: commit ingest failed, cursor not advanced")
			continue
		}
		ingested++
		if ingested%progressEvery == 0 {
			o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusInProgress, Message: progressMsg(ingested, len(todo))})
		}
	}

	o.Status.Report(ctx, taskID, statussink.Update{Status: statussink.StatusCompleted, Message: completedMsg(ingested)})
	return nil
}

func (o *Orchestrator) ingestCommit(ctx context.Context, driver *gitdriver.Driver, repoPath, repoID, branch, sha string) error {
	meta, err := driver.CommitMeta(ctx, sha)
	if err != nil {
		return err
	}
	numstat, err := driver.Numstat(ctx, sha)
	if err != nil {
		return err
	}
	nameStatus, err := driver.NameStatus(ctx, sha, 50)
	if err != nil {
		return err
	}

	changes := mergeFileChanges(numstat, nameStatus)

	var addsTotal, delsTotal int
	for _, fc := range changes {
		addsTotal += fc.Additions
		delsTotal += fc.Deletions
	}

	hour := toLocalHour(meta.CommittedAt, o.AnomalyTZ)
	dow := toDOW(meta.CommittedAt)
	rollup := graphstore.CommitRollup{
		FilesChanged: len(changes),
		LinesChanged: addsTotal + delsTotal,
		Hour:         hour,
		DOW:          dow,
	}

	gsMeta := graphstore.CommitMeta{
		SHA: meta.SHA, AuthoredAt: meta.AuthoredAt, CommittedAt: meta.CommittedAt,
		AuthorName: meta.AuthorName, AuthorEmail: meta.AuthorEmail, Subject: meta.Subject,
	}
	if err := o.Store.LinkCommit(ctx, repoID, branch, gsMeta, rollup, addsTotal, delsTotal); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, fc := range changes {
		fc := fc
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Pool.Process(func() {
				if err := o.processFile(ctx, driver, repoPath, repoID, branch, sha, meta.CommittedAt, fc); err != nil {
					o.Logger.WithError(err).WithFields(logrus.Fields{"sha": sha, "path": fc.Path}).Warn("orchestrator: file processing failed")
				}
			})
		}()
	}
	wg.Wait()

	authorKey := meta.AuthorEmail
	if authorKey == "" {
		authorKey = meta.AuthorName
	}
	history, err := o.Store.AnomalyHistory(ctx, repoID, branch, authorKey, meta.CommittedAt, o.WindowSize)
	if err != nil {
		o.Logger.WithError(err).WithField("sha", sha).Warn("orchestrator: anomaly history lookup failed")
	} else {
		result := anomaly.Score(rollup.FilesChanged, rollup.LinesChanged, hour, history)
		if err := o.Store.WriteAnomalyScore(ctx, sha, result); err != nil {
			o.Logger.WithError(err).WithField("sha", sha).Warn("orchestrator: anomaly score write failed")
		}
	}

	return o.Store.SetBranchCursor(ctx, repoID, branch, sha, meta.CommittedAt)
}

func (o *Orchestrator) processFile(ctx context.Context, driver *gitdriver.Driver, repoPath, repoID, branch, sha string, committedAt int64, fc fileChange) error {
	ext := fileExt(fc.Path)
	isCode := o.isCodeFile(fc.Path, ext)

	if err := o.Store.LinkFileTouch(ctx, repoID, branch, sha, graphstore.FileChange{
		Path: fc.Path, OldPath: fc.OldPath, Status: fc.Status,
		Additions: fc.Additions, Deletions: fc.Deletions, Ext: ext, IsCode: isCode,
	}); err != nil {
		return err
	}

	blob, ok := driver.FileAt(ctx, sha, fc.Path)
	if !ok {
		return nil
	}

	basename := filepath.Base(fc.Path)
	if manifest.IsManifestFile(basename) {
		o.handleManifest(ctx, driver, repoPath, repoID, branch, sha, committedAt, fc.Path, basename, blob)
	}

	lang, hasLang := o.Langs.ByExtension(ext)
	rows := o.ImportX.Extract(ctx, lang, blob)
	if len(rows) > 0 {
		o.handleImports(ctx, driver, repoPath, sha, fc.Path, lang, rows)
	}

	if fc.Status == "D" || !isCode {
		return nil
	}
	if fc.Additions+fc.Deletions > maxChurnForSymbols {
		return nil
	}
	if !hasLang {
		return nil
	}

	allSyms := o.SymbolX.Extract(ctx, lang, blob)
	o.handleSymbols(ctx, driver, repoPath, sha, fc.Path, lang, allSyms)

	return o.Store.IncContributorFileTouch(ctx, sha, fc.Path, committedAt)
}

func (o *Orchestrator) handleManifest(ctx context.Context, driver *gitdriver.Driver, repoPath, repoID, branch, sha string, committedAt int64, filePath, basename string, blob []byte) {
	deps := manifest.Parse(basename, blob)
	if len(deps) > 0 {
		updates := make([]graphstore.DependencyUpdate, len(deps))
		for i, d := range deps {
			updates[i] = graphstore.DependencyUpdate{Ecosystem: d.Ecosystem, Name: d.Name, Version: d.Version}
		}
		if err := o.Store.UpsertDependencies(ctx, sha, committedAt, updates, manifest.SemverMajorBump); err != nil {
			o.Logger.WithError(err).Warn("orchestrator: dependency upsert failed")
		}
	}

	switch basename {
	case "package.json":
		if name, ok := manifest.PackageName(blob); ok {
			if err := o.Store.LinkRepoPackage(ctx, repoID, "npm", strings.ToLower(name)); err != nil {
				o.Logger.WithError(err).Warn("orchestrator: link_repo_package (npm) failed")
			}
		}
	case "pyproject.toml":
		if name, ok := manifest.PyprojectPackageName(blob); ok {
			if err := o.Store.LinkRepoPackage(ctx, repoID, "pypi", strings.ToLower(name)); err != nil {
				o.Logger.WithError(err).Warn("orchestrator: link_repo_package (pypi) failed")
			}
		}
	}
}

func (o *Orchestrator) handleImports(ctx context.Context, driver *gitdriver.Driver, repoPath, sha, filePath, lang string, rows []imports.Import) {
	out := make([]graphstore.ImportRow, len(rows))
	for i, row := range rows {
		resolved := ""
		if imports.IsLocal(lang, row.Module) {
			if r, ok := imports.Resolve(ctx, driver, sha, filePath, row.Module, lang); ok {
				resolved = r
			}
		}
		out[i] = graphstore.ImportRow{Module: row.Module, Member: row.Member, Alias: row.Alias, ResolvedPath: resolved}
	}
	if err := o.Store.UpsertImports(ctx, filePath, lang, out); err != nil {
		o.Logger.WithError(err).Warn("orchestrator: import upsert failed")
	}
}

func (o *Orchestrator) handleSymbols(ctx context.Context, driver *gitdriver.Driver, repoPath, sha, filePath, lang string, syms []symbols.Symbol) {
	if len(syms) == 0 {
		return
	}
	var defs []graphstore.SymbolDef
	var calls []graphstore.CallSite
	for _, s := range syms {
		switch s.Kind {
		case symbols.KindFunction, symbols.KindClass:
			defs = append(defs, graphstore.SymbolDef{Name: s.Name, Kind: string(s.Kind), StartLine: s.StartLine, EndLine: s.EndLine})
		case symbols.KindCall:
			calls = append(calls, graphstore.CallSite{Name: s.Name, StartLine: s.StartLine})
		}
	}

	if len(defs) > 0 {
		if err := o.Store.UpsertSymbols(ctx, filePath, lang, sha, defs); err != nil {
			o.Logger.WithError(err).Warn("orchestrator: symbol upsert failed")
		}
	}
	if len(calls) > 0 {
		if err := o.Store.UpsertCallsIntraFile(ctx, filePath, sha, calls); err != nil {
			o.Logger.WithError(err).Warn("orchestrator: intra-file call upsert failed")
		}
		if err := o.Store.ResolveCrossFileCalls(ctx, filePath, calls); err != nil {
			o.Logger.WithError(err).Warn("orchestrator: cross-file call resolution failed")
		}
	}

	if len(defs) == 0 {
		return
	}
	hunkRanges, err := driver.AddedLineRanges(ctx, sha, filePath)
	if err != nil || len(hunkRanges) == 0 {
		return
	}
	touches := map[string]int{}
	for _, d := range defs {
		if d.StartLine <= 0 || d.EndLine <= 0 || d.EndLine < d.StartLine {
			continue
		}
		rng := gitdriver.LineRange{Start: d.StartLine, End: d.EndLine}
		delta := 0
		for _, hr := range hunkRanges {
			delta += gitdriver.OverlapLen(rng, hr)
		}
		if delta > 0 {
			touches[d.Name] += delta
		}
	}
	if len(touches) > 0 {
		if err := o.Store.TouchSymbol(ctx, sha, filePath, touches); err != nil {
			o.Logger.WithError(err).Warn("orchestrator: touch_symbol failed")
		}
	}
}

// runFileJob adapts a per-file unit of work to tunny.Pool's func(interface{}) interface{}
// signature. ingestCommit submits each changed file's processFile call
// as a func() payload through Pool.Process, one goroutine per file,
// and waits for all of them before scoring the commit and advancing
// the cursor.
func (o *Orchestrator) runFileJob(payload interface{}) interface{} {
	fn, ok := payload.(func())
	if !ok {
		return nil
	}
	fn()
	return nil
}

func mergeFileChanges(numstat map[string]gitdriver.FileStat, nameStatus map[string]gitdriver.NameStatusEntry) []fileChange {
	seen := map[string]bool{}
	var out []fileChange
	for p, ns := range nameStatus {
		stat := numstat[p]
		out = append(out, fileChange{
			Path: p, OldPath: ns.OldPath, Status: nonEmptyStatus(ns.Status),
			Additions: stat.Additions, Deletions: stat.Deletions,
		})
		seen[p] = true
	}
	for p, stat := range numstat {
		if seen[p] {
			continue
		}
		out = append(out, fileChange{Path: p, Status: "M", Additions: stat.Additions, Deletions: stat.Deletions})
	}
	return out
}

func nonEmptyStatus(s string) string {
	if s == "" {
		return "M"
	}
	return s
}

func fileExt(p string) string {
	return path.Ext(p)
}

func (o *Orchestrator) isCodeFile(p, ext string) bool {
	return manifest.IsManifestFile(filepath.Base(p)) || o.Langs.IsCode(ext)
}

func toLocalHour(committedAt int64, loc *time.Location) int {
	return time.Unix(committedAt, 0).UTC().In(loc).Hour()
}

// toDOW returns Python's datetime.weekday() convention (Monday=0 .. Sunday=6),
// computed in UTC as the original tool does, regardless of AnomalyTZ.
func toDOW(committedAt int64) int {
	goWeekday := int(time.Unix(committedAt, 0).UTC().Weekday()) // Sunday=0..Saturday=6
	return (goWeekday + 6) % 7
}

func commitCountMsg(n int) string {
	return "found " + strconv.Itoa(n) + " commits to ingest"
}

func progressMsg(ingested, total int) string {
	return "ingested " + strconv.Itoa(ingested) + "/" + strconv.Itoa(total) + " commits"
}

func completedMsg(ingested int) string {
	return "ingested " + strconv.Itoa(ingested) + " commits"
}
