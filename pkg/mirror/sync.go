package mirror

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modmirror/pkg/archive"
	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/extract"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
	"github.com/matzehuels/modmirror/pkg/observability"
	"github.com/matzehuels/modmirror/pkg/store"
)

// Options controls a sync run.
type Options struct {
	// Force disables the idempotency gate.
	Force bool

	// Jobs is the number of repositories synced at once. Values below 1
	// mean sequential.
	Jobs int

	// OnStart and OnDone are called around each repository. With Jobs > 1
	// they are called from several goroutines.
	OnStart func(spec config.RepoSpec)
	OnDone  func(res Result)
}

// Syncer mirrors repositories into a Store.
type Syncer struct {
	Store      *store.Store
	GitHub     *github.Client
	Extractor  extract.Extractor
	Classifier *archive.Classifier
	Packages   archive.PackageReader
	Logger     *log.Logger
}

// NewSyncer creates a Syncer with the GitHub markup extractor, the zip
// classifier and the native apk reader. Fields may be replaced before the
// first Run.
func NewSyncer(st *store.Store, gh *github.Client, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{
		Store:      st,
		GitHub:     gh,
		Extractor:  extract.GitHubMarkup{},
		Classifier: archive.NewClassifier(nil),
		Packages:   archive.NativePackageReader{},
		Logger:     logger,
	}
}

// Run syncs every repository in repos and then rewrites the listing
// manifest. Per-repository failures are reported in the Report, not
// returned; the error is non-nil only if the manifest could not be written
// or ctx was cancelled.
func (s *Syncer) Run(ctx context.Context, repos config.RepoList, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := s.Logger.With("run", runID[:8])
	hooks := observability.Sync()
	start := time.Now()

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	hooks.OnRunStart(ctx, runID, repos.Len())
	logger.Debug("sync started", "repos", repos.Len(), "jobs", jobs, "force", opts.Force)

	report := &Report{RunID: runID, Results: make([]Result, repos.Len())}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, spec := range repos.All() {
		g.Go(func() error {
			if opts.OnStart != nil {
				opts.OnStart(spec)
			}
			res := s.syncIsolated(gctx, logger.With("repo", spec.SourceID), spec, opts.Force)
			report.Results[i] = res
			if opts.OnDone != nil {
				opts.OnDone(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	listing, err := s.Store.WriteListing()
	report.Listing = listing
	report.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, runID, report.Duration)
	if err != nil {
		logger.Error("failed to write listing", "err", err)
		return report, err
	}

	logger.Info("sync finished",
		"updated", report.Count(observability.OutcomeUpdated),
		"skipped", report.Count(observability.OutcomeSkipped),
		"failed", report.Count(observability.OutcomeFailed),
		"duration", report.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// syncIsolated runs one repository inside a fault boundary: errors and
// panics become a failed Result.
func (s *Syncer) syncIsolated(ctx context.Context, logger *log.Logger, spec config.RepoSpec, force bool) (res Result) {
	hooks := observability.Sync()
	start := time.Now()
	res = Result{Source: spec.SourceID, Name: spec.Name()}

	hooks.OnRepoStart(ctx, spec.SourceID)
	defer func() {
		if p := recover(); p != nil {
			logger.Debug("panic", "stack", string(debug.Stack()))
			res.Err = errors.New(errors.ErrCodeInternal, "panic: %v", p)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Outcome = observability.OutcomeFailed
			logger.Error("sync failed", "err", res.Err)
		}
		hooks.OnRepoComplete(ctx, spec.SourceID, res.Outcome, res.Duration, res.Err)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Err = s.syncRepo(ctx, logger, spec, force, &res)
	return res
}

// syncRepo is the per-repository pipeline. It fills res as it goes so a
// failure still reports how far it got.
func (s *Syncer) syncRepo(ctx context.Context, logger *log.Logger, spec config.RepoSpec, force bool, res *Result) error {
	name := spec.Name()
	if err := s.Store.EnsureDir(name); err != nil {
		return err
	}
	rec, err := s.Store.Load(name)
	if err != nil {
		return err
	}
	res.Previous = rec.Version()

	release, err := NewResolver(s.GitHub).Resolve(ctx, spec)
	if err != nil {
		return err
	}
	res.Version = release.Version

	if !NeedsUpdate(rec, release.Version, force) {
		res.Outcome = observability.OutcomeSkipped
		logger.Info("up to date", "version", release.Version)
		return nil
	}
	logger.Debug("updating", "from", res.Previous, "to", release.Version)

	fetcher := NewFetcher(s.GitHub, s.Extractor)
	fetcher.Refresh = force
	artifact, err := fetcher.Fetch(ctx, release.ReleasePage, spec.FilePattern, s.Store.ArtifactPath(name))
	if err != nil {
		return err
	}
	res.Artifact, res.Size = artifact.URL, artifact.Size
	logger.Debug("downloaded", "url", artifact.URL, "bytes", artifact.Size)

	typ, err := s.Classifier.ClassifyFile(artifact.Path)
	if err != nil {
		return err
	}
	res.Type = typ
	if typ == archive.TypeAPK {
		pkg, err := s.Packages.PackageName(ctx, artifact.Path)
		if err != nil {
			return err
		}
		rec.Set(store.FieldOpenName, pkg)
		rec.Set(store.FieldPackageName, pkg)
	}

	displayName, author := name, spec.Owner()
	if spec.FormatName {
		displayName = FormatTitle(displayName)
	}
	if spec.FormatAuthor {
		author = FormatTitle(author)
	}
	rec.Set(store.FieldName, displayName)
	rec.Set(store.FieldAuthor, author)
	rec.Set(store.FieldVersion, release.Version)
	rec.Set(store.FieldType, string(typ))
	rec.Set(store.FieldSrcLink, github.SourceLink(spec.SourceID))

	readme, err := s.readme(ctx, spec.SourceID, release.Version, force)
	if err != nil {
		return err
	}
	rec.Set(store.FieldReadme, readme)

	changelog, err := s.Extractor.Changelog(release.HTML)
	if err != nil {
		return err
	}
	rec.Set(store.FieldChangelog, changelog)

	images, err := s.Store.CountImages(name)
	if err != nil {
		return err
	}
	rec.Set(store.FieldImages, images)

	if spec.RequiresTag != "" {
		rec.Set(store.FieldRequiresTag, spec.RequiresTag)
	}
	rec.SetDefault(store.FieldKeywords, []string{string(typ)})

	if err := s.Store.Persist(name, rec); err != nil {
		return err
	}
	res.Outcome = observability.OutcomeUpdated
	logger.Info("updated", "version", release.Version, "type", typ)
	return nil
}

func (s *Syncer) readme(ctx context.Context, source, version string, refresh bool) (string, error) {
	landing, err := s.GitHub.LandingPage(ctx, source)
	if err != nil {
		return "", err
	}
	path, err := s.Extractor.ReadmePath(landing)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarkupParse, err, "cannot locate README of %s", source)
	}
	return s.GitHub.Readme(ctx, source, version, path, refresh)
}
