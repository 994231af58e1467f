package cli

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/metrics"
	"github.com/matzehuels/modmirror/pkg/mirror"
	"github.com/matzehuels/modmirror/pkg/observability"
)

const (
	watchJobName         = "modmirror-sync"
	defaultWatchInterval = 6 * time.Hour
)

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	jobs        int
	only        []string
	interval    time.Duration
	metricsFile string
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [owner/name...]",
		Short: "Sync on a fixed interval until interrupted",
		Long: `Watch runs a sync immediately and then once per --interval. A run that is
still in progress when the next one is due delays it instead of overlapping.
Failed repositories are logged and retried on the next run.`,
		Example: `  modmirror watch --interval 1h
  modmirror watch --metrics-file /var/lib/node_exporter/modmirror.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.only = append(opts.only, args...)
			if !cmd.Flags().Changed("jobs") {
				opts.jobs = c.Settings.Jobs
			}
			return c.runWatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", defaultWatchInterval, "time between sync runs")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "repositories synced at once (env "+config.EnvJobs+")")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "sync only these repositories (owner/name, repeatable)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "rewrite Prometheus metrics to this file after every run")

	return cmd
}

// runWatch schedules the sync job and blocks until ctx is done.
func (c *CLI) runWatch(ctx context.Context, opts watchOptions) error {
	if opts.interval < time.Minute {
		return errors.New(errors.ErrCodeInvalidConfig, "interval must be at least 1m, got %s", opts.interval)
	}
	if opts.jobs < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "jobs must be at least 1, got %d", opts.jobs)
	}

	repos, err := c.selectRepos(syncOptions{only: opts.only})
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if opts.metricsFile != "" {
		rec = metrics.NewRecorder(nil)
		rec.Register()
		defer observability.Reset()
	}

	syncer, closeCache, err := c.newSyncer(ctx, c.Logger)
	if err != nil {
		return err
	}
	defer closeCache()

	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create scheduler")
	}

	tick := watchTick{syncer: syncer, repos: repos, jobs: opts.jobs, rec: rec, metricsFile: opts.metricsFile}
	job, err := s.NewJob(
		gocron.DurationJob(opts.interval),
		gocron.NewTask(tick.run, ctx),
		gocron.WithName(watchJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithPanic(func(_ uuid.UUID, name string, recovered any) {
				c.Logger.Error("scheduled job panicked", "job", name, "panic", recovered)
			}),
		),
	)
	if err != nil {
		_ = s.Shutdown()
		return errors.Wrap(errors.ErrCodeInternal, err, "schedule sync")
	}

	s.Start()
	c.Logger.Info("watching", "repos", repos.Len(), "interval", opts.interval, "job", job.ID().String()[:8])

	<-ctx.Done()
	c.Logger.Info("shutting down")
	if err := s.Shutdown(); err != nil {
		c.Logger.Warn("scheduler shutdown", "err", err)
	}
	return nil
}

// watchTick is one scheduled sync run.
type watchTick struct {
	syncer      *mirror.Syncer
	repos       config.RepoList
	jobs        int
	rec         *metrics.Recorder
	metricsFile string
}

func (t watchTick) run(ctx context.Context) {
	logger := loggerFromContext(ctx)
	report, err := t.syncer.Run(ctx, t.repos, mirror.Options{Jobs: t.jobs})
	switch {
	case err != nil && ctx.Err() != nil:
		logger.Info("sync interrupted")
	case err != nil:
		logger.Error("sync run failed", "err", err)
	default:
		for _, f := range report.Failures() {
			logger.Warn("will retry next run", "repo", f.Source, "code", errors.GetCode(f.Err))
		}
	}

	if t.rec != nil {
		if werr := t.rec.WriteTextfile(t.metricsFile); werr != nil {
			logger.Warn("could not write metrics", "file", t.metricsFile, "err", werr)
		}
	}
}
