package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/metrics"
	"github.com/matzehuels/modmirror/pkg/mirror"
	"github.com/matzehuels/modmirror/pkg/observability"
)

// syncOptions holds the flags of the sync command.
type syncOptions struct {
	force       bool
	jobs        int
	only        []string
	pick        bool
	metricsFile string
}

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync [owner/name...]",
		Short: "Mirror the latest release of each configured repository",
		Long: `Sync resolves the release of every configured repository, downloads the
matching asset when the mirrored version is out of date, and rewrites its
details.json. The directory listing is rebuilt at the end of every run.

Repositories are read from --config, repos.toml or repos.yaml in the
working directory, or the built-in list. Naming repositories as arguments
restricts the run to them.`,
		Example: `  modmirror sync
  modmirror sync --force tiann/KernelSU
  modmirror sync --pick
  modmirror sync -j 4 --metrics-file /var/lib/node_exporter/modmirror.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.only = append(opts.only, args...)
			if !cmd.Flags().Changed("jobs") {
				opts.jobs = c.Settings.Jobs
			}
			return c.runSync(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "download even when the mirrored version is current")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "repositories synced at once (env "+config.EnvJobs+")")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "sync only these repositories (owner/name, repeatable)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose repositories interactively")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for the run to this file")

	return cmd
}

// runSync performs one sync run and prints its outcome.
func (c *CLI) runSync(ctx context.Context, opts syncOptions) error {
	if opts.jobs < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "jobs must be at least 1, got %d", opts.jobs)
	}

	repos, err := c.selectRepos(opts)
	if err != nil {
		return err
	}
	if repos.Len() == 0 {
		printInfo("No repositories selected")
		return nil
	}

	var rec *metrics.Recorder
	if opts.metricsFile != "" {
		rec = metrics.NewRecorder(nil)
		rec.Register()
		defer observability.Reset()
	}

	logger := c.Logger
	if !c.verbose() {
		logger = newLogger(io.Discard, log.InfoLevel)
	}

	syncer, closeCache, err := c.newSyncer(ctx, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	report, err := c.runWithProgress(ctx, syncer, repos, mirror.Options{Force: opts.force, Jobs: opts.jobs})

	if rec != nil {
		if werr := rec.WriteTextfile(opts.metricsFile); werr != nil {
			printWarning("Could not write metrics: %v", werr)
		} else {
			c.Logger.Debug("metrics written", "file", opts.metricsFile)
		}
	}

	if err != nil {
		return err
	}
	printSummary(report)
	return report.Err()
}

// selectRepos applies --only, positional arguments and --pick to the
// configured repository list.
func (c *CLI) selectRepos(opts syncOptions) (config.RepoList, error) {
	repos, file, err := c.loadRepos()
	if err != nil {
		return config.RepoList{}, err
	}
	if file != "" {
		c.Logger.Debug("repository list", "file", file, "repos", repos.Len())
	} else {
		c.Logger.Debug("using built-in repository list", "repos", repos.Len())
	}

	for _, id := range opts.only {
		if err := errors.ValidateSourceID(id); err != nil {
			return config.RepoList{}, err
		}
	}
	if repos, err = repos.Only(opts.only...); err != nil {
		return config.RepoList{}, err
	}

	if opts.pick {
		return c.pickRepos(repos)
	}
	return repos, nil
}

// runWithProgress runs the syncer. Without --verbose it animates a spinner
// and prints one line per finished repository.
func (c *CLI) runWithProgress(ctx context.Context, syncer *mirror.Syncer, repos config.RepoList, opts mirror.Options) (*mirror.Report, error) {
	prog := newProgress(c.Logger)
	if c.verbose() {
		report, err := syncer.Run(ctx, repos, opts)
		if err == nil {
			prog.done(fmt.Sprintf("Synced %d repositories", repos.Len()))
		}
		return report, err
	}

	total := repos.Len()
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Syncing %d repositories...", total))
	spinner.Start()
	defer spinner.Stop()

	var (
		mu       sync.Mutex
		finished int
	)
	opts.OnDone = func(res mirror.Result) {
		mu.Lock()
		defer mu.Unlock()
		finished++
		spinner.Println(resultLine(res))
		spinner.SetMessage(fmt.Sprintf("Syncing %d/%d...", finished, total))
	}
	return syncer.Run(ctx, repos, opts)
}

// resultLine renders one repository outcome.
func resultLine(res mirror.Result) string {
	switch res.Outcome {
	case observability.OutcomeUpdated:
		line := fmt.Sprintf("%s %s %s", styleIconSuccess.Render(iconSuccess), res.Source, StyleHighlight.Render(res.Version))
		if res.Previous != "" {
			line += StyleDim.Render(" (was " + res.Previous + ")")
		}
		if res.Type != "" {
			line += StyleDim.Render(fmt.Sprintf(" · %s · %s", res.Type, humanize.Bytes(uint64(res.Size))))
		}
		return line
	case observability.OutcomeSkipped:
		return fmt.Sprintf("%s %s %s", styleIconInfo.Render(iconInfo), res.Source, StyleDim.Render(res.Version+" up to date"))
	default:
		msg := "unknown error"
		if res.Err != nil {
			msg = errors.UserMessage(res.Err)
			if code := errors.GetCode(res.Err); code != "" {
				msg = string(code) + ": " + msg
			}
		}
		return fmt.Sprintf("%s %s %s", styleIconError.Render(iconError), res.Source, StyleError.Render(msg))
	}
}

// printSummary prints the totals of a run and its failures.
func printSummary(report *mirror.Report) {
	printNewline()
	printStats(
		report.Count(observability.OutcomeUpdated),
		report.Count(observability.OutcomeSkipped),
		report.Count(observability.OutcomeFailed),
		report.Duration,
	)
	for _, f := range report.Failures() {
		printDetail("%s: %v", f.Source, f.Err)
	}
	printDetail("Listing: %d directories", len(report.Listing))
}
