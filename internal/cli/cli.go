package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modmirror/pkg/archive"
	"github.com/matzehuels/modmirror/pkg/buildinfo"
	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/integrations"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
	"github.com/matzehuels/modmirror/pkg/mirror"
	"github.com/matzehuels/modmirror/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "modmirror"

	// redisPrefix namespaces modmirror keys in a shared Redis.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Settings config.Settings

	flags globalFlags
}

// globalFlags are the persistent flags that override Settings.
type globalFlags struct {
	root    string
	config  string
	redis   string
	aapt    string
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Settings: config.DefaultSettings(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is on.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mirror the latest GitHub releases of Android mods into a local directory",
		Long: `modmirror keeps a local mirror of the latest release of a list of GitHub
repositories: one artifact, a details.json metadata record and a directory
listing per mirror root, ready for a catalog to serve.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadSettings(cmd); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.root, "root", "", "mirror root directory (env "+config.EnvRoot+")")
	pf.StringVarP(&c.flags.config, "config", "c", "", "repository list file, .toml or .yaml (env "+config.EnvConfig+")")
	pf.StringVar(&c.flags.redis, "redis", "", "Redis address for the page cache (env "+config.EnvRedis+")")
	pf.StringVar(&c.flags.aapt, "aapt", "", "read apk package ids with this aapt binary (env "+config.EnvAapt+")")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the page cache")

	// Register all subcommands
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadSettings resolves Settings: flags over MODMIRROR_* (with .env) over defaults.
func (c *CLI) loadSettings(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		c.Logger.Warn("ignoring .env", "err", err)
	}
	s, err := config.SettingsFromEnv(nil)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		s.Root = c.flags.root
	}
	if flags.Changed("config") {
		s.Config = c.flags.config
	}
	if flags.Changed("redis") {
		s.Redis = c.flags.redis
	}
	if flags.Changed("aapt") {
		s.Aapt = c.flags.aapt
	}
	if err := s.Validate(); err != nil {
		return err
	}
	c.Settings = s
	c.Logger.Debug("settings", "root", s.Root, "config", s.Config, "redis", s.Redis, "jobs", s.Jobs)
	return nil
}

// =============================================================================
// Syncer Factory
// =============================================================================

// loadRepos returns the configured repository list and the file it came from.
func (c *CLI) loadRepos() (config.RepoList, string, error) {
	return config.ResolveRepos(c.Settings.Config, ".")
}

// newStore returns the store at the configured root.
func (c *CLI) newStore() *store.Store {
	return store.New(c.Settings.Root)
}

// newSyncer wires a Syncer from Settings. The returned close func releases
// the cache.
func (c *CLI) newSyncer(ctx context.Context, logger *log.Logger) (*mirror.Syncer, func(), error) {
	pc, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	gh := github.NewClient(pc, integrations.Options{
		Timeout:   c.Settings.Timeout,
		UserAgent: c.Settings.UserAgent,
		CacheTTL:  c.Settings.CacheTTL,
	})

	syncer := mirror.NewSyncer(c.newStore(), gh, logger)
	if c.Settings.Aapt != "" {
		syncer.Packages = archive.AaptPackageReader{Binary: c.Settings.Aapt}
	}
	return syncer, func() { pc.Close() }, nil
}

// newCache picks the page cache backend: none, Redis or the XDG file cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	if c.Settings.Redis != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(pingCtx, cache.RedisConfig{Addr: c.Settings.Redis})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", c.Settings.Redis)
		return cache.NewScopedCache(rc, redisPrefix), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("page cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/modmirror/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
