package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/modmirror/pkg/errors"
)

// Environment variables read by SettingsFromEnv.
const (
	EnvRoot      = "MODMIRROR_ROOT"
	EnvConfig    = "MODMIRROR_CONFIG"
	EnvJobs      = "MODMIRROR_JOBS"
	EnvRedis     = "MODMIRROR_REDIS"
	EnvCacheTTL  = "MODMIRROR_CACHE_TTL"
	EnvTimeout   = "MODMIRROR_TIMEOUT"
	EnvUserAgent = "MODMIRROR_USER_AGENT"
	EnvAapt      = "MODMIRROR_AAPT"
)

// Settings are the runtime knobs shared by all commands.
type Settings struct {
	Root      string        // state root holding one directory per repository
	Config    string        // explicit repository list file
	Jobs      int           // concurrent repositories
	Redis     string        // Redis address for the page cache; empty uses the file cache
	CacheTTL  time.Duration // lifetime of cached fragments and READMEs; 0 keeps forever
	Timeout   time.Duration // per-request timeout for pages
	UserAgent string        // User-Agent header
	Aapt      string        // aapt binary for package ids; empty uses the built-in reader
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Root:      "Mods",
		Jobs:      1,
		CacheTTL:  7 * 24 * time.Hour,
		Timeout:   30 * time.Second,
		UserAgent: "modmirror",
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %v", present)
	}
	return nil
}

// SettingsFromEnv overlays MODMIRROR_* variables, read through getenv, on
// the defaults. A nil getenv reads the process environment.
func SettingsFromEnv(getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := DefaultSettings()

	if v := getenv(EnvRoot); v != "" {
		s.Root = v
	}
	s.Config = getenv(EnvConfig)
	s.Redis = getenv(EnvRedis)
	s.Aapt = getenv(EnvAapt)
	if v := getenv(EnvUserAgent); v != "" {
		s.UserAgent = v
	}
	if v := getenv(EnvJobs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s=%q", EnvJobs, v)
		}
		s.Jobs = n
	}
	var err error
	if s.CacheTTL, err = durationEnv(getenv, EnvCacheTTL, s.CacheTTL); err != nil {
		return Settings{}, err
	}
	if s.Timeout, err = durationEnv(getenv, EnvTimeout, s.Timeout); err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

// Validate checks the settings for values no command can run with.
func (s Settings) Validate() error {
	if s.Root == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "root directory is required")
	}
	if s.Jobs < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "jobs must be at least 1, got %d", s.Jobs)
	}
	if s.CacheTTL < 0 || s.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations cannot be negative")
	}
	return nil
}

func durationEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s=%q", key, v)
	}
	return d, nil
}
