// Package config loads driftwatch configuration from a TOML file with
// environment variable overrides.
//
// Resolution order is defaults, then the TOML file (a missing file is not an
// error), then DRIFTWATCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults for every tunable.
const (
	DefaultDebounce     = 2 * time.Second
	DefaultWriteDelay   = 100 * time.Millisecond
	DefaultRenameWindow = 50 * time.Millisecond
	DefaultFoldMargin   = 2
	DefaultFoldMinSize  = 4
	DefaultMaxFileSize  = 10 * 1024 * 1024
	DefaultDiffContext  = 3
	DefaultEventBuffer  = 100
	DefaultIgnoreHidden = true
)

// Config holds all driftwatch settings.
type Config struct {
	// Root is the directory tree to monitor.
	Root string `toml:"root"`

	Classifier ClassifierConfig `toml:"classifier"`
	Watcher    WatcherConfig    `toml:"watcher"`
	Fold       FoldConfig       `toml:"fold"`
	Diff       DiffConfig       `toml:"diff"`
}

// ClassifierConfig configures change classification.
type ClassifierConfig struct {
	// Debounce is the internal-edit marker lifetime.
	Debounce Duration `toml:"debounce"`

	// MaxFileSize is the tracking size limit in bytes. Zero means unlimited.
	MaxFileSize int64 `toml:"max_file_size"`
}

// WatcherConfig configures the file system watcher.
type WatcherConfig struct {
	// WriteDelay is the quiet period used to coalesce rapid writes.
	WriteDelay Duration `toml:"write_delay"`

	// RenameWindow is how long a rename waits for its matching create.
	RenameWindow Duration `toml:"rename_window"`

	// BufferSize is the event channel capacity.
	BufferSize int `toml:"buffer_size"`

	// IgnorePatterns are glob patterns for paths to skip.
	IgnorePatterns []string `toml:"ignore_patterns"`

	// IgnoreHidden skips dotfiles and dot-directories.
	IgnoreHidden bool `toml:"ignore_hidden"`
}

// FoldConfig configures unchanged-region folding.
type FoldConfig struct {
	// Margin is the number of context lines kept visible on each side of
	// a folded region.
	Margin int `toml:"margin"`

	// MinSize is the smallest gap, after margins, that is still folded.
	MinSize int `toml:"min_size"`
}

// DiffConfig configures diff rendering.
type DiffConfig struct {
	// Context is the number of unchanged lines around each hunk.
	Context int `toml:"context"`
}

// Duration is a time.Duration that unmarshals from TOML strings like "2s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Root: ".",
		Classifier: ClassifierConfig{
			Debounce:    Duration(DefaultDebounce),
			MaxFileSize: DefaultMaxFileSize,
		},
		Watcher: WatcherConfig{
			WriteDelay:   Duration(DefaultWriteDelay),
			RenameWindow: Duration(DefaultRenameWindow),
			BufferSize:   DefaultEventBuffer,
			IgnoreHidden: DefaultIgnoreHidden,
		},
		Fold: FoldConfig{
			Margin:  DefaultFoldMargin,
			MinSize: DefaultFoldMinSize,
		},
		Diff: DiffConfig{
			Context: DefaultDiffContext,
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults;
// environment overrides are applied either way.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays DRIFTWATCH_* environment variables. Unparseable values
// are ignored in favor of the file or default value.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("DRIFTWATCH_ROOT"); ok {
		cfg.Root = v
	}
	if v, ok := os.LookupEnv("DRIFTWATCH_DEBOUNCE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Classifier.Debounce = Duration(d)
		}
	}
	if v, ok := os.LookupEnv("DRIFTWATCH_MAX_FILE_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Classifier.MaxFileSize = n
		}
	}
	if v, ok := os.LookupEnv("DRIFTWATCH_FOLD_MARGIN"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fold.Margin = n
		}
	}
	if v, ok := os.LookupEnv("DRIFTWATCH_FOLD_MIN_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fold.MinSize = n
		}
	}
	if v, ok := os.LookupEnv("DRIFTWATCH_IGNORE_HIDDEN"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Watcher.IgnoreHidden = b
		}
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Classifier.Debounce < 0 {
		return fmt.Errorf("classifier.debounce must not be negative, got %s", c.Classifier.Debounce.Duration())
	}
	if c.Classifier.MaxFileSize < 0 {
		return fmt.Errorf("classifier.max_file_size must not be negative, got %d", c.Classifier.MaxFileSize)
	}
	if c.Fold.Margin < 0 {
		return fmt.Errorf("fold.margin must not be negative, got %d", c.Fold.Margin)
	}
	if c.Fold.MinSize < 1 {
		return fmt.Errorf("fold.min_size must be at least 1, got %d", c.Fold.MinSize)
	}
	if c.Diff.Context < 0 {
		return fmt.Errorf("diff.context must not be negative, got %d", c.Diff.Context)
	}
	if c.Watcher.BufferSize < 1 {
		return fmt.Errorf("watcher.buffer_size must be at least 1, got %d", c.Watcher.BufferSize)
	}
	return nil
}
