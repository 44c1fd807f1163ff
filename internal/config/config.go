package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full .nsi.toml configuration.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Index    Index    `toml:"index"`
	Query    Query    `toml:"query"`
	Paths    Paths    `toml:"paths"`
	Watch    Watch    `toml:"watch"`
}

// Analysis controls the text analysis pipeline. The same options must be
// used at index time and at query time.
type Analysis struct {
	Stopping bool `toml:"stopping"` // drop stop words
	Stemming bool `toml:"stemming"` // Porter stemming
}

type Index struct {
	Interval    int `toml:"interval"`    // fragments per child index file
	Parallelism int `toml:"parallelism"` // 0 = auto-detect (NumCPU)
}

type Query struct {
	MaxRankedResults int `toml:"max_ranked_results"`
}

type Paths struct {
	FragmentsDir    string `toml:"fragments_dir"`
	ChildIndexDir   string `toml:"child_index_dir"`
	GlobalIndexPath string `toml:"global_index_path"`
	StopWordsFile   string `toml:"stop_words_file"`
}

type Watch struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Analysis: Analysis{
			Stopping: true,
			Stemming: true,
		},
		Index: Index{
			Interval:    10,
			Parallelism: 0,
		},
		Query: Query{
			MaxRankedResults: 150,
		},
		Paths: Paths{
			FragmentsDir:    "fragments",
			ChildIndexDir:   "index/child",
			GlobalIndexPath: "index/global.nsi",
			StopWordsFile:   "stopwords.txt",
		},
		Watch: Watch{
			DebounceMs: 500,
		},
	}
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are returned so the tool works in an unconfigured directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Zero parallelism means auto-detect.
func (c *Config) Validate() error {
	if c.Index.Interval <= 0 {
		return fmt.Errorf("index.interval must be positive, got %d", c.Index.Interval)
	}
	if c.Index.Parallelism < 0 {
		return fmt.Errorf("index.parallelism must be >= 0, got %d", c.Index.Parallelism)
	}
	if c.Query.MaxRankedResults <= 0 {
		return fmt.Errorf("query.max_ranked_results must be positive, got %d", c.Query.MaxRankedResults)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}
	return nil
}

// EffectiveParallelism resolves the auto-detect value.
func (c *Config) EffectiveParallelism() int {
	if c.Index.Parallelism > 0 {
		return c.Index.Parallelism
	}
	return runtime.NumCPU()
}

// WatchDebounce returns the debounce period as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
