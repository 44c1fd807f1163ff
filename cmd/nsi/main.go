package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/nsi/internal/analysis"
	"github.com/standardbeagle/nsi/internal/config"
	"github.com/standardbeagle/nsi/internal/debug"
	"github.com/standardbeagle/nsi/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", c.String("config"), err)
	}

	if c.Bool("no-stopping") {
		cfg.Analysis.Stopping = false
	}
	if c.Bool("no-stemming") {
		cfg.Analysis.Stemming = false
	}
	if p := c.Int("parallelism"); p > 0 {
		cfg.Index.Parallelism = p
	}
	return cfg, nil
}

// newAnalyzer builds the analyzer the config describes. The stop-word file
// is only required when stopping is enabled.
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	opts := analysis.Options{
		Stopping: cfg.Analysis.Stopping,
		Stemming: cfg.Analysis.Stemming,
	}
	var stopWords []string
	if opts.Stopping {
		var err error
		stopWords, err = analysis.LoadStopWords(cfg.Paths.StopWordsFile)
		if err != nil {
			return nil, err
		}
	}
	return analysis.New(opts, stopWords), nil
}

func main() {
	if debug.IsDebugEnabled() {
		if logPath, err := debug.InitDebugLogFile(); err == nil {
			defer debug.CloseDebugLog()
			fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
		}
	}

	app := &cli.App{
		Name:                   "nsi",
		Usage:                  "Positional inverted index and search for news corpora",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".nsi.toml",
			},
			&cli.BoolFlag{
				Name:  "no-stopping",
				Usage: "Disable stop-word removal (must match index build)",
			},
			&cli.BoolFlag{
				Name:  "no-stemming",
				Usage: "Disable Porter stemming (must match index build)",
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "Worker count for index builds (0 = number of CPUs)",
			},
		},
		Commands: []*cli.Command{
			indexCmd(),
			mergeCmd(),
			dumpCmd(),
			booleanCmd(),
			rankedCmd(),
			watchCmd(),
			suggestCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
