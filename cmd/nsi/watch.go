package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/nsi/internal/index"
	"github.com/standardbeagle/nsi/internal/store"
	"github.com/standardbeagle/nsi/internal/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Watch the fragment directory and rebuild child indexes on new drops",
		Action: watchCommand,
	}
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	fragments := store.NewDirStore(cfg.Paths.FragmentsDir)
	builder := index.NewBuilder(analyzer, cfg.EffectiveParallelism())
	manager := index.NewManager(fragments, builder, cfg.Paths.ChildIndexDir)

	rebuild := func(source, date string) {
		written, err := manager.BuildChildren(c.Context, source, date, cfg.Index.Interval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild %s %s failed: %v\n", source, date, err)
		}
		for _, path := range written {
			fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
		}
	}

	watcher, err := watch.New(cfg.Paths.FragmentsDir, cfg.WatchDebounce(), rebuild)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(c.App.Writer, "watching %s, ctrl-c to stop\n", cfg.Paths.FragmentsDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-c.Context.Done():
	}
	return nil
}
