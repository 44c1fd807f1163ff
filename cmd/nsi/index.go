package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/nsi/internal/index"
	"github.com/standardbeagle/nsi/internal/store"
)

func indexCmd() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Build child indexes for a source and date, resuming after existing files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "News source name", Required: true},
			&cli.StringFlag{Name: "date", Usage: "Crawl date (YYYY-MM-DD)", Required: true},
			&cli.IntFlag{Name: "interval", Usage: "Fragments per child index (overrides config)"},
		},
		Action: indexCommand,
	}
}

func indexCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	interval := cfg.Index.Interval
	if c.IsSet("interval") {
		interval = c.Int("interval")
	}

	fragments := store.NewDirStore(cfg.Paths.FragmentsDir)
	builder := index.NewBuilder(analyzer, cfg.EffectiveParallelism())
	manager := index.NewManager(fragments, builder, cfg.Paths.ChildIndexDir)

	written, err := manager.BuildChildren(c.Context, c.String("source"), c.String("date"), interval)
	for _, path := range written {
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	}
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Fprintln(c.App.Writer, "nothing to do: no new fragments")
	}
	return nil
}

func mergeCmd() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "Merge all child indexes into the global index file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Global index path (overrides config)"},
		},
		Action: mergeCommand,
	}
}

func mergeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	manager := index.NewManager(nil, nil, cfg.Paths.ChildIndexDir)
	children, err := manager.ListChildren()
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return errors.New("no child index files found")
	}

	global, err := manager.MergeGlobal(children...)
	if err != nil {
		return err
	}

	out := cfg.Paths.GlobalIndexPath
	if c.IsSet("out") {
		out = c.String("out")
	}
	if err := index.WriteFile(out, global); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "merged %d child indexes into %s (%d terms, %d documents)\n",
		len(children), out, global.TermCount(), global.Meta.DocumentSize)
	return nil
}
