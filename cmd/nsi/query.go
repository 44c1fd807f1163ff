package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/nsi/internal/index"
	"github.com/standardbeagle/nsi/internal/query"
	"github.com/standardbeagle/nsi/internal/suggest"
)

// outWriter opens --out, or stdout when unset.
func outWriter(c *cli.Context) (io.Writer, func() error, error) {
	out := c.String("out")
	if out == "" {
		return c.App.Writer, func() error { return nil }, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func indexFlag() cli.Flag {
	return &cli.StringFlag{Name: "index", Usage: "Index file to load (defaults to the global index)"}
}

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Write the textual sorted form of an index",
		Flags: []cli.Flag{
			indexFlag(),
			&cli.StringFlag{Name: "out", Usage: "Output file (defaults to stdout)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			path := c.String("index")
			if path == "" {
				path = cfg.Paths.GlobalIndexPath
			}
			s, err := index.ReadFile(path)
			if err != nil {
				return err
			}
			w, closeOut, err := outWriter(c)
			if err != nil {
				return err
			}
			if err := index.WriteText(w, s); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
}

func booleanCmd() *cli.Command {
	return &cli.Command{
		Name:  "boolean",
		Usage: "Evaluate a boolean query file against an index",
		Flags: []cli.Flag{
			indexFlag(),
			&cli.StringFlag{Name: "queries", Usage: "Query file, one \"<id> <query>\" per line", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Result file (defaults to stdout)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			path := c.String("index")
			if path == "" {
				path = cfg.Paths.GlobalIndexPath
			}
			s, err := index.ReadFile(path)
			if err != nil {
				return err
			}
			engine := query.NewEngine(s, analyzer)
			w, closeOut, err := outWriter(c)
			if err != nil {
				return err
			}
			if err := query.RunBooleanFile(engine, c.String("queries"), w); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
}

func rankedCmd() *cli.Command {
	return &cli.Command{
		Name:  "ranked",
		Usage: "Score a ranked query file against an index with TF-IDF",
		Flags: []cli.Flag{
			indexFlag(),
			&cli.StringFlag{Name: "queries", Usage: "Query file, one \"<id> <query>\" per line", Required: true},
			&cli.StringFlag{Name: "out", Usage: "Result file (defaults to stdout)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			analyzer, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			path := c.String("index")
			if path == "" {
				path = cfg.Paths.GlobalIndexPath
			}
			s, err := index.ReadFile(path)
			if err != nil {
				return err
			}
			ranker := query.NewRanker(s, analyzer, cfg.Query.MaxRankedResults)
			w, closeOut, err := outWriter(c)
			if err != nil {
				return err
			}
			if err := query.RunRankedFile(ranker, c.String("queries"), w); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
}

func suggestCmd() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest in-vocabulary replacements for a query term",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			indexFlag(),
			&cli.IntFlag{Name: "max", Usage: "Maximum suggestions", Value: 5},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("usage: nsi suggest <term>")
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			path := c.String("index")
			if path == "" {
				path = cfg.Paths.GlobalIndexPath
			}
			s, err := index.ReadFile(path)
			if err != nil {
				return err
			}
			suggestions := suggest.New(s).Suggest(c.Args().First(), c.Int("max"))
			if len(suggestions) == 0 {
				fmt.Fprintln(c.App.Writer, "no suggestions")
				return nil
			}
			for _, term := range suggestions {
				fmt.Fprintln(c.App.Writer, term)
			}
			return nil
		},
	}
}
