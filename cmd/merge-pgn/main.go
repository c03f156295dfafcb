// Command merge-pgn merges PGN games into a single game whose variations
// cover every input line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/olleeriksson/merge-pgn/internal/annotation"
	"github.com/olleeriksson/merge-pgn/internal/config"
	"github.com/olleeriksson/merge-pgn/internal/logx"
	"github.com/olleeriksson/merge-pgn/internal/merge"
	"github.com/olleeriksson/merge-pgn/internal/notation"
	"github.com/olleeriksson/merge-pgn/internal/pgnio"
	"github.com/olleeriksson/merge-pgn/internal/postproc"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[0], os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	if errors.Is(err, errUsage) {
		stop()
		os.Exit(2)
	}
	logger := logx.NewLogger(os.Stderr, zerolog.WarnLevel)
	logger.Error().Err(err).Msg("merge failed")
	stop()
	os.Exit(1)
}

func run(ctx context.Context, prog string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		output     = fs.String("o", "", "Write the merged game to this file instead of stdout")
		dedupe     = fs.Bool("dedupe-comments", false, "Drop a comment text already contained in the other")
		noSplit    = fs.Bool("no-split", false, "Keep annotations in the same comment as the text")
		logLevel   = fs.String("log-level", "", "Log level (debug, info, warn, error)")
		configPath = fs.String("config", "", "Config file (default merge-pgn.yml in the working directory)")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] file...\n", prog)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	cfg, err := config.Load(wd, *configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *output
		case "dedupe-comments":
			cfg.DedupeComments = *dedupe
		case "no-split":
			cfg.NoSplit = *noSplit
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	level, err := logx.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logx.NewLogger(stderr, level)

	paths, err := pgnio.ExpandPaths(fs.Args())
	if err != nil {
		return err
	}
	loader := pgnio.NewLoader(pgnio.Config{
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
	games, err := loader.Load(ctx, paths)
	if err != nil {
		return err
	}

	merger := merge.New(merge.Config{
		Codec:  annotation.Codec{DedupeFreeText: cfg.DedupeComments},
		Logger: logger,
	})
	merged, stats, err := merger.Merge(games)
	if err != nil {
		return err
	}
	logger.Info().
		Int("games", stats.Games).
		Int("input_nodes", stats.Input).
		Int("merged_nodes", stats.Nodes).
		Msg("games merged")

	text := notation.PGN{}.Render(merged)
	if !cfg.NoSplit {
		text = postproc.SplitAnnotations(text)
	}
	text += "\n"

	if cfg.Output == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(cfg.Output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info().Str("file", cfg.Output).Msg("output written")
	return nil
}
