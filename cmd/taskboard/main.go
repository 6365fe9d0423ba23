package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/tasks"
	"taskboard/internal/ui"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskboard",
		Usage: "Manage personal to-do items in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ResolveConfigPath(),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file (overrides log_file)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runBoard,
	}
}

func runBoard(_ context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := logging.DefaultOptions()
	opts.Level = cfg.LogLevel
	opts.Path = cfg.LogFile
	if p := cmd.String("log-file"); p != "" {
		opts.Path = p
	}
	if cmd.Bool("debug") {
		opts.Level = "debug"
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	logger.Info("starting", "config", configPath, "filter", store.Filter(), "sort_by", store.SortBy(), "tz", store.Location())

	if err := ui.Run(store, cfg, logger); err != nil {
		logger.Error("program exited", "err", err)
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newStore(cfg config.Config) (*tasks.Store, error) {
	filter, err := tasks.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		return nil, fmt.Errorf("default_filter: %w", err)
	}
	sortBy, err := tasks.ParseSortKey(cfg.DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("default_sort: %w", err)
	}
	lang, err := cfg.Language()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return tasks.NewStore(
		tasks.WithViewControls(filter, sortBy),
		tasks.WithLocale(lang),
		tasks.WithLocation(loc),
	), nil
}
