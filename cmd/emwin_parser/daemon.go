package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"emwin_parser/internal/api"
	"emwin_parser/internal/config"
	"emwin_parser/internal/ledger"
	"emwin_parser/internal/observability"
	"emwin_parser/internal/publish"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/storage"
	"emwin_parser/internal/watch"
)

func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, *slog.Logger, error) {
	path := fs.String("config", config.DefaultPath(), "Configuration file (created with defaults when missing)")
	_ = fs.Parse(args)

	cfg, err := config.Load(*path)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openSinks opens the configured stores and publishers.
func openSinks(ctx context.Context, cfg *config.Config) (storage.Fanout, error) {
	sinks, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if cfg.NATS.URL != "" {
		n, err := publish.NewNATS(cfg.NATS)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, n)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sinks = append(sinks, publish.NewKafka(cfg.Kafka))
	}
	return sinks, nil
}

// archiveOf returns the SQLite store among sinks, if one is configured.
func archiveOf(sinks storage.Fanout) *storage.SQLiteDB {
	for _, s := range sinks {
		if db, ok := s.(*storage.SQLiteDB); ok {
			return db
		}
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	settle := fs.Duration("settle", time.Second, "How long a file must be quiet before it is read")
	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Error("close sinks", "error", err)
		}
	}()

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer func() { _ = led.Close() }()

	ingester := watch.NewIngester(watch.IngesterOptions{
		Registry: registry.Default(),
		Sink:     sinks,
		Ledger:   led,
		Actions: watch.Actions{
			Unrecognized: cfg.Unrecognized,
			Failure:      cfg.Failure,
			Done:         cfg.Done,
		},
		Metrics: metrics,
		Logger:  logger,
	})
	watcher := watch.NewWatcher(ingester, watch.WatcherOptions{
		Dirs:    []string{cfg.EmwinDir, cfg.GoesDir},
		Workers: cfg.Workers,
		Settle:  *settle,
		Metrics: metrics,
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	if cfg.HTTPAddr != "" {
		srv := api.NewServer(api.Options{
			Registry: registry.Default(),
			Archive:  archiveOf(sinks),
			Logger:   logger,
		})
		g.Go(func() error { return srv.Run(gctx, cfg.HTTPAddr) })
	}

	logger.Info("emwin_parser started", "emwin_dir", cfg.EmwinDir, "goes_dir", cfg.GoesDir, "sinks", len(sinks))
	err = g.Wait()
	logger.Info("emwin_parser stopped")
	return err
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default: http-addr from the configuration)")
	cfg, logger, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.HTTPAddr
	}
	if *addr == "" {
		return fmt.Errorf("no listen address: set -addr or http-addr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archive *storage.SQLiteDB
	if cfg.Storage.SQLite.Path != "" {
		archive, err = storage.OpenSQLite(cfg.Storage.SQLite.Path)
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()
	}

	srv := api.NewServer(api.Options{
		Registry: registry.Default(),
		Archive:  archive,
		Logger:   logger,
	})
	return srv.Run(ctx, *addr)
}

func runLedger(args []string) error {
	fs := flag.NewFlagSet("ledger", flag.ExitOnError)
	prune := fs.Duration("prune", 0, "Forget entries older than this, so their files are processed again if they reappear")
	cfg, _, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer func() { _ = led.Close() }()

	if *prune > 0 {
		n, err := led.Prune(time.Now().Add(-*prune))
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d entries\n", n)
	}

	counts, err := led.Counts()
	if err != nil {
		return err
	}
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)

	printSimpleTable(os.Stdout, []string{"Outcome", "Files"}, func(add func(...string)) {
		for _, o := range outcomes {
			add(o, strconv.Itoa(counts[ledger.Outcome(o)]))
		}
	})
	return nil
}
