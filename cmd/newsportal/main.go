package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsportal/pkg/aggregator"
	"github.com/umputun/newsportal/pkg/cache"
	"github.com/umputun/newsportal/pkg/config"
	"github.com/umputun/newsportal/pkg/feed"
	"github.com/umputun/newsportal/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, bundled sources if empty"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Once   bool   `long:"once" description:"build the document once, print it as JSON and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

// stdout is where the one-shot document goes
var stdout io.Writer = os.Stdout

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	SetupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	if !opts.Once {
		log.Printf("[INFO] starting newsportal version %s, %d sections", revision, len(cfg.Sections))
	}

	fetcher := feed.NewHTTPFetcher(feed.FetcherConfig{
		Timeout:     cfg.Fetch.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
		Revalidate:  cfg.Cache.Revalidate,
		MaxBodySize: cfg.Fetch.MaxBodySize,
	})
	agg := aggregator.New(fetcher, aggregator.Config{
		Sections: cfg.Sections,
		General:  cfg.Document.General,
		MaxItems: cfg.Fetch.MaxItems,
		Meta:     cfg.Document.Meta,
	})

	if opts.Once {
		return printDocument(ctx, agg)
	}

	var store cache.Store
	if cfg.Cache.DSN != "" {
		sqliteStore, err := cache.NewSQLiteStore(ctx, cfg.Cache.DSN)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	cacheCfg := cache.Config{TTL: cfg.Cache.Revalidate, Stale: cfg.Cache.Stale}
	if cfg.Cache.Disabled {
		cacheCfg = cache.Config{}
	}
	docs := cache.New(agg, store, cacheCfg)
	defer docs.Wait()

	if cfg.Cache.Warm && !cfg.Cache.Disabled {
		warmer := cache.NewWarmer(docs, cfg.Cache.Revalidate)
		warmer.Start(ctx)
		defer warmer.Stop()
	}

	srv := server.New(cfg, docs, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// printDocument builds one document and writes it to stdout as indented JSON
func printDocument(ctx context.Context, agg *aggregator.Aggregator) error {
	doc, err := agg.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build feed: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// SetupLog configures lgr and the standard logger, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
