// # cmd/profilegen/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"profilegen/internal/cliapp"
	"profilegen/internal/core/app"
	"profilegen/internal/core/config"
	"profilegen/internal/core/ports"
	"profilegen/internal/corpus"
	"profilegen/internal/data/templatecache"
	"profilegen/internal/engine/selector"
	"profilegen/internal/shared/observability"
	"profilegen/internal/shared/util"
	"profilegen/internal/syncer"
	"profilegen/internal/watcher"
)

var (
	configPath = flag.String("config", "./profilegen.toml", "Path to config file")
	syncOnce   = flag.Bool("sync", false, "Run a single sync pass against the corpus and exit")
	daemon     = flag.Bool("daemon", false, "Run periodic sync and watch the inbox for symbol drops")
	symbols    = flag.String("symbols", "", "Path to a compiled symbol table (JSON) to generate a profile from")
	mibName    = flag.String("mib", "", "MIB name override (default: derived from the symbols file name)")
	outPath    = flag.String("out", "", "Write the generated profile to this path instead of stdout")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("profilegen v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./profilegen.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					slog.Warn("tracer shutdown failed", "error", err)
				}
			}()
		}
	}

	store, err := templatecache.Open(cfg.Cache.Path, cfg.Cache.BusyTimeout)
	if err != nil {
		slog.Error("failed to open template cache", "path", cfg.Cache.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	cache := templatecache.NewAdapter(store)

	strategy := buildStrategy(ctx, cfg)

	a, err := app.New(cfg, cache, strategy)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	a.Store = store

	source := corpus.NewClient(corpus.Config{
		Repo:         cfg.Corpus.Repo,
		Branch:       cfg.Corpus.Branch,
		Token:        os.Getenv(cfg.Corpus.TokenEnv),
		ListTimeout:  cfg.Corpus.ListTimeout,
		FetchTimeout: cfg.Corpus.FetchTimeout,
		Limiter:      util.NewLimiter(cfg.Corpus.RateLimit, cfg.Corpus.RateBurst),
	})
	worker := syncer.NewWorker(source, cache, cfg.Corpus.PathPrefix, cfg.Corpus.PathSuffix, cfg.Sync.Quota)

	switch {
	case *syncOnce:
		report, err := worker.Run(ctx)
		if err != nil {
			slog.Error("sync failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("synced %d templates (%d failed, %d remaining, complete=%v)\n",
			report.Synced, report.Failed, report.Remaining, report.Complete)

	case *symbols != "":
		result, err := a.ProfileService().GenerateProfile(ctx, ports.GenerateRequest{
			SymbolsPath: *symbols,
			MIBName:     *mibName,
			OutputPath:  *outPath,
		})
		if err != nil {
			slog.Error("profile generation failed", "symbols", *symbols, "error", err)
			os.Exit(1)
		}
		if result.WrittenPath == "" {
			os.Stdout.Write(result.Document)
		} else {
			slog.Info("profile written",
				"mib", result.MIBName,
				"reference", result.ReferencePath,
				"path", result.WrittenPath)
		}

	case *daemon:
		if err := runDaemon(ctx, cfg, a, worker); err != nil {
			slog.Error("daemon failed", "error", err)
			os.Exit(1)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func buildStrategy(ctx context.Context, cfg *config.Config) ports.SelectionStrategy {
	tokenMatch := selector.NewTokenMatch(cfg.Selector.FallbackPath, cfg.Selector.ExtraStopwords...)

	if !cfg.Selector.Assisted.Enabled {
		return tokenMatch
	}
	apiKey := os.Getenv(cfg.Selector.Assisted.APIKeyEnv)
	assisted, err := selector.NewAssisted(ctx, apiKey, cfg.Selector.Assisted.Model, tokenMatch)
	if err != nil {
		slog.Warn("assisted selection unavailable, using token match", "error", err)
		return tokenMatch
	}
	return assisted
}

// runDaemon runs the periodic sync loop, the inbox watcher, and the
// observability endpoints until the context is cancelled.
func runDaemon(ctx context.Context, cfg *config.Config, a *app.App, worker *syncer.Worker) error {
	if cfg.Observability.Enabled {
		server := cliapp.NewObservabilityServer(fmt.Sprintf(":%d", cfg.Observability.Port), app.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Stop(stopCtx)
		}()
	}

	svc := a.ProfileService()
	w, err := watcher.New(cfg.Inbox.Dir, cfg.Inbox.Pattern, cfg.Inbox.Debounce, func(paths []string) {
		for _, path := range paths {
			outName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_profile.yaml"
			result, err := svc.GenerateProfile(ctx, ports.GenerateRequest{
				SymbolsPath: path,
				OutputPath:  filepath.Join(cfg.Inbox.OutputDir, outName),
			})
			if err != nil {
				slog.Error("inbox profile generation failed", "symbols", path, "error", err)
				continue
			}
			slog.Info("inbox profile generated",
				"mib", result.MIBName,
				"reference", result.ReferencePath,
				"path", result.WrittenPath)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	runner := syncer.NewRunner(worker, cfg.Sync.Interval)
	runner.Start(ctx)

	return nil
}
