package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/OskariKosonen/hunajapannu/internal/alert"
	"github.com/OskariKosonen/hunajapannu/internal/alert/multi"
	"github.com/OskariKosonen/hunajapannu/internal/alert/natspub"
	"github.com/OskariKosonen/hunajapannu/internal/alert/webhook"
	"github.com/OskariKosonen/hunajapannu/internal/analyze"
	"github.com/OskariKosonen/hunajapannu/internal/api"
	"github.com/OskariKosonen/hunajapannu/internal/blobstore"
	"github.com/OskariKosonen/hunajapannu/internal/config"
	"github.com/OskariKosonen/hunajapannu/internal/geo"
	"github.com/OskariKosonen/hunajapannu/internal/logging"
	"github.com/OskariKosonen/hunajapannu/internal/retrieve"
	"github.com/OskariKosonen/hunajapannu/internal/watch"
	"github.com/OskariKosonen/hunajapannu/pkg/hunajapannu"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	log := slog.Default()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg.Store)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}

	resolver, cleanup, err := newResolver(cfg.Geo)
	if err != nil {
		log.Error("geo resolver initialization failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rules, err := analyze.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Error("rules load failed", "error", err)
		os.Exit(1)
	}

	svc := hunajapannu.New(store,
		hunajapannu.WithGeoResolver(resolver),
		hunajapannu.WithRules(rules),
		hunajapannu.WithRetrieval(cfg.Retrieval),
		hunajapannu.WithScheme(cfg.Store.Prefix, cfg.Store.LiveSegment, cfg.Store.ArchivePattern),
		hunajapannu.WithLogger(log),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	if cfg.Alert.SweepInterval > 0 {
		sink, closeSink, err := newSink(cfg.Alert)
		if err != nil {
			log.Error("alert sink initialization failed", "error", err)
			os.Exit(1)
		}
		defer closeSink()

		retriever := retrieve.New(store, cfg.Retrieval,
			retrieve.WithScheme(retrieve.Scheme{
				Prefix:  cfg.Store.Prefix,
				Live:    cfg.Store.LiveSegment,
				Archive: cfg.Store.ArchivePattern,
			}),
			retrieve.WithLogger(log),
		)
		watcher, err := watch.New(retriever, analyze.New(resolver, rules), sink,
			cfg.Alert.SweepInterval, cfg.Alert.WindowHours, cfg.Alert.MaxFiles, log)
		if err != nil {
			log.Error("watcher initialization failed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("watcher stopped", "error", err)
			}
		}()
		log.Info("finding sweeper running", "interval", cfg.Alert.SweepInterval)
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: api.NewServer(svc, log).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.Listen, "store", cfg.Store.Provider, "version", config.Version)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// newStore picks the blob store implementation from configuration.
func newStore(cfg config.StoreConfig) (blobstore.Store, error) {
	switch {
	case cfg.Provider == "memory":
		return blobstore.NewMemory(), nil
	case cfg.ConnectionString != "":
		return blobstore.NewAzureFromConnectionString(cfg.ConnectionString, cfg.Container)
	default:
		return blobstore.NewAzureFromSASURL(cfg.SASURL)
	}
}

// newResolver opens the MaxMind database when configured, wrapping it in an
// LRU cache. Without a database path, geo enrichment is disabled.
func newResolver(cfg config.GeoConfig) (geo.Resolver, func(), error) {
	if cfg.DatabasePath == "" {
		return geo.None{}, func() {}, nil
	}
	mm, err := geo.OpenMaxMind(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return geo.NewCached(mm, cfg.CacheSize), func() { mm.Close() }, nil
}

// newSink assembles the configured alert sinks behind a single fan-out.
func newSink(cfg config.AlertConfig) (alert.Sink, func(), error) {
	var sinks []alert.Sink
	var closers []func()

	if cfg.WebhookURL != "" {
		wh := webhook.New(cfg.WebhookURL)
		sinks = append(sinks, wh)
	}
	if cfg.NATSURL != "" {
		sink, conn, err := natspub.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, sink)
		closers = append(closers, conn.Close)
	}

	combined := multi.New(sinks...)
	return combined, func() {
		combined.Close()
		for _, c := range closers {
			c()
		}
	}, nil
}
