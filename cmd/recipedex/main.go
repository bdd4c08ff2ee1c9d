package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/config"
	"github.com/kailas-cloud/recipedex/internal/corpus"
	dbRedis "github.com/kailas-cloud/recipedex/internal/db/redis"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/index"
	logpkg "github.com/kailas-cloud/recipedex/internal/logger"
	"github.com/kailas-cloud/recipedex/internal/metrics"
	"github.com/kailas-cloud/recipedex/internal/ranking"
	"github.com/kailas-cloud/recipedex/internal/repository/querycache"
	chiTransport "github.com/kailas-cloud/recipedex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/recipedex/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/recipedex/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/recipedex/internal/usecase/search"
	"github.com/kailas-cloud/recipedex/internal/version"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recipedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus", cfg.Corpus.Path),
		zap.String("analyzer", cfg.Analysis.Mode),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterSearchMetrics()

	normalizer, err := analysis.New(analysis.Mode(cfg.Analysis.Mode))
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	started := time.Now()
	c, err := corpus.LoadFile(cfg.Corpus.Path, normalizer, corpus.Options{
		Params:              index.Params{K1: cfg.Index.K1, B: cfg.Index.B},
		IncludeInstructions: cfg.Corpus.IncludeInstructions,
	}, logger)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	stats := c.Stats()
	metrics.CorpusRecipes.Set(float64(stats.Recipes))
	logger.Info("Corpus ready",
		zap.Int("recipes", stats.Recipes),
		zap.Int("vocabulary", stats.Vocabulary),
		zap.Float64("avg_doc_length", stats.AvgDocLength),
		zap.Int("empty_documents", stats.EmptyDocuments),
		zap.Int("renamed_ids", stats.RenamedIDs),
		zap.String("fingerprint", stats.Fingerprint),
		zap.Duration("took", time.Since(started)),
	)

	engine, err := ranking.New(c, normalizer, ranking.Options{
		MaxTopK:  cfg.Ranking.MaxTopK,
		MinScore: *cfg.Ranking.MinScore,
		Aliases:  cfg.Ingredients.AliasesEnabled(),
	}, logger)
	if err != nil {
		return fmt.Errorf("create ranking engine: %w", err)
	}

	// Pass nil interfaces (not typed nil pointers) when the cache is off.
	var (
		cache  searchuc.Cache
		pinger healthuc.CachePinger
	)
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to query cache", zap.Strings("addrs", cfg.Cache.Addrs))

		cache = querycache.New(store, engine.Fingerprint(),
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.QueryCacheTotal, logger)
		pinger = store
	}

	searchSvc := searchuc.New(engine, cache, request.Defaults{
		TopK:  cfg.Ranking.DefaultTopK,
		Alpha: cfg.Ranking.DefaultAlpha,
		Beta:  cfg.Ranking.DefaultBeta,
	})
	recipeSvc := recipeuc.New(c)
	healthSvc := healthuc.New(c, pinger)

	server := chiTransport.NewServer(searchSvc, recipeSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
