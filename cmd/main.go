package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/internal/cache"
	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/countries"
	"task-tracker/internal/database"
	"task-tracker/internal/envfile"
	"task-tracker/internal/queue"
	"task-tracker/internal/repository"
	"task-tracker/internal/routes"
	"task-tracker/internal/storage"
	"task-tracker/internal/tasks"
	"task-tracker/internal/worker"
	"task-tracker/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	_ = envfile.Load(".env")

	cfg := config.Get()
	logger.Setup(cfg.LogLevel)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	slot, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Task storage not available; exiting", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	// Activity log needs Postgres; without it the worker only logs events.
	var (
		activity controller.ActivityLog
		recorder worker.Recorder
	)
	if db := database.DB(ctx); db != nil {
		if err := database.MigrateOrCreateSchema(ctx); err != nil {
			os.Exit(1)
		}
		repo := repository.NewActivity(db)
		activity, recorder = repo, repo
	}

	// Kafka is optional: without brokers events are dropped and no worker runs.
	queue.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaPartitions)
	publisher := queue.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	opts := []tasks.Option{tasks.WithTimestampLayout(cfg.TimestampLayout)}
	if publisher != nil {
		opts = append(opts, tasks.WithEventSink(publisher))
	}
	store := tasks.NewStore(slot, opts...)

	dirOpts := []countries.DirectoryOption{}
	if rdb := cache.Client(ctx); rdb != nil {
		dirOpts = append(dirOpts, countries.WithCache(cache.NewCountries(rdb, cfg.CacheTTLDuration())))
	}
	directory := countries.NewDirectory(cfg.CountriesBaseURL, cfg.CountryLookupTimeout(), dirOpts...)

	// Load tasks and warm the country catalogue in parallel. Only the task
	// load is fatal; the catalogue degrades to empty.
	var g errgroup.Group
	g.Go(func() error { return store.Load(ctx) })
	g.Go(func() error {
		names, err := directory.All(ctx)
		if err != nil {
			logger.Warn(ctx, "Fetching countries failed", "error", err)
			return nil
		}
		logger.Info(ctx, "Country catalogue ready", "count", len(names))
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Startup failed", "error", err)
		os.Exit(1)
	}

	go worker.Run(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, recorder)

	sessions := countries.NewSessions(cfg.SuggestSessionsMax, func() *countries.Suggester {
		return countries.NewSuggester(directory, cfg.CountryLookupTimeout())
	})
	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: routes.Router(routes.Deps{
			Tasks:     controller.NewTasks(store),
			Countries: controller.NewCountries(directory, sessions),
			Activity:  activity,
			Slot:      slot,
			JWTSecret: cfg.JWTSecret,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort, "storage", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	stop()
	logger.Info(ctx, "Server stopped")
}
