package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eTutor-plus-plus/taskdispatch/internal/config"
	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/eventbus"
	taskrepo "github.com/eTutor-plus-plus/taskdispatch/internal/task/repositoryimpl"
	taskgrouprepo "github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup/repositoryimpl"
	"github.com/eTutor-plus-plus/taskdispatch/internal/tasktype"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/clog"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/storage"

	server "github.com/eTutor-plus-plus/taskdispatch/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	groupRepo := taskgrouprepo.NewYAMLRepository(store)

	// Setup task-type services
	dispatcherEnv := config.DispatcherEnvFromEnv(env)
	registry, err := tasktype.NewDefaultRegistry(dispatcherEnv, groupRepo)
	if err != nil {
		slog.Error("failed to build task-type registry", "error", err)
		os.Exit(1)
	}
	submissions := dispatcher.NewSubmissionProxy(dispatcher.NewClient(dispatcher.Config{
		BaseURL:     dispatcherEnv.SubmissionURL,
		MaxInFlight: dispatcherEnv.MaxInFlight,
		Timeout:     dispatcherEnv.ClientTimeout,
	}))

	srv := server.NewServer(env, taskRepo, groupRepo, registry, submissions, bus)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after event streams are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
