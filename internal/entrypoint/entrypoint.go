package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/QuoteSync/quotesync/internal/auth"
	"github.com/QuoteSync/quotesync/internal/config"
	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/docstore"
	http_controllers "github.com/QuoteSync/quotesync/internal/http"
	"github.com/QuoteSync/quotesync/internal/importer"
	"github.com/QuoteSync/quotesync/internal/reconciler"
	"github.com/QuoteSync/quotesync/internal/scheduler"
	"github.com/QuoteSync/quotesync/internal/tagger"
	"github.com/QuoteSync/quotesync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains within the
// configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down, waiting up to %v for in-flight work", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so nothing enqueues
	// against a closing server.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run assembles every component from configuration and serves until
// interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting QuoteSync v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store, err := docstore.NewStore(cfg.Documents.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Probe Ollama once at startup; fall back to the keyword tagger when
	// it is unreachable.
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	quoteTagger := tagger.Select(probeCtx, cfg.Ollama.URL, cfg.Ollama.TagModel)
	probeCancel()

	authService := auth.NewService(db, cfg.Auth.BcryptCost)
	imp := importer.NewImporter(db, reconciler.NewReconciler(db), nil)

	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.CleanupScheduler
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewAutotagQuoteQueue(db, quoteTagger),
			tasks.NewCleanupImportLogsQueue(db),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Retention.CleanupSchedule, cfg.Retention.ImportLogDays)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		DB:              db,
		AuthService:     authService,
		Importer:        imp,
		Store:           store,
		Tagger:          quoteTagger,
		TaskClient:      taskClient,
		Autotag:         taskClient != nil && quoteTagger.Name() == "ollama",
		MaxUploadSizeMB: cfg.Importing.MaxUploadSizeMB,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
