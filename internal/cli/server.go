package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vocab-drill-service/internal/app"
	"vocab-drill-service/internal/config"
	"vocab-drill-service/internal/infra/memory"
	redisinfra "vocab-drill-service/internal/infra/redis"
	"vocab-drill-service/internal/quiz"
	transport "vocab-drill-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the vocabulary drill server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	service := buildService(cfg, b, logger)
	wsHandler := transport.NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting vocab drill service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	// Hijacked websocket connections are not tracked by the server.
	if wsErr := wsHandler.Shutdown(shutdownCtx); wsErr != nil {
		logger.Warn("websocket connections still open", zap.Error(wsErr))
	}
	service.Flush()
	return err
}

func buildService(cfg config.Config, b *backend, logger *zap.Logger) *app.VocabService {
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 2*time.Hour)

	var records app.RecordRepository
	var sessions app.SessionRepository
	if b.redis != nil {
		records = redisinfra.NewRecordRepository(b.redis, b.gateway, config.TTLDuration(cfg.Redis.TTL, cacheTTL), logger)
		sessions = redisinfra.NewSessionStore(b.redis, sessionTTL)
	} else {
		records = memory.NewRecordRepository(b.gateway, cacheTTL)
		sessions = memory.NewSessionStore()
	}

	defaults := quiz.DefaultPolicy()
	engine := quiz.NewEngine(quiz.Policy{
		MemoryDistractors: config.IntOr(cfg.Quiz.MemoryDistractors, defaults.MemoryDistractors),
		HardDistractors:   config.IntOr(cfg.Quiz.HardDistractors, defaults.HardDistractors),
		ReviewAutoRemove:  cfg.Quiz.ReviewAutoRemove,
	})

	return app.NewVocabService(records, sessions, engine, logger, app.Options{
		WriteTimeout:     config.TTLDuration(cfg.Writeback.Timeout, 10*time.Second),
		WriteConcurrency: config.IntOr(cfg.Writeback.Concurrency, 4),
	})
}
