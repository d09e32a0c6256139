package wardrobeai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/wardrobe-ai/internal/adapty"
	"github.com/magabrotheeeer/wardrobe-ai/internal/cache"
	"github.com/magabrotheeeer/wardrobe-ai/internal/config"
	"github.com/magabrotheeeer/wardrobe-ai/internal/falai"
	"github.com/magabrotheeeer/wardrobe-ai/internal/migrations"
	quotaservice "github.com/magabrotheeeer/wardrobe-ai/internal/services/quota"
	wardrobeservice "github.com/magabrotheeeer/wardrobe-ai/internal/services/wardrobe"
	"github.com/magabrotheeeer/wardrobe-ai/internal/storage/repository"
)

// App объединяет HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New собирает приложение: хранилище с миграциями, кэш, клиенты внешних
// провайдеров, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	adaptyClient := adapty.NewClient(cfg.AdaptyAPIURL, cfg.AdaptyAPIKey, cfg.AdaptyTimeout)
	falClient := falai.NewClient(cfg.FalAPIURL, cfg.FalAPIKey, cfg.GenerationTimeout)

	quotaService := quotaservice.NewService(db, adaptyClient, cacheRedis, logger, cfg.AllowedEvents)
	wardrobeService := wardrobeservice.NewService(quotaService, falClient, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, quotaService, wardrobeService, cfg.WebhookSecret)

	// WriteTimeout должен покрывать самый долгий запрос — генерацию изображения.
	writeTimeout := cfg.TimeoutHTTP
	if cfg.GenerationTimeout > writeTimeout {
		writeTimeout = cfg.GenerationTimeout + cfg.TimeoutHTTP
	}

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: writeTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
