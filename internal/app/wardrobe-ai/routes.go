// Package wardrobeai собирает HTTP-приложение учёта квот и генерации.
package wardrobeai

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/tier/get"
	"github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/tier/sync"
	adaptywebhook "github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/webhook/adapty"
	"github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/wardrobe/analyze"
	"github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/wardrobe/suggest"
	"github.com/magabrotheeeer/wardrobe-ai/internal/http/handlers/wardrobe/tryon"
	"github.com/magabrotheeeer/wardrobe-ai/internal/http/middlewarectx"
	quotaservice "github.com/magabrotheeeer/wardrobe-ai/internal/services/quota"
	wardrobeservice "github.com/magabrotheeeer/wardrobe-ai/internal/services/wardrobe"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, quotaService *quotaservice.Service,
	wardrobeService *wardrobeservice.Service, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Группа квотируемых операций с ограничением частоты
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/users/{id}/tier", get.New(logger, quotaService).ServeHTTP)
			r.Post("/users/{id}/sync", sync.New(logger, quotaService).ServeHTTP)
			r.Post("/analyze-clothing", analyze.New(logger, wardrobeService).ServeHTTP)
			r.Post("/virtual-tryon", tryon.New(logger, wardrobeService).ServeHTTP)
			r.Post("/outfit-suggestion", suggest.New(logger, wardrobeService).ServeHTTP)
		})

		// Webhook endpoint (без ограничения частоты, подпись вместо аутентификации)
		r.Post("/webhooks/adapty", adaptywebhook.New(logger, quotaService, webhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
