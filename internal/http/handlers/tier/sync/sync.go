// Package sync реализует HTTP-обработчик принудительной пересинхронизации
// квот пользователя с провайдером подписок. В отличие от вебхука этот
// путь пользовательский: ошибки отдаются наружу.
package sync

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wardrobe-ai/internal/http/response"
	"github.com/magabrotheeeer/wardrobe-ai/internal/lib/sl"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Handler обрабатывает запросы на пересинхронизацию квот.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики пересинхронизации.
type Service interface {
	Sync(ctx context.Context, uid string) (*models.QuotaRecord, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на пересинхронизацию квот пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tier.sync"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "id")
	if uid == "" {
		log.Error("missing user id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user id in url"))
		return
	}

	rec, err := h.service.Sync(r.Context(), uid)
	if err != nil {
		log.Error("failed to sync user quotas", sl.UID(uid), sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("synced user quotas", sl.UID(uid), slog.String("tier", string(rec.Tier)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tier":                   rec.Tier,
		"remainingTryOns":        rec.Counters.TryOns,
		"remainingSuggestions":   rec.Counters.Suggestions,
		"remainingClothAnalysis": rec.Counters.ClothAnalysis,
		"createdAt":              rec.CreatedAt,
		"lastSyncedWithAdapty":   rec.LastSyncedWithAdapty,
	}))
}
