// Package suggest реализует HTTP-обработчик подбора комбинации из
// гардероба пользователя под текстовый запрос. Операция квотируемая,
// списывается remainingSuggestions.
package suggest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wardrobe-ai/internal/http/response"
	"github.com/magabrotheeeer/wardrobe-ai/internal/lib/sl"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Handler обрабатывает запросы на подбор комбинации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подбора.
type Service interface {
	SuggestOutfit(ctx context.Context, uid, userPrompt string, items []models.WardrobeItem) (*models.SuggestResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на подбор комбинации.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wardrobe.suggest"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.SuggestOutfit(r.Context(), req.AdaptyUserID, req.UserPrompt, req.ClothingItems)
	if err != nil {
		log.Error("failed to suggest outfit", sl.UID(req.AdaptyUserID), sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("outfit suggested", sl.UID(req.AdaptyUserID),
		slog.Int("items", len(result.SuggestedClothingIDs)))
	render.JSON(w, r, response.StatusOKWithData(result))
}
