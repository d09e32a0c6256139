// Package analyze реализует HTTP-обработчик анализа кадра одежды:
// категория из фиксированного списка плюс текстовое описание вещи.
// Операция квотируемая, списывается remainingClothAnalysis.
package analyze

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

// Handler обрабатывает запросы на анализ кадра одежды.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики анализа.
type Service interface {
	AnalyzeClothing(ctx context.Context, uid, imageBase64 string) (*models.AnalyzeResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на анализ кадра одежды.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wardrobe.analyze"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAnalyzeRequest
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

	result, err := h.service.AnalyzeClothing(r.Context(), req.AdaptyUserID, req.ImageBase64)
	if err != nil {
		log.Error("failed to analyze clothing", sl.UID(req.AdaptyUserID), sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("analyzed clothing image", sl.UID(req.AdaptyUserID),
		slog.String("category", result.Category))
	render.JSON(w, r, response.StatusOKWithData(result))
}
