// Package tryon реализует HTTP-обработчик виртуальной примерки:
// вещь примеряется на кадр с позой пользователя. Операция квотируемая,
// списывается remainingTryOns.
package tryon

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

// Handler обрабатывает запросы на виртуальную примерку.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики примерки.
type Service interface {
	TryOn(ctx context.Context, uid, poseImageBase64, clothImageBase64 string) (*models.TryOnResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на виртуальную примерку.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wardrobe.tryon"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTryOnRequest
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

	result, err := h.service.TryOn(r.Context(), req.AdaptyUserID, req.PoseImageBase64, req.ClothImageBase64)
	if err != nil {
		log.Error("failed to run virtual try-on", sl.UID(req.AdaptyUserID), sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("virtual try-on completed", sl.UID(req.AdaptyUserID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
