// Package adapty реализует приём вебхуков провайдера подписок.
// Доставка fire-and-forget: для аутентичного вызова endpoint всегда
// отвечает 200, иначе провайдер начинает ретраить доставку. Подпись
// в X-Api-Signature отсекает посторонних отправителей.
package adapty

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/wardrobe-ai/internal/lib/sl"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Service описывает обработку события подписки. Любые внутренние сбои
// сервис поглощает сам.
type Service interface {
	HandleEvent(ctx context.Context, event models.WebhookEvent)
}

// Handler обрабатывает вебхуки провайдера подписок.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New создает новый Handler. Пустой secret отключает проверку подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Проверка подписи webhook (X-Api-Signature).
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP принимает событие провайдера. Отклоняются только вызовы
// с невалидной подписью или нечитаемым телом; всё остальное — 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.adapty"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	if h.webhookSecret != "" {
		signature := r.Header.Get("X-Api-Signature")
		if signature == "" || !h.verifySignature(body, signature) {
			log.Error("invalid or missing webhook signature")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Нечитаемое событие подтверждаем, чтобы провайдер не ретраил.
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	h.service.HandleEvent(r.Context(), event)

	log.Info("webhook acknowledged",
		slog.String("event_type", event.EventType), sl.UID(event.ProfileID))
	w.WriteHeader(http.StatusOK)
}
