package adapty

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// MockService реализует интерфейс adapty.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) HandleEvent(ctx context.Context, event models.WebhookEvent) {
	m.Called(ctx, event)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	const secret = "webhook_secret"

	tests := []struct {
		name           string
		body           string
		signature      func(body []byte) string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "событие передаётся сервису и подтверждается",
			body: `{"event_type": "subscription_renewed", "profile_id": "user-1"}`,
			signature: func(body []byte) string {
				return sign(secret, body)
			},
			setupMock: func(m *MockService) {
				m.On("HandleEvent", mock.Anything, models.WebhookEvent{
					EventType: "subscription_renewed",
					ProfileID: "user-1",
				}).Return()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "невалидная подпись отклоняется",
			body: `{"event_type": "subscription_renewed", "profile_id": "user-1"}`,
			signature: func(_ []byte) string {
				return "bogus"
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "нечитаемое тело всё равно подтверждается",
			body: `{not json`,
			signature: func(body []byte) string {
				return sign(secret, body)
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, secret)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/adapty", strings.NewReader(tt.body))
			req.Header.Set("X-Api-Signature", tt.signature([]byte(tt.body)))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_NoSecretSkipsSignature(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mockService := new(MockService)
	mockService.On("HandleEvent", mock.Anything, mock.Anything).Return()

	handler := New(logger, mockService, "")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/adapty",
		strings.NewReader(`{"event_type": "subscription_started", "profile_id": "user-2"}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
