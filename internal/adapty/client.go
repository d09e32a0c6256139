// Package adapty реализует узкий адаптер к server-side API провайдера
// подписок. Единственная операция — получение профиля по adapty profile id;
// ответ API переводится во внутреннюю модель ровно в одном месте.
package adapty

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/wardrobe-ai/internal/apperr"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Client — HTTP-клиент server-side API Adapty.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера подписок.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchProfile запрашивает профиль подписок пользователя.
// Отсутствие профиля возвращается как apperr.KindNotFound, все прочие
// сбои транспорта или авторизации — как обычная ошибка.
func (c *Client) FetchProfile(ctx context.Context, profileID string) (*models.SubscriptionProfile, error) {
	const op = "adapty.FetchProfile"

	url := c.apiURL + "/api/v2/server-side-api/profile/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("adapty-profile-id", profileID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.New(apperr.KindNotFound, "adapty profile not found")
	case resp.StatusCode == http.StatusBadRequest:
		// Провайдер отвечает 400 с кодом profile_does_not_exist,
		// если идентификатор ему неизвестен.
		var errResp errorResponse
		if err = json.NewDecoder(resp.Body).Decode(&errResp); err == nil &&
			errResp.ErrorCode == "profile_does_not_exist" {
			return nil, apperr.New(apperr.KindNotFound, "adapty profile not found")
		}
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var profileResp profileResponse
	if err = json.NewDecoder(resp.Body).Decode(&profileResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toProfile(profileID, profileResp.Data), nil
}

// toProfile переводит форму ответа API во внутреннюю модель.
func toProfile(profileID string, data profileData) *models.SubscriptionProfile {
	profile := &models.SubscriptionProfile{
		ProfileID: profileID,
	}
	if data.ProfileID != "" {
		profile.ProfileID = data.ProfileID
	}
	for _, al := range data.AccessLevels {
		profile.AccessLevels = append(profile.AccessLevels, models.AccessLevel{
			ID:        al.AccessLevelID,
			IsActive:  al.IsActive,
			ExpiresAt: al.ExpiresAt,
		})
	}
	for _, sub := range data.Subscriptions {
		profile.Subscriptions = append(profile.Subscriptions, models.Subscription{
			VendorProductID: sub.VendorProductID,
			IsActive:        sub.IsActive,
			IsInGracePeriod: sub.IsInGracePeriod,
			IsRefund:        sub.IsRefund,
			ExpiresAt:       sub.ExpiresAt,
		})
	}
	return profile
}
