package adapty

import "time"

// Ответ server-side API провайдера на запрос профиля.
// Форма ответа менялась между версиями API, поэтому перевод
// во внутреннюю модель выполняется только в client.go.
type profileResponse struct {
	Data profileData `json:"data"`
}

type profileData struct {
	ProfileID     string             `json:"profile_id"`
	AccessLevels  []accessLevelData  `json:"access_levels"`
	Subscriptions []subscriptionData `json:"subscriptions"`
}

type accessLevelData struct {
	AccessLevelID string     `json:"access_level_id"`
	IsActive      bool       `json:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type subscriptionData struct {
	VendorProductID string     `json:"vendor_product_id"`
	IsActive        *bool      `json:"is_active,omitempty"`
	IsInGracePeriod bool       `json:"is_in_grace_period"`
	IsRefund        bool       `json:"is_refund"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// Ответ провайдера при ошибке.
type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
