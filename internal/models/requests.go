package models

// DummyAnalyzeRequest используется для приёма JSON-запроса на анализ кадра одежды.
type DummyAnalyzeRequest struct {
	AdaptyUserID string `json:"adapty_user_id" validate:"required"`
	ImageBase64  string `json:"image_base_64" validate:"required"`
}

// DummyTryOnRequest используется для приёма JSON-запроса на виртуальную примерку.
type DummyTryOnRequest struct {
	AdaptyUserID       string `json:"adapty_user_id" validate:"required"`
	PoseImageBase64    string `json:"pose_image_base_64" validate:"required"`
	ClothImageBase64   string `json:"clothing_image_base_64" validate:"required"`
}

// WardrobeItem — элемент гардероба пользователя для подбора комбинации.
type WardrobeItem struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// DummySuggestRequest используется для приёма JSON-запроса на подбор комбинации.
type DummySuggestRequest struct {
	AdaptyUserID  string         `json:"adapty_user_id" validate:"required"`
	UserPrompt    string         `json:"user_prompt" validate:"required"`
	ClothingItems []WardrobeItem `json:"clothing_items" validate:"required,min=1,dive"`
}

// AnalyzeResult — ответ анализа: категория из фиксированного списка и описание.
type AnalyzeResult struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// TryOnResult — ответ виртуальной примерки.
type TryOnResult struct {
	ResultImageBase64 string `json:"result_image_base_64"`
}

// SuggestResult — ответ подбора: идентификаторы предложенных вещей.
type SuggestResult struct {
	SuggestedClothingIDs []string `json:"suggested_clothing_ids"`
}

// WebhookEvent — входящее событие от провайдера подписок.
type WebhookEvent struct {
	EventType string `json:"event_type"`
	ProfileID string `json:"profile_id"`
}
