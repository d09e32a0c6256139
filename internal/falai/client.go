// Package falai реализует клиент провайдера генерации (fal.run).
// Провайдер трактуется как чёрный ящик: vision-модель возвращает сырой
// текст, генерация примерки — изображение. Таймаут клиента повышенный
// и задаётся конфигом, без ретраев.
package falai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	visionModelPath = "/fal-ai/llava-next"
	tryOnModelPath  = "/fal-ai/image-editing/virtual-try-on"
)

// Client — HTTP-клиент провайдера генерации.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент провайдера генерации.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VisionRequest — запрос к vision-модели.
type VisionRequest struct {
	Prompt      string  `json:"prompt"`
	ImageURL    string  `json:"image_url,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type visionResponse struct {
	Output string `json:"output"`
}

// TryOnRequest — запрос на виртуальную примерку.
type TryOnRequest struct {
	Prompt           string `json:"prompt,omitempty"`
	PoseImageURL     string `json:"pose_image_url"`
	ClothingImageURL string `json:"clothing_image_url"`
}

type tryOnResponse struct {
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// VisionCompletion отправляет промпт (и опционально изображение) vision-модели
// и возвращает сырой текст ответа. Разбор текста — забота вызывающего.
func (c *Client) VisionCompletion(ctx context.Context, reqParams VisionRequest) (string, error) {
	const op = "falai.VisionCompletion"

	req, err := c.newRequest(ctx, visionModelPath, reqParams)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var visionResp visionResponse
	if err = json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return visionResp.Output, nil
}

// GenerateTryOn отправляет пару изображений (поза + вещь) модели примерки
// и возвращает ссылку на сгенерированное изображение.
func (c *Client) GenerateTryOn(ctx context.Context, reqParams TryOnRequest) (string, error) {
	const op = "falai.GenerateTryOn"

	req, err := c.newRequest(ctx, tryOnModelPath, reqParams)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var tryOnResp tryOnResponse
	if err = json.NewDecoder(resp.Body).Decode(&tryOnResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return tryOnResp.Image.URL, nil
}

// DataURL упаковывает base64-изображение в data-URL для передачи провайдеру.
func DataURL(imageBase64 string) string {
	return "data:image/jpeg;base64," + imageBase64
}
