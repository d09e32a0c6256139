// Package wardrobe содержит бизнес-логику трёх AI-операций приложения:
// анализ кадра одежды, виртуальная примерка и подбор комбинации.
// Каждая операция сначала списывает свой счётчик квоты, затем ходит
// к провайдеру генерации.
package wardrobe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/wardrobe-ai/internal/apperr"
	"github.com/magabrotheeeer/wardrobe-ai/internal/falai"
	"github.com/magabrotheeeer/wardrobe-ai/internal/lib/sl"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Категории, из которых vision-модель обязана выбирать при анализе.
var clothingCategories = []string{
	"T-Shirt", "Shirt", "Sweater", "Sweatshirt / Hoodie", "Blouse",
	"Pants", "Jeans", "Shorts", "Skirt",
	"Jacket", "Coat", "Blazer", "Vest",
	"Dress", "Jumpsuit",
	"Shoes", "Boots", "Sneakers", "Heels",
	"Hat", "Bag", "Belt", "Jewelry", "Scarf", "Sunglasses",
}

// QuotaGate описывает списание квоты перед платной операцией.
type QuotaGate interface {
	Consume(ctx context.Context, uid, counterName string) error
}

// Generator описывает провайдера генерации.
type Generator interface {
	VisionCompletion(ctx context.Context, req falai.VisionRequest) (string, error)
	GenerateTryOn(ctx context.Context, req falai.TryOnRequest) (string, error)
}

// Service реализует AI-операции поверх квотного шлюза и провайдера генерации.
type Service struct {
	quota QuotaGate
	gen   Generator
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(quota QuotaGate, gen Generator, log *slog.Logger) *Service {
	return &Service{
		quota: quota,
		gen:   gen,
		log:   log,
	}
}

// AnalyzeClothing определяет категорию и описание вещи по изображению.
// Списывает remainingClothAnalysis.
func (s *Service) AnalyzeClothing(ctx context.Context, uid, imageBase64 string) (*models.AnalyzeResult, error) {
	if err := s.quota.Consume(ctx, uid, models.CounterClothAnalysis); err != nil {
		return nil, err
	}

	output, err := s.gen.VisionCompletion(ctx, falai.VisionRequest{
		Prompt:      analyzePrompt(),
		ImageURL:    falai.DataURL(imageBase64),
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		s.log.Error("clothing analysis request failed", sl.UID(uid), sl.Err(err))
		return nil, apperr.Wrap(apperr.KindInternal, "clothing analysis failed", err)
	}

	var result models.AnalyzeResult
	if err := falai.ExtractJSONObject(output, &result); err != nil {
		s.log.Error("failed to parse analysis output", sl.UID(uid), sl.Err(err),
			slog.String("output", output))
		return nil, apperr.Wrap(apperr.KindInternal, "could not understand the model response", err)
	}
	return &result, nil
}

// TryOn примеряет вещь на позу пользователя. Списывает remainingTryOns.
func (s *Service) TryOn(ctx context.Context, uid, poseImageBase64, clothImageBase64 string) (*models.TryOnResult, error) {
	if err := s.quota.Consume(ctx, uid, models.CounterTryOns); err != nil {
		return nil, err
	}

	resultURL, err := s.gen.GenerateTryOn(ctx, falai.TryOnRequest{
		PoseImageURL:     falai.DataURL(poseImageBase64),
		ClothingImageURL: falai.DataURL(clothImageBase64),
	})
	if err != nil {
		s.log.Error("virtual try-on request failed", sl.UID(uid), sl.Err(err))
		return nil, apperr.Wrap(apperr.KindInternal, "virtual try-on failed", err)
	}

	return &models.TryOnResult{ResultImageBase64: resultURL}, nil
}

// SuggestOutfit подбирает комбинацию из гардероба пользователя под запрос.
// Списывает remainingSuggestions.
func (s *Service) SuggestOutfit(ctx context.Context, uid, userPrompt string,
	items []models.WardrobeItem) (*models.SuggestResult, error) {
	if err := s.quota.Consume(ctx, uid, models.CounterSuggestions); err != nil {
		return nil, err
	}

	output, err := s.gen.VisionCompletion(ctx, falai.VisionRequest{
		Prompt:    suggestPrompt(userPrompt, items),
		MaxTokens: 512,
	})
	if err != nil {
		s.log.Error("outfit suggestion request failed", sl.UID(uid), sl.Err(err))
		return nil, apperr.Wrap(apperr.KindInternal, "outfit suggestion failed", err)
	}

	var ids []string
	if err := falai.ExtractJSONArray(output, &ids); err != nil {
		s.log.Error("failed to parse suggestion output", sl.UID(uid), sl.Err(err),
			slog.String("output", output))
		return nil, apperr.Wrap(apperr.KindInternal, "could not understand the model response", err)
	}
	return &models.SuggestResult{SuggestedClothingIDs: ids}, nil
}

func analyzePrompt() string {
	return fmt.Sprintf(`Analyze the main clothing item in this image. Your response MUST be a valid JSON object.
The JSON object should have two keys: "category" and "description".

Instructions for the model:
1. For the "category" value, you MUST choose the most appropriate category ONLY from this list: [%s].
2. For the "description" value, provide a single, comprehensive paragraph in English. This paragraph must describe the item's physical details (material, fit, color, patterns) AND its context (formality level, suitable occasions, and appropriate weather conditions).
3. CRITICAL RULE: Your description must ONLY be about the garment. DO NOT mention the background, the surface it is on, or how it is positioned. Focus strictly on the item's own features.`,
		strings.Join(clothingCategories, ", "))
}

func suggestPrompt(userPrompt string, items []models.WardrobeItem) string {
	var descriptions strings.Builder
	for _, item := range items {
		fmt.Fprintf(&descriptions, "- ID: %s, Description: %s\n", item.ID, item.Description)
	}
	return fmt.Sprintf(`Act as a stylist. The user asks: %q.
Here is the user's wardrobe:
%s
Pick the items that together form the best outfit for the request.
Your response MUST be a valid JSON array containing only the IDs of the chosen items, for example: ["id-1", "id-2"].`,
		userPrompt, descriptions.String())
}
