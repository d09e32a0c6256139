// Package quota содержит бизнес-логику учёта квот: вывод квот из профиля
// подписок, ленивое создание записи, списание счётчиков и
// пересинхронизацию с провайдером.
package quota

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// Квоты тарифных веток.
var (
	freemiumCounters = models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10}
	premiumCounters  = models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100}
	ultraCounters    = models.Counters{TryOns: 500, Suggestions: 500, ClothAnalysis: 500}
)

// Подстроки в vendor product id, поднимающие тариф до ultra_premium.
var ultraProductMarkers = []string{"ultra", "unlimited", "pro"}

// DeriveQuotas выводит тариф и счётчики квот из профиля подписок.
// Функция чистая: одинаковый профиль всегда даёт одинаковый результат.
// Пустой или отсутствующий профиль эквивалентен отсутствию активных подписок.
func DeriveQuotas(profile *models.SubscriptionProfile, now time.Time) (models.Tier, models.Counters) {
	if profile == nil {
		return models.TierFreemium, freemiumCounters
	}

	var active []models.Subscription
	for _, sub := range profile.Subscriptions {
		if sub.Active(now) {
			active = append(active, sub)
		}
	}

	if len(active) == 0 && !hasActiveAccess(profile.AccessLevels, now) {
		return models.TierFreemium, freemiumCounters
	}

	for _, sub := range active {
		productID := strings.ToLower(sub.VendorProductID)
		for _, marker := range ultraProductMarkers {
			if strings.Contains(productID, marker) {
				return models.TierUltraPremium, ultraCounters
			}
		}
	}
	return models.TierPremium, premiumCounters
}

func hasActiveAccess(levels []models.AccessLevel, now time.Time) bool {
	for _, al := range levels {
		if al.Active(now) {
			return true
		}
	}
	return false
}
