// Package models содержит доменные структуры: запись квот пользователя,
// профиль подписки из внешнего провайдера и вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// Tier обозначает тарифную ветку пользователя. Метка описательная:
// поведение определяют счётчики, а не tier.
type Tier string

const (
	// TierFreemium — тариф по умолчанию, без активных подписок.
	TierFreemium Tier = "freemium"
	// TierPremium — любая активная подписка.
	TierPremium Tier = "premium"
	// TierUltraPremium — активная подписка с ultra/unlimited/pro продуктом.
	TierUltraPremium Tier = "ultra_premium"
)

// Имена счётчиков квот во внешнем контракте (consume_quota, get_tier).
const (
	CounterTryOns        = "remainingTryOns"
	CounterSuggestions   = "remainingSuggestions"
	CounterClothAnalysis = "remainingClothAnalysis"
)

// Counters хранит остатки по трём независимым расходуемым счётчикам.
type Counters struct {
	TryOns        int `json:"remainingTryOns"`
	Suggestions   int `json:"remainingSuggestions"`
	ClothAnalysis int `json:"remainingClothAnalysis"`
}

// QuotaRecord представляет запись квот одного пользователя в хранилище.
// UID приходит от провайдера подписок (adapty profile id) и никогда
// не генерируется локально.
type QuotaRecord struct {
	UID              string    `json:"uid"`
	Tier             Tier      `json:"tier"`
	Counters         Counters  `json:"counters"`
	CreatedAt        time.Time `json:"createdAt"`
	LastSyncedWithAdapty *time.Time `json:"lastSyncedWithAdapty,omitempty"`
}
