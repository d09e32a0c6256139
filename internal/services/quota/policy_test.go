package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestDeriveQuotas(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	tests := []struct {
		name         string
		profile      *models.SubscriptionProfile
		wantTier     models.Tier
		wantCounters models.Counters
	}{
		{
			name:         "nil профиль даёт freemium",
			profile:      nil,
			wantTier:     models.TierFreemium,
			wantCounters: models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10},
		},
		{
			name:         "пустой профиль даёт freemium",
			profile:      &models.SubscriptionProfile{ProfileID: "u1"},
			wantTier:     models.TierFreemium,
			wantCounters: models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10},
		},
		{
			name: "истекшая подписка не считается активной",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "monthly.basic", IsActive: boolPtr(true), ExpiresAt: &past},
				},
			},
			wantTier:     models.TierFreemium,
			wantCounters: models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10},
		},
		{
			name: "grace период и refund исключают подписку",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "monthly.basic", IsActive: boolPtr(true), IsInGracePeriod: true},
					{VendorProductID: "yearly.basic", IsActive: boolPtr(true), IsRefund: true},
				},
			},
			wantTier:     models.TierFreemium,
			wantCounters: models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10},
		},
		{
			name: "активная подписка даёт premium",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "monthly.basic", IsActive: boolPtr(true), ExpiresAt: &future},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
		{
			name: "подписка без явного флага активности считается действующей",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "monthly.basic", ExpiresAt: &future},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
		{
			name: "бессрочная подписка без expires_at активна",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "lifetime.basic", IsActive: boolPtr(true)},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
		{
			name: "активный грант доступа без подписок даёт premium",
			profile: &models.SubscriptionProfile{
				AccessLevels: []models.AccessLevel{
					{ID: "premium", IsActive: true},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
		{
			name: "неистёкший грант без флага активности тоже учитывается",
			profile: &models.SubscriptionProfile{
				AccessLevels: []models.AccessLevel{
					{ID: "premium", IsActive: false, ExpiresAt: &future},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
		{
			name: "продукт pro поднимает до ultra_premium",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "monthly.basic", IsActive: boolPtr(true)},
					{VendorProductID: "Yearly.PRO", IsActive: boolPtr(true)},
				},
			},
			wantTier:     models.TierUltraPremium,
			wantCounters: models.Counters{TryOns: 500, Suggestions: 500, ClothAnalysis: 500},
		},
		{
			name: "продукт unlimited поднимает до ultra_premium",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "app.unlimited.monthly", IsActive: boolPtr(true)},
				},
			},
			wantTier:     models.TierUltraPremium,
			wantCounters: models.Counters{TryOns: 500, Suggestions: 500, ClothAnalysis: 500},
		},
		{
			name: "истекший ultra продукт не поднимает тариф",
			profile: &models.SubscriptionProfile{
				Subscriptions: []models.Subscription{
					{VendorProductID: "app.ultra", IsActive: boolPtr(true), ExpiresAt: &past},
					{VendorProductID: "monthly.basic", IsActive: boolPtr(true)},
				},
			},
			wantTier:     models.TierPremium,
			wantCounters: models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, counters := DeriveQuotas(tt.profile, now)
			assert.Equal(t, tt.wantTier, tier)
			assert.Equal(t, tt.wantCounters, counters)
		})
	}
}

func TestDeriveQuotas_Deterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	profile := &models.SubscriptionProfile{
		Subscriptions: []models.Subscription{
			{VendorProductID: "monthly.basic", IsActive: boolPtr(true)},
		},
	}

	tier1, counters1 := DeriveQuotas(profile, now)
	tier2, counters2 := DeriveQuotas(profile, now)

	assert.Equal(t, tier1, tier2)
	assert.Equal(t, counters1, counters2)
}
