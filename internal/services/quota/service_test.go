package quota

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wardrobe-ai/internal/apperr"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, rec models.QuotaRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, uid string) (*models.QuotaRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotaRecord), args.Error(1)
}
func (m *RepoMock) ConsumeCounter(ctx context.Context, uid, counterName string) (bool, error) {
	args := m.Called(ctx, uid, counterName)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) UpsertQuotas(ctx context.Context, uid string, tier models.Tier,
	counters models.Counters, syncedAt time.Time) error {
	return m.Called(ctx, uid, tier, counters, syncedAt).Error(0)
}

type AdaptyMock struct{ mock.Mock }

func (m *AdaptyMock) FetchProfile(ctx context.Context, profileID string) (*models.SubscriptionProfile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionProfile), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var defaultAllowed = []string{"subscription_started", "subscription_renewed", "subscription_expired"}

func newTestService(repo *RepoMock, adapty *AdaptyMock, cacheMock *CacheMock) *Service {
	return NewService(repo, adapty, cacheMock, newNoopLogger(), defaultAllowed)
}

func activeProfile(productID string) *models.SubscriptionProfile {
	active := true
	return &models.SubscriptionProfile{
		Subscriptions: []models.Subscription{
			{VendorProductID: productID, IsActive: &active},
		},
	}
}

func TestService_Resolve_ExistingRecord(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	rec := &models.QuotaRecord{
		UID:      "user-1",
		Tier:     models.TierPremium,
		Counters: models.Counters{TryOns: 42, Suggestions: 10, ClothAnalysis: 5},
	}
	cacheMock.On("Get", "user:user-1", mock.Anything).Return(false, nil)
	repo.On("GetUser", mock.Anything, "user-1").Return(rec, nil)
	cacheMock.On("Set", "user:user-1", rec, time.Hour).Return(nil)

	svc := newTestService(repo, adapty, cacheMock)
	got, err := svc.Resolve(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, rec, got)
	adapty.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_Resolve_LazyProvision(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	cacheMock.On("Get", "user:user-2", mock.Anything).Return(false, nil)
	repo.On("GetUser", mock.Anything, "user-2").Return(nil, nil)
	adapty.On("FetchProfile", mock.Anything, "user-2").Return(activeProfile("monthly.basic"), nil)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(rec models.QuotaRecord) bool {
		return rec.UID == "user-2" &&
			rec.Tier == models.TierPremium &&
			rec.Counters == models.Counters{TryOns: 100, Suggestions: 100, ClothAnalysis: 100} &&
			rec.LastSyncedWithAdapty != nil
	})).Return(nil)
	cacheMock.On("Set", "user:user-2", mock.Anything, time.Hour).Return(nil)

	svc := newTestService(repo, adapty, cacheMock)
	got, err := svc.Resolve(context.Background(), "user-2")

	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, got.Tier)
	repo.AssertExpectations(t)
	adapty.AssertExpectations(t)
}

func TestService_Provision_UnknownUser(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	adapty.On("FetchProfile", mock.Anything, "unknown-user").
		Return(nil, apperr.New(apperr.KindNotFound, "adapty profile not found"))

	svc := newTestService(repo, adapty, cacheMock)
	_, err := svc.Provision(context.Background(), "unknown-user")

	require.Error(t, err)
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
	// запись не создаётся для неподтверждённого идентификатора
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestService_Provision_ProviderFailure(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	adapty.On("FetchProfile", mock.Anything, "user-3").
		Return(nil, errors.New("connection refused"))

	svc := newTestService(repo, adapty, cacheMock)
	_, err := svc.Provision(context.Background(), "user-3")

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestService_Consume_Boundary(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	rec := &models.QuotaRecord{
		UID:      "user-4",
		Tier:     models.TierFreemium,
		Counters: models.Counters{TryOns: 1},
	}
	cacheMock.On("Get", "user:user-4", mock.Anything).Return(false, nil)
	repo.On("GetUser", mock.Anything, "user-4").Return(rec, nil)
	cacheMock.On("Set", "user:user-4", mock.Anything, time.Hour).Return(nil)
	cacheMock.On("Invalidate", "user:user-4").Return(nil)

	// первый вызов списывает последнюю единицу, второй упирается в ноль
	repo.On("ConsumeCounter", mock.Anything, "user-4", models.CounterTryOns).Return(true, nil).Once()
	repo.On("ConsumeCounter", mock.Anything, "user-4", models.CounterTryOns).Return(false, nil).Once()

	svc := newTestService(repo, adapty, cacheMock)

	err := svc.Consume(context.Background(), "user-4", models.CounterTryOns)
	require.NoError(t, err)

	err = svc.Consume(context.Background(), "user-4", models.CounterTryOns)
	require.Error(t, err)
	assert.Equal(t, apperr.KindResourceExhausted, apperr.KindOf(err))
	assert.Contains(t, apperr.Message(err), models.CounterTryOns)
	repo.AssertExpectations(t)
}

func TestService_Consume_UnknownCounter(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	svc := newTestService(repo, adapty, cacheMock)
	err := svc.Consume(context.Background(), "user-5", "remainingHats")

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	// отказ до любых побочных эффектов
	repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ConsumeCounter", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Sync_Overwrite(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	// профиль больше не содержит активных подписок: квоты перезаписываются
	// значениями freemium, а не сливаются с остатками
	adapty.On("FetchProfile", mock.Anything, "user-6").
		Return(&models.SubscriptionProfile{ProfileID: "user-6"}, nil)
	repo.On("UpsertQuotas", mock.Anything, "user-6", models.TierFreemium,
		models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10}, mock.Anything).Return(nil)
	cacheMock.On("Invalidate", "user:user-6").Return(nil)

	synced := &models.QuotaRecord{
		UID:      "user-6",
		Tier:     models.TierFreemium,
		Counters: models.Counters{TryOns: 10, Suggestions: 0, ClothAnalysis: 10},
	}
	repo.On("GetUser", mock.Anything, "user-6").Return(synced, nil)

	svc := newTestService(repo, adapty, cacheMock)
	got, err := svc.Sync(context.Background(), "user-6")

	require.NoError(t, err)
	assert.Equal(t, models.TierFreemium, got.Tier)
	assert.Equal(t, 0, got.Counters.Suggestions)
	repo.AssertExpectations(t)
}

func TestService_Sync_ProfileNotFound(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	adapty.On("FetchProfile", mock.Anything, "user-7").
		Return(nil, apperr.New(apperr.KindNotFound, "adapty profile not found"))

	svc := newTestService(repo, adapty, cacheMock)
	_, err := svc.Sync(context.Background(), "user-7")

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	repo.AssertNotCalled(t, "UpsertQuotas",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleEvent_IgnoredType(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	svc := newTestService(repo, adapty, cacheMock)
	svc.HandleEvent(context.Background(), models.WebhookEvent{
		EventType: "trial_converted",
		ProfileID: "user-8",
	})

	// никаких обращений к провайдеру и хранилищу
	adapty.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpsertQuotas",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleEvent_AbsorbsFailure(t *testing.T) {
	repo := new(RepoMock)
	adapty := new(AdaptyMock)
	cacheMock := new(CacheMock)

	adapty.On("FetchProfile", mock.Anything, "ghost-user").
		Return(nil, apperr.New(apperr.KindNotFound, "adapty profile not found"))

	svc := newTestService(repo, adapty, cacheMock)
	// сбой внутри события поглощается, наружу ничего не летит
	svc.HandleEvent(context.Background(), models.WebhookEvent{
		EventType: "subscription_renewed",
		ProfileID: "ghost-user",
	})

	repo.AssertNotCalled(t, "UpsertQuotas",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
