package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wardrobe-ai/internal/apperr"
	"github.com/magabrotheeeer/wardrobe-ai/internal/lib/sl"
	"github.com/magabrotheeeer/wardrobe-ai/internal/metrics"
	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
	"github.com/magabrotheeeer/wardrobe-ai/internal/storage/repository"
)

// UserRepository определяет методы для работы с записями квот в хранилище.
type UserRepository interface {
	// CreateUser сохраняет новую запись квот.
	CreateUser(ctx context.Context, rec models.QuotaRecord) error
	// GetUser возвращает запись по uid, (nil, nil) если записи нет.
	GetUser(ctx context.Context, uid string) (*models.QuotaRecord, error)
	// ConsumeCounter атомарно списает единицу счётчика, false если нечего списывать.
	ConsumeCounter(ctx context.Context, uid, counterName string) (bool, error)
	// UpsertQuotas перезаписывает тариф, счётчики и отметку синхронизации.
	UpsertQuotas(ctx context.Context, uid string, tier models.Tier, counters models.Counters, syncedAt time.Time) error
}

// ProfileFetcher описывает адаптер провайдера подписок.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, profileID string) (*models.SubscriptionProfile, error)
}

// Cache описывает методы для кэширования записей квот.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует учёт квот: разрешение записи, ленивое создание,
// списание и пересинхронизацию с провайдером подписок.
type Service struct {
	repo          UserRepository
	adapty        ProfileFetcher
	cache         Cache
	log           *slog.Logger
	allowedEvents map[string]struct{}
}

// NewService создает новый экземпляр Service. allowedEvents — типы событий
// вебхука, запускающие пересинхронизацию; задаются конфигом.
func NewService(repo UserRepository, adapty ProfileFetcher, cache Cache,
	log *slog.Logger, allowedEvents []string) *Service {
	allowed := make(map[string]struct{}, len(allowedEvents))
	for _, event := range allowedEvents {
		allowed[event] = struct{}{}
	}
	return &Service{
		repo:          repo,
		adapty:        adapty,
		cache:         cache,
		log:           log,
		allowedEvents: allowed,
	}
}

func cacheKey(uid string) string {
	return fmt.Sprintf("user:%s", uid)
}

// Resolve возвращает запись квот пользователя, лениво создавая её
// при первом обращении.
func (s *Service) Resolve(ctx context.Context, uid string) (*models.QuotaRecord, error) {
	var cached models.QuotaRecord
	found, err := s.cache.Get(cacheKey(uid), &cached)
	if err != nil {
		s.log.Warn("failed to read user from cache", sl.UID(uid), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	rec, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read user record", err)
	}
	if rec == nil {
		return s.Provision(ctx, uid)
	}

	if err := s.cache.Set(cacheKey(uid), rec, time.Hour); err != nil {
		s.log.Warn("failed to cache user record", sl.UID(uid), sl.Err(err))
	}
	return rec, nil
}

// Provision создаёт запись квот для ранее неизвестного uid. Запись создаётся
// только для идентификатора, подтверждённого провайдером подписок: если
// провайдер пользователя не знает — PermissionDenied, запись не создаётся.
func (s *Service) Provision(ctx context.Context, uid string) (*models.QuotaRecord, error) {
	profile, err := s.adapty.FetchProfile(ctx, uid)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.New(apperr.KindPermissionDenied,
				"user is not known to the subscription provider")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to fetch subscription profile", err)
	}

	now := time.Now().UTC()
	tier, counters := DeriveQuotas(profile, now)
	rec := models.QuotaRecord{
		UID:                  uid,
		Tier:                 tier,
		Counters:             counters,
		CreatedAt:            now,
		LastSyncedWithAdapty: &now,
	}
	if err := s.repo.CreateUser(ctx, rec); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create user record", err)
	}

	s.log.Info("provisioned new user", sl.UID(uid), slog.String("tier", string(tier)))

	if err := s.cache.Set(cacheKey(uid), &rec, time.Hour); err != nil {
		s.log.Warn("failed to cache user record", sl.UID(uid), sl.Err(err))
	}
	return &rec, nil
}

// Consume списает единицу именованного счётчика квоты. Неизвестное имя
// счётчика отклоняется до любых побочных эффектов. Исчерпанный счётчик —
// ожидаемое состояние, а не сбой системы.
func (s *Service) Consume(ctx context.Context, uid, counterName string) error {
	switch counterName {
	case models.CounterTryOns, models.CounterSuggestions, models.CounterClothAnalysis:
	default:
		return apperr.New(apperr.KindInvalidArgument,
			fmt.Sprintf("unknown quota counter: %s", counterName))
	}

	// Ленивое создание записи при первом квотируемом действии.
	if _, err := s.Resolve(ctx, uid); err != nil {
		return err
	}

	ok, err := s.repo.ConsumeCounter(ctx, uid, counterName)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownCounter) {
			return apperr.Wrap(apperr.KindInvalidArgument, "unknown quota counter", err)
		}
		metrics.QuotaConsume.WithLabelValues(counterName, metrics.ResultError).Inc()
		return apperr.Wrap(apperr.KindInternal, "failed to consume quota", err)
	}
	if !ok {
		metrics.QuotaConsume.WithLabelValues(counterName, metrics.ResultExhausted).Inc()
		return apperr.New(apperr.KindResourceExhausted,
			fmt.Sprintf("no %s left", counterName))
	}
	metrics.QuotaConsume.WithLabelValues(counterName, metrics.ResultOK).Inc()

	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.UID(uid), sl.Err(err))
	}
	return nil
}

// Sync принудительно пересинхронизирует квоты пользователя с текущим
// состоянием у провайдера: тариф, все три счётчика и отметка синхронизации
// перезаписываются значениями политики, остатки не сливаются. Отсутствие
// профиля у провайдера — NotFound.
func (s *Service) Sync(ctx context.Context, uid string) (*models.QuotaRecord, error) {
	profile, err := s.adapty.FetchProfile(ctx, uid)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			metrics.Reconciliations.WithLabelValues("sync", metrics.ResultError).Inc()
			return nil, apperr.New(apperr.KindNotFound,
				"subscription provider has no profile for this user")
		}
		metrics.Reconciliations.WithLabelValues("sync", metrics.ResultError).Inc()
		return nil, apperr.Wrap(apperr.KindInternal, "failed to fetch subscription profile", err)
	}

	now := time.Now().UTC()
	tier, counters := DeriveQuotas(profile, now)
	if err := s.repo.UpsertQuotas(ctx, uid, tier, counters, now); err != nil {
		metrics.Reconciliations.WithLabelValues("sync", metrics.ResultError).Inc()
		return nil, apperr.Wrap(apperr.KindInternal, "failed to overwrite quotas", err)
	}

	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.UID(uid), sl.Err(err))
	}

	rec, err := s.repo.GetUser(ctx, uid)
	if err != nil || rec == nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read user record after sync", err)
	}

	s.log.Info("synced user quotas", sl.UID(uid), slog.String("tier", string(tier)))
	metrics.Reconciliations.WithLabelValues("sync", metrics.ResultOK).Inc()
	return rec, nil
}

// HandleEvent обрабатывает событие вебхука провайдера. События вне списка
// разрешённых подтверждаются и игнорируются. Для разрешённых выполняется
// та же перезапись, что и в Sync, но любой внутренний сбой поглощается:
// доставка вебхука fire-and-forget, провайдер не должен ретраить.
func (s *Service) HandleEvent(ctx context.Context, event models.WebhookEvent) {
	log := s.log.With(slog.String("event_type", event.EventType), sl.UID(event.ProfileID))

	if _, ok := s.allowedEvents[event.EventType]; !ok {
		log.Info("ignored webhook event")
		metrics.WebhookEvents.WithLabelValues(event.EventType, metrics.DecisionIgnored).Inc()
		return
	}
	if event.ProfileID == "" {
		log.Warn("webhook event without profile id")
		metrics.WebhookEvents.WithLabelValues(event.EventType, metrics.DecisionAbsorbed).Inc()
		return
	}

	if _, err := s.Sync(ctx, event.ProfileID); err != nil {
		log.Error("failed to reconcile from webhook event", sl.Err(err))
		metrics.WebhookEvents.WithLabelValues(event.EventType, metrics.DecisionAbsorbed).Inc()
		return
	}

	log.Info("reconciled quotas from webhook event")
	metrics.WebhookEvents.WithLabelValues(event.EventType, metrics.DecisionProcessed).Inc()
}
