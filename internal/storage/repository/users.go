package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/wardrobe-ai/internal/models"
)

// ErrUnknownCounter возвращается при попытке списать счётчик,
// которого нет в закрытом перечне.
var ErrUnknownCounter = errors.New("unknown quota counter")

// counterColumn переводит имя счётчика внешнего контракта в имя колонки.
// Перечень закрытый, произвольные строки в SQL не попадают.
func counterColumn(counterName string) (string, error) {
	switch counterName {
	case models.CounterTryOns:
		return "remaining_try_ons", nil
	case models.CounterSuggestions:
		return "remaining_suggestions", nil
	case models.CounterClothAnalysis:
		return "remaining_cloth_analysis", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCounter, counterName)
	}
}

// CreateUser сохраняет новую запись квот. Запись создаётся только после
// успешной проверки uid у провайдера подписок, это забота вызывающего.
func (s *Storage) CreateUser(ctx context.Context, rec models.QuotaRecord) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, tier, remaining_try_ons, remaining_suggestions,
			      remaining_cloth_analysis, created_at, last_synced_with_adapty)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		rec.UID, rec.Tier, rec.Counters.TryOns, rec.Counters.Suggestions,
		rec.Counters.ClothAnalysis, rec.CreatedAt, rec.LastSyncedWithAdapty)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает запись квот по uid. Отсутствие записи — это (nil, nil),
// а не ошибка: ленивое создание решается на уровне сервиса.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.QuotaRecord, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, tier, remaining_try_ons, remaining_suggestions,
			      remaining_cloth_analysis, created_at, last_synced_with_adapty
			  FROM users
			  WHERE uid = $1`
	rec := &models.QuotaRecord{}
	row := s.DB.QueryRowContext(ctx, query, uid)

	var lastSynced sql.NullTime
	if err := row.Scan(&rec.UID, &rec.Tier, &rec.Counters.TryOns, &rec.Counters.Suggestions,
		&rec.Counters.ClothAnalysis, &rec.CreatedAt, &lastSynced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if lastSynced.Valid {
		rec.LastSyncedWithAdapty = &lastSynced.Time
	}
	return rec, nil
}

// ConsumeCounter списает единицу с именованного счётчика одним условным
// атомарным обновлением: декремент проходит только пока значение больше нуля,
// поэтому два конкурентных списания не уводят счётчик в минус.
// Возвращает false, если списывать нечего.
func (s *Storage) ConsumeCounter(ctx context.Context, uid, counterName string) (bool, error) {
	const op = "storage.ConsumeCounter"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	column, err := counterColumn(counterName)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`UPDATE users
			  SET %s = %s - 1
			  WHERE uid = $1 AND %s > 0`, column, column, column)
	result, err := s.DB.ExecContext(ctx, query, uid)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// UpsertQuotas перезаписывает tier, все три счётчика и отметку синхронизации
// значениями из политики; запись создаётся при отсутствии. Значения именно
// перезаписываются, никакого слияния с остатками. created_at существующей
// записи не трогается.
func (s *Storage) UpsertQuotas(ctx context.Context, uid string, tier models.Tier,
	counters models.Counters, syncedAt time.Time) error {
	const op = "storage.UpsertQuotas"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, tier, remaining_try_ons, remaining_suggestions,
			      remaining_cloth_analysis, created_at, last_synced_with_adapty)
			  VALUES ($1, $2, $3, $4, $5, $6, $6)
			  ON CONFLICT (uid) DO UPDATE
			  SET tier = EXCLUDED.tier,
			      remaining_try_ons = EXCLUDED.remaining_try_ons,
			      remaining_suggestions = EXCLUDED.remaining_suggestions,
			      remaining_cloth_analysis = EXCLUDED.remaining_cloth_analysis,
			      last_synced_with_adapty = EXCLUDED.last_synced_with_adapty`
	_, err := s.DB.ExecContext(ctx, query,
		uid, tier, counters.TryOns, counters.Suggestions, counters.ClothAnalysis, syncedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
