package models

import "time"

// SubscriptionProfile — внутреннее представление профиля подписок пользователя,
// полученного от внешнего провайдера. Адаптер в internal/adapty переводит
// ответ API в эту структуру в одном месте, чтобы смена формы ответа
// не расползалась по коду.
type SubscriptionProfile struct {
	ProfileID     string
	AccessLevels  []AccessLevel
	Subscriptions []Subscription
}

// AccessLevel описывает грант доступа пользователя.
type AccessLevel struct {
	ID        string
	IsActive  bool
	ExpiresAt *time.Time
}

// Subscription описывает одну запись подписки в профиле.
// IsActive хранится указателем: провайдер может вовсе не прислать флаг,
// и отсутствие трактуется как "не выключено явно".
type Subscription struct {
	VendorProductID string
	IsActive        *bool
	IsInGracePeriod bool
	IsRefund        bool
	ExpiresAt       *time.Time
}

// Active сообщает, учитывается ли подписка как действующая:
// не выключена явно, не в grace-периоде, не возвращена и не истекла.
func (s Subscription) Active(now time.Time) bool {
	if s.IsActive != nil && !*s.IsActive {
		return false
	}
	if s.IsInGracePeriod || s.IsRefund {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Active сообщает, действует ли грант доступа: помечен активным либо не истёк.
func (a AccessLevel) Active(now time.Time) bool {
	if a.IsActive {
		return true
	}
	return a.ExpiresAt != nil && a.ExpiresAt.After(now)
}
