// Package metrics объявляет счётчики prometheus для основных операций
// с квотами. Отдаются через /metrics в маршрутах приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotaConsume считает списания по счётчикам квот с исходом.
	QuotaConsume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wardrobeai_quota_consume_total",
		Help: "Quota consume attempts by counter name and result.",
	}, []string{"counter", "result"})

	// Reconciliations считает пересинхронизации квот с провайдером.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wardrobeai_reconciliations_total",
		Help: "Quota reconciliations by trigger and result.",
	}, []string{"trigger", "result"})

	// WebhookEvents считает входящие события провайдера по типу и решению.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wardrobeai_webhook_events_total",
		Help: "Incoming subscription provider events by type and decision.",
	}, []string{"event_type", "decision"})
)

// Исходы для меток result/decision.
const (
	ResultOK        = "ok"
	ResultExhausted = "exhausted"
	ResultError     = "error"

	DecisionProcessed = "processed"
	DecisionIgnored   = "ignored"
	DecisionAbsorbed  = "absorbed"
)
