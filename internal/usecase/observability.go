package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
	"github.com/wekeepgrowing/ott-entitlement/pkg/messaging"
)

// Metrics receives decision counters. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveSettlement(operation, outcome string)
	ObserveDeviceDecision(path, reason string)
	ObserveView(counted bool)
	ObserveGatewayCall(operation string, err error, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSettlement(string, string) {}
func (nopMetrics) ObserveDeviceDecision(string, string) {}
func (nopMetrics) ObserveView(bool) {}
func (nopMetrics) ObserveGatewayCall(string, error, time.Duration) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// Entitlement lifecycle events published for the notification workers.
const (
	EventEntitlementActivated = "entitlement.activated"
	EventEntitlementGranted   = "entitlement.granted"
	EventEntitlementRefunded  = "entitlement.refunded"
	EventPaymentFailed        = "payment.failed"
)

type EntitlementEvent struct {
	Type          string              `json:"type"`
	EntitlementID string              `json:"entitlement_id"`
	UserID        string              `json:"user_id"`
	ChannelID     string              `json:"channel_id"`
	PlanID        string              `json:"plan_id,omitempty"`
	VideoID       string              `json:"video_id,omitempty"`
	Method        model.PaymentMethod `json:"payment_method"`
	ValidUntil    int64               `json:"valid_until,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
}

// notifier publishes lifecycle events and audit entries. Failures are logged and never surface.
type notifier struct {
	events  messaging.Publisher
	channel string
	audit   repository.AuditLogRepository
	logger  *zap.Logger
}

func (n notifier) publish(ctx context.Context, eventType string, e *model.Entitlement) {
	if n.events == nil || e == nil {
		return
	}

	ev := EntitlementEvent{
		Type:          eventType,
		EntitlementID: e.ID.Hex(),
		UserID:        e.User.Hex(),
		ChannelID:     e.Channel.Hex(),
		Method:        e.Method,
		ValidUntil:    e.To,
		CorrelationID: logger.CorrelationID(ctx),
	}
	if e.Plan != nil {
		ev.PlanID = e.Plan.Hex()
	}
	if e.Video != nil {
		ev.VideoID = e.Video.Hex()
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := n.events.Publish(pctx, n.channel, ev); err != nil {
		logger.For(ctx, n.logger).Warn("Failed to publish entitlement event",
			zap.String("event", eventType),
			zap.String("entitlement_id", ev.EntitlementID),
			zap.Error(err))
	}
}

func (n notifier) record(ctx context.Context, entry *model.AuditLog) {
	if n.audit == nil {
		return
	}
	entry.CorrelationID = logger.CorrelationID(ctx)
	if err := n.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.For(ctx, n.logger).Warn("Failed to record audit log",
			zap.String("operation", entry.Operation),
			zap.Error(err))
	}
}
