package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
	"github.com/wekeepgrowing/ott-entitlement/pkg/messaging"
)

// DefaultVideoValidity applies to single-video entitlements without an explicit duration.
const DefaultVideoValidity = 48 * time.Hour

type SettlementConfig struct {
	// TestMode lets a bad client signature through.
	TestMode        bool
	CaptureTimeout  time.Duration
	LookupTimeout   time.Duration
	ClaimTTL        time.Duration
	DefaultCurrency string
}

type SettlementDeps struct {
	Entitlements repository.EntitlementRepository
	Plans        repository.PlanRepository
	Contents     repository.ContentRepository
	Gateway      provider.PaymentGateway
	Pricing      *PricingService
	Access       *EntitlementService
	Audit        repository.AuditLogRepository
	Events       messaging.Publisher
	EventChannel string
	Metrics      Metrics
}

// SettlementService turns gateway payments into entitlements.
//
// Orders move created -> verifying -> captured|failed, and captured -> refunded. The verifying
// state is a claim: only the request holding the claim token may finalize, so at most one
// settlement is recorded per order.
type SettlementService struct {
	entitlements repository.EntitlementRepository
	plans        repository.PlanRepository
	contents     repository.ContentRepository
	gateway      provider.PaymentGateway
	pricing      *PricingService
	access       *EntitlementService
	metrics      Metrics
	notifier     notifier
	cfg          SettlementConfig
	logger       *zap.Logger
}

func NewSettlementService(deps SettlementDeps, cfg SettlementConfig, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		entitlements: deps.Entitlements,
		plans:        deps.Plans,
		contents:     deps.Contents,
		gateway:      deps.Gateway,
		pricing:      deps.Pricing,
		access:       deps.Access,
		metrics:      metricsOrNop(deps.Metrics),
		notifier: notifier{
			events:  deps.Events,
			channel: deps.EventChannel,
			audit:   deps.Audit,
			logger:  logger,
		},
		cfg:    cfg,
		logger: logger,
	}
}

type CreateOrderInput struct {
	UserID    primitive.ObjectID
	ChannelID primitive.ObjectID
	PlanID    string
	VideoID   string
	// Amount and Currency are what the client displayed. They must match the server price.
	Amount   *float64
	Currency string
	Country  string
}

type OrderResult struct {
	Entitlement     *model.Entitlement `json:"entitlement"`
	Order           *provider.Order    `json:"order,omitempty"`
	KeyID           string             `json:"key_id,omitempty"`
	AlreadyEntitled bool               `json:"already_entitled"`
}

// CreateOrder prices the purchase, opens a gateway order and stores a pending entitlement.
// A user who already holds live access gets the existing entitlement back instead.
func (s *SettlementService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderResult, error) {
	ctx, _ = logger.EnsureCorrelationID(ctx)
	log := logger.For(ctx, s.logger).With(zap.String("user_id", in.UserID.Hex()))

	p, err := resolvePurchase(ctx, s.plans, s.contents, s.pricing, purchaseRequest{
		PlanID:    in.PlanID,
		VideoID:   in.VideoID,
		ChannelID: in.ChannelID,
		Country:   in.Country,
	})
	if err != nil {
		return nil, err
	}

	if in.Amount != nil && !entity.SameAmount(*in.Amount, p.price, p.currency) {
		log.Warn("Client amount does not match server price",
			zap.Float64("client_amount", *in.Amount),
			zap.Float64("price", p.price),
			zap.String("currency", p.currency))
		return nil, domainErrors.ErrAmountMismatch
	}
	if in.Currency != "" && !strings.EqualFold(in.Currency, p.currency) {
		return nil, domainErrors.ErrAmountMismatch
	}

	existing, err := s.access.FindLiveEntitlement(ctx, in.UserID, p.channel, p.resource)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info("User already holds a live entitlement, skipping order",
			zap.String("entitlement_id", existing.ID.Hex()))
		s.metrics.ObserveSettlement("create_order", "already_entitled")
		return &OrderResult{Entitlement: existing, AlreadyEntitled: true}, nil
	}

	amountMinor := entity.ToMinorUnits(p.price, p.currency)
	if amountMinor <= 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "nothing to pay for; use a free grant", nil)
	}

	receipt, err := gonanoid.New(20)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate receipt")
	}
	receipt = "rcpt_" + receipt

	notes := map[string]string{
		"user_id":    in.UserID.Hex(),
		"channel_id": p.channel.Hex(),
	}
	if p.plan != nil {
		notes["plan_id"] = p.plan.ID.Hex()
	} else {
		notes["video_id"] = p.content.ID.Hex()
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	start := time.Now()
	order, err := s.gateway.CreateOrder(gctx, &provider.CreateOrderRequest{
		Amount:   amountMinor,
		Currency: strings.ToUpper(p.currency),
		Receipt:  receipt,
		Notes:    notes,
	})
	cancel()
	s.metrics.ObserveGatewayCall("create_order", err, time.Since(start))
	if err != nil {
		log.Error("Gateway order creation failed", zap.Error(err))
		return nil, apperrors.NewAppError(apperrors.ErrGateway, "failed to create payment order", err)
	}

	now := time.Now()
	ent := &model.Entitlement{
		User:            in.UserID,
		Channel:         p.channel,
		DurationMs:      p.duration.Milliseconds(),
		Price:           p.price,
		AmountMinor:     amountMinor,
		Currency:        strings.ToUpper(p.currency),
		Country:         strings.ToUpper(in.Country),
		Method:          model.PaymentMethodGateway,
		OrderID:         order.ID,
		Receipt:         receipt,
		Payments:        []model.PaymentEvent{{OrderID: order.ID, Status: string(model.SettlementCreated), Source: "order", At: now.UnixMilli()}},
		SettlementState: model.SettlementCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	p.applyScope(ent)

	if err := s.entitlements.Create(ctx, ent); err != nil {
		log.Error("Failed to store pending entitlement", zap.String("order_id", order.ID), zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to store pending entitlement")
	}

	log.Info("Payment order created",
		zap.String("order_id", order.ID),
		zap.String("entitlement_id", ent.ID.Hex()),
		zap.Int64("amount_minor", amountMinor),
		zap.String("currency", ent.Currency))
	s.metrics.ObserveSettlement("create_order", "created")
	s.notifier.record(ctx, auditEntry("create_order", "created", ent, decimal.NewFromFloat(p.price), ""))

	return &OrderResult{Entitlement: ent, Order: order, KeyID: s.gateway.PublicKey()}, nil
}

type ConfirmInput struct {
	// UserID is the authenticated caller; orders owned by anyone else are not found.
	UserID    primitive.ObjectID
	OrderID   string
	PaymentID string
	Signature string
}

// ConfirmPayment settles an order from the client's checkout callback. Confirming an already
// captured order returns it unchanged without calling the gateway.
func (s *SettlementService) ConfirmPayment(ctx context.Context, in ConfirmInput) (*model.Entitlement, error) {
	ctx, _ = logger.EnsureCorrelationID(ctx)
	log := logger.For(ctx, s.logger).With(
		zap.String("order_id", in.OrderID),
		zap.String("payment_id", in.PaymentID))

	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "order_id, payment_id and signature are required", nil)
	}

	ent, err := s.entitlements.FindByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if !in.UserID.IsZero() && ent.User != in.UserID {
		log.Warn("Order confirmed by a user who does not own it", zap.String("user_id", in.UserID.Hex()))
		return nil, domainErrors.ErrOrderNotFound
	}
	if isSettled(ent) {
		log.Info("Order already settled", zap.String("state", string(ent.SettlementState)))
		s.metrics.ObserveSettlement("confirm", "duplicate")
		return ent, nil
	}

	claimed, token, err := s.claim(ctx, ent)
	if err != nil {
		return nil, err
	}
	if token == "" {
		s.metrics.ObserveSettlement("confirm", "duplicate")
		return claimed, nil
	}

	event := model.PaymentEvent{
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Signature: in.Signature,
		Source:    "client",
	}

	if ok, reason := s.verifyPayment(ctx, claimed, in); !ok {
		log.Warn("Payment verification failed", zap.String("reason", reason))
		if _, err := s.finalizeFailed(ctx, claimed, token, event, "confirm", reason); err != nil {
			return nil, err
		}
		return nil, domainErrors.ErrPaymentVerificationFailed
	}

	outcome := ApplyFailOpen(s.capture(ctx, claimed, in.PaymentID))
	return s.finalize(ctx, claimed, token, event, outcome, "confirm")
}

// claim takes the settlement claim on ent's order. When the claim is lost to a request that has
// already settled the order, the settled record is returned with an empty token.
func (s *SettlementService) claim(ctx context.Context, ent *model.Entitlement) (*model.Entitlement, string, error) {
	token := uuid.NewString()
	now := time.Now()

	claimed, err := s.entitlements.ClaimForSettlement(ctx, ent.OrderID, token, now.UnixMilli(), now.Add(-s.cfg.ClaimTTL).UnixMilli())
	if err == nil {
		return claimed, token, nil
	}
	if !errors.Is(err, domainErrors.ErrSettlementInProgress) {
		return nil, "", apperrors.Wrap(err, "failed to claim order for settlement")
	}

	current, rerr := s.entitlements.FindByOrderID(ctx, ent.OrderID)
	if rerr == nil && isSettled(current) {
		return current, "", nil
	}
	logger.For(ctx, s.logger).Info("Order is being settled by another request", zap.String("order_id", ent.OrderID))
	return nil, "", domainErrors.ErrSettlementInProgress
}

// verifyPayment checks the client signature, falling back to asking the gateway for the payment
// when the signature does not match.
func (s *SettlementService) verifyPayment(ctx context.Context, ent *model.Entitlement, in ConfirmInput) (bool, string) {
	log := logger.For(ctx, s.logger).With(zap.String("order_id", in.OrderID))

	if s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		return true, ""
	}
	if s.cfg.TestMode {
		log.Warn("Signature mismatch bypassed in test mode")
		return true, ""
	}

	p, err := s.lookupStatus(ctx, in.PaymentID)
	if err != nil {
		return false, "signature mismatch and status lookup failed: " + err.Error()
	}
	if (p.Status == provider.PaymentStatusCaptured || p.Status == provider.PaymentStatusAuthorized) && p.OrderID == ent.OrderID {
		log.Info("Signature mismatch recovered by status lookup", zap.String("status", string(p.Status)))
		return true, ""
	}
	return false, fmt.Sprintf("signature mismatch; gateway reports status %q for order %q", p.Status, p.OrderID)
}

// capture captures the recorded amount. Failures are looked up once before classification.
func (s *SettlementService) capture(ctx context.Context, ent *model.Entitlement, paymentID string) SettlementOutcome {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	start := time.Now()
	p, err := s.gateway.CapturePayment(cctx, &provider.CaptureRequest{
		PaymentID: paymentID,
		Amount:    ent.AmountMinor,
		Currency:  ent.Currency,
	})
	cancel()
	s.metrics.ObserveGatewayCall("capture", err, time.Since(start))
	if err == nil {
		return outcomeFromStatus(p.Status, "capture")
	}

	logger.For(ctx, s.logger).Warn("Capture failed, probing payment status",
		zap.String("order_id", ent.OrderID),
		zap.String("payment_id", paymentID),
		zap.Error(err))

	details, perr := s.lookupStatus(ctx, paymentID)
	if perr != nil {
		return Ambiguous(fmt.Sprintf("capture failed (%v) and status lookup failed (%v)", err, perr))
	}
	return outcomeFromStatus(details.Status, "lookup after capture error")
}

func (s *SettlementService) lookupStatus(ctx context.Context, paymentID string) (*provider.Payment, error) {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	start := time.Now()
	p, err := s.gateway.GetPaymentDetails(pctx, paymentID)
	s.metrics.ObserveGatewayCall("lookup", err, time.Since(start))
	return p, err
}

func outcomeFromStatus(status provider.PaymentStatus, source string) SettlementOutcome {
	switch status {
	case provider.PaymentStatusCaptured:
		return Captured()
	case provider.PaymentStatusFailed:
		return Failed(source + ": gateway reported payment failed")
	default:
		return Ambiguous(fmt.Sprintf("%s: gateway reported status %q", source, status))
	}
}

func (s *SettlementService) finalize(ctx context.Context, ent *model.Entitlement, token string, event model.PaymentEvent, outcome SettlementOutcome, operation string) (*model.Entitlement, error) {
	if outcome.Kind != OutcomeCaptured {
		if _, err := s.finalizeFailed(ctx, ent, token, event, operation, outcome.Reason); err != nil {
			return nil, err
		}
		return nil, domainErrors.ErrPaymentFailed
	}

	log := logger.For(ctx, s.logger).With(
		zap.String("order_id", ent.OrderID),
		zap.String("payment_id", event.PaymentID))

	now := time.Now().UnixMilli()
	event.Status = string(model.SettlementCaptured)
	event.At = now
	settled, err := s.entitlements.FinalizeSettlement(ctx, ent.ID, token, repository.SettlementUpdate{
		State:      model.SettlementCaptured,
		PaymentID:  event.PaymentID,
		AmountPaid: entity.FromMinorUnits(ent.AmountMinor, ent.Currency),
		From:       now,
		To:         now + ent.DurationMs,
		Event:      event,
	})
	if err != nil {
		log.Error("Failed to finalize settlement", zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to finalize settlement")
	}

	result := "captured"
	if outcome.FailOpen {
		result = "captured_fail_open"
		log.Warn("Settled under fail-open policy", zap.String("reason", outcome.Reason))
	} else {
		log.Info("Payment settled", zap.String("entitlement_id", settled.ID.Hex()))
	}
	s.metrics.ObserveSettlement(operation, result)
	s.notifier.record(ctx, auditEntry(operation, result, settled, decimal.NewFromFloat(settled.AmountPaid), outcome.Reason))
	s.notifier.publish(ctx, EventEntitlementActivated, settled)
	return settled, nil
}

func (s *SettlementService) finalizeFailed(ctx context.Context, ent *model.Entitlement, token string, event model.PaymentEvent, operation, reason string) (*model.Entitlement, error) {
	event.Status = string(model.SettlementFailed)
	event.At = time.Now().UnixMilli()

	failed, err := s.entitlements.FinalizeSettlement(ctx, ent.ID, token, repository.SettlementUpdate{
		State:         model.SettlementFailed,
		PaymentID:     event.PaymentID,
		FailureReason: reason,
		Event:         event,
	})
	if err != nil {
		logger.For(ctx, s.logger).Error("Failed to record settlement failure",
			zap.String("order_id", ent.OrderID),
			zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to record settlement failure")
	}

	s.metrics.ObserveSettlement(operation, "failed")
	s.notifier.record(ctx, auditEntry(operation, "failed", failed, decimal.Zero, reason))
	s.notifier.publish(ctx, EventPaymentFailed, failed)
	return failed, nil
}

// Webhook actions.
const (
	WebhookActionSettled    = "settled"
	WebhookActionFailed     = "failed"
	WebhookActionDuplicate  = "duplicate"
	WebhookActionInProgress = "in_progress"
	WebhookActionIgnored    = "ignored"
)

type WebhookResult struct {
	EventType   string             `json:"event_type"`
	Action      string             `json:"action"`
	Entitlement *model.Entitlement `json:"entitlement,omitempty"`
}

// HandleWebhook settles orders from authenticated gateway webhooks. The webhook signature stands
// in for the client signature check; an authorized payment is still captured here.
func (s *SettlementService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ctx, _ = logger.EnsureCorrelationID(ctx)

	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		logger.For(ctx, s.logger).Warn("Rejected webhook", zap.Error(err))
		return nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid webhook", err)
	}

	log := logger.For(ctx, s.logger).With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", string(ev.Type)),
		zap.String("order_id", ev.OrderID))
	result := &WebhookResult{EventType: string(ev.Type), Action: WebhookActionIgnored}
	if ev.OrderID == "" {
		return result, nil
	}

	switch ev.Type {
	case provider.WebhookPaymentAuthorized, provider.WebhookPaymentCaptured:
		ent, err := s.entitlements.FindByOrderID(ctx, ev.OrderID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrOrderNotFound) {
				log.Info("Webhook for unknown order ignored")
				return result, nil
			}
			return nil, err
		}
		if isSettled(ent) {
			result.Action = WebhookActionDuplicate
			result.Entitlement = ent
			return result, nil
		}

		claimed, token, err := s.claim(ctx, ent)
		if err != nil {
			if errors.Is(err, domainErrors.ErrSettlementInProgress) {
				result.Action = WebhookActionInProgress
				return result, nil
			}
			return nil, err
		}
		if token == "" {
			result.Action = WebhookActionDuplicate
			result.Entitlement = claimed
			return result, nil
		}

		outcome := Captured()
		if ev.Type == provider.WebhookPaymentAuthorized {
			outcome = ApplyFailOpen(s.capture(ctx, claimed, ev.PaymentID))
		}

		event := model.PaymentEvent{OrderID: ev.OrderID, PaymentID: ev.PaymentID, Source: "webhook"}
		settled, err := s.finalize(ctx, claimed, token, event, outcome, "webhook")
		if err != nil {
			if errors.Is(err, domainErrors.ErrPaymentFailed) {
				result.Action = WebhookActionFailed
				return result, nil
			}
			return nil, err
		}
		result.Action = WebhookActionSettled
		result.Entitlement = settled
		return result, nil

	case provider.WebhookPaymentFailed:
		failed, err := s.entitlements.MarkFailedIfCreated(ctx, ev.OrderID, model.PaymentEvent{
			OrderID:   ev.OrderID,
			PaymentID: ev.PaymentID,
			Status:    string(model.SettlementFailed),
			Source:    "webhook",
			At:        time.Now().UnixMilli(),
		}, ev.Reason)
		if err != nil {
			if errors.Is(err, domainErrors.ErrOrderNotFound) {
				return result, nil
			}
			return nil, err
		}
		log.Info("Order marked failed by webhook", zap.String("reason", ev.Reason))
		s.metrics.ObserveSettlement("webhook", "failed")
		s.notifier.record(ctx, auditEntry("webhook", "failed", failed, decimal.Zero, ev.Reason))
		result.Action = WebhookActionFailed
		result.Entitlement = failed
		return result, nil
	}

	return result, nil
}

type RefundInput struct {
	EntitlementID primitive.ObjectID
	Reason        string
	// Amount in major units. Zero refunds everything paid.
	Amount      float64
	RequestedBy string
}

// Refund refunds a captured entitlement and deactivates it. The record is kept.
func (s *SettlementService) Refund(ctx context.Context, in RefundInput) (*model.Entitlement, error) {
	ctx, _ = logger.EnsureCorrelationID(ctx)
	log := logger.For(ctx, s.logger).With(
		zap.String("entitlement_id", in.EntitlementID.Hex()),
		zap.String("requested_by", in.RequestedBy))

	if in.Amount < 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "refund amount must not be negative", nil)
	}

	ent, err := s.entitlements.FindByID(ctx, in.EntitlementID)
	if err != nil {
		return nil, err
	}
	if ent.SettlementState != model.SettlementCaptured || ent.PaymentID == "" {
		return nil, domainErrors.ErrNotRefundable
	}

	paid := decimal.NewFromFloat(ent.AmountPaid)
	amount := decimal.NewFromFloat(in.Amount)
	if amount.IsZero() {
		amount = paid
	}
	if amount.GreaterThan(paid) {
		return nil, domainErrors.ErrRefundExceedsPaid
	}
	amountMinor := entity.ToMinorUnits(amount.InexactFloat64(), ent.Currency)

	rctx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	start := time.Now()
	refund, err := s.gateway.Refund(rctx, &provider.RefundRequest{
		PaymentID: ent.PaymentID,
		Amount:    amountMinor,
		Notes: map[string]string{
			"reason":         in.Reason,
			"entitlement_id": ent.ID.Hex(),
		},
	})
	cancel()
	s.metrics.ObserveGatewayCall("refund", err, time.Since(start))
	if err != nil {
		log.Error("Gateway refund failed", zap.Error(err))
		s.notifier.record(ctx, auditEntry("refund", "gateway_error", ent, amount, err.Error()))
		return nil, apperrors.NewAppError(apperrors.ErrGateway, "refund failed at the payment gateway", err)
	}

	refunded := refund.Amount
	if refunded == 0 {
		refunded = amountMinor
	}
	now := time.Now().UnixMilli()
	updated, err := s.entitlements.MarkRefunded(ctx, ent.ID, model.RefundInfo{
		RefundID:   refund.ID,
		Amount:     entity.FromMinorUnits(refunded, ent.Currency),
		Reason:     in.Reason,
		Status:     refund.Status,
		RefundedAt: now,
	}, model.PaymentEvent{
		OrderID:   ent.OrderID,
		PaymentID: ent.PaymentID,
		Status:    string(model.SettlementRefunded),
		Source:    "admin",
		At:        now,
	})
	if err != nil {
		log.Error("Refund issued but entitlement update failed",
			zap.String("refund_id", refund.ID),
			zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to record refund")
	}

	log.Info("Entitlement refunded",
		zap.String("refund_id", refund.ID),
		zap.Int64("amount_minor", refunded))
	s.metrics.ObserveSettlement("refund", "refunded")
	s.notifier.record(ctx, auditEntry("refund", "refunded", updated, amount, in.Reason))
	s.notifier.publish(ctx, EventEntitlementRefunded, updated)
	return updated, nil
}

func isSettled(e *model.Entitlement) bool {
	switch e.SettlementState {
	case model.SettlementCaptured, model.SettlementRefunded:
		return true
	case "":
		// records created before settlement states were tracked
		return e.IsPayment == 1
	default:
		return false
	}
}

func auditEntry(operation, outcome string, e *model.Entitlement, amount decimal.Decimal, reason string) *model.AuditLog {
	entry := &model.AuditLog{
		Operation: operation,
		Outcome:   outcome,
		Amount:    amount,
		Reason:    reason,
		Metadata:  datatypes.JSONMap{},
	}
	if e == nil {
		return entry
	}
	entry.EntitlementID = e.ID.Hex()
	entry.OrderID = e.OrderID
	entry.PaymentID = e.PaymentID
	entry.UserID = e.User.Hex()
	entry.Currency = e.Currency
	entry.Metadata["payment_method"] = string(e.Method)
	entry.Metadata["settlement_state"] = string(e.SettlementState)
	return entry
}
