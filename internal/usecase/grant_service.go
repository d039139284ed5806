package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
	"github.com/wekeepgrowing/ott-entitlement/pkg/messaging"
)

type GrantDeps struct {
	Entitlements repository.EntitlementRepository
	Users        repository.UserRepository
	Plans        repository.PlanRepository
	Contents     repository.ContentRepository
	Pricing      *PricingService
	Access       *EntitlementService
	Audit        repository.AuditLogRepository
	Events       messaging.Publisher
	EventChannel string
	Metrics      Metrics
}

// GrantService creates and removes entitlements by hand, without a gateway leg.
type GrantService struct {
	entitlements repository.EntitlementRepository
	users        repository.UserRepository
	plans        repository.PlanRepository
	contents     repository.ContentRepository
	pricing      *PricingService
	access       *EntitlementService
	metrics      Metrics
	notifier     notifier
	logger       *zap.Logger
}

func NewGrantService(deps GrantDeps, logger *zap.Logger) *GrantService {
	return &GrantService{
		entitlements: deps.Entitlements,
		users:        deps.Users,
		plans:        deps.Plans,
		contents:     deps.Contents,
		pricing:      deps.Pricing,
		access:       deps.Access,
		metrics:      metricsOrNop(deps.Metrics),
		notifier: notifier{
			events:  deps.Events,
			channel: deps.EventChannel,
			audit:   deps.Audit,
			logger:  logger,
		},
		logger: logger,
	}
}

type GrantInput struct {
	UserID    primitive.ObjectID
	ChannelID primitive.ObjectID
	PlanID    string
	VideoID   string
	Method    model.PaymentMethod
	// CustomDurationDays overrides the plan cycle or the 48h video default.
	CustomDurationDays int
	// Amount collected offline; defaults to the catalog price for manual and cash grants.
	Amount    *float64
	Currency  string
	GrantedBy string
}

type GrantResult struct {
	Entitlement     *model.Entitlement `json:"entitlement"`
	AlreadyEntitled bool               `json:"already_entitled"`
}

// Grant creates an entitlement that is live immediately.
func (s *GrantService) Grant(ctx context.Context, in GrantInput) (*GrantResult, error) {
	ctx, _ = logger.EnsureCorrelationID(ctx)
	log := logger.For(ctx, s.logger).With(
		zap.String("user_id", in.UserID.Hex()),
		zap.String("granted_by", in.GrantedBy))

	switch in.Method {
	case model.PaymentMethodManual, model.PaymentMethodCash, model.PaymentMethodFree:
	default:
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "payment_method must be manual, CASH or FREE", nil)
	}
	if in.CustomDurationDays < 0 {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "custom_duration must not be negative", nil)
	}

	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	p, err := resolvePurchase(ctx, s.plans, s.contents, s.pricing, purchaseRequest{
		PlanID:    in.PlanID,
		VideoID:   in.VideoID,
		ChannelID: in.ChannelID,
		Grant:     true,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.access.FindLiveEntitlement(ctx, in.UserID, p.channel, p.resource)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info("User already holds a live entitlement, skipping grant",
			zap.String("entitlement_id", existing.ID.Hex()))
		return &GrantResult{Entitlement: existing, AlreadyEntitled: true}, nil
	}

	duration := p.duration
	if p.plan == nil {
		duration = DefaultVideoValidity
	}
	if in.CustomDurationDays > 0 {
		duration = time.Duration(in.CustomDurationDays) * 24 * time.Hour
	}

	currency := p.currency
	if in.Currency != "" {
		currency = strings.ToUpper(in.Currency)
	}
	paid := 0.0
	if in.Method != model.PaymentMethodFree {
		paid = p.price
		if in.Amount != nil {
			paid = *in.Amount
		}
	}

	now := time.Now()
	from := now.UnixMilli()
	ent := &model.Entitlement{
		User:            in.UserID,
		Channel:         p.channel,
		From:            from,
		To:              from + duration.Milliseconds(),
		DurationMs:      duration.Milliseconds(),
		Price:           p.price,
		AmountPaid:      paid,
		AmountMinor:     entity.ToMinorUnits(paid, currency),
		Currency:        currency,
		Method:          in.Method,
		Payments:        []model.PaymentEvent{{Status: string(model.SettlementCaptured), Source: "grant", At: from}},
		SettlementState: model.SettlementCaptured,
		Status:          1,
		IsActive:        1,
		IsPayment:       1,
		GrantedBy:       in.GrantedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Method == model.PaymentMethodFree {
		ent.IsPayment = 0
	}
	p.applyScope(ent)

	if err := s.entitlements.Create(ctx, ent); err != nil {
		log.Error("Failed to store granted entitlement", zap.Error(err))
		return nil, apperrors.Wrap(err, "failed to store entitlement")
	}

	log.Info("Entitlement granted",
		zap.String("entitlement_id", ent.ID.Hex()),
		zap.String("payment_method", string(in.Method)),
		zap.Duration("duration", duration))
	s.metrics.ObserveSettlement("grant", strings.ToLower(string(in.Method)))
	s.notifier.record(ctx, auditEntry("grant", strings.ToLower(string(in.Method)), ent, decimal.NewFromFloat(paid), ""))
	s.notifier.publish(ctx, EventEntitlementGranted, ent)

	return &GrantResult{Entitlement: ent}, nil
}

// Remove deletes an entitlement outright.
func (s *GrantService) Remove(ctx context.Context, id primitive.ObjectID, removedBy string) error {
	ctx, _ = logger.EnsureCorrelationID(ctx)

	ent, err := s.entitlements.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.entitlements.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, "failed to delete entitlement")
	}

	logger.For(ctx, s.logger).Info("Entitlement removed",
		zap.String("entitlement_id", id.Hex()),
		zap.String("removed_by", removedBy))
	s.metrics.ObserveSettlement("remove", "removed")
	entry := auditEntry("remove", "removed", ent, decimal.Zero, "")
	entry.Metadata["removed_by"] = removedBy
	s.notifier.record(ctx, entry)
	return nil
}
