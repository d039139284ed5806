package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
)

// LiveQuery selects entitlements that grant access at Now.
type LiveQuery struct {
	User    primitive.ObjectID
	Channel primitive.ObjectID
	Now     int64

	// Exactly one of the following narrows the scope.
	Video   *primitive.ObjectID
	Plan    *primitive.ObjectID
	AnyPlan bool
}

// SettlementUpdate is written atomically when the claim holder finalizes an order.
type SettlementUpdate struct {
	State         model.SettlementState
	PaymentID     string
	AmountPaid    float64
	From          int64
	To            int64
	FailureReason string
	Event         model.PaymentEvent
}

type EntitlementRepository interface {
	Create(ctx context.Context, e *model.Entitlement) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Entitlement, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Entitlement, error)
	FindLive(ctx context.Context, q LiveQuery) ([]model.Entitlement, error)

	// ClaimForSettlement moves a created or failed order, or one whose claim went stale before
	// staleBefore, to verifying under token. It returns ErrSettlementInProgress when nothing matched.
	ClaimForSettlement(ctx context.Context, orderID, token string, now, staleBefore int64) (*model.Entitlement, error)
	// FinalizeSettlement applies update only while token still holds the claim.
	FinalizeSettlement(ctx context.Context, id primitive.ObjectID, token string, update SettlementUpdate) (*model.Entitlement, error)
	// MarkFailedIfCreated records a gateway-reported failure for an order nobody is settling.
	MarkFailedIfCreated(ctx context.Context, orderID string, event model.PaymentEvent, reason string) (*model.Entitlement, error)
	// MarkRefunded moves a captured entitlement to refunded. It returns ErrNotRefundable otherwise.
	MarkRefunded(ctx context.Context, id primitive.ObjectID, refund model.RefundInfo, event model.PaymentEvent) (*model.Entitlement, error)

	Delete(ctx context.Context, id primitive.ObjectID) error
}
