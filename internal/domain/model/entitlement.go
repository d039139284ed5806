package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementState tracks a gateway-backed entitlement through payment settlement.
type SettlementState string

const (
	SettlementCreated   SettlementState = "created"
	SettlementVerifying SettlementState = "verifying"
	SettlementCaptured  SettlementState = "captured"
	SettlementFailed    SettlementState = "failed"
	SettlementRefunded  SettlementState = "refunded"
)

// PaymentMethod tags how an entitlement was paid for.
type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodManual  PaymentMethod = "manual"
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodFree    PaymentMethod = "FREE"
)

// Entitlement grants a user timed access to a plan's catalog or to one video.
// Exactly one of Plan and Video is set.
type Entitlement struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User    primitive.ObjectID  `bson:"user" json:"user_id"`
	Plan    *primitive.ObjectID `bson:"plan,omitempty" json:"plan_id,omitempty"`
	Video   *primitive.ObjectID `bson:"video,omitempty" json:"video_id,omitempty"`
	Channel primitive.ObjectID  `bson:"channel" json:"channel_id"`

	// Validity window in epoch milliseconds, [From, To).
	From       int64 `bson:"from" json:"from"`
	To         int64 `bson:"to" json:"to"`
	DurationMs int64 `bson:"duration_ms" json:"duration_ms"`

	Price       float64       `bson:"price" json:"price"`
	AmountPaid  float64       `bson:"amount_paid" json:"amount_paid"`
	AmountMinor int64         `bson:"amount_minor" json:"amount_minor"`
	Currency    string        `bson:"currency" json:"currency"`
	Country     string        `bson:"country,omitempty" json:"country,omitempty"`
	Method      PaymentMethod `bson:"payment_method" json:"payment_method"`

	OrderID   string         `bson:"order_id,omitempty" json:"order_id,omitempty"`
	Receipt   string         `bson:"receipt,omitempty" json:"receipt,omitempty"`
	PaymentID string         `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Payments  []PaymentEvent `bson:"payments" json:"payments"`

	SettlementState SettlementState `bson:"settlement_state" json:"settlement_state"`
	ClaimToken      string          `bson:"claim_token,omitempty" json:"-"`
	ClaimedAt       int64           `bson:"claimed_at,omitempty" json:"-"`
	FailureReason   string          `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Status    int `bson:"status" json:"status"`
	IsActive  int `bson:"is_active" json:"is_active"`
	IsPayment int `bson:"ispayment" json:"ispayment"`

	Refund *RefundInfo `bson:"refund,omitempty" json:"refund,omitempty"`

	GrantedBy string    `bson:"granted_by,omitempty" json:"granted_by,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PaymentEvent is one gateway event snapshot. The latest entry reflects the settlement state.
type PaymentEvent struct {
	OrderID   string `bson:"order_id" json:"order_id"`
	PaymentID string `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Signature string `bson:"signature,omitempty" json:"-"`
	Status    string `bson:"status" json:"status"`
	Source    string `bson:"source,omitempty" json:"source,omitempty"`
	At        int64  `bson:"at" json:"at"`
}

type RefundInfo struct {
	RefundID   string  `bson:"refund_id" json:"refund_id"`
	Amount     float64 `bson:"amount" json:"amount"`
	Reason     string  `bson:"reason" json:"reason"`
	Status     string  `bson:"status" json:"status"`
	RefundedAt int64   `bson:"refunded_at" json:"refunded_at"`
}

// IsLive reports whether the entitlement grants access at now (epoch ms).
func (e *Entitlement) IsLive(now int64) bool {
	return e.Status == 1 && e.IsActive == 1 && e.From <= now && now < e.To
}

// IsPlanScoped reports whether the entitlement covers a plan rather than one video.
func (e *Entitlement) IsPlanScoped() bool {
	return e.Plan != nil && !e.Plan.IsZero()
}

// LatestPayment returns the most recent payment event, if any.
func (e *Entitlement) LatestPayment() *PaymentEvent {
	if len(e.Payments) == 0 {
		return nil
	}
	return &e.Payments[len(e.Payments)-1]
}
