package provider

import (
	"context"
)

// PaymentGateway is the remote payment service that settles gateway-backed entitlements.
// Timeouts are carried by ctx; status lookups are expected to use a much shorter one than captures.
type PaymentGateway interface {
	// CreateOrder opens an order for amount (minor units) in currency.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)

	// VerifySignature checks the client-submitted checkout signature.
	VerifySignature(orderID, paymentID, signature string) bool

	// CapturePayment captures an authorized payment for the recorded amount.
	CapturePayment(ctx context.Context, req *CaptureRequest) (*Payment, error)

	// GetPaymentDetails fetches a payment's current state.
	GetPaymentDetails(ctx context.Context, paymentID string) (*Payment, error)

	// Refund refunds amount (minor units) of a captured payment. Zero refunds everything.
	Refund(ctx context.Context, req *RefundRequest) (*Refund, error)

	// ParseWebhook authenticates and decodes a webhook delivery.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// PublicKey is the key clients use to open the checkout.
	PublicKey() string

	GetProviderName() string
}

type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	AmountDue  int64  `json:"amount_due"`
	AmountPaid int64  `json:"amount_paid"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	// ClientSecret is set by providers whose checkout needs it.
	ClientSecret string `json:"client_secret,omitempty"`
}

type CaptureRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type Payment struct {
	ID       string        `json:"id"`
	OrderID  string        `json:"order_id"`
	Status   PaymentStatus `json:"status"`
	Amount   int64         `json:"amount"`
	Currency string        `json:"currency"`
	Captured bool          `json:"captured"`
}

type RefundRequest struct {
	PaymentID string            `json:"payment_id"`
	Amount    int64             `json:"amount"`
	Notes     map[string]string `json:"notes,omitempty"`
}

type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// WebhookEvent is a provider-agnostic webhook delivery.
type WebhookEvent struct {
	ID        string        `json:"id"`
	Type      WebhookType   `json:"type"`
	OrderID   string        `json:"order_id"`
	PaymentID string        `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	Amount    int64         `json:"amount"`
	Reason    string        `json:"reason,omitempty"`
}

type WebhookType string

const (
	WebhookPaymentAuthorized WebhookType = "payment.authorized"
	WebhookPaymentCaptured   WebhookType = "payment.captured"
	WebhookPaymentFailed     WebhookType = "payment.failed"
	WebhookIgnored           WebhookType = "ignored"
)

// PaymentStatus is a payment state as reported by the gateway.
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// ProviderType selects the gateway implementation.
type ProviderType string

const (
	ProviderTypeRazorpay ProviderType = "razorpay"
	ProviderTypeStripe   ProviderType = "stripe"
)

// ProviderError is a failed gateway call.
type ProviderError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Transient reports whether the failure may resolve on its own (timeouts, 5xx, transport errors).
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}
