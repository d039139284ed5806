package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
)

type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	// BackendURL overrides the API host. Tests only.
	BackendURL string
}

// StripeProvider settles orders as manually captured PaymentIntents.
// The PaymentIntent id doubles as the order id.
type StripeProvider struct {
	api            *client.API
	publishableKey string
	webhookSecret  string
	logger         *zap.Logger
}

func NewStripeProvider(cfg Config, logger *zap.Logger) *StripeProvider {
	var backends *stripe.Backends
	if cfg.BackendURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL:               stripe.String(cfg.BackendURL),
				MaxNetworkRetries: stripe.Int64(0),
			}),
		}
	}
	return &StripeProvider{
		api:            client.New(cfg.SecretKey, backends),
		publishableKey: cfg.PublishableKey,
		webhookSecret:  cfg.WebhookSecret,
		logger:         logger,
	}
}

var _ provider.PaymentGateway = (*StripeProvider)(nil)

func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

func (s *StripeProvider) PublicKey() string {
	return s.publishableKey
}

func (s *StripeProvider) CreateOrder(ctx context.Context, req *provider.CreateOrderRequest) (*provider.Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		s.logger.Error("StripeProvider: payment intent creation failed",
			zap.String("receipt", req.Receipt),
			zap.Error(err))
		return nil, toProviderError(err)
	}

	s.logger.Info("StripeProvider: payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", pi.Amount))

	return &provider.Order{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Receipt:      req.Receipt,
		AmountDue:    pi.Amount - pi.AmountReceived,
		AmountPaid:   pi.AmountReceived,
		Status:       string(pi.Status),
		CreatedAt:    pi.Created,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// VerifySignature always fails: Stripe checkouts carry no client signature, so
// confirmation falls through to a status lookup.
func (s *StripeProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return false
}

func (s *StripeProvider) CapturePayment(ctx context.Context, req *provider.CaptureRequest) (*provider.Payment, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	if req.Amount > 0 {
		params.AmountToCapture = stripe.Int64(req.Amount)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Capture(req.PaymentID, params)
	if err != nil {
		s.logger.Warn("StripeProvider: capture failed",
			zap.String("payment_intent_id", req.PaymentID),
			zap.Error(err))
		return nil, toProviderError(err)
	}
	return toPayment(pi), nil
}

func (s *StripeProvider) GetPaymentDetails(ctx context.Context, paymentID string) (*provider.Payment, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(paymentID, params)
	if err != nil {
		return nil, toProviderError(err)
	}
	return toPayment(pi), nil
}

func (s *StripeProvider) Refund(ctx context.Context, req *provider.RefundRequest) (*provider.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentID),
	}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	r, err := s.api.Refunds.New(params)
	if err != nil {
		s.logger.Error("StripeProvider: refund failed",
			zap.String("payment_intent_id", req.PaymentID),
			zap.Error(err))
		return nil, toProviderError(err)
	}
	return &provider.Refund{
		ID:        r.ID,
		PaymentID: req.PaymentID,
		Amount:    r.Amount,
		Status:    string(r.Status),
	}, nil
}

func (s *StripeProvider) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       "INVALID_SIGNATURE",
			Message:    "Webhook signature verification failed",
			Details:    err.Error(),
			StatusCode: http.StatusUnauthorized,
		}
	}

	out := &provider.WebhookEvent{ID: event.ID}
	switch event.Type {
	case stripe.EventTypePaymentIntentAmountCapturableUpdated:
		out.Type = provider.WebhookPaymentAuthorized
	case stripe.EventTypePaymentIntentSucceeded:
		out.Type = provider.WebhookPaymentCaptured
	case stripe.EventTypePaymentIntentPaymentFailed, stripe.EventTypePaymentIntentCanceled:
		out.Type = provider.WebhookPaymentFailed
	default:
		out.Type = provider.WebhookIgnored
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, &provider.ProviderError{
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse payment intent",
			Details:    err.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}
	p := toPayment(&pi)
	out.OrderID = p.OrderID
	out.PaymentID = p.ID
	out.Status = p.Status
	out.Amount = p.Amount
	if pi.LastPaymentError != nil {
		out.Reason = pi.LastPaymentError.Msg
	}
	return out, nil
}

func toPayment(pi *stripe.PaymentIntent) *provider.Payment {
	return &provider.Payment{
		ID:       pi.ID,
		OrderID:  pi.ID,
		Status:   paymentStatus(pi),
		Amount:   pi.Amount,
		Currency: strings.ToUpper(string(pi.Currency)),
		Captured: pi.Status == stripe.PaymentIntentStatusSucceeded,
	}
}

func paymentStatus(pi *stripe.PaymentIntent) provider.PaymentStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		return provider.PaymentStatusAuthorized
	case stripe.PaymentIntentStatusSucceeded:
		return provider.PaymentStatusCaptured
	case stripe.PaymentIntentStatusCanceled:
		return provider.PaymentStatusFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return provider.PaymentStatusFailed
		}
		return provider.PaymentStatusCreated
	default:
		return provider.PaymentStatusCreated
	}
}

func toProviderError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &provider.ProviderError{
			Code:       string(serr.Code),
			Message:    serr.Msg,
			Details:    string(serr.Type),
			StatusCode: serr.HTTPStatusCode,
		}
	}
	return &provider.ProviderError{
		Code:    "API_ERROR",
		Message: "Stripe API request failed",
		Details: err.Error(),
	}
}
