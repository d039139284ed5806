package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
	"github.com/wekeepgrowing/ott-entitlement/internal/infrastructure/crypto"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// RazorpayProvider talks to the Razorpay orders and payments API.
type RazorpayProvider struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
	checkout  crypto.Signer
	webhooks  crypto.Signer
	logger    *zap.Logger
}

func NewRazorpayProvider(cfg Config, logger *zap.Logger) *RazorpayProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RazorpayProvider{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   baseURL,
		// per-call deadlines come from ctx; this only bounds a hung connection
		client:   &http.Client{Timeout: 60 * time.Second},
		checkout: crypto.NewHMACSigner(cfg.KeySecret),
		webhooks: crypto.NewHMACSigner(cfg.WebhookSecret),
		logger:   logger,
	}
}

var _ provider.PaymentGateway = (*RazorpayProvider)(nil)

func (r *RazorpayProvider) GetProviderName() string {
	return string(provider.ProviderTypeRazorpay)
}

func (r *RazorpayProvider) PublicKey() string {
	return r.keyID
}

type orderResponse struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	AmountDue  int64  `json:"amount_due"`
	AmountPaid int64  `json:"amount_paid"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// CreateOrder opens an order
// POST /orders
func (r *RazorpayProvider) CreateOrder(ctx context.Context, req *provider.CreateOrderRequest) (*provider.Order, error) {
	body := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	var resp orderResponse
	if err := r.do(ctx, http.MethodPost, "/orders", body, &resp); err != nil {
		r.logger.Error("RazorpayProvider: order creation failed",
			zap.String("receipt", req.Receipt),
			zap.Int64("amount", req.Amount),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("RazorpayProvider: order created",
		zap.String("order_id", resp.ID),
		zap.Int64("amount", resp.Amount),
		zap.String("currency", resp.Currency))

	return &provider.Order{
		ID:         resp.ID,
		Amount:     resp.Amount,
		Currency:   resp.Currency,
		Receipt:    resp.Receipt,
		AmountDue:  resp.AmountDue,
		AmountPaid: resp.AmountPaid,
		Status:     resp.Status,
		CreatedAt:  resp.CreatedAt,
	}, nil
}

func (r *RazorpayProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return r.checkout.Verify(crypto.CheckoutMessage(orderID, paymentID), signature)
}

type paymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Captured bool   `json:"captured"`
}

func (p paymentResponse) toPayment() *provider.Payment {
	return &provider.Payment{
		ID:       p.ID,
		OrderID:  p.OrderID,
		Status:   provider.PaymentStatus(p.Status),
		Amount:   p.Amount,
		Currency: p.Currency,
		Captured: p.Captured,
	}
}

// CapturePayment captures an authorized payment
// POST /payments/{id}/capture
func (r *RazorpayProvider) CapturePayment(ctx context.Context, req *provider.CaptureRequest) (*provider.Payment, error) {
	body := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
	}

	var resp paymentResponse
	if err := r.do(ctx, http.MethodPost, "/payments/"+req.PaymentID+"/capture", body, &resp); err != nil {
		r.logger.Warn("RazorpayProvider: capture failed",
			zap.String("payment_id", req.PaymentID),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("RazorpayProvider: payment captured",
		zap.String("payment_id", resp.ID),
		zap.String("status", resp.Status))
	return resp.toPayment(), nil
}

// GetPaymentDetails fetches a payment
// GET /payments/{id}
func (r *RazorpayProvider) GetPaymentDetails(ctx context.Context, paymentID string) (*provider.Payment, error) {
	var resp paymentResponse
	if err := r.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toPayment(), nil
}

type refundResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// Refund refunds a captured payment
// POST /payments/{id}/refund
func (r *RazorpayProvider) Refund(ctx context.Context, req *provider.RefundRequest) (*provider.Refund, error) {
	body := map[string]interface{}{}
	if req.Amount > 0 {
		body["amount"] = req.Amount
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	var resp refundResponse
	if err := r.do(ctx, http.MethodPost, "/payments/"+req.PaymentID+"/refund", body, &resp); err != nil {
		r.logger.Error("RazorpayProvider: refund failed",
			zap.String("payment_id", req.PaymentID),
			zap.Error(err))
		return nil, err
	}

	return &provider.Refund{
		ID:        resp.ID,
		PaymentID: resp.PaymentID,
		Amount:    resp.Amount,
		Status:    resp.Status,
	}, nil
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				paymentResponse
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ParseWebhook checks X-Razorpay-Signature over the raw body before decoding it.
func (r *RazorpayProvider) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if !r.webhooks.Verify(payload, signature) {
		return nil, &provider.ProviderError{
			Code:       "INVALID_SIGNATURE",
			Message:    "Webhook signature verification failed",
			StatusCode: http.StatusUnauthorized,
		}
	}

	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &provider.ProviderError{
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse webhook",
			Details:    err.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}

	entity := env.Payload.Payment.Entity
	event := &provider.WebhookEvent{
		ID:        fmt.Sprintf("%s:%s:%d", env.Event, entity.ID, env.CreatedAt),
		OrderID:   entity.OrderID,
		PaymentID: entity.ID,
		Status:    provider.PaymentStatus(entity.Status),
		Amount:    entity.Amount,
		Reason:    entity.ErrorDescription,
	}
	switch env.Event {
	case "payment.authorized":
		event.Type = provider.WebhookPaymentAuthorized
	case "payment.captured", "order.paid":
		event.Type = provider.WebhookPaymentCaptured
	case "payment.failed":
		event.Type = provider.WebhookPaymentFailed
	default:
		event.Type = provider.WebhookIgnored
	}
	return event, nil
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (r *RazorpayProvider) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Code:    "MARSHAL_ERROR",
				Message: "Failed to prepare request",
				Details: err.Error(),
			}
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		code := "API_ERROR"
		if errors.Is(err, context.DeadlineExceeded) {
			code = "TIMEOUT"
		}
		return &provider.ProviderError{
			Code:    code,
			Message: "Razorpay API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read response",
			Details:    err.Error(),
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		_ = json.Unmarshal(respBody, &errResp)
		code, message := errResp.Error.Code, errResp.Error.Description
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &provider.ProviderError{
			Code:       code,
			Message:    message,
			Details:    string(respBody),
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse response",
			Details:    err.Error(),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}
