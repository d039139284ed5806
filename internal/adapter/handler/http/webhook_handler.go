package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
)

// Signature headers by provider. The first non-empty one is used.
var webhookSignatureHeaders = []string{"X-Razorpay-Signature", "Stripe-Signature"}

type WebhookHandler struct {
	settlement SettlementUsecase
	logger     *zap.Logger
}

func NewWebhookHandler(settlement SettlementUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{settlement: settlement, logger: logger}
}

// HandleWebhook settles orders from gateway events
// POST /webhooks/payment
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return badRequest(c, "Error reading request body")
	}

	var sig string
	for _, header := range webhookSignatureHeaders {
		if sig = c.Request().Header.Get(header); sig != "" {
			break
		}
	}
	if sig == "" {
		return respondFail(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated, "", "Missing webhook signature")
	}

	result, err := h.settlement.HandleWebhook(c.Request().Context(), body, sig)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("Webhook processed",
		zap.String("event_type", result.EventType),
		zap.String("action", result.Action))
	return respondOK(c, http.StatusOK, "Webhook processed", result)
}
