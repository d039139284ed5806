package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	payload := `{"event":"payment.captured"}`

	t.Run("missing signature", func(t *testing.T) {
		h := NewWebhookHandler(new(MockSettlementUsecase), zap.NewNop())
		c, rec := newContext(http.MethodPost, "/webhooks/payment", payload, nil)

		require.NoError(t, h.HandleWebhook(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("razorpay signature", func(t *testing.T) {
		settlement := new(MockSettlementUsecase)
		settlement.On("HandleWebhook", mock.Anything, []byte(payload), "rzp-sig").
			Return(&usecase.WebhookResult{EventType: "payment.captured", Action: usecase.WebhookActionSettled}, nil)
		h := NewWebhookHandler(settlement, zap.NewNop())

		c, rec := newContext(http.MethodPost, "/webhooks/payment", payload, nil)
		c.Request().Header.Set("X-Razorpay-Signature", "rzp-sig")

		require.NoError(t, h.HandleWebhook(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		settlement.AssertExpectations(t)
	})

	t.Run("stripe signature rejected", func(t *testing.T) {
		settlement := new(MockSettlementUsecase)
		settlement.On("HandleWebhook", mock.Anything, []byte(payload), "t=1,v1=abc").
			Return(nil, domainErrors.ErrPaymentVerificationFailed)
		h := NewWebhookHandler(settlement, zap.NewNop())

		c, rec := newContext(http.MethodPost, "/webhooks/payment", payload, nil)
		c.Request().Header.Set("Stripe-Signature", "t=1,v1=abc")

		require.NoError(t, h.HandleWebhook(c))
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})
}
