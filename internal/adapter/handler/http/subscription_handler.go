package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

type SubscriptionHandler struct {
	settlement SettlementUsecase
	checker    EntitlementChecker
	country    countryResolver
	logger     *zap.Logger
}

func NewSubscriptionHandler(settlement SettlementUsecase, checker EntitlementChecker, geo CountryLookup, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		settlement: settlement,
		checker:    checker,
		country:    countryResolver{lookup: geo, logger: logger},
		logger:     logger,
	}
}

type CreateOrderRequest struct {
	ChannelID string   `json:"channel_id" validate:"required,len=24,hexadecimal"`
	PlanID    string   `json:"plan_id"`
	VideoID   string   `json:"video_id"`
	Amount    *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency  string   `json:"currency" validate:"omitempty,len=3"`
	Country   string   `json:"country" validate:"omitempty,len=2"`
}

// CreateOrder prices the purchase server-side and opens a gateway order
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) CreateOrder(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	channelID, _ := primitive.ObjectIDFromHex(req.ChannelID)

	result, err := h.settlement.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		UserID:    user.UserID,
		ChannelID: channelID,
		PlanID:    req.PlanID,
		VideoID:   req.VideoID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Country:   h.country.resolve(c, req.Country),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if result.AlreadyEntitled {
		return respondOK(c, http.StatusOK, "Already entitled", result)
	}
	return respondOK(c, http.StatusCreated, "Order created", result)
}

type ConfirmPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// ConfirmPayment settles an order from the client checkout callback
// POST /api/v1/subscriptions/confirm
func (h *SubscriptionHandler) ConfirmPayment(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	var req ConfirmPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	ent, err := h.settlement.ConfirmPayment(c.Request().Context(), usecase.ConfirmInput{
		UserID:    user.UserID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Payment confirmed", ent)
}

// CheckEntitlement answers whether the caller holds live access
// GET /api/v1/entitlements/check?channel_id=&video_id=|plan_id=|category=
func (h *SubscriptionHandler) CheckEntitlement(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return unauthenticated(c)
	}

	channelID, err := primitive.ObjectIDFromHex(c.QueryParam("channel_id"))
	if err != nil {
		return badRequest(c, "channel_id is required")
	}

	result, err := h.checker.Check(c.Request().Context(), usecase.CheckInput{
		UserID:    user.UserID,
		ChannelID: channelID,
		VideoID:   c.QueryParam("video_id"),
		PlanID:    c.QueryParam("plan_id"),
		Category:  model.ContentType(c.QueryParam("category")),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Entitlement checked", result)
}
