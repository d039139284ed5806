package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

// AdminHandler serves the operator endpoints. Routes are mounted behind RequireRole.
type AdminHandler struct {
	grants     GrantUsecase
	settlement SettlementUsecase
	views      ViewResetter
	audit      repository.AuditLogRepository
	logger     *zap.Logger
}

func NewAdminHandler(grants GrantUsecase, settlement SettlementUsecase, views ViewResetter, audit repository.AuditLogRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		grants:     grants,
		settlement: settlement,
		views:      views,
		audit:      audit,
		logger:     logger,
	}
}

type GrantRequest struct {
	UserID             string   `json:"user_id" validate:"required,len=24,hexadecimal"`
	ChannelID          string   `json:"channel_id" validate:"required,len=24,hexadecimal"`
	PlanID             string   `json:"plan_id"`
	VideoID            string   `json:"video_id"`
	PaymentMethod      string   `json:"payment_method" validate:"required,oneof=manual CASH FREE"`
	CustomDurationDays int      `json:"custom_duration" validate:"gte=0"`
	Amount             *float64 `json:"amount" validate:"omitempty,gte=0"`
	Currency           string   `json:"currency" validate:"omitempty,len=3"`
}

// Grant creates an immediately active entitlement
// POST /api/v1/admin/grants
func (h *AdminHandler) Grant(c echo.Context) error {
	var req GrantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	userID, _ := primitive.ObjectIDFromHex(req.UserID)
	channelID, _ := primitive.ObjectIDFromHex(req.ChannelID)

	result, err := h.grants.Grant(c.Request().Context(), usecase.GrantInput{
		UserID:             userID,
		ChannelID:          channelID,
		PlanID:             req.PlanID,
		VideoID:            req.VideoID,
		Method:             model.PaymentMethod(req.PaymentMethod),
		CustomDurationDays: req.CustomDurationDays,
		Amount:             req.Amount,
		Currency:           req.Currency,
		GrantedBy:          operator(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if result.AlreadyEntitled {
		return respondOK(c, http.StatusOK, "User already holds live access", result)
	}
	return respondOK(c, http.StatusCreated, "Entitlement granted", result)
}

type RefundRequest struct {
	EntitlementID string  `json:"entitlement_id" validate:"required,len=24,hexadecimal"`
	Reason        string  `json:"reason" validate:"required,max=500"`
	Amount        float64 `json:"amount" validate:"gte=0"`
}

// Refund refunds a captured entitlement through the gateway
// POST /api/v1/admin/refunds
func (h *AdminHandler) Refund(c echo.Context) error {
	var req RefundRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	id, _ := primitive.ObjectIDFromHex(req.EntitlementID)

	ent, err := h.settlement.Refund(c.Request().Context(), usecase.RefundInput{
		EntitlementID: id,
		Reason:        req.Reason,
		Amount:        req.Amount,
		RequestedBy:   operator(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Refund processed", ent)
}

// RemoveEntitlement deletes an entitlement record
// DELETE /api/v1/admin/entitlements/:id
func (h *AdminHandler) RemoveEntitlement(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid entitlement id")
	}

	if err := h.grants.Remove(c.Request().Context(), id, operator(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Entitlement removed", nil)
}

// ResetViews zeroes one view counter across the catalog
// POST /api/v1/admin/views/reset/:period
func (h *AdminHandler) ResetViews(c echo.Context) error {
	period := repository.ViewPeriod(c.Param("period"))

	n, err := h.views.ResetViews(c.Request().Context(), period)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("View counters reset",
		zap.String("period", string(period)),
		zap.Int64("modified", n),
		zap.String("operator", operator(c)))
	return respondOK(c, http.StatusOK, "View counters reset", echo.Map{"period": period, "modified": n})
}

// ListAuditLogs returns settlement audit entries for an order or entitlement
// GET /api/v1/admin/audit-logs?order_id=&entitlement_id=&limit=
func (h *AdminHandler) ListAuditLogs(c echo.Context) error {
	filter := repository.AuditLogFilter{
		OrderID:       c.QueryParam("order_id"),
		EntitlementID: c.QueryParam("entitlement_id"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return badRequest(c, "Invalid limit parameter")
		}
		filter.Limit = limit
	}

	logs, err := h.audit.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, http.StatusOK, "Audit logs", logs)
}

func operator(c echo.Context) string {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return ""
	}
	if user.Email != "" {
		return user.Email
	}
	return user.UserID.Hex()
}
