package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/provider"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

func respondOK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondFail(c echo.Context, status int, code, reason, message string) error {
	return c.JSON(status, Response{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Code: code, Reason: reason},
	})
}

func badRequest(c echo.Context, message string) error {
	return respondFail(c, http.StatusBadRequest, apperrors.ErrInvalidArgument, "", message)
}

func unauthenticated(c echo.Context) error {
	return respondFail(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated, "", "Authentication required")
}

// respondError maps err onto the envelope. Unknown errors become a logged 500 without details.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	log = logger.For(c.Request().Context(), log)

	if denied, ok := domainErrors.IsDenied(err); ok {
		return respondFail(c, http.StatusForbidden, apperrors.ErrPolicyDenied, denied.Reason, denied.Message)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := apperrors.ToHTTPStatus(appErr.Code())
		if status >= http.StatusInternalServerError {
			apperrors.LogError(log, err, "Request failed")
			return respondFail(c, status, appErr.Code(), "", http.StatusText(status))
		}
		return respondFail(c, status, appErr.Code(), "", appErr.Message())
	}

	var perr *provider.ProviderError
	if errors.As(err, &perr) {
		log.Warn("Gateway rejected request", zap.String("gateway_code", perr.Code), zap.Error(err))
		return respondFail(c, http.StatusBadGateway, apperrors.ErrGateway, perr.Code, "Payment gateway error")
	}

	log.Error("Unhandled error", zap.Error(err))
	return respondFail(c, http.StatusInternalServerError, apperrors.ErrInternal, "", "Internal server error")
}
