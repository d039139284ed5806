package errors

import (
	"fmt"

	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
)

var (
	ErrUserNotFound        = apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)
	ErrContentNotFound     = apperrors.NewAppError(apperrors.ErrNotFound, "content not found", nil)
	ErrPlanNotFound        = apperrors.NewAppError(apperrors.ErrNotFound, "plan not found", nil)
	ErrCountryNotFound     = apperrors.NewAppError(apperrors.ErrNotFound, "country not found", nil)
	ErrOrderNotFound       = apperrors.NewAppError(apperrors.ErrNotFound, "order not found", nil)
	ErrEntitlementNotFound = apperrors.NewAppError(apperrors.ErrNotFound, "entitlement not found", nil)
)

var (
	// ErrSettlementInProgress is returned when another request holds the settlement claim for an order.
	ErrSettlementInProgress = apperrors.NewAppError(apperrors.ErrConflict, "settlement already in progress for this order", nil)
	// ErrDeviceClaimed is returned when a device is the live device of another user.
	ErrDeviceClaimed = apperrors.NewAppError(apperrors.ErrConflict, "device is registered to another account", nil)
	ErrNotRefundable = apperrors.NewAppError(apperrors.ErrConflict, "entitlement has no captured payment to refund", nil)
)

var (
	ErrSeriesRequiresPlan = apperrors.NewAppError(apperrors.ErrInvalidArgument, "series can only be purchased through a plan", nil)
	ErrAmountMismatch     = apperrors.NewAppError(apperrors.ErrInvalidArgument, "amount does not match the current price", nil)
	ErrInvalidScope       = apperrors.NewAppError(apperrors.ErrInvalidArgument, "exactly one of plan_id and video_id is required", nil)
	ErrRefundExceedsPaid  = apperrors.NewAppError(apperrors.ErrInvalidArgument, "refund amount exceeds the amount paid", nil)
	ErrInvalidPeriod      = apperrors.NewAppError(apperrors.ErrInvalidArgument, "period must be daily, weekly or monthly", nil)
)

var (
	ErrPaymentVerificationFailed = apperrors.NewAppError(apperrors.ErrPaymentFailed, "payment verification failed", nil)
	ErrPaymentFailed             = apperrors.NewAppError(apperrors.ErrPaymentFailed, "payment capture failed", nil)
)

// DeniedError is a policy decision, not a fault. Reason is machine readable.
type DeniedError struct {
	Reason  string
	Message string
}

func NewDeniedError(reason, message string) *DeniedError {
	return &DeniedError{Reason: reason, Message: message}
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap exposes the POLICY_DENIED code to apperrors.CodeOf.
func (e *DeniedError) Unwrap() error {
	return apperrors.NewAppError(apperrors.ErrPolicyDenied, e.Message, nil)
}

// IsDenied extracts a DeniedError from err's chain.
func IsDenied(err error) (*DeniedError, bool) {
	var denied *DeniedError
	ok := apperrors.As(err, &denied)
	return denied, ok
}
