package errors

// Error codes shared by every layer. Handlers translate them with ToHTTPStatus.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"

	// Entitlement engine outcomes
	ErrPolicyDenied  = "POLICY_DENIED"
	ErrPaymentFailed = "PAYMENT_FAILED"
	ErrGateway       = "GATEWAY_ERROR"
)
