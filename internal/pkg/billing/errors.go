package billing

import "errors"

// Error taxonomy shared by the billing service and its HTTP controllers.
// Validation errors map to 4xx responses with their message as-is; provider
// and infrastructure errors are logged in full server-side and surface to the
// client as one of the generic sentinels below.
var (
	ErrInvalidPlan            = errors.New("invalid plan")
	ErrMissingField           = errors.New("missing required field")
	ErrUnauthenticated        = errors.New("authentication required")
	ErrCheckoutCreationFailed = errors.New("failed to create checkout session")
	ErrSignatureInvalid       = errors.New("webhook signature verification failed")
	ErrUserNotFound           = errors.New("user not found")
	ErrReconciliationFailed   = errors.New("failed to reconcile payment")
	ErrPaymentNotCompleted    = errors.New("payment not completed")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrRefundNotEligible      = errors.New("transaction is no longer eligible for refund")
	ErrRefundRequestNotFound  = errors.New("refund request not found")
	ErrRefundAlreadyResolved  = errors.New("refund request already resolved")
)
