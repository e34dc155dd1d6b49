package errs

import "errors"

// Domain-specific sentinel errors shared by usecases and handlers
var (
	// Slot errors
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotStateNotMet = errors.New("slot is not in the expected state")

	// Session errors
	ErrSessionNotFound  = errors.New("parking session not found")
	ErrSessionNotActive = errors.New("parking session is not active")

	// Vehicle / user errors
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrVehicleBlacklisted = errors.New("vehicle has outstanding debt")

	// Payment errors
	ErrPaymentIntentMissing = errors.New("card payment without payment intent")
	ErrTransactionNotFound  = errors.New("payment transaction not found")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
