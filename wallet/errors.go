package wallet

import (
	"errors"

	"github.com/etnz/settle"
)

// Errors shared with the settle engine, so that callers match one taxonomy.
var (
	ErrInvalidAmount       = settle.ErrInvalidAmount
	ErrInsufficientFunds   = settle.ErrInsufficientFunds
	ErrUnsupportedCurrency = settle.ErrUnsupportedCurrency
)

var (
	// ErrInvalidBucket reports a bucket name other than available or pending.
	ErrInvalidBucket = errors.New("invalid bucket")
	// ErrInvalidAction reports an operation that is not credit, debit, hold or release.
	ErrInvalidAction = errors.New("invalid action")
	// ErrUnknownAccount reports a payment method that does not exist or was deleted.
	ErrUnknownAccount = errors.New("unknown payment method")
	// ErrExists reports a payment method id that is already registered.
	ErrExists = errors.New("payment method already exists")
	// ErrInUse reports the deletion of a payment method that still holds money.
	ErrInUse = errors.New("payment method in use")
	// ErrIdempotencyConflict reports a token reused for a different operation.
	ErrIdempotencyConflict = errors.New("idempotency token reused for a different operation")
)
