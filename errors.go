package settle

import "errors"

// Errors returned by the engine. Callers match them with errors.Is.
var (
	// ErrMalformedSplit reports an expense whose split rows do not conserve its amount.
	ErrMalformedSplit = errors.New("malformed split")
	// ErrUnbalancedLedger reports net balances that do not sum to zero.
	// It is unreachable from validated records.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
	// ErrInvalidAmount reports a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrOverRepayment reports a repayment larger than the loan outstanding.
	ErrOverRepayment = errors.New("repayment exceeds outstanding")
	// ErrInsufficientFunds reports a debit or hold larger than the bucket.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnsupportedCurrency reports a currency code unknown to the ISO-4217 catalog.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	ErrLoanClosed        = errors.New("loan is closed")
	ErrLoanHasRepayments = errors.New("loan has repayments")
	ErrInvalidRecord     = errors.New("invalid record")
)
