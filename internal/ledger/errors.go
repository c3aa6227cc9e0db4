package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientPositionError reports a sell that would drive a holding below
// zero. It marks a logic fault in the caller, not a transient condition to
// retry; the holding is left unchanged.
type InsufficientPositionError struct {
	Symbol    string
	Requested decimal.Decimal
	Held      decimal.Decimal
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position for %s: requested %s, held %s",
		e.Symbol, e.Requested, e.Held)
}

// NoPositionError reports an operation against a symbol with no open holding.
type NoPositionError struct {
	Symbol string
}

func (e *NoPositionError) Error() string {
	return fmt.Sprintf("no open position for %s", e.Symbol)
}

// ValidationError reports malformed ledger input (non-positive amount or
// price).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
