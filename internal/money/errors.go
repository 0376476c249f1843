package money

import "errors"

var (
	// ErrInvalidArgument covers negative amounts, non-positive rates and
	// negative prices handed to any kernel function.
	ErrInvalidArgument = errors.New("money: invalid argument")

	// ErrConditionSuppressed means a PO grade reached the mapping layer.
	// Callers treat it as a rejection, not a fault.
	ErrConditionSuppressed = errors.New("money: condition suppressed")

	ErrUnknownCondition = errors.New("money: unknown condition grade")
	ErrUnknownRegime    = errors.New("money: unknown customs regime")
)
