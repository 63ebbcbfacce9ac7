package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// cowamm module sentinel errors
var (
	ErrInvalidConfiguration  = errorsmod.Register(ModuleName, 2, "invalid trading configuration")
	ErrArithmeticOverflow    = errorsmod.Register(ModuleName, 3, "arithmetic overflow")
	ErrDivisionByZero        = errorsmod.Register(ModuleName, 4, "division by zero")
	ErrOrderNotValid         = errorsmod.Register(ModuleName, 5, "order not valid")
	ErrOracleUnavailable     = errorsmod.Register(ModuleName, 6, "oracle unavailable")
	ErrInvalidOracleData     = errorsmod.Register(ModuleName, 7, "invalid oracle data")
	ErrInvalidReferencePrice = errorsmod.Register(ModuleName, 8, "invalid reference price")
	ErrPoolNotFound          = errorsmod.Register(ModuleName, 9, "pool not found")
	ErrInvalidPool           = errorsmod.Register(ModuleName, 10, "invalid pool state")
)

// Rejection reasons carried by OrderNotValidError. Callers branch on these values.
const (
	ReasonInvalidTokens        = "invalid tokens"
	ReasonZeroAmount           = "zero amount"
	ReasonReceivedAmountTooLow = "received amount too low"
	ReasonInsufficientReserves = "insufficient reserves"
	ReasonTradeTooSmall        = "trade too small"
	ReasonAppDataMismatch      = "app data mismatch"
	ReasonCommitmentMismatch   = "commitment mismatch"
)

// OrderNotValidError rejects an order for a stable, machine readable reason.
type OrderNotValidError struct {
	Reason string
	Detail string
}

// NewOrderNotValid returns a rejection for reason with an optional human readable detail.
func NewOrderNotValid(reason, detail string) error {
	return &OrderNotValidError{Reason: reason, Detail: detail}
}

func (e *OrderNotValidError) Error() string {
	if e.Detail == "" {
		return ErrOrderNotValid.Error() + ": " + e.Reason
	}
	return ErrOrderNotValid.Error() + ": " + e.Reason + " (" + e.Detail + ")"
}

// Unwrap lets errors.Is(err, ErrOrderNotValid) match every rejection.
func (e *OrderNotValidError) Unwrap() error {
	return ErrOrderNotValid
}

// ReasonOf returns the rejection reason of err, if err is an order rejection.
func ReasonOf(err error) (string, bool) {
	var notValid *OrderNotValidError
	if errors.As(err, &notValid) {
		return notValid.Reason, true
	}
	return "", false
}
