package types

import (
	sdkmath "cosmossdk.io/math"
)

// ReferencePrice is the external price the pool is steered toward, expressed as a ratio of
// amounts: Numerator units of asset0 are worth Denominator units of asset1. A pool is at the
// reference price when reserve1*Numerator == reserve0*Denominator.
type ReferencePrice struct {
	Numerator   sdkmath.Int `json:"numerator"`
	Denominator sdkmath.Int `json:"denominator"`
}

// NewReferencePrice builds a price ratio.
func NewReferencePrice(numerator, denominator sdkmath.Int) ReferencePrice {
	return ReferencePrice{Numerator: numerator, Denominator: denominator}
}

// Validate requires both sides of the ratio to be strictly positive.
func (p ReferencePrice) Validate() error {
	if p.Numerator.IsNil() || p.Denominator.IsNil() {
		return ErrInvalidReferencePrice.Wrap("price ratio must be set")
	}
	if !p.Numerator.IsPositive() || !p.Denominator.IsPositive() {
		return ErrInvalidReferencePrice.Wrapf("price ratio must be positive: %s:%s", p.Numerator, p.Denominator)
	}
	return nil
}

// Inverse swaps the sides of the ratio, for sources quoting the pair in the opposite order.
func (p ReferencePrice) Inverse() ReferencePrice {
	return ReferencePrice{Numerator: p.Denominator, Denominator: p.Numerator}
}

func (p ReferencePrice) String() string {
	return p.Numerator.String() + ":" + p.Denominator.String()
}
