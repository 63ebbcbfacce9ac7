package types

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// Reserves is a snapshot of the balances a pool holds of its two assets.
type Reserves struct {
	Reserve0 sdkmath.Int `json:"reserve0"`
	Reserve1 sdkmath.Int `json:"reserve1"`
}

// NewReserves builds a reserve snapshot.
func NewReserves(reserve0, reserve1 sdkmath.Int) Reserves {
	return Reserves{Reserve0: reserve0, Reserve1: reserve1}
}

// Of returns the reserve of the given side.
func (r Reserves) Of(a Asset) sdkmath.Int {
	if a == AssetZero {
		return r.Reserve0
	}
	return r.Reserve1
}

// Validate checks that both reserves are set and non-negative.
func (r Reserves) Validate() error {
	if r.Reserve0.IsNil() || r.Reserve1.IsNil() {
		return ErrInvalidPool.Wrap("reserves must be set")
	}
	if r.Reserve0.IsNegative() || r.Reserve1.IsNegative() {
		return ErrInvalidPool.Wrapf("negative reserves: %s/%s", r.Reserve0, r.Reserve1)
	}
	return nil
}

// Pool is an immutable view of a constant-product pair captured for one invocation.
type Pool struct {
	ID       uint64   `json:"id"`
	Token0   string   `json:"token0"`
	Token1   string   `json:"token1"`
	Reserves Reserves `json:"reserves"`
}

// Token returns the denom of the given side.
func (p Pool) Token(a Asset) string {
	if a == AssetZero {
		return p.Token0
	}
	return p.Token1
}

// AssetOf maps a denom to its side of the pair.
func (p Pool) AssetOf(denom string) (Asset, bool) {
	switch denom {
	case p.Token0:
		return AssetZero, true
	case p.Token1:
		return AssetOne, true
	default:
		return 0, false
	}
}

// Validate checks the pair identity and the reserve snapshot.
func (p Pool) Validate() error {
	if p.Token0 == "" || p.Token1 == "" {
		return ErrInvalidPool.Wrapf("pool %d: token denoms must be set", p.ID)
	}
	if p.Token0 == p.Token1 {
		return ErrInvalidPool.Wrapf("pool %d: identical tokens %s", p.ID, p.Token0)
	}
	if err := p.Reserves.Validate(); err != nil {
		return errorsmod.Wrapf(err, "pool %d", p.ID)
	}
	return nil
}
