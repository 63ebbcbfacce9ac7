package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ReferencePriceAdapter supplies the reference price for a pool. It is queried once per
// invocation and fails with ErrOracleUnavailable or ErrInvalidOracleData.
type ReferencePriceAdapter interface {
	GetPrice(ctx context.Context, oracleConfig []byte) (ReferencePrice, error)
}

// ConfigValidator is implemented by adapters that can check an oracle config without querying prices.
type ConfigValidator interface {
	ValidateConfig(oracleConfig []byte) error
}

// ReserveReader returns an atomic snapshot of a pool's pair and reserves.
type ReserveReader interface {
	GetPool(ctx context.Context, poolID uint64) (Pool, error)
}

// BankKeeper defines the expected bank keeper used to read pool balances.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// OracleKeeper defines the oracle keeper interface used for reference prices.
type OracleKeeper interface {
	// GetPriceWithTimestamp returns the aggregated USD price of an asset with the block height
	// it was recorded at, and whether a price exists.
	GetPriceWithTimestamp(ctx context.Context, asset string) (price sdkmath.LegacyDec, blockHeight int64, found bool)
}
