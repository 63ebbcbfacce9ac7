package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// SetRawParamsForTest stores params bytes as-is, bypassing validation.
func SetRawParamsForTest(k *Keeper, ctx sdk.Context, bz []byte) {
	k.getStore(ctx).Set(types.ParamsKey, bz)
}
