package keeper

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// Keeper of the cowamm store
type Keeper struct {
	storeKey storetypes.StoreKey
	oracle   types.ReferencePriceAdapter
	reserves types.ReserveReader
	metrics  *CowAMMMetrics

	// commitMu serializes the commitment compare-and-set across keeper copies
	commitMu *sync.Mutex
}

// NewKeeper creates a new cowamm Keeper instance
func NewKeeper(
	key storetypes.StoreKey,
	oracle types.ReferencePriceAdapter,
	reserves types.ReserveReader,
) *Keeper {
	return &Keeper{
		storeKey: key,
		oracle:   oracle,
		reserves: reserves,
		metrics:  NewCowAMMMetrics(),
		commitMu: &sync.Mutex{},
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// getStore returns the KVStore for the cowamm module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}
