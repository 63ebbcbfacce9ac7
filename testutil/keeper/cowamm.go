package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/keeper"
	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// TestBlockTime is the block time of contexts returned by CowAMMKeeper
var TestBlockTime = time.Unix(1_700_000_000, 0).UTC()

// CowAMMKeeper creates a test keeper for the cowamm module backed by an in-memory store.
// A nil oracle defaults to the price router, a nil reserve reader to an empty static reader.
func CowAMMKeeper(t testing.TB, oracle types.ReferencePriceAdapter, reserves types.ReserveReader) (*keeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	if oracle == nil {
		oracle = keeper.NewPriceRouter()
	}
	if reserves == nil {
		reserves = keeper.NewStaticReserveReader()
	}

	k := keeper.NewKeeper(storeKey, oracle, reserves)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockHeight(1).
		WithBlockTime(TestBlockTime)

	require.NoError(t, k.SetParams(ctx, types.DefaultParams()))

	return k, ctx
}
