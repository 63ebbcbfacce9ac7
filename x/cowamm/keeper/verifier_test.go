package keeper_test

import (
	"strings"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/keeper"
	"github.com/paw-chain/cowamm/x/cowamm/types"
)

func sellOrder(sellToken, buyToken string, sellAmount, buyAmount math.Int) types.Order {
	return types.Order{
		SellToken:  sellToken,
		BuyToken:   buyToken,
		SellAmount: sellAmount,
		BuyAmount:  buyAmount,
		ValidTo:    1000,
	}
}

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrOrderNotValid)
	got, ok := types.ReasonOf(err)
	require.True(t, ok, "not an order rejection: %v", err)
	require.Equal(t, reason, got)
}

func TestVerifyOrderRejections(t *testing.T) {
	pool := testPool(math.NewInt(1000), math.NewInt(1000))
	appData, err := types.ParseAppData("0x01" + strings.Repeat("00", 31))
	require.NoError(t, err)

	tests := []struct {
		name   string
		params types.TradingParams
		order  types.Order
		reason string
	}{
		{
			name:   "unknown sell token",
			params: noMinimum(),
			order:  sellOrder("uosmo", denomB, math.NewInt(10), math.NewInt(100)),
			reason: types.ReasonInvalidTokens,
		},
		{
			name:   "unknown buy token",
			params: noMinimum(),
			order:  sellOrder(denomA, "uosmo", math.NewInt(10), math.NewInt(100)),
			reason: types.ReasonInvalidTokens,
		},
		{
			name:   "same token on both sides",
			params: noMinimum(),
			order:  sellOrder(denomA, denomA, math.NewInt(10), math.NewInt(100)),
			reason: types.ReasonInvalidTokens,
		},
		{
			name:   "zero sell amount",
			params: noMinimum(),
			order:  sellOrder(denomA, denomB, math.ZeroInt(), math.NewInt(100)),
			reason: types.ReasonZeroAmount,
		},
		{
			name:   "zero buy amount",
			params: noMinimum(),
			order:  sellOrder(denomA, denomB, math.NewInt(10), math.ZeroInt()),
			reason: types.ReasonZeroAmount,
		},
		{
			name:   "unset amounts",
			params: noMinimum(),
			order:  types.Order{SellToken: denomA, BuyToken: denomB},
			reason: types.ReasonZeroAmount,
		},
		{
			name:   "sell more than the pool holds",
			params: noMinimum(),
			order:  sellOrder(denomA, denomB, math.NewInt(1001), math.NewInt(1_000_000)),
			reason: types.ReasonInsufficientReserves,
		},
		{
			name:   "sell the whole reserve",
			params: noMinimum(),
			order:  sellOrder(denomA, denomB, math.NewInt(1000), math.NewInt(1_000_000)),
			reason: types.ReasonReceivedAmountTooLow,
		},
		{
			name:   "product decreases",
			params: noMinimum(),
			order:  sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(100)),
			reason: types.ReasonReceivedAmountTooLow,
		},
		{
			name:   "below minimum traded size",
			params: types.TradingParams{MinTradedToken0: math.NewInt(101)},
			order:  sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(112)),
			reason: types.ReasonTradeTooSmall,
		},
		{
			name:   "below minimum traded size when buying token0",
			params: types.TradingParams{MinTradedToken0: math.NewInt(113)},
			order:  sellOrder(denomB, denomA, math.NewInt(100), math.NewInt(112)),
			reason: types.ReasonTradeTooSmall,
		},
		{
			name:   "app data differs",
			params: types.TradingParams{MinTradedToken0: math.ZeroInt(), AppData: appData},
			order:  sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(112)),
			reason: types.ReasonAppDataMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			requireReason(t, keeper.VerifyOrder(pool, tc.params, tc.order), tc.reason)
		})
	}
}

func TestVerifyOrderCheckOrder(t *testing.T) {
	pool := testPool(math.NewInt(1000), math.NewInt(1000))
	params := types.TradingParams{MinTradedToken0: math.NewInt(1_000_000)}

	// invalid tokens wins over zero amounts
	requireReason(t, keeper.VerifyOrder(pool, params, sellOrder("uosmo", denomB, math.ZeroInt(), math.ZeroInt())), types.ReasonInvalidTokens)

	// the invariant is checked before the minimum size
	requireReason(t, keeper.VerifyOrder(pool, params, sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(1))), types.ReasonReceivedAmountTooLow)

	// the minimum size is checked before app data
	params.AppData[0] = 0xff
	requireReason(t, keeper.VerifyOrder(pool, params, sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(112))), types.ReasonTradeTooSmall)
}

func TestVerifyOrderRoundingBoundary(t *testing.T) {
	pool := testPool(math.NewInt(1000), math.NewInt(1000))

	// ceil(1000 * 100 / 900) = 112
	minBuy, err := keeper.MinBuyAmount(pool, denomA, math.NewInt(100))
	require.NoError(t, err)
	requireInt(t, 112, minBuy)

	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(100), minBuy)))
	requireReason(t,
		keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(100), minBuy.SubRaw(1))),
		types.ReasonReceivedAmountTooLow,
	)

	// either orientation
	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomB, denomA, math.NewInt(100), minBuy)))
}

func TestVerifyOrderSmallTrade(t *testing.T) {
	pool := testPool(math.NewInt(1100), math.NewInt(10))

	// selling 100 of 1100 against a reserve of 10 needs at least 1
	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(100), math.NewInt(1))))
	requireReason(t,
		keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(100), math.ZeroInt())),
		types.ReasonZeroAmount,
	)

	scaled := testPool(units(1100), units(10))
	require.NoError(t, keeper.VerifyOrder(scaled, noMinimum(), sellOrder(denomA, denomB, units(100), units(1))))
	requireReason(t,
		keeper.VerifyOrder(scaled, noMinimum(), sellOrder(denomA, denomB, units(100), units(1).SubRaw(1))),
		types.ReasonReceivedAmountTooLow,
	)
}

func TestVerifyOrderGeneratedCases(t *testing.T) {
	pool := testPool(units(10), units(10))
	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(),
		sellOrder(denomA, denomB, units(9).QuoRaw(2), units(99).QuoRaw(4))))

	pool = testPool(units(12), units(24))
	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(),
		sellOrder(denomB, denomA, units(10), units(17).Add(e18.QuoRaw(2)))))
}

func TestVerifyOrderDrainedPool(t *testing.T) {
	// an empty buy reserve lets the pool give away its whole sell reserve
	pool := testPool(math.NewInt(1000), math.ZeroInt())
	require.NoError(t, keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(1000), math.NewInt(1))))
}

func TestVerifyOrderInvalidPool(t *testing.T) {
	pool := testPool(math.NewInt(-5), math.NewInt(10))
	err := keeper.VerifyOrder(pool, noMinimum(), sellOrder(denomA, denomB, math.NewInt(1), math.NewInt(1)))
	require.ErrorIs(t, err, types.ErrInvalidPool)
	_, isRejection := types.ReasonOf(err)
	require.False(t, isRejection)
}

func TestMinBuyAmountUnknownToken(t *testing.T) {
	_, err := keeper.MinBuyAmount(testPool(math.NewInt(10), math.NewInt(10)), "uosmo", math.NewInt(1))
	requireReason(t, err, types.ReasonInvalidTokens)
}
