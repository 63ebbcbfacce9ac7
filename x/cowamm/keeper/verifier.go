package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// VerifyOrder checks that order is a trade the pool may accept against its current reserves.
// Checks short-circuit in order: token identity, positive amounts, reserve sufficiency, the
// constant-product received amount, minimum traded size, and app data.
func VerifyOrder(pool types.Pool, params types.TradingParams, order types.Order) error {
	if err := pool.Validate(); err != nil {
		return err
	}

	sellAsset, sellKnown := pool.AssetOf(order.SellToken)
	buyAsset, buyKnown := pool.AssetOf(order.BuyToken)
	if !sellKnown || !buyKnown || sellAsset == buyAsset {
		return types.NewOrderNotValid(types.ReasonInvalidTokens,
			fmt.Sprintf("expected %s/%s, got sell %s buy %s", pool.Token0, pool.Token1, order.SellToken, order.BuyToken))
	}

	if order.SellAmount.IsNil() || !order.SellAmount.IsPositive() ||
		order.BuyAmount.IsNil() || !order.BuyAmount.IsPositive() {
		return types.NewOrderNotValid(types.ReasonZeroAmount, "")
	}

	sellReserve := pool.Reserves.Of(sellAsset)
	if order.SellAmount.GT(sellReserve) {
		return types.NewOrderNotValid(types.ReasonInsufficientReserves,
			fmt.Sprintf("sell %s exceeds reserve %s", order.SellAmount, sellReserve))
	}

	minBuy, err := minBuyAmount(pool, sellAsset, order.SellAmount)
	switch {
	case errors.Is(err, types.ErrArithmeticOverflow), errors.Is(err, types.ErrDivisionByZero):
		// no representable buy amount keeps the product from decreasing
		return types.NewOrderNotValid(types.ReasonReceivedAmountTooLow,
			fmt.Sprintf("selling %s drains the pool", order.SellAmount))
	case err != nil:
		return err
	}
	if order.BuyAmount.LT(minBuy) {
		return types.NewOrderNotValid(types.ReasonReceivedAmountTooLow,
			fmt.Sprintf("buy %s below invariant minimum %s", order.BuyAmount, minBuy))
	}

	if traded, floor := tradedToken0(sellAsset, order.SellAmount, order.BuyAmount), minTraded(params); traded.LT(floor) {
		return types.NewOrderNotValid(types.ReasonTradeTooSmall,
			fmt.Sprintf("traded token0 %s below minimum %s", traded, floor))
	}

	if order.AppData != params.AppData {
		return types.NewOrderNotValid(types.ReasonAppDataMismatch, "")
	}

	return nil
}

// MinBuyAmount returns the smallest amount of the other asset the pool must receive when
// selling sellAmount of sellToken so that the reserve product does not decrease:
//
//	ceil(buyReserve * sellAmount / (sellReserve - sellAmount))
func MinBuyAmount(pool types.Pool, sellToken string, sellAmount math.Int) (math.Int, error) {
	sellAsset, ok := pool.AssetOf(sellToken)
	if !ok {
		return math.Int{}, types.NewOrderNotValid(types.ReasonInvalidTokens, "unknown sell token "+sellToken)
	}
	return minBuyAmount(pool, sellAsset, sellAmount)
}

func minBuyAmount(pool types.Pool, sellAsset types.Asset, sellAmount math.Int) (math.Int, error) {
	sellReserve := pool.Reserves.Of(sellAsset)
	buyReserve := pool.Reserves.Of(sellAsset.Other())

	remaining, err := SafeSub(sellReserve, sellAmount)
	if err != nil {
		return math.Int{}, err
	}
	if remaining.IsZero() && buyReserve.IsZero() {
		return math.ZeroInt(), nil
	}
	return MulDiv(buyReserve, sellAmount, remaining, RoundUp)
}

// Verify checks order against the live reserves of poolID. It has no side effects; committing
// an accepted order is a separate step (see Commit and AcceptOrder).
func (k Keeper) Verify(ctx context.Context, poolID uint64, tradingParams types.TradingParams, order types.Order) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	poolLabel := fmt.Sprintf("%d", poolID)

	pool, err := k.reserves.GetPool(ctx, poolID)
	if err != nil {
		return err
	}

	if err := VerifyOrder(pool, tradingParams, order); err != nil {
		reason, ok := types.ReasonOf(err)
		if !ok {
			reason = "error"
		}
		k.metrics.Verifications.WithLabelValues(poolLabel, reason).Inc()
		k.Logger(sdkCtx).Debug("order rejected", "pool_id", poolID, "reason", reason, "error", err)
		return err
	}

	k.metrics.Verifications.WithLabelValues(poolLabel, "accepted").Inc()
	return nil
}
