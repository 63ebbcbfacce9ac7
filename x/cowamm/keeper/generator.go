package keeper

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// GenerateOrder computes the order that moves the pool toward the reference price.
//
// The pool sells the asset it prices too cheaply relative to the reference. With S the reserve
// of the sold asset, B the reserve of the bought asset, and wS/wB their price weights:
//
//	sellAmount = floor(S/2) - ceil(B*wB / (2*wS))
//	buyAmount  = ceil(sellAmount * (B*wB + wS*sellAmount) / (wB*S))
//
// Rounding always favours the pool, so the result satisfies VerifyOrder. A non-positive sell
// amount or a traded token0 amount below the configured minimum yields types.EmptyOrder.
func GenerateOrder(pool types.Pool, price types.ReferencePrice, params types.TradingParams, validTo uint32) (types.Order, error) {
	if err := price.Validate(); err != nil {
		return types.EmptyOrder, err
	}
	if err := pool.Validate(); err != nil {
		return types.EmptyOrder, err
	}

	reserve0 := pool.Reserves.Reserve0
	reserve1 := pool.Reserves.Reserve1

	reserve0TimesDenominator, err := SafeMul(reserve0, price.Denominator)
	if err != nil {
		return types.EmptyOrder, err
	}
	reserve1TimesNumerator, err := SafeMul(reserve1, price.Numerator)
	if err != nil {
		return types.EmptyOrder, err
	}

	// Tie falls through to the asset1 branch, where the sell amount is never positive.
	var (
		sellAsset  types.Asset
		sellAmount math.Int
		buyAmount  math.Int
		ok         bool
	)
	if reserve1TimesNumerator.LT(reserve0TimesDenominator) {
		sellAsset = types.AssetZero
		sellAmount, buyAmount, ok, err = rebalanceAmounts(reserve0, reserve1TimesNumerator, price.Numerator, price.Denominator)
	} else {
		sellAsset = types.AssetOne
		sellAmount, buyAmount, ok, err = rebalanceAmounts(reserve1, reserve0TimesDenominator, price.Denominator, price.Numerator)
	}
	if err != nil {
		return types.EmptyOrder, err
	}
	if !ok {
		return types.EmptyOrder, nil
	}

	if tradedToken0(sellAsset, sellAmount, buyAmount).LT(minTraded(params)) {
		return types.EmptyOrder, nil
	}

	return types.Order{
		SellToken:  pool.Token(sellAsset),
		BuyToken:   pool.Token(sellAsset.Other()),
		SellAmount: sellAmount,
		BuyAmount:  buyAmount,
		ValidTo:    validTo,
		AppData:    params.AppData,
	}, nil
}

// rebalanceAmounts solves the sell/buy amounts for selling the asset with reserve sellReserve.
// weightedBuyReserve is B*wB. Returns ok=false when the sell amount is not positive.
func rebalanceAmounts(sellReserve, weightedBuyReserve, buyWeight, sellWeight math.Int) (sellAmount, buyAmount math.Int, ok bool, err error) {
	halfReserve, err := SafeQuo(sellReserve, math.NewInt(2))
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	twiceSellWeight, err := SafeMul(sellWeight, math.NewInt(2))
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	offset, err := CeilDiv(weightedBuyReserve, twiceSellWeight)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	if halfReserve.LTE(offset) {
		return math.Int{}, math.Int{}, false, nil
	}
	sellAmount, err = SafeSub(halfReserve, offset)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}

	weightedSell, err := SafeMul(sellWeight, sellAmount)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	numerator, err := SafeAdd(weightedBuyReserve, weightedSell)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	denominator, err := SafeMul(buyWeight, sellReserve)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}
	buyAmount, err = MulDiv(sellAmount, numerator, denominator, RoundUp)
	if err != nil {
		return math.Int{}, math.Int{}, false, err
	}

	return sellAmount, buyAmount, true, nil
}

// tradedToken0 is the asset0 leg of a trade, whichever side of the order it is on
func tradedToken0(sellAsset types.Asset, sellAmount, buyAmount math.Int) math.Int {
	if sellAsset == types.AssetZero {
		return sellAmount
	}
	return buyAmount
}

func minTraded(params types.TradingParams) math.Int {
	if params.MinTradedToken0.IsNil() {
		return math.ZeroInt()
	}
	return params.MinTradedToken0
}

// validToBucket rounds now up to the next multiple of duration, so every order generated
// within one bucket carries the same expiry.
func validToBucket(now time.Time, duration uint32) uint32 {
	if duration == 0 {
		duration = types.DefaultMaxOrderDuration
	}
	ts := uint64(now.Unix())
	if now.Unix() < 0 {
		ts = 0
	}
	bucket := (ts/uint64(duration))*uint64(duration) + uint64(duration)
	if bucket > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(bucket)
}

// Generation stages reported by buildOrder on failure
const (
	stageParams   = "invalid_params"
	stageReserves = "reserves_error"
	stageOracle   = "oracle_error"
	stageGenerate = "failed"
)

// buildOrder reads the params, reserves and reference price of a pool and generates its order
// without recording metrics, logs or events. On failure stage names the step that failed.
func (k Keeper) buildOrder(ctx context.Context, poolID uint64, tradingParams types.TradingParams) (
	order types.Order, pool types.Pool, price types.ReferencePrice, stage string, err error,
) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	params, err := k.GetParams(sdkCtx)
	if err != nil {
		return types.EmptyOrder, pool, price, stageParams, err
	}
	if err := k.ValidateTradingParams(sdkCtx, tradingParams); err != nil {
		return types.EmptyOrder, pool, price, stageParams, err
	}

	pool, err = k.reserves.GetPool(ctx, poolID)
	if err != nil {
		return types.EmptyOrder, pool, price, stageReserves, err
	}

	price, err = k.oracle.GetPrice(ctx, tradingParams.OracleConfig)
	if err != nil {
		return types.EmptyOrder, pool, price, stageOracle, err
	}

	validTo := validToBucket(sdkCtx.BlockTime(), params.MaxOrderDuration)
	order, err = GenerateOrder(pool, price, tradingParams, validTo)
	if err != nil {
		return types.EmptyOrder, pool, price, stageGenerate, err
	}
	return order, pool, price, "", nil
}

// PreviewTradeableOrder computes the same order as GetTradeableOrder but leaves no trace in
// metrics, logs or events. Health probes use it.
func (k Keeper) PreviewTradeableOrder(ctx context.Context, poolID uint64, tradingParams types.TradingParams) (types.Order, error) {
	order, _, _, _, err := k.buildOrder(ctx, poolID, tradingParams)
	return order, err
}

// GetTradeableOrder returns the order the pool is willing to trade this block, or
// types.EmptyOrder when no trade is worth proposing.
func (k Keeper) GetTradeableOrder(ctx context.Context, poolID uint64, tradingParams types.TradingParams) (types.Order, error) {
	start := time.Now()
	defer func() {
		k.metrics.GenerationLatency.Observe(time.Since(start).Seconds())
	}()

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	poolLabel := fmt.Sprintf("%d", poolID)

	order, pool, price, stage, err := k.buildOrder(ctx, poolID, tradingParams)
	switch stage {
	case "":
	case stageOracle:
		k.metrics.OracleFailures.WithLabelValues(poolLabel).Inc()
		return types.EmptyOrder, err
	case stageGenerate:
		k.metrics.OrdersGenerated.WithLabelValues(poolLabel, "", stage).Inc()
		k.Logger(sdkCtx).Error("order generation failed", "pool_id", poolID, "price", price.String(), "error", err)
		return types.EmptyOrder, err
	default:
		k.metrics.OrdersGenerated.WithLabelValues(poolLabel, "", stage).Inc()
		return types.EmptyOrder, err
	}

	if order.IsEmpty() {
		k.metrics.OrdersGenerated.WithLabelValues(poolLabel, "", "no_trade").Inc()
		k.Logger(sdkCtx).Debug("no trade needed",
			"pool_id", poolID,
			"reserve0", pool.Reserves.Reserve0.String(),
			"reserve1", pool.Reserves.Reserve1.String(),
			"price", price.String(),
		)
		return order, nil
	}

	k.metrics.OrdersGenerated.WithLabelValues(poolLabel, order.SellToken, "success").Inc()
	k.Logger(sdkCtx).Info("generated tradeable order",
		"pool_id", poolID,
		"sell_token", order.SellToken,
		"sell_amount", order.SellAmount.String(),
		"buy_token", order.BuyToken,
		"buy_amount", order.BuyAmount.String(),
		"valid_to", order.ValidTo,
	)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOrderGenerated,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeySellToken, order.SellToken),
			sdk.NewAttribute(types.AttributeKeyBuyToken, order.BuyToken),
			sdk.NewAttribute(types.AttributeKeySellAmount, order.SellAmount.String()),
			sdk.NewAttribute(types.AttributeKeyBuyAmount, order.BuyAmount.String()),
		),
	)

	return order, nil
}
