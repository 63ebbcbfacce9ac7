// Package keeper implements the CoW AMM module keeper.
//
// The module turns a two-asset constant-product pool into a price-following market maker.
// Each block the pool proposes at most one order that moves its reserves toward an external
// reference price, and accepts any counter order that does not decrease the reserve product.
//
// # Core Functionality
//
// Order Generation: GenerateOrder computes the rebalancing order for a reserve snapshot and
// a reference price. GetTradeableOrder wires it to the configured reserve reader and price
// adapter, bucketing validTo by Params.MaxOrderDuration.
//
// Order Verification: VerifyOrder checks a submitted order against the constant-product
// invariant and the trading parameters, rejecting with a stable reason string
// (types.OrderNotValidError). Verification never mutates state.
//
// Commitments: Commit records the single accepted order of a trading period under a
// keeper-held mutex. ClearCommitment and PruneCommitments roll periods over.
//
// Price Adapters: FixedPriceAdapter, OracleFeedAdapter and ReferencePoolAdapter behind a
// PriceRouter keyed by the oracle config kind.
//
// # Arithmetic
//
// All amounts are cosmossdk.io/math Ints restricted to [0, 2^256). SafeAdd, SafeSub,
// SafeMul and MulDiv fail with types.ErrArithmeticOverflow instead of wrapping. Rounding
// always favours the pool: sell amounts round down and received amounts round up.
//
// # Usage Patterns
//
// Generating an order:
//
//	order, err := keeper.GetTradeableOrder(ctx, poolID, tradingParams)
//	if err == nil && order.IsEmpty() {
//		// nothing to trade this period
//	}
//
// Accepting a counter order:
//
//	err := keeper.AcceptOrder(ctx, poolID, period, tradingParams, order)
//	reason, _ := types.ReasonOf(err)
//
// # Metrics
//
// The keeper exposes Prometheus metrics for generation, verification and commitments via
// CowAMMMetrics.
package keeper
