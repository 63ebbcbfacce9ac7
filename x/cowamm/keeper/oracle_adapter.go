package keeper

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

var (
	_ types.ReferencePriceAdapter = FixedPriceAdapter{}
	_ types.ReferencePriceAdapter = OracleFeedAdapter{}
	_ types.ReferencePriceAdapter = ReferencePoolAdapter{}
	_ types.ReferencePriceAdapter = (*PriceRouter)(nil)

	_ types.ConfigValidator = FixedPriceAdapter{}
	_ types.ConfigValidator = OracleFeedAdapter{}
	_ types.ConfigValidator = ReferencePoolAdapter{}
	_ types.ConfigValidator = (*PriceRouter)(nil)
)

// FixedPriceAdapter serves a constant ratio taken from a "static" oracle config.
type FixedPriceAdapter struct{}

func (FixedPriceAdapter) ValidateConfig(oracleConfig []byte) error {
	_, err := fixedPrice(oracleConfig)
	return err
}

func (FixedPriceAdapter) GetPrice(_ context.Context, oracleConfig []byte) (types.ReferencePrice, error) {
	return fixedPrice(oracleConfig)
}

func fixedPrice(oracleConfig []byte) (types.ReferencePrice, error) {
	cfg, err := parseKind(oracleConfig, types.OracleKindStatic)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	if cfg.Numerator == nil || cfg.Denominator == nil {
		return types.ReferencePrice{}, types.ErrInvalidOracleData.Wrap("static price needs numerator and denominator")
	}
	price := types.NewReferencePrice(*cfg.Numerator, *cfg.Denominator)
	if err := price.Validate(); err != nil {
		return types.ReferencePrice{}, types.ErrInvalidOracleData.Wrap(err.Error())
	}
	return price, nil
}

// OracleFeedAdapter derives the pair ratio from the USD prices of both denoms. Numerator is
// the token1 price and Denominator the token0 price, both in 18-decimal fixed point.
type OracleFeedAdapter struct {
	oracle types.OracleKeeper
}

// NewOracleFeedAdapter creates an adapter over an oracle keeper
func NewOracleFeedAdapter(oracle types.OracleKeeper) OracleFeedAdapter {
	return OracleFeedAdapter{oracle: oracle}
}

func (a OracleFeedAdapter) ValidateConfig(oracleConfig []byte) error {
	_, err := feedConfig(oracleConfig)
	return err
}

func (a OracleFeedAdapter) GetPrice(ctx context.Context, oracleConfig []byte) (types.ReferencePrice, error) {
	cfg, err := feedConfig(oracleConfig)
	if err != nil {
		return types.ReferencePrice{}, err
	}

	height := sdk.UnwrapSDKContext(ctx).BlockHeight()
	price0, err := a.freshPrice(ctx, cfg.Token0, cfg.MaxAgeBlocks, height)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	price1, err := a.freshPrice(ctx, cfg.Token1, cfg.MaxAgeBlocks, height)
	if err != nil {
		return types.ReferencePrice{}, err
	}

	numerator, err := decToInt(cfg.Token1, price1)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	denominator, err := decToInt(cfg.Token0, price0)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	return types.NewReferencePrice(numerator, denominator), nil
}

// decToInt exposes the raw fixed-point integer of a price
func decToInt(denom string, price sdkmath.LegacyDec) (sdkmath.Int, error) {
	raw := price.BigInt()
	if raw.BitLen() > IntWidth {
		return sdkmath.Int{}, types.ErrInvalidOracleData.Wrapf("price for %s exceeds %d bits", denom, IntWidth)
	}
	return sdkmath.NewIntFromBigInt(raw), nil
}

func (a OracleFeedAdapter) freshPrice(ctx context.Context, denom string, maxAge, height int64) (sdkmath.LegacyDec, error) {
	if a.oracle == nil {
		return sdkmath.LegacyDec{}, types.ErrOracleUnavailable.Wrap("no oracle keeper configured")
	}
	price, recordedAt, found := a.oracle.GetPriceWithTimestamp(ctx, denom)
	if !found {
		return sdkmath.LegacyDec{}, types.ErrOracleUnavailable.Wrapf("no price for %s", denom)
	}
	if price.IsNil() || !price.IsPositive() {
		return sdkmath.LegacyDec{}, types.ErrInvalidOracleData.Wrapf("non-positive price for %s", denom)
	}
	if maxAge > 0 && height-recordedAt > maxAge {
		return sdkmath.LegacyDec{}, types.ErrInvalidOracleData.Wrapf(
			"stale price for %s: recorded at height %d, current %d, max age %d", denom, recordedAt, height, maxAge)
	}
	return price, nil
}

func feedConfig(oracleConfig []byte) (types.OracleConfig, error) {
	cfg, err := parseKind(oracleConfig, types.OracleKindFeed)
	if err != nil {
		return cfg, err
	}
	if cfg.Token0 == "" || cfg.Token1 == "" || cfg.Token0 == cfg.Token1 {
		return cfg, types.ErrInvalidOracleData.Wrapf("oracle feed needs two distinct denoms, got %q/%q", cfg.Token0, cfg.Token1)
	}
	if cfg.MaxAgeBlocks < 0 {
		return cfg, types.ErrInvalidOracleData.Wrapf("negative max age %d", cfg.MaxAgeBlocks)
	}
	return cfg, nil
}

// ReferencePoolAdapter uses the reserve ratio of another constant-product pool as the price.
type ReferencePoolAdapter struct {
	reserves types.ReserveReader
}

// NewReferencePoolAdapter creates an adapter reading reference pools through reserves
func NewReferencePoolAdapter(reserves types.ReserveReader) ReferencePoolAdapter {
	return ReferencePoolAdapter{reserves: reserves}
}

func (a ReferencePoolAdapter) ValidateConfig(oracleConfig []byte) error {
	_, err := referencePoolConfig(oracleConfig)
	return err
}

func (a ReferencePoolAdapter) GetPrice(ctx context.Context, oracleConfig []byte) (types.ReferencePrice, error) {
	cfg, err := referencePoolConfig(oracleConfig)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	if a.reserves == nil {
		return types.ReferencePrice{}, types.ErrOracleUnavailable.Wrap("no reserve reader configured")
	}

	ref, err := a.reserves.GetPool(ctx, cfg.PoolID)
	if err != nil {
		return types.ReferencePrice{}, types.ErrOracleUnavailable.Wrapf("reference pool %d: %v", cfg.PoolID, err)
	}

	// A pool holding r0 of token0 and r1 of token1 trades r0 token0 for r1 token1.
	var price types.ReferencePrice
	switch {
	case ref.Token0 == cfg.Token0 && ref.Token1 == cfg.Token1:
		price = types.NewReferencePrice(ref.Reserves.Reserve0, ref.Reserves.Reserve1)
	case ref.Token0 == cfg.Token1 && ref.Token1 == cfg.Token0:
		price = types.NewReferencePrice(ref.Reserves.Reserve1, ref.Reserves.Reserve0)
	default:
		return types.ReferencePrice{}, types.ErrInvalidOracleData.Wrapf(
			"reference pool %d trades %s/%s, want %s/%s", cfg.PoolID, ref.Token0, ref.Token1, cfg.Token0, cfg.Token1)
	}
	if err := price.Validate(); err != nil {
		return types.ReferencePrice{}, types.ErrInvalidOracleData.Wrapf("reference pool %d: %v", cfg.PoolID, err)
	}
	return price, nil
}

func referencePoolConfig(oracleConfig []byte) (types.OracleConfig, error) {
	cfg, err := parseKind(oracleConfig, types.OracleKindReferencePool)
	if err != nil {
		return cfg, err
	}
	if cfg.Token0 == "" || cfg.Token1 == "" || cfg.Token0 == cfg.Token1 {
		return cfg, types.ErrInvalidOracleData.Wrapf("reference pool needs two distinct denoms, got %q/%q", cfg.Token0, cfg.Token1)
	}
	return cfg, nil
}

func parseKind(oracleConfig []byte, kind string) (types.OracleConfig, error) {
	cfg, err := types.ParseOracleConfig(oracleConfig)
	if err != nil {
		return cfg, err
	}
	if cfg.Kind != kind {
		return cfg, types.ErrInvalidOracleData.Wrapf("expected %s config, got %s", kind, cfg.Kind)
	}
	return cfg, nil
}

// PriceRouter dispatches a price query to the adapter registered for the config's kind.
type PriceRouter struct {
	routes map[string]types.ReferencePriceAdapter
}

// NewPriceRouter creates a router with the static adapter registered
func NewPriceRouter() *PriceRouter {
	return &PriceRouter{
		routes: map[string]types.ReferencePriceAdapter{
			types.OracleKindStatic: FixedPriceAdapter{},
		},
	}
}

// AddRoute registers adapter for kind. Panics on duplicate registration.
func (r *PriceRouter) AddRoute(kind string, adapter types.ReferencePriceAdapter) *PriceRouter {
	if _, exists := r.routes[kind]; exists {
		panic(fmt.Sprintf("price route %s already registered", kind))
	}
	r.routes[kind] = adapter
	return r
}

// HasRoute reports whether an adapter is registered for kind
func (r *PriceRouter) HasRoute(kind string) bool {
	_, ok := r.routes[kind]
	return ok
}

func (r *PriceRouter) route(oracleConfig []byte) (types.ReferencePriceAdapter, error) {
	cfg, err := types.ParseOracleConfig(oracleConfig)
	if err != nil {
		return nil, err
	}
	adapter, ok := r.routes[cfg.Kind]
	if !ok {
		return nil, types.ErrInvalidOracleData.Wrapf("unknown oracle kind %q", cfg.Kind)
	}
	return adapter, nil
}

func (r *PriceRouter) ValidateConfig(oracleConfig []byte) error {
	adapter, err := r.route(oracleConfig)
	if err != nil {
		return err
	}
	if validator, ok := adapter.(types.ConfigValidator); ok {
		return validator.ValidateConfig(oracleConfig)
	}
	return nil
}

func (r *PriceRouter) GetPrice(ctx context.Context, oracleConfig []byte) (types.ReferencePrice, error) {
	adapter, err := r.route(oracleConfig)
	if err != nil {
		return types.ReferencePrice{}, err
	}
	return adapter.GetPrice(ctx, oracleConfig)
}
