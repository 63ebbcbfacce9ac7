package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// Config keys
const (
	keyMaxOrderDuration   = "params.max_order_duration"
	keyCommitmentMode     = "params.commitment_mode"
	keyAllowZeroMinTraded = "params.allow_zero_min_traded"
	keyPools              = "pools"
	keyPrices             = "prices"
)

// Config is the host configuration: module params, the managed pools with their trading
// params, and the USD prices served to oracle_feed pools.
type Config struct {
	Params types.Params
	Pools  []PoolConfig
	Prices map[string]sdkmath.LegacyDec
}

// PoolConfig pairs a pool snapshot with the trading params it is driven with.
type PoolConfig struct {
	Pool    types.Pool
	Trading types.TradingParams
}

// Pool returns the configuration of a pool by ID.
func (c *Config) Pool(poolID uint64) (PoolConfig, bool) {
	for _, pc := range c.Pools {
		if pc.Pool.ID == poolID {
			return pc, true
		}
	}
	return PoolConfig{}, false
}

// PoolIDs returns the configured pool IDs in ascending order.
func (c *Config) PoolIDs() []uint64 {
	ids := make([]uint64, 0, len(c.Pools))
	for _, pc := range c.Pools {
		ids = append(ids, pc.Pool.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LoadConfig reads the YAML file at path into v and decodes it. Environment overrides
// already configured on v apply to the params section.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	defaults := types.DefaultParams()
	v.SetDefault(keyMaxOrderDuration, defaults.MaxOrderDuration)
	v.SetDefault(keyCommitmentMode, string(defaults.CommitmentMode))
	v.SetDefault(keyAllowZeroMinTraded, defaults.AllowZeroMinTraded)

	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Params: types.Params{
			MaxOrderDuration:   v.GetUint32(keyMaxOrderDuration),
			CommitmentMode:     types.CommitmentMode(v.GetString(keyCommitmentMode)),
			AllowZeroMinTraded: v.GetBool(keyAllowZeroMinTraded),
		},
		Prices: make(map[string]sdkmath.LegacyDec),
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	rawPrices, err := sliceOf(v.Get(keyPrices))
	if err != nil {
		return nil, types.ErrInvalidConfiguration.Wrapf("prices: %v", err)
	}
	for i, raw := range rawPrices {
		denom, price, err := parsePrice(raw)
		if err != nil {
			return nil, types.ErrInvalidConfiguration.Wrapf("prices[%d]: %v", i, err)
		}
		cfg.Prices[denom] = price
	}

	rawPools, err := sliceOf(v.Get(keyPools))
	if err != nil {
		return nil, types.ErrInvalidConfiguration.Wrapf("pools: %v", err)
	}
	seen := make(map[uint64]bool, len(rawPools))
	for i, raw := range rawPools {
		pc, err := parsePool(raw)
		if err != nil {
			return nil, types.ErrInvalidConfiguration.Wrapf("pools[%d]: %v", i, err)
		}
		if seen[pc.Pool.ID] {
			return nil, types.ErrInvalidConfiguration.Wrapf("pools[%d]: duplicate pool id %d", i, pc.Pool.ID)
		}
		seen[pc.Pool.ID] = true
		cfg.Pools = append(cfg.Pools, pc)
	}

	return cfg, nil
}

func parsePrice(raw any) (string, sdkmath.LegacyDec, error) {
	m, err := mapOf(raw)
	if err != nil {
		return "", sdkmath.LegacyDec{}, err
	}
	denom := cast.ToString(m["denom"])
	if denom == "" {
		return "", sdkmath.LegacyDec{}, fmt.Errorf("denom must be set")
	}
	value, err := cast.ToStringE(m["price"])
	if err != nil {
		return "", sdkmath.LegacyDec{}, err
	}
	price, err := sdkmath.LegacyNewDecFromStr(value)
	if err != nil {
		return "", sdkmath.LegacyDec{}, fmt.Errorf("price of %s: %w", denom, err)
	}
	return denom, price, nil
}

func parsePool(raw any) (PoolConfig, error) {
	m, err := mapOf(raw)
	if err != nil {
		return PoolConfig{}, err
	}

	id, err := cast.ToUint64E(m["id"])
	if err != nil {
		return PoolConfig{}, fmt.Errorf("id: %w", err)
	}
	reserve0, err := parseAmount(m["reserve0"])
	if err != nil {
		return PoolConfig{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := parseAmount(m["reserve1"])
	if err != nil {
		return PoolConfig{}, fmt.Errorf("reserve1: %w", err)
	}

	pool := types.Pool{
		ID:       id,
		Token0:   cast.ToString(m["token0"]),
		Token1:   cast.ToString(m["token1"]),
		Reserves: types.NewReserves(reserve0, reserve1),
	}
	if err := pool.Validate(); err != nil {
		return PoolConfig{}, err
	}

	trading, err := parseTrading(m["trading"])
	if err != nil {
		return PoolConfig{}, fmt.Errorf("trading: %w", err)
	}

	return PoolConfig{Pool: pool, Trading: trading}, nil
}

func parseTrading(raw any) (types.TradingParams, error) {
	m, err := mapOf(raw)
	if err != nil {
		return types.TradingParams{}, err
	}

	tp := types.TradingParams{MinTradedToken0: sdkmath.ZeroInt()}
	for k, value := range m {
		switch k {
		case "min_traded_token0":
			if tp.MinTradedToken0, err = parseAmount(value); err != nil {
				return tp, fmt.Errorf("%s: %w", k, err)
			}
		case "app_data":
			if tp.AppData, err = types.ParseAppData(cast.ToString(value)); err != nil {
				return tp, err
			}
		case "oracle":
			oracle, err := parseOracle(value)
			if err != nil {
				return tp, fmt.Errorf("oracle: %w", err)
			}
			tp.OracleConfig = oracle.Bytes()
		default:
			// carried through to consumers of the trading params untouched
			bz, err := json.Marshal(value)
			if err != nil {
				return tp, fmt.Errorf("%s: %w", k, err)
			}
			if tp.Extra == nil {
				tp.Extra = make(map[string]json.RawMessage)
			}
			tp.Extra[k] = bz
		}
	}

	return tp, nil
}

func parseOracle(raw any) (types.OracleConfig, error) {
	m, err := mapOf(raw)
	if err != nil {
		return types.OracleConfig{}, err
	}

	cfg := types.OracleConfig{
		Kind:   cast.ToString(m["kind"]),
		Token0: cast.ToString(m["token0"]),
		Token1: cast.ToString(m["token1"]),
	}
	if cfg.MaxAgeBlocks, err = cast.ToInt64E(m["max_age_blocks"]); err != nil {
		return cfg, fmt.Errorf("max_age_blocks: %w", err)
	}
	if cfg.PoolID, err = cast.ToUint64E(m["pool_id"]); err != nil {
		return cfg, fmt.Errorf("pool_id: %w", err)
	}
	if raw, ok := m["numerator"]; ok {
		numerator, err := parseAmount(raw)
		if err != nil {
			return cfg, fmt.Errorf("numerator: %w", err)
		}
		cfg.Numerator = &numerator
	}
	if raw, ok := m["denominator"]; ok {
		denominator, err := parseAmount(raw)
		if err != nil {
			return cfg, fmt.Errorf("denominator: %w", err)
		}
		cfg.Denominator = &denominator
	}
	if cfg.Kind == "" {
		return cfg, fmt.Errorf("kind must be set")
	}
	return cfg, nil
}

// parseAmount reads an integer amount. Amounts beyond 64 bits must be quoted, YAML decodes
// them as floats otherwise.
func parseAmount(raw any) (sdkmath.Int, error) {
	switch raw.(type) {
	case nil:
		return sdkmath.Int{}, fmt.Errorf("amount must be set")
	case float32, float64:
		return sdkmath.Int{}, fmt.Errorf("amount %v is not an integer, quote large amounts", raw)
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return sdkmath.Int{}, err
	}
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer %q", s)
	}
	return amount, nil
}

// sliceOf and mapOf treat an absent YAML node as empty
func sliceOf(raw any) ([]any, error) {
	if raw == nil {
		return nil, nil
	}
	return cast.ToSliceE(raw)
}

func mapOf(raw any) (map[string]any, error) {
	if raw == nil {
		return map[string]any{}, nil
	}
	return cast.ToStringMapE(raw)
}
