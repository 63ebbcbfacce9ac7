package types

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
)

// Oracle config kinds understood by the built-in price adapters.
const (
	OracleKindStatic        = "static"
	OracleKindFeed          = "oracle_feed"
	OracleKindReferencePool = "reference_pool"
)

// OracleConfig is the decoded form of TradingParams.OracleConfig. Which fields are read depends on Kind.
type OracleConfig struct {
	Kind string `json:"kind"`

	// static
	Numerator   *sdkmath.Int `json:"numerator,omitempty"`
	Denominator *sdkmath.Int `json:"denominator,omitempty"`

	// oracle_feed and reference_pool
	Token0 string `json:"token0,omitempty"`
	Token1 string `json:"token1,omitempty"`

	// oracle_feed: prices older than this many blocks are rejected, zero disables the check
	MaxAgeBlocks int64 `json:"max_age_blocks,omitempty"`

	// reference_pool
	PoolID uint64 `json:"pool_id,omitempty"`
}

// ParseOracleConfig decodes raw oracle config bytes.
func ParseOracleConfig(bz []byte) (OracleConfig, error) {
	var cfg OracleConfig
	if len(bz) == 0 {
		return cfg, ErrInvalidOracleData.Wrap("empty oracle config")
	}
	if err := json.Unmarshal(bz, &cfg); err != nil {
		return cfg, ErrInvalidOracleData.Wrapf("malformed oracle config: %v", err)
	}
	if cfg.Kind == "" {
		return cfg, ErrInvalidOracleData.Wrap("oracle config kind must be set")
	}
	return cfg, nil
}

// Bytes encodes the config for use as TradingParams.OracleConfig.
func (c OracleConfig) Bytes() []byte {
	bz, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return bz
}
