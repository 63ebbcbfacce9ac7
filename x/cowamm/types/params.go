package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Default parameter values
const (
	// DefaultMaxOrderDuration bounds how far in the future a generated order stays valid (seconds)
	DefaultMaxOrderDuration = uint32(300)
)

// CommitmentMode selects how a period's commitment treats a second order.
type CommitmentMode string

const (
	// CommitmentModeMatch accepts resubmission of the committed order and rejects anything else
	CommitmentModeMatch CommitmentMode = "match"
	// CommitmentModeSingle rejects every order after the first one of a period
	CommitmentModeSingle CommitmentMode = "single"
)

// Params are the module-level settings shared by every pool.
type Params struct {
	MaxOrderDuration   uint32         `json:"max_order_duration"`
	CommitmentMode     CommitmentMode `json:"commitment_mode"`
	AllowZeroMinTraded bool           `json:"allow_zero_min_traded"`
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		MaxOrderDuration:   DefaultMaxOrderDuration,
		CommitmentMode:     CommitmentModeMatch,
		AllowZeroMinTraded: true,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.MaxOrderDuration == 0 {
		return ErrInvalidConfiguration.Wrap("max order duration must be positive")
	}
	switch p.CommitmentMode {
	case CommitmentModeMatch, CommitmentModeSingle:
	default:
		return ErrInvalidConfiguration.Wrapf("unknown commitment mode %q", p.CommitmentMode)
	}
	return nil
}

// TradingParams is the per-invocation configuration of a pool's trading strategy.
// Fields the module does not know are kept in Extra and re-emitted unchanged.
type TradingParams struct {
	MinTradedToken0 sdkmath.Int
	OracleConfig    []byte
	AppData         AppData
	Extra           map[string]json.RawMessage
}

// Validate checks the recognized fields. A zero minimum is only accepted when allowZeroMin is set.
func (p TradingParams) Validate(allowZeroMin bool) error {
	if p.MinTradedToken0.IsNil() {
		return ErrInvalidConfiguration.Wrap("min traded token0 must be set")
	}
	if p.MinTradedToken0.IsNegative() {
		return ErrInvalidConfiguration.Wrapf("min traded token0 must not be negative: %s", p.MinTradedToken0)
	}
	if p.MinTradedToken0.IsZero() && !allowZeroMin {
		return ErrInvalidConfiguration.Wrap("min traded token0 must be positive")
	}
	if len(bytes.TrimSpace(p.OracleConfig)) == 0 {
		return ErrInvalidConfiguration.Wrap("oracle config must be set")
	}
	return nil
}

const (
	fieldMinTradedToken0 = "min_traded_token0"
	fieldOracleConfig    = "oracle_config"
	fieldAppData         = "app_data"
)

func (p TradingParams) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(p.Extra)+3)
	for k, v := range p.Extra {
		fields[k] = v
	}

	minTraded := p.MinTradedToken0
	if minTraded.IsNil() {
		minTraded = sdkmath.ZeroInt()
	}
	bz, err := json.Marshal(minTraded)
	if err != nil {
		return nil, err
	}
	fields[fieldMinTradedToken0] = bz

	if len(p.OracleConfig) > 0 {
		if !json.Valid(p.OracleConfig) {
			return nil, ErrInvalidConfiguration.Wrap("oracle config is not valid JSON")
		}
		fields[fieldOracleConfig] = p.OracleConfig
	}

	if bz, err = json.Marshal(p.AppData); err != nil {
		return nil, err
	}
	fields[fieldAppData] = bz

	return json.Marshal(fields)
}

func (p *TradingParams) UnmarshalJSON(bz []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bz, &fields); err != nil {
		return ErrInvalidConfiguration.Wrapf("trading params: %v", err)
	}

	out := TradingParams{MinTradedToken0: sdkmath.ZeroInt()}
	for k, v := range fields {
		switch k {
		case fieldMinTradedToken0:
			amount, err := parseJSONAmount(v)
			if err != nil {
				return ErrInvalidConfiguration.Wrapf("%s: %v", fieldMinTradedToken0, err)
			}
			out.MinTradedToken0 = amount
		case fieldOracleConfig:
			out.OracleConfig = append([]byte(nil), v...)
		case fieldAppData:
			if err := json.Unmarshal(v, &out.AppData); err != nil {
				return ErrInvalidConfiguration.Wrapf("%s: %v", fieldAppData, err)
			}
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}

	*p = out
	return nil
}

// parseJSONAmount accepts both quoted and bare integer literals.
func parseJSONAmount(v json.RawMessage) (sdkmath.Int, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		s = string(bytes.TrimSpace(v))
	}
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer %q", s)
	}
	return amount, nil
}
