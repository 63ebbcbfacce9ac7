package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// GetParams returns the module params, or the defaults when none are stored
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz := k.getStore(ctx).Get(types.ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, fmt.Errorf("GetParams: unmarshal: %w", err)
	}
	return params, nil
}

// SetParams validates and stores the module params
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(types.ParamsKey, bz)
	return nil
}

// ValidateTradingParams checks a trading configuration before it is used for a period.
// Adapters implementing types.ConfigValidator also check the oracle config.
func (k Keeper) ValidateTradingParams(ctx context.Context, tradingParams types.TradingParams) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	if err := tradingParams.Validate(params.AllowZeroMinTraded); err != nil {
		return err
	}

	if validator, ok := k.oracle.(types.ConfigValidator); ok {
		if err := validator.ValidateConfig(tradingParams.OracleConfig); err != nil {
			return errorsmod.Wrapf(types.ErrInvalidConfiguration, "oracle config: %v", err)
		}
	}
	return nil
}
