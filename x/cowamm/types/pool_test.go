package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

func TestPoolAssets(t *testing.T) {
	pool := types.Pool{ID: 1, Token0: "uatom", Token1: "upaw", Reserves: types.NewReserves(math.NewInt(10), math.NewInt(20))}

	asset, ok := pool.AssetOf("uatom")
	require.True(t, ok)
	require.Equal(t, types.AssetZero, asset)
	require.Equal(t, "upaw", pool.Token(asset.Other()))
	require.Equal(t, "20", pool.Reserves.Of(types.AssetOne).String())

	_, ok = pool.AssetOf("uosmo")
	require.False(t, ok)

	require.Equal(t, "asset0", types.AssetZero.String())
	require.Equal(t, "asset1", types.AssetOne.String())
	require.Equal(t, types.AssetZero, types.AssetOne.Other())
}

func TestPoolValidate(t *testing.T) {
	valid := types.Pool{ID: 1, Token0: "uatom", Token1: "upaw", Reserves: types.NewReserves(math.ZeroInt(), math.NewInt(20))}
	require.NoError(t, valid.Validate())

	invalid := map[string]types.Pool{
		"missing token":   {ID: 1, Token0: "uatom", Reserves: valid.Reserves},
		"identical":       {ID: 1, Token0: "uatom", Token1: "uatom", Reserves: valid.Reserves},
		"unset reserves":  {ID: 1, Token0: "uatom", Token1: "upaw"},
		"negative supply": {ID: 1, Token0: "uatom", Token1: "upaw", Reserves: types.NewReserves(math.NewInt(-1), math.NewInt(20))},
	}
	for name, pool := range invalid {
		require.ErrorIs(t, pool.Validate(), types.ErrInvalidPool, name)
	}
}

func TestReferencePrice(t *testing.T) {
	price := types.NewReferencePrice(math.NewInt(126), math.NewInt(42))
	require.NoError(t, price.Validate())
	require.Equal(t, "126:42", price.String())
	require.Equal(t, "42:126", price.Inverse().String())

	require.ErrorIs(t, types.ReferencePrice{}.Validate(), types.ErrInvalidReferencePrice)
	require.ErrorIs(t, types.NewReferencePrice(math.ZeroInt(), math.OneInt()).Validate(), types.ErrInvalidReferencePrice)
	require.ErrorIs(t, types.NewReferencePrice(math.OneInt(), math.NewInt(-2)).Validate(), types.ErrInvalidReferencePrice)
}

func TestParseOracleConfig(t *testing.T) {
	cfg, err := types.ParseOracleConfig([]byte(`{"kind":"reference_pool","pool_id":7,"token0":"uatom","token1":"upaw"}`))
	require.NoError(t, err)
	require.Equal(t, types.OracleKindReferencePool, cfg.Kind)
	require.Equal(t, uint64(7), cfg.PoolID)

	reparsed, err := types.ParseOracleConfig(cfg.Bytes())
	require.NoError(t, err)
	require.Equal(t, cfg, reparsed)

	for _, raw := range []string{"", "{", `{"pool_id":7}`} {
		_, err := types.ParseOracleConfig([]byte(raw))
		require.ErrorIs(t, err, types.ErrInvalidOracleData, raw)
	}
}
