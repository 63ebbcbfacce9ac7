package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

func TestParseAppData(t *testing.T) {
	hexValue := strings.Repeat("ab", 31) + "cd"

	for _, input := range []string{hexValue, "0x" + hexValue, "0X" + hexValue} {
		appData, err := types.ParseAppData(input)
		require.NoError(t, err, input)
		require.Equal(t, byte(0xab), appData[0])
		require.Equal(t, byte(0xcd), appData[31])
		require.Equal(t, "0x"+hexValue, appData.String())
	}

	empty, err := types.ParseAppData("")
	require.NoError(t, err)
	require.True(t, empty.IsZero())

	for _, input := range []string{"0x12", "zz" + hexValue[2:], hexValue + "00"} {
		_, err := types.ParseAppData(input)
		require.ErrorIs(t, err, types.ErrInvalidConfiguration, input)
	}
}

func TestAppDataJSON(t *testing.T) {
	appData, err := types.ParseAppData(strings.Repeat("01", 32))
	require.NoError(t, err)

	bz, err := json.Marshal(appData)
	require.NoError(t, err)
	require.Equal(t, `"0x`+strings.Repeat("01", 32)+`"`, string(bz))

	var decoded types.AppData
	require.NoError(t, json.Unmarshal(bz, &decoded))
	require.Equal(t, appData, decoded)

	require.Error(t, json.Unmarshal([]byte(`12`), &decoded))
}
