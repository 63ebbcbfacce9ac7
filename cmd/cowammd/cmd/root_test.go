package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// executeCmd runs a fresh root command, as a separate process invocation would.
func executeCmd(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--" + FlagHome, home, "--" + FlagLogLevel, "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeOrder(t *testing.T, dir, name string, order types.Order) string {
	t.Helper()
	bz, err := json.Marshal(order)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bz, 0o644))
	return path
}

func TestCommandsEndToEnd(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, testConfig)

	out, err := executeCmd(t, home, "generate", "--pool", "1")
	require.NoError(t, err)
	var order types.Order
	require.NoError(t, json.Unmarshal([]byte(out), &order))
	require.Equal(t, "uatom", order.SellToken)
	require.Equal(t, "4500000000000000000", order.SellAmount.String())
	orderPath := writeOrder(t, home, "order.json", order)
	orderHash := hex.EncodeToString(order.Hash())

	out, err = executeCmd(t, home, "verify", "--pool", "1", "--order", orderPath)
	require.NoError(t, err)
	var result verifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.True(t, result.Valid)
	require.False(t, result.Committed)
	require.Equal(t, orderHash, result.OrderHash)

	out, err = executeCmd(t, home, "verify", "--pool", "1", "--order", orderPath, "--accept", "--period", "7")
	require.NoError(t, err)
	result = verifyResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.True(t, result.Committed)
	require.Equal(t, uint64(7), result.Period)

	// the commitment survives into the next invocation
	out, err = executeCmd(t, home, "commitment", "show", "--pool", "1", "--period", "7")
	require.NoError(t, err)
	var commitment commitmentResult
	require.NoError(t, json.Unmarshal([]byte(out), &commitment))
	require.True(t, commitment.Committed)
	require.Equal(t, orderHash, commitment.OrderHash)

	other := order
	other.BuyAmount = order.BuyAmount.AddRaw(1)
	otherPath := writeOrder(t, home, "other.json", other)
	out, err = executeCmd(t, home, "verify", "--pool", "1", "--order", otherPath, "--accept", "--period", "7")
	require.Error(t, err)
	result = verifyResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.False(t, result.Valid)
	require.Equal(t, types.ReasonCommitmentMismatch, result.Reason)

	out, err = executeCmd(t, home, "commitment", "clear", "--pool", "1", "--period", "7")
	require.NoError(t, err)
	require.JSONEq(t, `{"pool_id":1,"period":7,"cleared":true}`, out)

	out, err = executeCmd(t, home, "commitment", "show", "--pool", "1", "--period", "7")
	require.NoError(t, err)
	require.JSONEq(t, `{"pool_id":1,"period":7,"committed":false}`, out)

	out, err = executeCmd(t, home, "generate", "--pool", "3")
	require.NoError(t, err)
	require.JSONEq(t, `{"no_trade":true}`, out)
}

func TestVerifyCmdRejection(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, testConfig)

	order := types.Order{
		SellToken:  "uatom",
		BuyToken:   "upaw",
		SellAmount: sdkmath.NewInt(1000),
		BuyAmount:  sdkmath.OneInt(),
	}
	path := writeOrder(t, home, "greedy.json", order)

	out, err := executeCmd(t, home, "verify", "--pool", "1", "--order", path)
	require.Error(t, err)
	reason, ok := types.ReasonOf(err)
	require.True(t, ok)
	require.Equal(t, types.ReasonReceivedAmountTooLow, reason)

	var result verifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, types.ReasonReceivedAmountTooLow, result.Reason)

	_, err = executeCmd(t, home, "verify", "--pool", "1", "--order", path, "--accept")
	require.ErrorContains(t, err, "--accept requires --period")

	_, err = executeCmd(t, home, "verify", "--pool", "9", "--order", path)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestCommitmentPruneCmd(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, testConfig)

	out, err := executeCmd(t, home, "generate", "--pool", "1")
	require.NoError(t, err)
	var order types.Order
	require.NoError(t, json.Unmarshal([]byte(out), &order))
	path := writeOrder(t, home, "order.json", order)

	for _, period := range []string{"1", "2", "3"} {
		_, err = executeCmd(t, home, "verify", "--pool", "1", "--order", path, "--accept", "--period", period)
		require.NoError(t, err)
	}

	out, err = executeCmd(t, home, "commitment", "prune", "--pool", "1", "--before", "3")
	require.NoError(t, err)
	require.JSONEq(t, `{"pool_id":1,"pruned":2}`, out)

	out, err = executeCmd(t, home, "commitment", "show", "--pool", "1", "--period", "3")
	require.NoError(t, err)
	require.Contains(t, out, `"committed": true`)
}

func TestRootCmdConfig(t *testing.T) {
	home := t.TempDir()

	// no config file
	_, err := executeCmd(t, home, "generate", "--pool", "1")
	require.ErrorContains(t, err, "failed to read config")

	// an explicit config path overrides $home/config.yaml
	configDir := t.TempDir()
	configPath := writeConfig(t, configDir, testConfig)
	_, err = executeCmd(t, home, "--"+FlagConfig, configPath, "generate", "--pool", "1")
	require.NoError(t, err)

	// unchanged flags yield to the environment
	t.Setenv("COWAMM_LOG_LEVEL", "loud")
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--" + FlagHome, home, "--" + FlagConfig, configPath, "generate", "--pool", "1"})
	require.ErrorContains(t, cmd.ExecuteContext(context.Background()), "invalid log level")
}
