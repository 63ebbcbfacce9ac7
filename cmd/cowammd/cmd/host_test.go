package cmd

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

var testNow = time.Unix(1_700_000_000, 0).UTC()

const testInterval = time.Minute

func openTestHost(t *testing.T, home string) *Host {
	t.Helper()
	cfg, err := loadTestConfig(t, testConfig)
	require.NoError(t, err)

	host, err := OpenHost(home, cfg, log.NewNopLogger())
	require.NoError(t, err)
	host.now = func() time.Time { return testNow }
	return host
}

func TestHostGenerate(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	// the static and the price-fed pool see the same 1:10 reference
	for _, poolID := range []uint64{1, 2} {
		order, err := host.Generate(ctx, poolID)
		require.NoError(t, err)
		require.Equal(t, "uatom", order.SellToken)
		require.Equal(t, "upaw", order.BuyToken)
		require.Equal(t, "4500000000000000000", order.SellAmount.String())
		require.Equal(t, "24750000000000000000", order.BuyAmount.String())
		require.Equal(t, uint32(1_700_000_100), order.ValidTo)
		require.NoError(t, host.Verify(ctx, poolID, order))
	}

	order, err := host.Generate(ctx, 3)
	require.NoError(t, err)
	require.True(t, order.IsEmpty())

	_, err = host.Generate(ctx, 9)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestHostCommitmentsPersist(t *testing.T) {
	home := t.TempDir()
	ctx := context.Background()

	host := openTestHost(t, home)
	order, err := host.Generate(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, host.Accept(ctx, 1, 7, order))
	require.NoError(t, host.Close())

	host = openTestHost(t, home)
	t.Cleanup(func() { _ = host.Close() })

	hash, found := host.Commitment(ctx, 1, 7)
	require.True(t, found)
	require.Equal(t, order.Hash(), hash)

	// a different order cannot take the period
	other := order
	other.BuyAmount = order.BuyAmount.AddRaw(1)
	reason, ok := types.ReasonOf(host.Accept(ctx, 1, 7, other))
	require.True(t, ok)
	require.Equal(t, types.ReasonCommitmentMismatch, reason)

	require.True(t, host.Clear(ctx, 1, 7))
	require.False(t, host.Clear(ctx, 1, 7))
	require.NoError(t, host.Accept(ctx, 1, 7, other))
}

func TestHostApply(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	cfg, err := loadTestConfig(t, testConfig)
	require.NoError(t, err)

	// rebalance pool 1 to the reference ratio and halve the uatom price for pool 2
	cfg.Pools[0].Pool.Reserves = types.NewReserves(cfg.Pools[0].Pool.Reserves.Reserve0, cfg.Pools[0].Pool.Reserves.Reserve1.MulRaw(10))
	cfg.Prices["uatom"] = cfg.Prices["uatom"].QuoInt64(2)
	cfg.Params.CommitmentMode = types.CommitmentModeSingle
	require.NoError(t, host.Apply(cfg))

	order, err := host.Generate(ctx, 1)
	require.NoError(t, err)
	require.True(t, order.IsEmpty())

	order, err = host.Generate(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "uatom", order.SellToken)

	require.NoError(t, host.Accept(ctx, 2, 1, order))
	reason, ok := types.ReasonOf(host.Accept(ctx, 2, 1, order))
	require.True(t, ok)
	require.Equal(t, types.ReasonCommitmentMismatch, reason)
}

func TestHostApplyRejectsInvalidConfig(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	before, err := host.Generate(ctx, 2)
	require.NoError(t, err)

	cfg, err := loadTestConfig(t, testConfig)
	require.NoError(t, err)
	cfg.Pools[0].Pool.Reserves = types.NewReserves(cfg.Pools[0].Pool.Reserves.Reserve0.MulRaw(10), cfg.Pools[0].Pool.Reserves.Reserve1)
	cfg.Pools[2].Pool.Reserves = types.NewReserves(sdkmath.NewInt(-1), sdkmath.NewInt(100))
	cfg.Prices = nil
	require.ErrorIs(t, host.Apply(cfg), types.ErrInvalidPool)

	// neither the valid pool nor the prices of the rejected reload were installed
	after, err := host.Generate(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "4500000000000000000", after.SellAmount.String())
	after, err = host.Generate(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, before, after)

	cfg, err = loadTestConfig(t, testConfig)
	require.NoError(t, err)
	cfg.Params.MaxOrderDuration = 0
	require.ErrorIs(t, host.Apply(cfg), types.ErrInvalidConfiguration)
}

func TestHostApplyDropsPools(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })

	cfg, err := loadTestConfig(t, testConfig)
	require.NoError(t, err)
	cfg.Pools = cfg.Pools[:1]
	require.NoError(t, host.Apply(cfg))

	require.Equal(t, []uint64{1}, host.PoolIDs())
	_, err = host.reserves.GetPool(context.Background(), 3)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestPeriodAt(t *testing.T) {
	require.Equal(t, uint64(28_333_333), PeriodAt(testNow, time.Minute))
	require.Equal(t, uint64(1_700_000_000), PeriodAt(testNow, time.Second))
	// testNow is 20s into its minute
	require.Equal(t, uint64(28_333_333), PeriodAt(testNow.Add(39*time.Second), time.Minute))
	require.Equal(t, uint64(28_333_334), PeriodAt(testNow.Add(40*time.Second), time.Minute))
	require.Zero(t, PeriodAt(testNow, 0))
	require.Zero(t, PeriodAt(time.Unix(-10, 0), time.Minute))
}

func TestRunnerTick(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	runner := NewRunner(host, log.NewNopLogger(), testInterval, 1, 0)
	period := host.Period(testInterval)

	runner.Tick(ctx)
	for _, poolID := range []uint64{1, 2} {
		_, found := host.Commitment(ctx, poolID, period)
		require.True(t, found, "pool %d", poolID)
	}
	_, found := host.Commitment(ctx, 3, period)
	require.False(t, found)

	// resubmitting the same order in the same period is a no-op
	runner.Tick(ctx)
	_, found = host.Commitment(ctx, 1, period)
	require.True(t, found)

	// two periods later the first one falls outside the kept window
	host.now = func() time.Time { return testNow.Add(2 * testInterval) }
	runner.Tick(ctx)
	_, found = host.Commitment(ctx, 1, period)
	require.False(t, found)
	_, found = host.Commitment(ctx, 1, period+2)
	require.True(t, found)
}

func TestRunnerSinglePool(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	runner := NewRunner(host, log.NewNopLogger(), testInterval, DefaultKeepPeriods, 2)
	runner.Tick(ctx)

	period := host.Period(testInterval)
	_, found := host.Commitment(ctx, 2, period)
	require.True(t, found)
	_, found = host.Commitment(ctx, 1, period)
	require.False(t, found)
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(host, log.NewNopLogger(), time.Hour, 1, 0).Run(ctx)
	}()

	// the first tick runs immediately
	require.Eventually(t, func() bool {
		_, found := host.Commitment(context.Background(), 1, host.Period(time.Hour))
		return found
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run loop did not stop")
	}
}

func TestHostPreview(t *testing.T) {
	host := openTestHost(t, t.TempDir())
	t.Cleanup(func() { _ = host.Close() })
	ctx := context.Background()

	preview, err := host.Preview(ctx, 1)
	require.NoError(t, err)
	order, err := host.Generate(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, order, preview)

	_, err = host.Preview(ctx, 9)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}
