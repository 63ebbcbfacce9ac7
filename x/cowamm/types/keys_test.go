package types_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

func TestCommitmentKey(t *testing.T) {
	key := types.CommitmentKey(3, 42)
	require.True(t, bytes.HasPrefix(key, types.CommitmentKeyPrefix))
	require.True(t, bytes.HasPrefix(key, types.CommitmentPoolPrefix(3)))
	require.False(t, bytes.HasPrefix(key, types.CommitmentPoolPrefix(4)))

	period, ok := types.PeriodFromCommitmentKey(key)
	require.True(t, ok)
	require.Equal(t, uint64(42), period)

	_, ok = types.PeriodFromCommitmentKey(types.CommitmentPoolPrefix(3))
	require.False(t, ok)
}

func TestCommitmentKeysSortByPeriod(t *testing.T) {
	require.Negative(t, bytes.Compare(types.CommitmentKey(1, 255), types.CommitmentKey(1, 256)))
	require.Negative(t, bytes.Compare(types.CommitmentKey(1, 1<<40), types.CommitmentKey(2, 0)))
}
