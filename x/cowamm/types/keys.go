package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "cowamm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes
var (
	ParamsKey           = []byte{0x01} // key for module params
	CommitmentKeyPrefix = []byte{0x02} // prefix for per-period order commitments
)

// CommitmentPoolPrefix returns the prefix under which all commitments of a pool are stored
func CommitmentPoolPrefix(poolID uint64) []byte {
	key := make([]byte, 0, len(CommitmentKeyPrefix)+8)
	key = append(key, CommitmentKeyPrefix...)
	return append(key, sdk.Uint64ToBigEndian(poolID)...)
}

// CommitmentKey returns the store key for the commitment of a pool in a trading period.
// Periods are big-endian encoded so that iteration visits them in ascending order.
func CommitmentKey(poolID, period uint64) []byte {
	return append(CommitmentPoolPrefix(poolID), sdk.Uint64ToBigEndian(period)...)
}

// PeriodFromCommitmentKey extracts the period from a full commitment key.
func PeriodFromCommitmentKey(key []byte) (uint64, bool) {
	if len(key) != len(CommitmentKeyPrefix)+16 {
		return 0, false
	}
	return sdk.BigEndianToUint64(key[len(key)-8:]), true
}
