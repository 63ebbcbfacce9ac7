package keeper

import (
	"context"
	"sort"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

var (
	_ types.ReserveReader = (*BankReserveReader)(nil)
	_ types.ReserveReader = (*StaticReserveReader)(nil)
)

// PoolAccount locates a pool's reserves in the bank module: the balances of Address in
// Token0 and Token1.
type PoolAccount struct {
	Address sdk.AccAddress
	Token0  string
	Token1  string
}

// BankReserveReader reads pool reserves from account balances.
type BankReserveReader struct {
	bank  types.BankKeeper
	pools map[uint64]PoolAccount
}

// NewBankReserveReader creates a reader over the given pool accounts
func NewBankReserveReader(bank types.BankKeeper, pools map[uint64]PoolAccount) *BankReserveReader {
	copied := make(map[uint64]PoolAccount, len(pools))
	for id, account := range pools {
		copied[id] = account
	}
	return &BankReserveReader{bank: bank, pools: copied}
}

func (r *BankReserveReader) GetPool(ctx context.Context, poolID uint64) (types.Pool, error) {
	account, ok := r.pools[poolID]
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}

	pool := types.Pool{
		ID:     poolID,
		Token0: account.Token0,
		Token1: account.Token1,
		Reserves: types.NewReserves(
			r.bank.GetBalance(ctx, account.Address, account.Token0).Amount,
			r.bank.GetBalance(ctx, account.Address, account.Token1).Amount,
		),
	}
	if err := pool.Validate(); err != nil {
		return types.Pool{}, err
	}
	return pool, nil
}

// StaticReserveReader serves reserve snapshots set by the host.
type StaticReserveReader struct {
	mu    sync.RWMutex
	pools map[uint64]types.Pool
}

// NewStaticReserveReader creates a reader holding the given pools
func NewStaticReserveReader(pools ...types.Pool) *StaticReserveReader {
	r := &StaticReserveReader{pools: make(map[uint64]types.Pool, len(pools))}
	for _, pool := range pools {
		r.pools[pool.ID] = pool
	}
	return r
}

// SetPool replaces the snapshot of a pool
func (r *StaticReserveReader) SetPool(pool types.Pool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[pool.ID] = pool
	return nil
}

// ReplacePools swaps in a new set of snapshots. Nothing changes unless every pool is valid.
func (r *StaticReserveReader) ReplacePools(pools ...types.Pool) error {
	next := make(map[uint64]types.Pool, len(pools))
	for _, pool := range pools {
		if err := pool.Validate(); err != nil {
			return err
		}
		next[pool.ID] = pool
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools = next
	return nil
}

func (r *StaticReserveReader) GetPool(_ context.Context, poolID uint64) (types.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pool, ok := r.pools[poolID]
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	return pool, nil
}

// PoolIDs returns the known pool ids in ascending order
func (r *StaticReserveReader) PoolIDs() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint64, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
