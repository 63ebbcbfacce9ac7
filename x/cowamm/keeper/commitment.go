package keeper

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// DefaultPruneLimit bounds the commitments removed by a single PruneCommitments call
const DefaultPruneLimit = 100

// Commit records order as the one accepted order of poolID for period.
//
// The check-and-set is atomic across goroutines sharing this keeper. An empty period takes
// the order. An occupied period rejects with "commitment mismatch", except that in match
// mode resubmitting the committed order is accepted again.
func (k Keeper) Commit(ctx context.Context, poolID, period uint64, order types.Order) error {
	if order.IsEmpty() {
		return types.NewOrderNotValid(types.ReasonZeroAmount, "cannot commit the empty order")
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	poolLabel := fmt.Sprintf("%d", poolID)
	hash := order.Hash()

	k.commitMu.Lock()
	defer k.commitMu.Unlock()

	store := k.getStore(ctx)
	key := types.CommitmentKey(poolID, period)

	if existing := store.Get(key); existing != nil {
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}
		if params.CommitmentMode == types.CommitmentModeMatch && bytes.Equal(existing, hash) {
			k.metrics.Commitments.WithLabelValues(poolLabel, "resubmitted").Inc()
			return nil
		}
		k.metrics.Commitments.WithLabelValues(poolLabel, "mismatch").Inc()
		return types.NewOrderNotValid(types.ReasonCommitmentMismatch,
			fmt.Sprintf("period %d already committed to %s", period, hex.EncodeToString(existing)))
	}

	store.Set(key, hash)
	k.metrics.Commitments.WithLabelValues(poolLabel, "committed").Inc()

	k.Logger(sdkCtx).Info("order committed",
		"pool_id", poolID,
		"period", period,
		"order_hash", hex.EncodeToString(hash),
	)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOrderCommitted,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeyPeriod, fmt.Sprintf("%d", period)),
			sdk.NewAttribute(types.AttributeKeyOrderHash, hex.EncodeToString(hash)),
		),
	)

	return nil
}

// GetCommitment returns the order hash committed for a period, if any
func (k Keeper) GetCommitment(ctx context.Context, poolID, period uint64) ([]byte, bool) {
	bz := k.getStore(ctx).Get(types.CommitmentKey(poolID, period))
	if bz == nil {
		return nil, false
	}
	return bz, true
}

// RequireMatchingCommitment fails unless order is the order committed for the period.
// An uncommitted period matches nothing.
func (k Keeper) RequireMatchingCommitment(ctx context.Context, poolID, period uint64, order types.Order) error {
	committed, found := k.GetCommitment(ctx, poolID, period)
	if !found {
		return types.NewOrderNotValid(types.ReasonCommitmentMismatch, fmt.Sprintf("no commitment for period %d", period))
	}
	if !bytes.Equal(committed, order.Hash()) {
		return types.NewOrderNotValid(types.ReasonCommitmentMismatch,
			fmt.Sprintf("period %d committed to %s", period, hex.EncodeToString(committed)))
	}
	return nil
}

// AcceptOrder verifies order against the pool and then commits it for the period.
func (k Keeper) AcceptOrder(ctx context.Context, poolID, period uint64, tradingParams types.TradingParams, order types.Order) error {
	if err := k.Verify(ctx, poolID, tradingParams, order); err != nil {
		return err
	}
	return k.Commit(ctx, poolID, period, order)
}

// ClearCommitment removes the commitment of a period at rollover. Returns whether one existed.
func (k Keeper) ClearCommitment(ctx context.Context, poolID, period uint64) bool {
	k.commitMu.Lock()
	defer k.commitMu.Unlock()

	store := k.getStore(ctx)
	key := types.CommitmentKey(poolID, period)
	if !store.Has(key) {
		return false
	}
	store.Delete(key)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCommitmentCleared,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyPeriod, fmt.Sprintf("%d", period)),
		),
	)
	return true
}

// PruneCommitments removes up to limit commitments of poolID for periods before beforePeriod.
// A limit of zero or less removes all of them. Returns the number removed.
func (k Keeper) PruneCommitments(ctx context.Context, poolID, beforePeriod uint64, limit int) (int, error) {
	k.commitMu.Lock()
	defer k.commitMu.Unlock()

	store := k.getStore(ctx)
	var keysToDelete [][]byte

	iterator := storetypes.KVStorePrefixIterator(store, types.CommitmentPoolPrefix(poolID))
	for ; iterator.Valid() && (limit <= 0 || len(keysToDelete) < limit); iterator.Next() {
		period, ok := types.PeriodFromCommitmentKey(iterator.Key())
		if !ok {
			continue
		}
		// Keys are ordered by period
		if period >= beforePeriod {
			break
		}
		keysToDelete = append(keysToDelete, append([]byte(nil), iterator.Key()...))
	}
	if err := iterator.Close(); err != nil {
		return 0, err
	}

	for _, key := range keysToDelete {
		store.Delete(key)
	}

	if len(keysToDelete) > 0 {
		k.metrics.CommitmentsPruned.Add(float64(len(keysToDelete)))
		k.Logger(sdk.UnwrapSDKContext(ctx)).Debug("pruned commitments",
			"pool_id", poolID,
			"before_period", beforePeriod,
			"count", len(keysToDelete),
		)
	}
	return len(keysToDelete), nil
}
