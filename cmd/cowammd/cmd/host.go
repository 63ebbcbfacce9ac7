package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/cowamm/x/cowamm/keeper"
	"github.com/paw-chain/cowamm/x/cowamm/types"
)

const dataDirName = "data"

// Host owns the persistent commitment store and a keeper wired to the configured pools.
// Every operation runs under one mutex; commitment writes are committed before it is released.
type Host struct {
	mu sync.Mutex

	logger   log.Logger
	db       dbm.DB
	cms      storetypes.CommitMultiStore
	keeper   *keeper.Keeper
	reserves *keeper.StaticReserveReader
	prices   *priceBook
	config   *Config

	now func() time.Time
}

// OpenHost opens (or creates) the goleveldb store under home/data and applies cfg.
func OpenHost(home string, cfg *Config, logger log.Logger) (*Host, error) {
	dataDir := filepath.Join(home, dataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := dbm.NewDB("cowamm", dbm.GoLevelDBBackend, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	if err := cms.LoadLatestVersion(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	reserves := keeper.NewStaticReserveReader()
	prices := newPriceBook()
	router := keeper.NewPriceRouter().
		AddRoute(types.OracleKindFeed, keeper.NewOracleFeedAdapter(prices)).
		AddRoute(types.OracleKindReferencePool, keeper.NewReferencePoolAdapter(reserves))

	h := &Host{
		logger:   logger,
		db:       db,
		cms:      cms,
		keeper:   keeper.NewKeeper(storeKey, router, reserves),
		reserves: reserves,
		prices:   prices,
		now:      time.Now,
	}
	if err := h.Apply(cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

// Close releases the database.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db.Close()
}

// Apply installs a new configuration: params are persisted, pools and prices replace the
// previous snapshot. An invalid configuration leaves the host unchanged.
func (h *Host) Apply(cfg *Config) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := cfg.Params.Validate(); err != nil {
		return err
	}
	pools := make([]types.Pool, 0, len(cfg.Pools))
	for _, pc := range cfg.Pools {
		pools = append(pools, pc.Pool)
	}
	if err := h.reserves.ReplacePools(pools...); err != nil {
		return err
	}
	h.prices.set(cfg.Prices)

	ctx := h.context(context.Background())
	if err := h.keeper.SetParams(ctx, cfg.Params); err != nil {
		return err
	}
	h.commit()

	h.config = cfg
	return nil
}

// context returns an sdk.Context on the working state, one block past the last commit.
func (h *Host) context(ctx context.Context) sdk.Context {
	version := h.cms.LastCommitID().Version
	return sdk.NewContext(h.cms, cmtproto.Header{}, false, h.logger).
		WithContext(ctx).
		WithBlockHeight(version + 1).
		WithBlockTime(h.now().UTC())
}

func (h *Host) commit() {
	commitID := h.cms.Commit()
	h.logger.Debug("store committed", "version", commitID.Version)
}

func (h *Host) poolConfig(poolID uint64) (PoolConfig, error) {
	pc, ok := h.config.Pool(poolID)
	if !ok {
		return PoolConfig{}, types.ErrPoolNotFound.Wrapf("pool %d is not configured", poolID)
	}
	return pc, nil
}

// PoolIDs returns the configured pools.
func (h *Host) PoolIDs() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config.PoolIDs()
}

// Generate returns the tradeable order of a pool at the current time.
func (h *Host) Generate(ctx context.Context, poolID uint64) (types.Order, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, err := h.poolConfig(poolID)
	if err != nil {
		return types.Order{}, err
	}
	return h.keeper.GetTradeableOrder(h.context(ctx), poolID, pc.Trading)
}

// Preview is Generate without metrics, logs or events.
func (h *Host) Preview(ctx context.Context, poolID uint64) (types.Order, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, err := h.poolConfig(poolID)
	if err != nil {
		return types.Order{}, err
	}
	return h.keeper.PreviewTradeableOrder(h.context(ctx), poolID, pc.Trading)
}

// Verify checks order against the pool without committing it.
func (h *Host) Verify(ctx context.Context, poolID uint64, order types.Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, err := h.poolConfig(poolID)
	if err != nil {
		return err
	}
	return h.keeper.Verify(h.context(ctx), poolID, pc.Trading, order)
}

// Accept verifies order and commits it for the period.
func (h *Host) Accept(ctx context.Context, poolID, period uint64, order types.Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, err := h.poolConfig(poolID)
	if err != nil {
		return err
	}
	if err := h.keeper.AcceptOrder(h.context(ctx), poolID, period, pc.Trading, order); err != nil {
		return err
	}
	h.commit()
	return nil
}

// Commitment returns the committed order hash of a period.
func (h *Host) Commitment(ctx context.Context, poolID, period uint64) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.keeper.GetCommitment(h.context(ctx), poolID, period)
}

// Clear removes the commitment of a period.
func (h *Host) Clear(ctx context.Context, poolID, period uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	cleared := h.keeper.ClearCommitment(h.context(ctx), poolID, period)
	if cleared {
		h.commit()
	}
	return cleared
}

// Prune removes commitments of periods before beforePeriod.
func (h *Host) Prune(ctx context.Context, poolID, beforePeriod uint64, limit int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pruned, err := h.keeper.PruneCommitments(h.context(ctx), poolID, beforePeriod, limit)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		h.commit()
	}
	return pruned, nil
}

// Period returns the trading period containing the current time.
func (h *Host) Period(interval time.Duration) uint64 {
	return PeriodAt(h.now(), interval)
}

// PeriodAt numbers periods by whole intervals since the unix epoch.
func PeriodAt(t time.Time, interval time.Duration) uint64 {
	seconds := int64(interval / time.Second)
	if seconds <= 0 || t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix() / seconds)
}

// priceBook serves configured USD prices as an oracle. Prices are reported at the height of
// the querying context, so they never go stale.
type priceBook struct {
	mu     sync.RWMutex
	prices map[string]sdkmath.LegacyDec
}

var _ types.OracleKeeper = (*priceBook)(nil)

func newPriceBook() *priceBook {
	return &priceBook{prices: make(map[string]sdkmath.LegacyDec)}
}

func (p *priceBook) set(prices map[string]sdkmath.LegacyDec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices = make(map[string]sdkmath.LegacyDec, len(prices))
	for denom, price := range prices {
		p.prices[denom] = price
	}
}

func (p *priceBook) GetPriceWithTimestamp(ctx context.Context, asset string) (sdkmath.LegacyDec, int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	price, ok := p.prices[asset]
	if !ok {
		return sdkmath.LegacyDec{}, 0, false
	}
	return price, sdk.UnwrapSDKContext(ctx).BlockHeight(), true
}
