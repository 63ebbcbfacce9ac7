package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/paw-chain/cowamm/x/cowamm/keeper"
	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// Run flags
const (
	FlagInterval    = "interval"
	FlagKeepPeriods = "keep-periods"
	FlagAPIAddr     = "api-addr"
	FlagWatch       = "watch"

	DefaultInterval    = time.Minute
	DefaultKeepPeriods = uint64(64)

	shutdownTimeout = 10 * time.Second
)

// RunCmd returns the long-running command that drives the configured pools
func RunCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and commit pool orders every trading period",
		Long: `Run the order loop. Every interval the tradeable order of each pool is
generated and committed for the current period, and commitments older than
--keep-periods are pruned. The loop stops on SIGINT or SIGTERM.

Example:
  $ cowammd run --interval 30s --api-addr :8080 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, err := cmd.Flags().GetUint64(FlagPool)
			if err != nil {
				return err
			}
			interval, err := cmd.Flags().GetDuration(FlagInterval)
			if err != nil {
				return err
			}
			if interval < time.Second {
				return fmt.Errorf("--%s must be at least 1s", FlagInterval)
			}
			keepPeriods, err := cmd.Flags().GetUint64(FlagKeepPeriods)
			if err != nil {
				return err
			}
			apiAddr, err := cmd.Flags().GetString(FlagAPIAddr)
			if err != nil {
				return err
			}
			watch, err := cmd.Flags().GetBool(FlagWatch)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			if port := app.viper.GetInt(FlagMetricsPort); port > 0 {
				server := StartPrometheusServer(port, app.logger)
				defer shutdownServer(server, app.logger)
			}

			if watch {
				app.watchConfig(host)
			}

			if apiAddr != "" {
				server := NewOrderServer(host, interval, app.logger).Start(apiAddr, cmd.ErrOrStderr())
				defer shutdownServer(server, app.logger)
			}

			runner := NewRunner(host, app.logger, interval, keepPeriods, poolID)
			return runner.Run(cmd.Context())
		},
	}

	cmd.Flags().Uint64(FlagPool, 0, "pool ID, 0 drives every configured pool")
	cmd.Flags().Duration(FlagInterval, DefaultInterval, "trading period length")
	cmd.Flags().Uint64(FlagKeepPeriods, DefaultKeepPeriods, "commitments kept for this many past periods")
	cmd.Flags().String(FlagAPIAddr, "", "serve the order API on this address, empty disables")
	cmd.Flags().Bool(FlagWatch, false, "reload pools and prices when the config file changes")
	return cmd
}

func shutdownServer(server *http.Server, logger log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "addr", server.Addr, "error", err)
	}
}

// watchConfig reapplies the config file to host whenever it changes. A file that fails to
// decode leaves the previous config in place.
func (a *appContext) watchConfig(host *Host) {
	a.viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := configFromViper(a.viper)
		if err == nil {
			err = host.Apply(cfg)
		}
		if err != nil {
			configReloads.WithLabelValues("rejected").Inc()
			a.logger.Error("config reload rejected", "file", e.Name, "error", err)
			return
		}
		configReloads.WithLabelValues("applied").Inc()
		a.logger.Info("config reloaded", "file", e.Name, "op", e.Op.String(), "pools", len(cfg.Pools))
	})
	a.viper.WatchConfig()
}

// Runner generates and commits one order per pool and period.
type Runner struct {
	host        *Host
	logger      log.Logger
	interval    time.Duration
	keepPeriods uint64
	poolID      uint64
}

// NewRunner creates a runner. A zero poolID drives every configured pool.
func NewRunner(host *Host, logger log.Logger, interval time.Duration, keepPeriods, poolID uint64) *Runner {
	return &Runner{
		host:        host,
		logger:      logger.With("component", "runner"),
		interval:    interval,
		keepPeriods: keepPeriods,
		poolID:      poolID,
	}
}

// Run ticks once per interval until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(r.interval), 1)
	r.logger.Info("run loop started", "interval", r.interval.String(), "keep_periods", r.keepPeriods)

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("run loop stopped")
				return nil
			}
			return err
		}
		r.Tick(ctx)
	}
}

// Tick processes every driven pool for the current period. Pool failures are logged and
// do not stop the others.
func (r *Runner) Tick(ctx context.Context) {
	period := r.host.Period(r.interval)
	runnerPeriod.Set(float64(period))

	poolIDs := []uint64{r.poolID}
	if r.poolID == 0 {
		poolIDs = r.host.PoolIDs()
	}

	for _, poolID := range poolIDs {
		outcome, err := r.tickPool(ctx, poolID, period)
		runnerTicks.WithLabelValues(fmt.Sprintf("%d", poolID), outcome).Inc()
		if err != nil {
			r.logger.Error("pool tick failed", "pool_id", poolID, "period", period, "error", err)
		}
	}
}

func (r *Runner) tickPool(ctx context.Context, poolID, period uint64) (string, error) {
	outcome := "committed"

	order, err := r.host.Generate(ctx, poolID)
	switch {
	case err != nil:
		return "failed", err
	case order.IsEmpty():
		outcome = "no_trade"
	default:
		err = r.host.Accept(ctx, poolID, period, order)
		if reason, ok := types.ReasonOf(err); ok && reason == types.ReasonCommitmentMismatch {
			// the period was taken by an earlier order
			outcome = "period_taken"
			r.logger.Debug("period already committed", "pool_id", poolID, "period", period)
		} else if err != nil {
			return "failed", err
		}
	}

	if period > r.keepPeriods {
		if _, err := r.host.Prune(ctx, poolID, period-r.keepPeriods, keeper.DefaultPruneLimit); err != nil {
			return outcome, fmt.Errorf("prune failed: %w", err)
		}
	}
	return outcome, nil
}
