package cmd

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/paw-chain/cowamm/x/cowamm/keeper"
)

// Commitment subcommand flags
const (
	FlagBefore = "before"
	FlagLimit  = "limit"
)

type commitmentResult struct {
	PoolID    uint64 `json:"pool_id"`
	Period    uint64 `json:"period"`
	Committed bool   `json:"committed"`
	OrderHash string `json:"order_hash,omitempty"`
}

// CommitmentCmd returns the commitment inspection and maintenance commands
func CommitmentCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commitment",
		Short: "Inspect and maintain per-period order commitments",
	}

	cmd.AddCommand(
		commitmentShowCmd(app),
		commitmentClearCmd(app),
		commitmentPruneCmd(app),
	)
	return cmd
}

func commitmentShowCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the committed order hash of a period",
		Long: `Show the committed order hash of a period.

Example:
  $ cowammd commitment show --pool 1 --period 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, period, err := poolAndPeriod(cmd)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			hash, found := host.Commitment(cmd.Context(), poolID, period)
			result := commitmentResult{PoolID: poolID, Period: period, Committed: found}
			if found {
				result.OrderHash = hex.EncodeToString(hash)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	addPoolAndPeriodFlags(cmd)
	return cmd
}

func commitmentClearCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the commitment of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, period, err := poolAndPeriod(cmd)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			cleared := host.Clear(cmd.Context(), poolID, period)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"pool_id": poolID,
				"period":  period,
				"cleared": cleared,
			})
		},
	}
	addPoolAndPeriodFlags(cmd)
	return cmd
}

func commitmentPruneCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove commitments of periods before --before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, err := cmd.Flags().GetUint64(FlagPool)
			if err != nil {
				return err
			}
			before, err := cmd.Flags().GetUint64(FlagBefore)
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt(FlagLimit)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			pruned, err := host.Prune(cmd.Context(), poolID, before, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"pool_id": poolID,
				"pruned":  pruned,
			})
		},
	}
	cmd.Flags().Uint64(FlagPool, 0, "pool ID")
	cmd.Flags().Uint64(FlagBefore, 0, "prune periods strictly before this one")
	cmd.Flags().Int(FlagLimit, keeper.DefaultPruneLimit, "maximum commitments removed, 0 removes all")
	_ = cmd.MarkFlagRequired(FlagPool)
	_ = cmd.MarkFlagRequired(FlagBefore)
	return cmd
}

func addPoolAndPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64(FlagPool, 0, "pool ID")
	cmd.Flags().Uint64(FlagPeriod, 0, "trading period")
	_ = cmd.MarkFlagRequired(FlagPool)
	_ = cmd.MarkFlagRequired(FlagPeriod)
}

func poolAndPeriod(cmd *cobra.Command) (uint64, uint64, error) {
	poolID, err := cmd.Flags().GetUint64(FlagPool)
	if err != nil {
		return 0, 0, err
	}
	period, err := cmd.Flags().GetUint64(FlagPeriod)
	if err != nil {
		return 0, 0, err
	}
	return poolID, period, nil
}
