package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// verifyResult is the JSON report of a verification
type verifyResult struct {
	PoolID    uint64 `json:"pool_id"`
	OrderHash string `json:"order_hash"`
	Valid     bool   `json:"valid"`
	Committed bool   `json:"committed,omitempty"`
	Period    uint64 `json:"period,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// VerifyCmd returns the command that checks a solver order against a pool
func VerifyCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an order against a pool",
		Long: `Verify that the pool may accept an order: the tokens match the pair, the
pool holds enough to sell, the reserve product does not decrease, the trade
clears the minimum size and the app data matches.

With --accept the order is also committed for the given period. A period
takes only one order.

Example:
  $ cowammd generate --pool 1 > order.json
  $ cowammd verify --pool 1 --order order.json --accept --period 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, err := cmd.Flags().GetUint64(FlagPool)
			if err != nil {
				return err
			}
			path, err := cmd.Flags().GetString(FlagOrder)
			if err != nil {
				return err
			}
			accept, err := cmd.Flags().GetBool(FlagAccept)
			if err != nil {
				return err
			}
			period, err := cmd.Flags().GetUint64(FlagPeriod)
			if err != nil {
				return err
			}
			if accept && !cmd.Flags().Changed(FlagPeriod) {
				return fmt.Errorf("--%s requires --%s", FlagAccept, FlagPeriod)
			}

			order, err := readOrder(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			if accept {
				err = host.Accept(cmd.Context(), poolID, period, order)
			} else {
				err = host.Verify(cmd.Context(), poolID, order)
			}

			result := verifyResult{
				PoolID:    poolID,
				OrderHash: hex.EncodeToString(order.Hash()),
				Valid:     err == nil,
				Committed: accept && err == nil,
			}
			if accept {
				result.Period = period
			}
			if err != nil {
				reason, ok := types.ReasonOf(err)
				if !ok {
					return err
				}
				result.Reason = reason
				result.Error = err.Error()
				if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
					return printErr
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Uint64(FlagPool, 0, "pool ID")
	cmd.Flags().String(FlagOrder, "-", "order JSON file, - reads stdin")
	cmd.Flags().Bool(FlagAccept, false, "commit the order for --period once verified")
	cmd.Flags().Uint64(FlagPeriod, 0, "trading period to commit the order for")
	_ = cmd.MarkFlagRequired(FlagPool)
	return cmd
}
