package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

// Subcommand flags
const (
	FlagPool   = "pool"
	FlagPeriod = "period"
	FlagOrder  = "order"
	FlagAccept = "accept"
)

// noTrade is printed in place of an order when the pool is balanced.
type noTrade struct {
	NoTrade bool `json:"no_trade"`
}

// GenerateCmd returns the command that prints a pool's tradeable order
func GenerateCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the tradeable order of a pool",
		Long: `Generate the order that moves the pool towards its reference price.
The order is printed as JSON and can be passed to verify. A balanced pool
prints {"no_trade":true}.

Example:
  $ cowammd generate --pool 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			poolID, err := cmd.Flags().GetUint64(FlagPool)
			if err != nil {
				return err
			}

			host, err := app.openHost()
			if err != nil {
				return err
			}
			defer host.Close()

			order, err := host.Generate(cmd.Context(), poolID)
			if err != nil {
				return err
			}
			if order.IsEmpty() {
				return printJSON(cmd.OutOrStdout(), noTrade{NoTrade: true})
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	}

	cmd.Flags().Uint64(FlagPool, 0, "pool ID")
	_ = cmd.MarkFlagRequired(FlagPool)
	return cmd
}

func printJSON(out io.Writer, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(bz))
	return err
}

// readOrder decodes an order from a file, or from stdin when path is "-".
func readOrder(in io.Reader, path string) (types.Order, error) {
	var (
		bz  []byte
		err error
	)
	if path == "-" {
		bz, err = io.ReadAll(in)
	} else {
		bz, err = os.ReadFile(path)
	}
	if err != nil {
		return types.Order{}, fmt.Errorf("failed to read order: %w", err)
	}

	var order types.Order
	if err := json.Unmarshal(bz, &order); err != nil {
		return types.Order{}, fmt.Errorf("failed to decode order: %w", err)
	}
	return order, nil
}
