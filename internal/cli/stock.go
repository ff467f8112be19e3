package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStockCommand creates the stock query command.
func NewStockCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock [product]",
		Short: "Show derived stock levels",
		Long: `Show derived stock for the whole catalog or one product.

Stock is never stored: it is the baseline minus sold quantities plus
refunded quantities, recomputed from the full history on every call. A
negative level is printed as-is with a warning marker - it means the
recorded history disagrees with physical reality.

Example:
  shoplog stock
  shoplog stock COLA`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			productID := ""
			if len(args) == 1 {
				productID = args[0]
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			views, err := e.engine.Stock(cmd.Context(), productID)
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(views)
			}
			for _, v := range views {
				marker := ""
				if v.Negative {
					marker = "  !! negative stock, check the history"
				}
				fmt.Fprintf(e.out.Writer, "%-12s %-20s available %4d (baseline %d, sold this week %d)%s\n",
					v.ProductID, v.ProductName, v.Available, v.Baseline, v.WeeklySales, marker)
			}
			return nil
		},
	}

	return cmd
}
