package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <order-id>",
		Short: "Recompute an order's verification code",
		Long: `Recompute the 6-character verification code for a stored order, to
check a handwritten receipt against the ledger.

Example:
  shoplog verify CASH2025083112000012307`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			code, err := e.engine.VerifyOrder(cmd.Context(), args[0])
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(map[string]string{"order_id": args[0], "verify_code": code})
			}
			fmt.Fprintf(e.out.Writer, "%s: %s\n", args[0], code)
			return nil
		},
	}

	return cmd
}

// NewLookupCommand creates the lookup command (reverse verification).
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <code>",
		Short: "Find the order behind a verification code",
		Long: `Scan the order history, newest first, for the order whose
verification code matches. On a collision the most recent order wins.

Example:
  shoplog lookup 1A2B3C`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			order, err := e.engine.Lookup(cmd.Context(), args[0])
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(order)
			}
			fmt.Fprintf(e.out.Writer, "order:         %s\n", order.ID)
			fmt.Fprintf(e.out.Writer, "placed:        %s\n", order.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(e.out.Writer, "customer:      %s\n", order.CustomerID)
			fmt.Fprintf(e.out.Writer, "product:       %s x %d\n", order.ProductName, order.Quantity)
			fmt.Fprintf(e.out.Writer, "paid cash:     %.2f\n", order.PaidCash)
			fmt.Fprintf(e.out.Writer, "paid points:   %.2f\n", order.PaidPoints)
			fmt.Fprintf(e.out.Writer, "reward points: %.2f\n", order.RewardPoints)
			return nil
		},
	}

	return cmd
}
