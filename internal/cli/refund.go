package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRefundCommand creates the refund command.
func NewRefundCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		reason  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "refund <order-id> <quantity>",
		Short: "Refund part or all of an order",
		Long: `Refund a quantity of units against an order.

Amounts are prorated off the original order totals, so partial refunds
summing to the full quantity reconstitute the original amounts exactly.
The cash figure is record-only; the points balance moves by the points
refund minus the reward claw-back. A refund that would leave the points
balance negative asks for confirmation (or --yes).

Example:
  shoplog refund CASH2025083112000012307 1 --reason "opened by mistake"
  shoplog refund CASH2025083112000012307 2 --preview`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("quantity %q is not an integer", args[1]))
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if preview {
				p, err := e.engine.PreviewRefund(cmd.Context(), args[0], qty)
				if err != nil {
					return finish(e.out, err)
				}
				if e.out.JSON() {
					return e.out.Success(p)
				}
				printRefundFigures(e, p.RefundCash, p.RefundPoints, p.DeductPoints, p.CurrentPoints, p.ProjectedPoints)
				return nil
			}

			result, err := e.engine.Refund(cmd.Context(), args[0], qty, reason)
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(result)
			}
			fmt.Fprintf(e.out.Writer, "refund:        %s\n", result.RefundID)
			printRefundFigures(e, result.RefundCash, result.RefundPoints, result.DeductPoints, result.CurrentPoints, result.ProjectedPoints)
			if result.DebtOutstanding > 0 {
				fmt.Fprintf(e.out.Writer, "note: customer still owes %.2f; adjust the debt record manually if cash was involved\n", result.DebtOutstanding)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "refund reason recorded on the refund")
	cmd.Flags().BoolVar(&preview, "preview", false, "show the prorated amounts without applying")

	return cmd
}

func printRefundFigures(e *env, cash, points, deduct, before, after float64) {
	fmt.Fprintf(e.out.Writer, "refund cash:   %.2f (record only)\n", cash)
	fmt.Fprintf(e.out.Writer, "refund points: %.2f\n", points)
	fmt.Fprintf(e.out.Writer, "deduct reward: %.2f\n", deduct)
	fmt.Fprintf(e.out.Writer, "points:        %.2f -> %.2f\n", before, after)
}
