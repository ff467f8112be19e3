package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplog/internal/engine"
)

// NewAdjustCommand creates the adjust command group for manual ledger
// operations.
func NewAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Manual ledger adjustments",
		Long: `Record a manual adjustment: activity budget, customer debt or
points, or a product's stock baseline. Every adjustment appends a
ledger entry with the given reason.`,
	}

	cmd.AddCommand(newAdjustBudgetCommand(rootOpts))
	cmd.AddCommand(newAdjustDebtCommand(rootOpts))
	cmd.AddCommand(newAdjustPointsCommand(rootOpts))
	cmd.AddCommand(newAdjustInventoryCommand(rootOpts))

	return cmd
}

func newAdjustBudgetCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "budget <amount>",
		Short: "Adjust the activity budget",
		Long: `Move the activity budget by amount (positive grows it, negative
spends it). The budget is the sum of these entries alone; sales never
touch it.

Example:
  shoplog adjust budget 100 --reason "monthly allowance"
  shoplog adjust budget -30 --reason "prize payout"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("amount %q is not a number", args[0]))
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			adj, err := e.engine.AdjustBudget(cmd.Context(), amount, reason)
			if err != nil {
				return finish(e.out, err)
			}
			return printAdjustment(e, adj, "budget")
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the ledger entry")

	return cmd
}

func newAdjustDebtCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "debt <customer> <amount>",
		Short: "Adjust a customer's debt",
		Long: `Move a customer's debt by amount (positive means they owe more).
Refunds never touch debt; this is the manual follow-up path.

Example:
  shoplog adjust debt alice 12.50 --reason "took goods on credit"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerAdjust(rootOpts, cmd, args, reason, false)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the ledger entry")

	return cmd
}

func newAdjustPointsCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "points <customer> <amount>",
		Short: "Adjust a customer's points",
		Long: `Move a customer's points balance by amount. The balance is not
clamped; a correction may push it negative or past the earning ceiling.

Example:
  shoplog adjust points alice -2 --reason "duplicate reward"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerAdjust(rootOpts, cmd, args, reason, true)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the ledger entry")

	return cmd
}

func runCustomerAdjust(opts *RootOptions, cmd *cobra.Command, args []string, reason string, points bool) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("amount %q is not a number", args[1]))
	}

	e, err := openEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var adj engine.Adjustment
	if points {
		adj, err = e.engine.AdjustPoints(cmd.Context(), args[0], amount, reason)
	} else {
		adj, err = e.engine.AdjustDebt(cmd.Context(), args[0], amount, reason)
	}
	if err != nil {
		return finish(e.out, err)
	}
	return printAdjustment(e, adj, args[0])
}

func newAdjustInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "inventory <product> <amount>",
		Short: "Adjust a product's stock baseline",
		Long: `Move a product's stock baseline by a whole number of units
(positive restock, negative shrinkage). The baseline may not go
negative.

Example:
  shoplog adjust inventory COLA 24 --reason "restock"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("amount %q is not an integer", args[1]))
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			adj, err := e.engine.AdjustInventory(cmd.Context(), args[0], amount, reason)
			if err != nil {
				return finish(e.out, err)
			}
			return printAdjustment(e, adj, args[0])
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the ledger entry")

	return cmd
}

func printAdjustment(e *env, adj engine.Adjustment, subject string) error {
	if e.out.JSON() {
		return e.out.Success(adj)
	}
	fmt.Fprintf(e.out.Writer, "entry:  %s\n", adj.EntryID)
	fmt.Fprintf(e.out.Writer, "kind:   %s\n", adj.Kind)
	fmt.Fprintf(e.out.Writer, "amount: %+.2f\n", adj.Amount)
	fmt.Fprintf(e.out.Writer, "%s now: %.2f\n", subject, adj.After)
	return nil
}
