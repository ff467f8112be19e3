package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplog/internal/ledger"
)

// NewCustomersCommand creates the customers query command.
func NewCustomersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers [customer]",
		Short: "Show customer standing",
		Long: `Show every customer's derived standing, or one customer's.

Tier is recomputed from the order history and member config at query
time; nothing is stored. Window spend is the net cash spend inside the
membership lookback window.

Example:
  shoplog customers
  shoplog customers alice`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID := ""
			if len(args) == 1 {
				customerID = args[0]
			}
			return runCustomerList(rootOpts, cmd, customerID, false)
		},
	}

	return cmd
}

// NewMembersCommand creates the members query command.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List current members and projected demotions",
		Long: `List customers currently classified OFFICIAL or SPECIAL, with the
projected date each spend-qualified member will drop back to TRAINEE if
they stop buying.

Example:
  shoplog members`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerList(rootOpts, cmd, "", true)
		},
	}

	return cmd
}

func runCustomerList(opts *RootOptions, cmd *cobra.Command, customerID string, membersOnly bool) error {
	e, err := openEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	views, err := e.engine.Customers(cmd.Context(), customerID)
	if err != nil {
		return finish(e.out, err)
	}

	if membersOnly {
		filtered := views[:0]
		for _, v := range views {
			if v.Tier != ledger.TierTrainee {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	if e.out.JSON() {
		return e.out.Success(views)
	}
	for _, v := range views {
		line := fmt.Sprintf("%-12s %-8s points %8.2f  debt %8.2f  spend %8.2f",
			v.CustomerID, v.Tier, v.Points, v.Debt, v.WindowSpend)
		if v.DemotionDate != "" {
			line += "  demotes " + v.DemotionDate
		}
		fmt.Fprintln(e.out.Writer, line)
	}
	return nil
}
