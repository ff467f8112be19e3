package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Revenue, debtor, and budget reports",
	}

	cmd.AddCommand(newReportRevenueCommand(rootOpts))
	cmd.AddCommand(newReportDebtorsCommand(rootOpts))
	cmd.AddCommand(newReportBudgetCommand(rootOpts))

	return cmd
}

func newReportRevenueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Revenue overview",
		Long: `Revenue overview: cumulative totals and the period since last
Sunday, cash and points kept separate with profit at a 1:1 combination.
Special-user orders carry zero revenue; their cost is broken out so the
subsidy stays visible.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			rep, err := e.engine.Revenue(cmd.Context())
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(rep)
			}

			p := message.NewPrinter(language.English)
			p.Fprintf(e.out.Writer, "period since %s\n\n", rep.PeriodStart.Format("2006-01-02"))
			p.Fprintf(e.out.Writer, "cumulative:  cash %.2f  points %.2f  cost %.2f  profit %.2f\n",
				rep.CashRevenue, rep.PointsRevenue, rep.TotalCost, rep.TotalProfit)
			p.Fprintf(e.out.Writer, "this period: cash %.2f  points %.2f  cost %.2f  profit %.2f\n",
				rep.PeriodCashRevenue, rep.PeriodPointsRevenue, rep.PeriodCost, rep.PeriodProfit)
			if rep.SpecialUserOrders > 0 {
				p.Fprintf(e.out.Writer, "special users: %d orders, cost %.2f total (%.2f this period)\n",
					rep.SpecialUserOrders, rep.SpecialUserCost, rep.SpecialUserPeriodCost)
			}
			if len(rep.Products) > 0 {
				p.Fprintf(e.out.Writer, "\nper product:\n")
				for _, ps := range rep.Products {
					p.Fprintf(e.out.Writer, "  %-12s %-20s sold %4d  revenue %10.2f  profit %10.2f\n",
						ps.ProductID, ps.ProductName, ps.Quantity, ps.Revenue, ps.Profit)
				}
			}
			return nil
		},
	}

	return cmd
}

func newReportDebtorsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debtors",
		Short: "List customers with outstanding debt",
		Long: `List customers with a nonzero debt balance, largest first, with the
time of their last order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			debtors, err := e.engine.Debtors(cmd.Context())
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(debtors)
			}

			p := message.NewPrinter(language.English)
			for _, d := range debtors {
				last := "no orders"
				if d.HasOrders {
					last = "last order " + d.LastOrder.Format("2006-01-02")
				}
				p.Fprintf(e.out.Writer, "%-12s owes %10.2f  (%s)\n", d.CustomerID, d.Debt, last)
			}
			return nil
		},
	}

	return cmd
}

func newReportBudgetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show the derived activity budget",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			budget, err := e.engine.Budget(cmd.Context())
			if err != nil {
				return finish(e.out, err)
			}

			if e.out.JSON() {
				return e.out.Success(map[string]float64{"budget": budget})
			}
			p := message.NewPrinter(language.English)
			p.Fprintf(e.out.Writer, "activity budget: %.2f\n", budget)
			return nil
		},
	}

	return cmd
}
