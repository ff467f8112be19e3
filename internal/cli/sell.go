package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplog/internal/engine"
)

// NewSellCommand creates the sell command (cash shelf).
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "sell <customer> <product> <quantity>",
		Short: "Sell a product for cash",
		Long: `Sell a product from the cash shelf.

Stock is checked against the derived level, reward points are computed
from the product's promotions at the buyer's current tier, and the
receipt carries a verification code for the handwritten copy.

Example:
  shoplog sell alice COLA 3
  shoplog sell bob CHIPS 1 --note "paid later" --db ./shop.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSale(rootOpts, cmd, args, note, false)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "free-form note recorded on the order")

	return cmd
}

// NewRedeemCommand creates the redeem command (points shelf).
func NewRedeemCommand(rootOpts *RootOptions) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "redeem <customer> <product> <quantity>",
		Short: "Redeem a product with points",
		Long: `Redeem a product from the points shelf.

The points price is debited from the customer's balance. Points
purchases never earn reward points, and special users cannot redeem.

Example:
  shoplog redeem alice STICKER 2`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSale(rootOpts, cmd, args, note, true)
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "free-form note recorded on the order")

	return cmd
}

func runSale(opts *RootOptions, cmd *cobra.Command, args []string, note string, points bool) error {
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("quantity %q is not an integer", args[2]))
	}

	e, err := openEnv(opts, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var receipt engine.Receipt
	if points {
		receipt, err = e.engine.PointsSale(cmd.Context(), args[0], args[1], qty, note)
	} else {
		receipt, err = e.engine.CashSale(cmd.Context(), args[0], args[1], qty, note)
	}
	if err != nil {
		return finish(e.out, err)
	}

	if e.out.JSON() {
		return e.out.Success(receipt)
	}
	printReceipt(e.out, receipt)
	return nil
}

func printReceipt(f *OutputFormatter, r engine.Receipt) {
	fmt.Fprintf(f.Writer, "order:         %s\n", r.OrderID)
	fmt.Fprintf(f.Writer, "product:       %s x %d\n", r.ProductName, r.Quantity)
	fmt.Fprintf(f.Writer, "paid cash:     %.2f\n", r.PaidCash)
	fmt.Fprintf(f.Writer, "paid points:   %.2f\n", r.PaidPoints)
	fmt.Fprintf(f.Writer, "reward points: %.2f\n", r.RewardPoints)
	if r.PromotionName != "" {
		fmt.Fprintf(f.Writer, "promotion:     %s\n", r.PromotionName)
	}
	fmt.Fprintf(f.Writer, "tier:          %s\n", r.Tier)
	fmt.Fprintf(f.Writer, "stock left:    %d\n", r.StockAfter)
	fmt.Fprintf(f.Writer, "verify code:   %s\n", r.VerifyCode)
}
