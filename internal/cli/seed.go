package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/shoplog/internal/ledger"
)

// seedFile is the YAML document consumed by the seed command.
type seedFile struct {
	Products []struct {
		ID           string   `yaml:"id"`
		Name         string   `yaml:"name"`
		Cost         float64  `yaml:"cost"`
		InitialStock int      `yaml:"initial_stock"`
		CashPrice    *float64 `yaml:"cash_price"`
		PointsPrice  *float64 `yaml:"points_price"`
		Promos       []string `yaml:"promos"`
	} `yaml:"products"`
	Promotions []struct {
		ID           string  `yaml:"id"`
		Name         string  `yaml:"name"`
		Kind         string  `yaml:"kind"`
		Threshold    float64 `yaml:"threshold"`
		RewardPoints float64 `yaml:"reward_points"`
		WeeklyLimit  int     `yaml:"weekly_limit"`
		MemberOnly   bool    `yaml:"member_only"`
	} `yaml:"promotions"`
	Customers []struct {
		ID     string  `yaml:"id"`
		Points float64 `yaml:"points"`
		Debt   float64 `yaml:"debt"`
	} `yaml:"customers"`
}

// NewSeedCommand creates the seed command, which upserts catalog,
// promotion, and customer records from a YAML file.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load catalog, promotions, and customers from YAML",
		Long: `Upsert products, promotions, and customers from a YAML file.

Seeding only touches the reference tables; the order, refund, and
ledger-entry history is append-only and never written by this command.

Example:
  shoplog seed catalog.yaml --db ./shop.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read seed file", err)
			}

			var seed seedFile
			if err := yaml.Unmarshal(raw, &seed); err != nil {
				return WrapExitError(ExitCommandError, "failed to parse seed file", err)
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			for _, p := range seed.Promotions {
				promo := ledger.Promotion{
					ID:           p.ID,
					Name:         p.Name,
					Kind:         ledger.PromotionKind(p.Kind),
					Threshold:    p.Threshold,
					RewardPoints: p.RewardPoints,
					WeeklyLimit:  p.WeeklyLimit,
					MemberOnly:   p.MemberOnly,
				}
				if err := e.store.PutPromotion(ctx, promo); err != nil {
					return finish(e.out, err)
				}
			}
			for _, p := range seed.Products {
				product := ledger.Product{
					ID:           p.ID,
					Name:         p.Name,
					Cost:         p.Cost,
					InitialStock: p.InitialStock,
					Price:        seedPrice(p.CashPrice, p.PointsPrice),
					PromoIDs:     p.Promos,
				}
				if err := e.store.PutProduct(ctx, product); err != nil {
					return finish(e.out, err)
				}
			}
			for _, c := range seed.Customers {
				customer := ledger.Customer{ID: c.ID, Points: c.Points, Debt: c.Debt}
				if err := e.store.PutCustomer(ctx, customer); err != nil {
					return finish(e.out, err)
				}
			}

			summary := fmt.Sprintf("seeded %d products, %d promotions, %d customers",
				len(seed.Products), len(seed.Promotions), len(seed.Customers))
			if e.out.JSON() {
				return e.out.Success(map[string]int{
					"products":   len(seed.Products),
					"promotions": len(seed.Promotions),
					"customers":  len(seed.Customers),
				})
			}
			fmt.Fprintln(e.out.Writer, summary)
			return nil
		},
	}

	return cmd
}

func seedPrice(cash, points *float64) ledger.Price {
	switch {
	case cash != nil && points != nil:
		return ledger.DualPrice(*cash, *points)
	case cash != nil:
		return ledger.CashPrice(*cash)
	case points != nil:
		return ledger.PointsPrice(*points)
	default:
		return ledger.Price{}
	}
}
