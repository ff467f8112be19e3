package derive

import (
	"sort"
	"time"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
)

// RevenueReport is the revenue overview: cumulative totals plus the period
// since last Sunday. Cash and points are independent unit types combined
// 1:1 for the profit line only.
type RevenueReport struct {
	PeriodStart time.Time

	CashRevenue   float64
	PointsRevenue float64
	TotalCost     float64
	TotalProfit   float64

	PeriodCashRevenue   float64
	PeriodPointsRevenue float64
	PeriodCost          float64
	PeriodProfit        float64

	// Special-user orders are fulfilled at zero price; their cost snapshot
	// is reported separately so the subsidy is visible.
	SpecialUserCost       float64
	SpecialUserPeriodCost float64
	SpecialUserOrders     int

	Products []ProductSales
}

// ProductSales aggregates per-product sales over the whole log.
type ProductSales struct {
	ProductID   string
	ProductName string
	Quantity    int
	Revenue     float64
	Cost        float64
	Profit      float64
}

// Revenue builds the revenue overview at now. Revenue and cost use the
// frozen per-order snapshots, never current catalog prices.
func Revenue(snap *ledger.Snapshot, cfg config.Config, now time.Time) RevenueReport {
	periodStart := LastSunday(now)
	rep := RevenueReport{PeriodStart: periodStart}

	perProduct := make(map[string]*ProductSales)
	for _, o := range snap.Orders {
		switch o.Channel {
		case ledger.ChannelCash:
			rep.CashRevenue += o.PaidCash
		case ledger.ChannelPoints:
			rep.PointsRevenue += o.PaidPoints
		}
		rep.TotalCost += o.Cost

		inPeriod := !o.Timestamp.Before(periodStart)
		if inPeriod {
			switch o.Channel {
			case ledger.ChannelCash:
				rep.PeriodCashRevenue += o.PaidCash
			case ledger.ChannelPoints:
				rep.PeriodPointsRevenue += o.PaidPoints
			}
			rep.PeriodCost += o.Cost
		}

		if cfg.IsSpecial(o.CustomerID) {
			rep.SpecialUserCost += o.Cost
			rep.SpecialUserOrders++
			if inPeriod {
				rep.SpecialUserPeriodCost += o.Cost
			}
		}

		ps, ok := perProduct[o.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: o.ProductID, ProductName: o.ProductName}
			perProduct[o.ProductID] = ps
		}
		ps.Quantity += o.Quantity
		if o.Channel == ledger.ChannelCash {
			ps.Revenue += o.PaidCash
		} else {
			ps.Revenue += o.PaidPoints
		}
		ps.Cost += o.Cost
	}

	rep.TotalProfit = rep.CashRevenue + rep.PointsRevenue - rep.TotalCost
	rep.PeriodProfit = rep.PeriodCashRevenue + rep.PeriodPointsRevenue - rep.PeriodCost

	for _, ps := range perProduct {
		ps.Profit = ps.Revenue - ps.Cost
		rep.Products = append(rep.Products, *ps)
	}
	sort.Slice(rep.Products, func(i, j int) bool {
		return rep.Products[i].ProductID < rep.Products[j].ProductID
	})

	return rep
}

// WeeklySales returns a product's unit sales since last Sunday.
func WeeklySales(snap *ledger.Snapshot, productID string, now time.Time) int {
	weekStart := LastSunday(now)
	total := 0
	for _, o := range snap.Orders {
		if o.ProductID == productID && !o.Timestamp.Before(weekStart) {
			total += o.Quantity
		}
	}
	return total
}

// Debtor is a customer with a nonzero debt balance and their last order
// time, if any.
type Debtor struct {
	CustomerID string
	Debt       float64
	LastOrder  time.Time
	HasOrders  bool
}

// Debtors lists customers with nonzero debt, sorted by descending debt
// then ID for a stable export order.
func Debtors(snap *ledger.Snapshot) []Debtor {
	var out []Debtor
	for _, c := range snap.Customers {
		if c.Debt == 0 {
			continue
		}
		d := Debtor{CustomerID: c.ID, Debt: c.Debt}
		for _, o := range snap.Orders {
			if o.CustomerID == c.ID && (!d.HasOrders || o.Timestamp.After(d.LastOrder)) {
				d.LastOrder = o.Timestamp
				d.HasOrders = true
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Debt != out[j].Debt {
			return out[i].Debt > out[j].Debt
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// LastSunday returns the most recent Sunday strictly before now's date, at
// midnight in now's location. If now is a Sunday the previous Sunday is
// returned, so the reporting period is never empty.
func LastSunday(now time.Time) time.Time {
	daysBack := int(now.Weekday())
	if daysBack == 0 {
		daysBack = 7
	}
	d := now.AddDate(0, 0, -daysBack)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}
