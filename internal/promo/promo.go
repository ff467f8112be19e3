// Package promo computes bonus reward points for an order. Promotions do
// not stack: the single highest-yielding promotion wins, with ties broken
// by binding order on the product.
package promo

import (
	"math"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
)

// Result names the promotion that won and the points it yields. RawPoints
// is before the tier multiplier, Points after.
type Result struct {
	PromotionID   string
	PromotionName string
	RawPoints     float64
	Points        float64
}

// Evaluate picks the best promotion for an order of quantity units paid at
// amount, applying the tier multiplier at the order instant. Only
// member-only promotions participate; others are redeemed manually.
// The second return is false when no promotion yields any points.
func Evaluate(promos []ledger.Promotion, quantity int, amount float64, rate float64) (Result, bool) {
	var best Result
	found := false
	for _, p := range promos {
		if !p.MemberOnly {
			continue
		}
		raw := rawReward(p, quantity, amount)
		if raw <= 0 {
			continue
		}
		if !found || raw > best.RawPoints {
			best = Result{
				PromotionID:   p.ID,
				PromotionName: p.Name,
				RawPoints:     raw,
			}
			found = true
		}
	}
	if !found {
		return Result{}, false
	}
	if rate < 0 {
		rate = 0
	}
	best.Points = best.RawPoints * rate
	return best, found
}

func rawReward(p ledger.Promotion, quantity int, amount float64) float64 {
	if p.Threshold <= 0 {
		return 0
	}
	switch p.Kind {
	case ledger.PromoQuantityBased:
		return math.Floor(float64(quantity)/p.Threshold) * p.RewardPoints
	case ledger.PromoAmountBased:
		// Per-unit proration collapses to the total amount, but keeps the
		// zero-quantity order from dividing by zero.
		perUnit := 0.0
		if quantity != 0 {
			perUnit = amount / float64(quantity)
		}
		return math.Floor(perUnit*float64(quantity)/p.Threshold) * p.RewardPoints
	default:
		return 0
	}
}

// ForOrder resolves a product's bound promotions from the snapshot and
// evaluates them with the customer's multiplier for tier.
func ForOrder(snap *ledger.Snapshot, cfg config.Config, product ledger.Product, quantity int, amount float64, tier ledger.Tier) (Result, bool) {
	if len(product.PromoIDs) == 0 {
		return Result{}, false
	}
	promos := make([]ledger.Promotion, 0, len(product.PromoIDs))
	for _, id := range product.PromoIDs {
		if p, ok := snap.Promotion(id); ok {
			promos = append(promos, p)
		}
	}
	return Evaluate(promos, quantity, amount, cfg.Rate(tier))
}
