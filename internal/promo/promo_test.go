package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
)

func quantityPromo(id string, threshold, points float64) ledger.Promotion {
	return ledger.Promotion{
		ID:           id,
		Name:         id,
		Kind:         ledger.PromoQuantityBased,
		Threshold:    threshold,
		RewardPoints: points,
		MemberOnly:   true,
	}
}

func amountPromo(id string, threshold, points float64) ledger.Promotion {
	return ledger.Promotion{
		ID:           id,
		Name:         id,
		Kind:         ledger.PromoAmountBased,
		Threshold:    threshold,
		RewardPoints: points,
		MemberOnly:   true,
	}
}

func TestEvaluate_QuantityBased(t *testing.T) {
	promos := []ledger.Promotion{quantityPromo("buy3", 3, 1)}

	r, ok := Evaluate(promos, 7, 70, 1.0)
	require.True(t, ok)
	// floor(7/3) = 2 thresholds crossed.
	assert.Equal(t, 2.0, r.RawPoints)
	assert.Equal(t, 2.0, r.Points)

	_, ok = Evaluate(promos, 2, 20, 1.0)
	assert.False(t, ok)
}

func TestEvaluate_AmountBased(t *testing.T) {
	promos := []ledger.Promotion{amountPromo("spend10", 10, 3)}

	r, ok := Evaluate(promos, 2, 25, 1.0)
	require.True(t, ok)
	// floor(25/10) = 2 thresholds crossed, 3 points each.
	assert.Equal(t, 6.0, r.RawPoints)

	_, ok = Evaluate(promos, 1, 9.99, 1.0)
	assert.False(t, ok)
}

func TestEvaluate_AmountBasedZeroQuantity(t *testing.T) {
	promos := []ledger.Promotion{amountPromo("spend10", 10, 3)}

	_, ok := Evaluate(promos, 0, 100, 1.0)
	assert.False(t, ok)
}

func TestEvaluate_BestSinglePromotionWins(t *testing.T) {
	// quantity: floor(6/2)*1 = 3 points; amount: floor(60/10)*2 = 12 points.
	promos := []ledger.Promotion{
		quantityPromo("buy2", 2, 1),
		amountPromo("spend10", 10, 2),
	}

	r, ok := Evaluate(promos, 6, 60, 1.0)
	require.True(t, ok)
	assert.Equal(t, "spend10", r.PromotionID)
	// Promotions never stack.
	assert.Equal(t, 12.0, r.Points)
}

func TestEvaluate_TieKeepsFirstBound(t *testing.T) {
	promos := []ledger.Promotion{
		quantityPromo("first", 2, 3),
		quantityPromo("second", 2, 3),
	}

	r, ok := Evaluate(promos, 2, 20, 1.0)
	require.True(t, ok)
	assert.Equal(t, "first", r.PromotionID)
}

func TestEvaluate_NonMemberPromotionsSkipped(t *testing.T) {
	p := quantityPromo("poster", 1, 5)
	p.MemberOnly = false

	_, ok := Evaluate([]ledger.Promotion{p}, 10, 100, 1.0)
	assert.False(t, ok)
}

func TestEvaluate_TierRate(t *testing.T) {
	promos := []ledger.Promotion{quantityPromo("buy2", 2, 5)}

	r, ok := Evaluate(promos, 4, 40, 0.2)
	require.True(t, ok)
	assert.Equal(t, 10.0, r.RawPoints)
	assert.Equal(t, 2.0, r.Points)

	// SPECIAL's zero rate zeroes the reward but the promotion still wins.
	r, ok = Evaluate(promos, 4, 40, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, r.Points)

	// Negative configured rates floor at zero rather than clawing back.
	r, ok = Evaluate(promos, 4, 40, -1)
	require.True(t, ok)
	assert.Equal(t, 0.0, r.Points)
}

func TestEvaluate_ZeroThresholdYieldsNothing(t *testing.T) {
	_, ok := Evaluate([]ledger.Promotion{quantityPromo("bad", 0, 5)}, 10, 100, 1.0)
	assert.False(t, ok)
}

func TestForOrder(t *testing.T) {
	cfg := config.Default()
	snap := &ledger.Snapshot{
		Promotions: []ledger.Promotion{
			quantityPromo("buy3", 3, 1),
		},
	}
	product := ledger.Product{ID: "cola", PromoIDs: []string{"buy3", "missing"}}

	r, ok := ForOrder(snap, cfg, product, 6, 60, ledger.TierOfficial)
	require.True(t, ok)
	assert.Equal(t, "buy3", r.PromotionID)
	assert.Equal(t, 2.0, r.Points)

	// TRAINEE earns at the reduced configured rate.
	r, ok = ForOrder(snap, cfg, product, 6, 60, ledger.TierTrainee)
	require.True(t, ok)
	assert.InDelta(t, 0.4, r.Points, 1e-9)

	// No bound promotions means no reward.
	_, ok = ForOrder(snap, cfg, ledger.Product{ID: "plain"}, 6, 60, ledger.TierOfficial)
	assert.False(t, ok)
}
