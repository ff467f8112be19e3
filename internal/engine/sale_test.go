package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplog/internal/config"
	"github.com/roach88/shoplog/internal/ledger"
	"github.com/roach88/shoplog/internal/store"
	"github.com/roach88/shoplog/internal/testutil"
	"github.com/roach88/shoplog/internal/verify"
)

var testStart = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	engine *Engine
	store  *store.Store
	clock  *testutil.Clock
	ctx    context.Context
}

func setup(t *testing.T, cfg config.Config, opts ...Option) *fixture {
	t.Helper()

	s, err := store.Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewClock(testStart)
	base := []Option{
		WithClock(clock),
		WithIDSource(testutil.NewSequentialIDs()),
	}
	eng := New(s, cfg, append(base, opts...)...)

	return &fixture{engine: eng, store: s, clock: clock, ctx: context.Background()}
}

func (f *fixture) seedShop(t *testing.T) {
	t.Helper()

	require.NoError(t, f.store.PutPromotion(f.ctx, ledger.Promotion{
		ID:           "buy3",
		Name:         "Buy 3 get a point",
		Kind:         ledger.PromoQuantityBased,
		Threshold:    3,
		RewardPoints: 3,
		MemberOnly:   true,
	}))
	require.NoError(t, f.store.PutProduct(f.ctx, ledger.Product{
		ID:           "cola",
		Name:         "Cola",
		Cost:         1.5,
		InitialStock: 10,
		Price:        ledger.DualPrice(10, 4),
		PromoIDs:     []string{"buy3"},
	}))
	require.NoError(t, f.store.PutProduct(f.ctx, ledger.Product{
		ID:           "sticker",
		Name:         "Sticker",
		Cost:         0.5,
		InitialStock: 20,
		Price:        ledger.PointsPrice(2),
	}))
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "alice"}))
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "bob", Points: 6}))
}

func officialConfig(id string) config.Config {
	cfg := config.Default()
	cfg.ManualExpiry[id] = time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestCashSale_Trainee(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 2, "")
	require.NoError(t, err)

	assert.Equal(t, "CASH-000001", receipt.OrderID)
	assert.Equal(t, 20.0, receipt.PaidCash)
	assert.Equal(t, 0.0, receipt.PaidPoints)
	assert.Equal(t, ledger.TierTrainee, receipt.Tier)
	assert.Equal(t, 8, receipt.StockAfter)
	// Below the buy3 threshold, no reward.
	assert.Equal(t, 0.0, receipt.RewardPoints)
	assert.Empty(t, receipt.PromotionName)
	assert.Len(t, receipt.VerifyCode, verify.CodeLen)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, ledger.ChannelCash, snap.Orders[0].Channel)
	assert.Equal(t, 3.0, snap.Orders[0].Cost)
}

func TestCashSale_OfficialEarnsPromotion(t *testing.T) {
	f := setup(t, officialConfig("alice"))
	f.seedShop(t)

	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.TierOfficial, receipt.Tier)
	assert.Equal(t, 3.0, receipt.RewardPoints)
	assert.Equal(t, "Buy 3 get a point", receipt.PromotionName)
	assert.Equal(t, verify.Code(f.engine.Config().Salt, receipt.OrderID, 30, 0, 3), receipt.VerifyCode)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, ok := snap.Customer("alice")
	require.True(t, ok)
	assert.Equal(t, 3.0, c.Points)
}

func TestCashSale_TraineeEarnsReducedRate(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.TierTrainee, receipt.Tier)
	assert.InDelta(t, 0.6, receipt.RewardPoints, 1e-9)
}

func TestCashSale_SpecialPaysNothing(t *testing.T) {
	cfg := config.Default()
	cfg.SpecialUsers["shopkeeper"] = true

	f := setup(t, cfg)
	f.seedShop(t)
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "shopkeeper"}))

	receipt, err := f.engine.CashSale(f.ctx, "shopkeeper", "cola", 3, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.TierSpecial, receipt.Tier)
	assert.Equal(t, 0.0, receipt.PaidCash)
	assert.Equal(t, 0.0, receipt.RewardPoints)

	// The cost snapshot still records what the sale cost the shop.
	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.5, snap.Orders[0].Cost)
}

func TestCashSale_SpecialNeverEarnsPoints(t *testing.T) {
	cfg := config.Default()
	cfg.SpecialUsers["shopkeeper"] = true
	cfg.Rates[ledger.TierSpecial] = 1.0

	f := setup(t, cfg)
	f.seedShop(t)
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "shopkeeper"}))

	receipt, err := f.engine.CashSale(f.ctx, "shopkeeper", "cola", 3, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.TierSpecial, receipt.Tier)
	assert.Equal(t, 0.0, receipt.RewardPoints)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, ok := snap.Customer("shopkeeper")
	require.True(t, ok)
	assert.Equal(t, 0.0, c.Points)
}

func TestCashSale_InsufficientStock(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	_, err := f.engine.CashSale(f.ctx, "alice", "cola", 11, "")
	assert.Equal(t, ErrCodeInsufficientStock, RejectCodeOf(err))

	// Nothing was written.
	snap, snapErr := f.engine.Snapshot(f.ctx)
	require.NoError(t, snapErr)
	assert.Empty(t, snap.Orders)
}

func TestCashSale_PointsCeiling(t *testing.T) {
	f := setup(t, officialConfig("bob"))
	f.seedShop(t)

	// bob holds 6 points, over the default ceiling of 5: an earning
	// purchase is blocked.
	_, err := f.engine.CashSale(f.ctx, "bob", "cola", 3, "")
	assert.Equal(t, ErrCodePointsCeiling, RejectCodeOf(err))

	// A purchase that earns nothing is still allowed.
	receipt, err := f.engine.CashSale(f.ctx, "bob", "cola", 2, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, receipt.RewardPoints)
}

func TestCashSale_EarningMayPassCeiling(t *testing.T) {
	cfg := officialConfig("alice")
	f := setup(t, cfg)
	f.seedShop(t)
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "alice", Points: 4.5}))

	// 4.5 is under the ceiling, so the sale goes through; the credited
	// reward may land past it.
	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)
	assert.Equal(t, 3.0, receipt.RewardPoints)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, _ := snap.Customer("alice")
	assert.Equal(t, 7.5, c.Points)
}

func TestCashSale_Rejections(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	tests := []struct {
		name     string
		customer string
		product  string
		qty      int
		want     RejectCode
	}{
		{"unknown customer", "ghost", "cola", 1, ErrCodeUnknownCustomer},
		{"unknown product", "alice", "ghost", 1, ErrCodeUnknownProduct},
		{"points-only product", "alice", "sticker", 1, ErrCodeValidation},
		{"zero quantity", "alice", "cola", 0, ErrCodeValidation},
		{"negative quantity", "alice", "cola", -2, ErrCodeValidation},
		{"empty customer", "", "cola", 1, ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CashSale(f.ctx, tt.customer, tt.product, tt.qty, "")
			assert.Equal(t, tt.want, RejectCodeOf(err))
		})
	}
}

func TestPointsSale(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	receipt, err := f.engine.PointsSale(f.ctx, "bob", "sticker", 2, "")
	require.NoError(t, err)

	assert.Equal(t, "PTS-000001", receipt.OrderID)
	assert.Equal(t, 0.0, receipt.PaidCash)
	assert.Equal(t, 4.0, receipt.PaidPoints)
	// Points purchases never earn rewards.
	assert.Equal(t, 0.0, receipt.RewardPoints)

	snap, err := f.engine.Snapshot(f.ctx)
	require.NoError(t, err)
	c, _ := snap.Customer("bob")
	assert.Equal(t, 2.0, c.Points)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, ledger.ChannelPoints, snap.Orders[0].Channel)
}

func TestPointsSale_InsufficientBalance(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	_, err := f.engine.PointsSale(f.ctx, "alice", "sticker", 1, "")
	assert.Equal(t, ErrCodeInsufficientPoints, RejectCodeOf(err))
}

func TestPointsSale_SpecialCannotRedeem(t *testing.T) {
	cfg := config.Default()
	cfg.SpecialUsers["shopkeeper"] = true

	f := setup(t, cfg)
	f.seedShop(t)
	require.NoError(t, f.store.PutCustomer(f.ctx, ledger.Customer{ID: "shopkeeper", Points: 100}))

	_, err := f.engine.PointsSale(f.ctx, "shopkeeper", "sticker", 1, "")
	assert.Equal(t, ErrCodeSpecialRedeem, RejectCodeOf(err))
}

func TestPointsSale_CashOnlyProduct(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)
	require.NoError(t, f.store.PutProduct(f.ctx, ledger.Product{
		ID:    "soap",
		Name:  "Soap",
		Price: ledger.CashPrice(5),
	}))

	_, err := f.engine.PointsSale(f.ctx, "bob", "soap", 1, "")
	assert.Equal(t, ErrCodeValidation, RejectCodeOf(err))
}

func TestSale_WindowSpendPromotesMidHistory(t *testing.T) {
	f := setup(t, config.Default())
	f.seedShop(t)

	// Two trainee purchases push alice over the 50-yuan trigger; the
	// third sale sees her as OFFICIAL.
	_, err := f.engine.CashSale(f.ctx, "alice", "cola", 2, "")
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	_, err = f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	receipt, err := f.engine.CashSale(f.ctx, "alice", "cola", 3, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.TierOfficial, receipt.Tier)
	assert.Equal(t, 3.0, receipt.RewardPoints)
}
